package webhook

import (
	"context"

	"github.com/mattjoyce/paperjet/internal/journal"
	"github.com/mattjoyce/paperjet/internal/receipt"
)

// JobDispatcher submits rendered jobs to the printer. Implemented by
// *printer.Dispatcher; tests substitute a capture fake.
type JobDispatcher interface {
	Dispatch(ctx context.Context, job *receipt.Job) (string, error)
}

// JobLister exposes recent print outcomes. Implemented by *journal.Journal.
type JobLister interface {
	Recent(ctx context.Context, limit int) ([]journal.Entry, error)
}

// WebhookResponse acknowledges a webhook delivery. Ignored and Printed are
// pointers so they only appear when meaningful for the outcome.
type WebhookResponse struct {
	Status  string `json:"status"`
	Ignored *bool  `json:"ignored,omitempty"`
	Printed *bool  `json:"printed,omitempty"`
	JobID   string `json:"job_id,omitempty"`
}

// HealthResponse answers the liveness probe.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorResponse is the JSON error body. Always generic.
type ErrorResponse struct {
	Error string `json:"error"`
}

func boolPtr(b bool) *bool { return &b }
