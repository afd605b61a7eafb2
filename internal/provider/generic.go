package provider

import (
	"encoding/json"
	"fmt"

	"github.com/mattjoyce/paperjet/internal/config"
	"github.com/mattjoyce/paperjet/internal/ticket"
	"github.com/mattjoyce/paperjet/internal/verify"
)

// The acme adapter speaks the simple timestamped convention shared by most
// small ticketing systems: X-Acme-Timestamp holds Unix seconds, and the
// signature in X-Acme-Signature is HMAC-SHA256 over "<timestamp>.<body>".
func newAcmeSpec(_ config.ProviderConfig) *Spec {
	return &Spec{
		Scheme: verify.Scheme{
			SignatureHeader: "X-Acme-Signature",
			TimestampSource: verify.TimestampInHeader,
			TimestampHeader: "X-Acme-Timestamp",
			SignTimestamp:   true,
		},
		Parse: parseAcme,
	}
}

type acmePayload struct {
	Type        string   `json:"type"` // "created" is the only actionable type
	Title       string   `json:"title"`
	ID          string   `json:"id"`
	Description *string  `json:"description,omitempty"`
	Assignee    *string  `json:"assignee,omitempty"`
	Priority    *string  `json:"priority,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	URL         *string  `json:"url,omitempty"`
}

func parseAcme(body []byte) (*ticket.Event, error) {
	var p acmePayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if p.Type != "created" {
		return nil, ErrIgnored
	}
	if p.Title == "" || p.ID == "" {
		return nil, fmt.Errorf("%w: title and id are required", ErrMalformedPayload)
	}

	return &ticket.Event{
		Kind:        ticket.KindCreated,
		Title:       p.Title,
		Identifier:  p.ID,
		Description: p.Description,
		Assignee:    p.Assignee,
		Priority:    p.Priority,
		Labels:      p.Labels,
		URL:         p.URL,
	}, nil
}
