// Package ticket defines the provider-agnostic ticket event model.
//
// Every provider adapter converts its native webhook payload into an Event.
// Downstream code (renderer, journal, preview) only ever sees this type, so
// a new provider never touches the print path.
package ticket

import "time"

// Kind classifies what happened to a ticket upstream.
type Kind string

const (
	// KindCreated is the only actionable kind: a freshly opened ticket.
	KindCreated Kind = "created"
	// KindOther covers updates, removals, comments and anything else a
	// provider may deliver. These are acknowledged and dropped.
	KindOther Kind = "other"
)

// Event is the canonical representation of an inbound ticket notification.
//
// Title and Identifier are always populated by adapters. Every other field
// is optional; a nil pointer means the provider never supplied the value,
// which renders as an omitted line rather than placeholder text.
type Event struct {
	Kind       Kind
	Title      string
	Identifier string // e.g. "WEB-17", "T-42"

	Description *string
	Status      *string
	Priority    *string
	Assignee    *string
	Team        *string
	CreatedBy   *string
	Labels      []string
	URL         *string

	CreatedAt *time.Time
	DueDate   *time.Time
}

// String returns a non-nil pointer to s. Adapter convenience.
func String(s string) *string { return &s }

// OptString converts a possibly-empty provider field to an optional value.
// Empty means the provider omitted it.
func OptString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
