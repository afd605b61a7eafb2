package provider

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mattjoyce/paperjet/internal/config"
	"github.com/mattjoyce/paperjet/internal/ticket"
	"github.com/mattjoyce/paperjet/internal/verify"
)

// Linear signs the raw body with plain-hex HMAC-SHA256 in Linear-Signature
// and carries its replay timestamp inside the payload as webhookTimestamp,
// in Unix milliseconds.
// See https://linear.app/developers/webhooks
func newLinearSpec(_ config.ProviderConfig) *Spec {
	return &Spec{
		Scheme: verify.Scheme{
			SignatureHeader: "Linear-Signature",
			TimestampSource: verify.TimestampInPayload,
			TimestampField:  "webhookTimestamp",
			TimestampMillis: true,
		},
		Parse: parseLinear,
	}
}

// linearEnvelope is the minimal view used to classify an event before the
// full schema is applied.
type linearEnvelope struct {
	Type   string `json:"type"`   // "Issue", "Comment", "Project", ...
	Action string `json:"action"` // "create", "update", "remove"
}

type linearActor struct {
	Name string `json:"name"`
}

type linearState struct {
	Name string `json:"name"`
}

type linearTeam struct {
	Name string `json:"name"`
}

type linearLabel struct {
	Name string `json:"name"`
}

type linearUser struct {
	Name string `json:"name"`
}

type linearIssue struct {
	Identifier    string        `json:"identifier"` // e.g. "WEB-4"
	Title         string        `json:"title"`
	Description   *string       `json:"description"`
	PriorityLabel string        `json:"priorityLabel"`
	URL           string        `json:"url"`
	CreatedAt     *time.Time    `json:"createdAt"`
	DueDate       *string       `json:"dueDate"` // date-only, "2025-10-26"
	State         *linearState  `json:"state"`
	Team          *linearTeam   `json:"team"`
	Assignee      *linearUser   `json:"assignee"`
	Labels        []linearLabel `json:"labels"`
}

type linearWebhook struct {
	Action string       `json:"action"`
	Type   string       `json:"type"`
	Actor  *linearActor `json:"actor"`
	Data   *linearIssue `json:"data"`
}

// parseLinear accepts Issue/create events and converts them to the
// canonical model. Anything else that is still valid JSON is ignored;
// undecodable input is malformed.
func parseLinear(body []byte) (*ticket.Event, error) {
	var env linearEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if env.Type != "Issue" || env.Action != "create" {
		return nil, ErrIgnored
	}

	var wh linearWebhook
	if err := json.Unmarshal(body, &wh); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if wh.Data == nil || wh.Data.Title == "" || wh.Data.Identifier == "" {
		return nil, fmt.Errorf("%w: issue data incomplete", ErrMalformedPayload)
	}

	issue := wh.Data
	ev := &ticket.Event{
		Kind:        ticket.KindCreated,
		Title:       issue.Title,
		Identifier:  issue.Identifier,
		Description: issue.Description,
		Priority:    ticket.OptString(issue.PriorityLabel),
		URL:         ticket.OptString(issue.URL),
		CreatedAt:   issue.CreatedAt,
	}
	if issue.State != nil {
		ev.Status = ticket.OptString(issue.State.Name)
	}
	if issue.Team != nil {
		ev.Team = ticket.OptString(issue.Team.Name)
	}
	if issue.Assignee != nil {
		ev.Assignee = ticket.OptString(issue.Assignee.Name)
	}
	if wh.Actor != nil {
		ev.CreatedBy = ticket.OptString(wh.Actor.Name)
	}
	for _, l := range issue.Labels {
		if l.Name != "" {
			ev.Labels = append(ev.Labels, l.Name)
		}
	}
	if issue.DueDate != nil {
		if due, err := time.Parse("2006-01-02", *issue.DueDate); err == nil {
			ev.DueDate = &due
		}
	}
	return ev, nil
}
