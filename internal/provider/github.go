package provider

import (
	"encoding/json"
	"fmt"

	ghwebhooks "github.com/go-playground/webhooks/v6/github"

	"github.com/mattjoyce/paperjet/internal/config"
	"github.com/mattjoyce/paperjet/internal/ticket"
	"github.com/mattjoyce/paperjet/internal/verify"
)

// GitHub signs the raw body with HMAC-SHA256 in X-Hub-Signature-256 using
// the "sha256=<hex>" format. The payload carries no replay timestamp, so
// only the signature gates acceptance.
func newGitHubSpec(_ config.ProviderConfig) *Spec {
	return &Spec{
		Scheme: verify.Scheme{
			SignatureHeader: "X-Hub-Signature-256",
			Prefix:          "sha256=",
			TimestampSource: verify.TimestampNone,
		},
		Parse: parseGitHub,
	}
}

// parseGitHub handles issue events. Only "opened" is actionable; every
// other action, and every non-issue event body, is ignored.
func parseGitHub(body []byte) (*ticket.Event, error) {
	// A quick envelope check separates "not an issue event" from
	// "broken payload" before the full schema is applied.
	var env struct {
		Action string          `json:"action"`
		Issue  json.RawMessage `json:"issue"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if len(env.Issue) == 0 || env.Action != "opened" {
		return nil, ErrIgnored
	}

	var p ghwebhooks.IssuesPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if p.Issue.Title == "" {
		return nil, fmt.Errorf("%w: issue title missing", ErrMalformedPayload)
	}

	createdAt := p.Issue.CreatedAt
	ev := &ticket.Event{
		Kind:        ticket.KindCreated,
		Title:       p.Issue.Title,
		Identifier:  fmt.Sprintf("#%d", p.Issue.Number),
		Description: ticket.OptString(p.Issue.Body),
		Status:      ticket.OptString(p.Issue.State),
		CreatedBy:   ticket.OptString(p.Issue.User.Login),
		Team:        ticket.OptString(p.Repository.FullName),
		URL:         ticket.OptString(p.Issue.HTMLURL),
		CreatedAt:   &createdAt,
	}
	if p.Issue.Assignee != nil {
		ev.Assignee = ticket.OptString(p.Issue.Assignee.Login)
	}
	for _, l := range p.Issue.Labels {
		if l.Name != "" {
			ev.Labels = append(ev.Labels, l.Name)
		}
	}
	return ev, nil
}
