// Package provider maps webhook provider identifiers to their verification
// parameters and payload parsers.
//
// Each supported provider ships as a built-in adapter. The registry is
// populated once from configuration; identifiers that are not configured, or
// configured but disabled, resolve to ErrUnknownProvider and are never
// created on the fly.
package provider

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mattjoyce/paperjet/internal/config"
	"github.com/mattjoyce/paperjet/internal/ticket"
	"github.com/mattjoyce/paperjet/internal/verify"
)

var (
	// ErrUnknownProvider covers both unregistered and disabled providers,
	// so a caller cannot tell which integrations are installed.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrIgnored marks an authenticated, well-formed event that is not an
	// actionable kind. Callers must acknowledge it as success so the
	// upstream service does not retry or disable the webhook.
	ErrIgnored = errors.New("event ignored")

	// ErrMalformedPayload marks a payload that could not be interpreted
	// for the provider's schema, after authentication succeeded.
	ErrMalformedPayload = errors.New("malformed payload")
)

// ParseFunc converts a provider-native payload into a canonical event.
// Implementations return ErrIgnored, ErrMalformedPayload, or a wrapped form
// of either.
type ParseFunc func(body []byte) (*ticket.Event, error)

// Spec holds everything the request path needs to know about one provider.
// Immutable after registry construction.
type Spec struct {
	ID     string
	Secret string
	Scheme verify.Scheme
	Parse  ParseFunc

	MaxTitleLength       int
	MaxDescriptionLength int
}

type builder func(pc config.ProviderConfig) *Spec

// builtins is the closed set of provider adapters. Adding a provider means
// adding code here, not configuration.
var builtins = map[string]builder{
	"linear": newLinearSpec,
	"github": newGitHubSpec,
	"acme":   newAcmeSpec,
}

// Registry resolves provider identifiers. Populated once, then read-only.
type Registry struct {
	specs map[string]*Spec
}

// NewRegistry builds a registry from configuration. Provider names without a
// built-in adapter are a configuration error; disabled providers are simply
// left out, so they resolve exactly like unknown ones.
func NewRegistry(providers map[string]config.ProviderConfig) (*Registry, error) {
	specs := make(map[string]*Spec, len(providers))
	for name, pc := range providers {
		build, ok := builtins[name]
		if !ok {
			return nil, fmt.Errorf("no adapter for provider %q (supported: %s)", name, supportedNames())
		}
		if pc.Disabled {
			continue
		}
		spec := build(pc)
		spec.ID = name
		spec.Secret = pc.SigningSecret
		spec.MaxTitleLength = pc.MaxTitleLength
		spec.MaxDescriptionLength = pc.MaxDescriptionLength
		specs[name] = spec
	}
	return &Registry{specs: specs}, nil
}

// Resolve returns the spec for id, or ErrUnknownProvider.
func (r *Registry) Resolve(id string) (*Spec, error) {
	spec, ok := r.specs[id]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return spec, nil
}

// Names lists the enabled providers in stable order. Used for startup logs.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func supportedNames() string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// Normalize parses body per the provider's schema and filters out
// non-actionable kinds. Title and description are capped to the provider's
// configured maximums with a visible "..." marker.
func Normalize(spec *Spec, body []byte) (*ticket.Event, error) {
	ev, err := spec.Parse(body)
	if err != nil {
		return nil, err
	}
	if ev.Kind != ticket.KindCreated {
		return nil, ErrIgnored
	}

	ev.Title = truncate(ev.Title, spec.MaxTitleLength)
	if ev.Description != nil {
		ev.Description = ticket.String(truncate(*ev.Description, spec.MaxDescriptionLength))
	}
	return ev, nil
}

// truncate caps s at max runes, marking the cut with "...". Values at or
// under the cap pass through untouched.
func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 3 {
		max = 4
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
