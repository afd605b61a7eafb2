// Package verify authenticates inbound webhook requests.
//
// A request is trusted only if an HMAC-SHA256 tag over the provider-specified
// message matches the header-supplied signature, and the claimed timestamp
// falls inside the replay window. Comparison is constant-time and every
// failure collapses to the same generic error so responses leak nothing
// about which check failed.
package verify

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrVerificationFailed is returned for every rejection: missing headers,
// malformed timestamps, stale requests and bad signatures alike.
var ErrVerificationFailed = errors.New("webhook verification failed")

// DefaultReplayWindow bounds how far a request timestamp may drift from the
// receiver's clock, in either direction. A captured valid request is only
// replayable inside this window.
const DefaultReplayWindow = 60 * time.Second

// TimestampSource says where a provider puts its replay-protection timestamp.
type TimestampSource int

const (
	// TimestampNone skips the replay check for providers that sign the
	// body without any timestamp (e.g. GitHub).
	TimestampNone TimestampSource = iota
	// TimestampInHeader reads the timestamp from a request header.
	TimestampInHeader
	// TimestampInPayload reads the timestamp from a top-level JSON field
	// of the body (e.g. Linear's webhookTimestamp).
	TimestampInPayload
)

// Scheme describes one provider's signing convention. Resolved once at
// configuration load; never mutated afterwards.
type Scheme struct {
	// SignatureHeader carries the hex-encoded tag (e.g. "Linear-Signature").
	SignatureHeader string

	// Prefix is stripped from the header value before hex-decoding
	// (e.g. "sha256=" for GitHub). Empty for plain hex providers.
	Prefix string

	TimestampSource TimestampSource

	// TimestampHeader names the header for TimestampInHeader schemes.
	TimestampHeader string

	// TimestampField names the JSON field for TimestampInPayload schemes.
	TimestampField string

	// TimestampMillis interprets the timestamp as Unix milliseconds
	// instead of seconds.
	TimestampMillis bool

	// SignTimestamp prepends "<timestamp>." to the body before hashing
	// (Stripe/Svix style). The raw header string is used byte-exact; the
	// body is never re-serialized.
	SignTimestamp bool
}

// Verify checks a raw request body against scheme, secret and the receiver
// clock. It returns nil on ACCEPT and ErrVerificationFailed on any REJECT.
// It never panics on malformed input and never includes the secret or the
// body in an error.
func Verify(scheme Scheme, headers http.Header, body []byte, secret string, now time.Time) error {
	return VerifyWindow(scheme, headers, body, secret, now, DefaultReplayWindow)
}

// VerifyWindow is Verify with an explicit replay window. Mainly for tests
// and for operators who need a looser bound than the 60s default.
func VerifyWindow(scheme Scheme, headers http.Header, body []byte, secret string, now time.Time, window time.Duration) error {
	if secret == "" {
		return ErrVerificationFailed
	}

	signature := headers.Get(scheme.SignatureHeader)
	if signature == "" {
		return ErrVerificationFailed
	}

	// Replay window first: a stale request is rejected even with a valid
	// tag. Both checks must pass for an ACCEPT.
	rawTS, ok := claimedTimestamp(scheme, headers, body)
	if !ok {
		return ErrVerificationFailed
	}
	if rawTS != "" {
		claimed, err := parseTimestamp(rawTS, scheme.TimestampMillis)
		if err != nil {
			return ErrVerificationFailed
		}
		if drift := now.Sub(claimed); drift > window || drift < -window {
			return ErrVerificationFailed
		}
	}

	// The signed message is built from the raw bytes exactly as received.
	message := body
	if scheme.SignTimestamp {
		message = make([]byte, 0, len(rawTS)+1+len(body))
		message = append(message, rawTS...)
		message = append(message, '.')
		message = append(message, body...)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	expected := mac.Sum(nil)

	claimed, err := decodeSignature(signature, scheme.Prefix)
	if err != nil {
		return ErrVerificationFailed
	}

	if !constantTimeEqual(expected, claimed) {
		return ErrVerificationFailed
	}
	return nil
}

// claimedTimestamp extracts the raw timestamp string per the scheme.
// Returns ok=false when a required timestamp is missing, and an empty
// string with ok=true when the scheme carries no timestamp at all.
func claimedTimestamp(scheme Scheme, headers http.Header, body []byte) (string, bool) {
	switch scheme.TimestampSource {
	case TimestampNone:
		return "", true
	case TimestampInHeader:
		ts := headers.Get(scheme.TimestampHeader)
		return ts, ts != ""
	case TimestampInPayload:
		ts, err := payloadTimestamp(body, scheme.TimestampField)
		if err != nil {
			return "", false
		}
		return ts, true
	default:
		return "", false
	}
}

// payloadTimestamp pulls a top-level numeric field out of the body without
// touching the rest of the document.
func payloadTimestamp(body []byte, field string) (string, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return "", err
	}
	raw, ok := top[field]
	if !ok {
		return "", errors.New("timestamp field missing")
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

func parseTimestamp(raw string, millis bool) (time.Time, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	if millis {
		return time.UnixMilli(v), nil
	}
	return time.Unix(v, 0), nil
}

// decodeSignature strips the scheme prefix and hex-decodes the tag.
func decodeSignature(signature, prefix string) ([]byte, error) {
	if prefix != "" {
		if !strings.HasPrefix(signature, prefix) {
			return nil, errors.New("signature prefix mismatch")
		}
		signature = strings.TrimPrefix(signature, prefix)
	}
	return hex.DecodeString(signature)
}

// constantTimeEqual compares two MACs in time independent of where they
// first differ, so an attacker cannot guess the tag byte by byte.
func constantTimeEqual(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// ComputeSignature returns the hex HMAC-SHA256 tag for a message. Used by
// tests to construct valid requests; production code only ever verifies.
func ComputeSignature(message []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}
