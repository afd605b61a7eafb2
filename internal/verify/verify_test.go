package verify

import (
	"fmt"
	"net/http"
	"strconv"
	"testing"
	"time"
)

var testClock = time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)

// acmeScheme signs "<timestamp>.<body>" with the timestamp in a header.
var acmeScheme = Scheme{
	SignatureHeader: "X-Acme-Signature",
	TimestampSource: TimestampInHeader,
	TimestampHeader: "X-Acme-Timestamp",
	SignTimestamp:   true,
}

// bodyScheme signs the raw body with no timestamp anywhere.
var bodyScheme = Scheme{
	SignatureHeader: "X-Sig",
	TimestampSource: TimestampNone,
}

func signedAcmeHeaders(body []byte, secret string, at time.Time) http.Header {
	ts := strconv.FormatInt(at.Unix(), 10)
	message := []byte(ts + "." + string(body))
	h := http.Header{}
	h.Set("X-Acme-Timestamp", ts)
	h.Set("X-Acme-Signature", ComputeSignature(message, secret))
	return h
}

func TestVerifyAcceptsValidRequest(t *testing.T) {
	secret := "test-secret"
	body := []byte(`{"type":"created","title":"Fix login bug","id":"T-42"}`)
	headers := signedAcmeHeaders(body, secret, testClock)

	if err := Verify(acmeScheme, headers, body, secret, testClock); err != nil {
		t.Fatalf("Verify() = %v, want nil", err)
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	secret := "test-secret"
	body := []byte(`{"type":"created","title":"Fix login bug","id":"T-42"}`)

	tests := []struct {
		name   string
		mutate func(h http.Header, body []byte) (http.Header, []byte, string)
	}{
		{
			name: "flipped body byte",
			mutate: func(h http.Header, b []byte) (http.Header, []byte, string) {
				tampered := append([]byte(nil), b...)
				tampered[0] ^= 0x01
				return h, tampered, secret
			},
		},
		{
			name: "flipped signature byte",
			mutate: func(h http.Header, b []byte) (http.Header, []byte, string) {
				sig := h.Get("X-Acme-Signature")
				flipped := "0" + sig[1:]
				if sig[0] == '0' {
					flipped = "1" + sig[1:]
				}
				h.Set("X-Acme-Signature", flipped)
				return h, b, secret
			},
		},
		{
			name: "wrong secret",
			mutate: func(h http.Header, b []byte) (http.Header, []byte, string) {
				return h, b, "other-secret"
			},
		},
		{
			name: "missing signature header",
			mutate: func(h http.Header, b []byte) (http.Header, []byte, string) {
				h.Del("X-Acme-Signature")
				return h, b, secret
			},
		},
		{
			name: "missing timestamp header",
			mutate: func(h http.Header, b []byte) (http.Header, []byte, string) {
				h.Del("X-Acme-Timestamp")
				return h, b, secret
			},
		},
		{
			name: "malformed timestamp",
			mutate: func(h http.Header, b []byte) (http.Header, []byte, string) {
				h.Set("X-Acme-Timestamp", "not-a-number")
				return h, b, secret
			},
		},
		{
			name: "empty secret",
			mutate: func(h http.Header, b []byte) (http.Header, []byte, string) {
				return h, b, ""
			},
		},
		{
			name: "malformed hex signature",
			mutate: func(h http.Header, b []byte) (http.Header, []byte, string) {
				h.Set("X-Acme-Signature", "zzzz-not-hex")
				return h, b, secret
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers, tampered, sec := tt.mutate(signedAcmeHeaders(body, secret, testClock), body)
			err := Verify(acmeScheme, headers, tampered, sec, testClock)
			if err == nil {
				t.Fatal("Verify() = nil, want error")
			}
			// Every rejection collapses to the same generic error.
			if err != ErrVerificationFailed {
				t.Errorf("error should be generic, got: %v", err)
			}
		})
	}
}

func TestVerifyReplayWindowBoundary(t *testing.T) {
	secret := "test-secret"
	body := []byte(`{"type":"created"}`)

	tests := []struct {
		name   string
		offset time.Duration
		wantOK bool
	}{
		{"59 seconds old", -59 * time.Second, true},
		{"59 seconds ahead", 59 * time.Second, true},
		{"exactly 60 seconds old", -60 * time.Second, true},
		{"61 seconds old", -61 * time.Second, false},
		{"61 seconds ahead", 61 * time.Second, false},
		{"one hour old", -time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := signedAcmeHeaders(body, secret, testClock.Add(tt.offset))
			err := Verify(acmeScheme, headers, body, secret, testClock)
			if gotOK := err == nil; gotOK != tt.wantOK {
				t.Errorf("Verify() error = %v, want ok=%v", err, tt.wantOK)
			}
		})
	}
}

func TestVerifyPayloadTimestamp(t *testing.T) {
	secret := "linear-secret"
	scheme := Scheme{
		SignatureHeader: "Linear-Signature",
		TimestampSource: TimestampInPayload,
		TimestampField:  "webhookTimestamp",
		TimestampMillis: true,
	}

	makeRequest := func(tsMillis int64) (http.Header, []byte) {
		body := []byte(fmt.Sprintf(`{"type":"Issue","action":"create","webhookTimestamp":%d}`, tsMillis))
		h := http.Header{}
		h.Set("Linear-Signature", ComputeSignature(body, secret))
		return h, body
	}

	t.Run("fresh timestamp accepts", func(t *testing.T) {
		h, body := makeRequest(testClock.UnixMilli())
		if err := Verify(scheme, h, body, secret, testClock); err != nil {
			t.Fatalf("Verify() = %v, want nil", err)
		}
	})

	t.Run("stale timestamp rejects", func(t *testing.T) {
		h, body := makeRequest(testClock.Add(-2 * time.Minute).UnixMilli())
		if err := Verify(scheme, h, body, secret, testClock); err != ErrVerificationFailed {
			t.Fatalf("Verify() = %v, want ErrVerificationFailed", err)
		}
	})

	t.Run("missing timestamp field rejects", func(t *testing.T) {
		body := []byte(`{"type":"Issue","action":"create"}`)
		h := http.Header{}
		h.Set("Linear-Signature", ComputeSignature(body, secret))
		if err := Verify(scheme, h, body, secret, testClock); err != ErrVerificationFailed {
			t.Fatalf("Verify() = %v, want ErrVerificationFailed", err)
		}
	})
}

func TestVerifyPrefixedSignature(t *testing.T) {
	secret := "gh-secret"
	body := []byte(`{"action":"opened"}`)
	scheme := Scheme{
		SignatureHeader: "X-Hub-Signature-256",
		Prefix:          "sha256=",
		TimestampSource: TimestampNone,
	}

	h := http.Header{}
	h.Set("X-Hub-Signature-256", "sha256="+ComputeSignature(body, secret))
	if err := Verify(scheme, h, body, secret, testClock); err != nil {
		t.Fatalf("Verify() = %v, want nil", err)
	}

	// A correct tag without the required prefix is still a REJECT.
	h.Set("X-Hub-Signature-256", ComputeSignature(body, secret))
	if err := Verify(scheme, h, body, secret, testClock); err != ErrVerificationFailed {
		t.Fatalf("Verify() = %v, want ErrVerificationFailed", err)
	}
}

func TestVerifyEmptyBody(t *testing.T) {
	// An empty body hashes as zero-length input, not an error.
	secret := "test-secret"
	body := []byte{}
	h := http.Header{}
	h.Set("X-Sig", ComputeSignature(body, secret))

	if err := Verify(bodyScheme, h, body, secret, testClock); err != nil {
		t.Fatalf("Verify() = %v, want nil", err)
	}
}

func TestConstantTimeEqualDivergencePosition(t *testing.T) {
	// The comparison must behave identically whether tags diverge at the
	// first byte or the last; both are plain rejects through the same
	// constant-time primitive.
	base := make([]byte, 32)
	for i := range base {
		base[i] = byte(i)
	}

	divergeFirst := append([]byte(nil), base...)
	divergeFirst[0] ^= 0xff
	divergeLast := append([]byte(nil), base...)
	divergeLast[len(divergeLast)-1] ^= 0xff

	if constantTimeEqual(base, divergeFirst) {
		t.Error("tags differing at position 0 must not compare equal")
	}
	if constantTimeEqual(base, divergeLast) {
		t.Error("tags differing at the last byte must not compare equal")
	}
	if !constantTimeEqual(base, append([]byte(nil), base...)) {
		t.Error("identical tags must compare equal")
	}
	if constantTimeEqual(base, base[:16]) {
		t.Error("length mismatch must not compare equal")
	}
}

func TestComputeSignatureDeterministic(t *testing.T) {
	body := []byte("test payload")
	secret := "test-secret"

	sig := ComputeSignature(body, secret)
	if len(sig) != 64 { // SHA256 = 32 bytes = 64 hex chars
		t.Errorf("signature length = %d, want 64", len(sig))
	}
	if sig != ComputeSignature(body, secret) {
		t.Error("signature should be deterministic")
	}
	if sig == ComputeSignature([]byte("different"), secret) {
		t.Error("different body should produce different signature")
	}
}
