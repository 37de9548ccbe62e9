package auth

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func fixedClock() time.Time { return time.UnixMilli(1_735_689_600_000) }

func newTestTokens(t *testing.T, secret string) *HMACTokens {
	t.Helper()
	tokens, err := NewHMACTokens(secret, fixedClock)
	if err != nil {
		t.Fatalf("NewHMACTokens() error = %v", err)
	}
	return tokens
}

func TestIssueThenVerify(t *testing.T) {
	t.Parallel()

	tokens := newTestTokens(t, "super-secret")
	tok, err := tokens.Issue()
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if !tokens.Verify(tok) {
		t.Fatalf("Verify(Issue()) = false, token %q", tok)
	}
}

func TestIssuePayloadCarriesTimestamp(t *testing.T) {
	t.Parallel()

	tokens := newTestTokens(t, "k")
	tok, err := tokens.Issue()
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	payload, _, _ := strings.Cut(tok, ".")
	raw, err := b64.DecodeString(payload)
	if err != nil {
		t.Fatalf("payload is not base64url: %v", err)
	}
	var p tokenPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if p.Timestamp != fixedClock().UnixMilli() {
		t.Errorf("timestamp = %d, want %d", p.Timestamp, fixedClock().UnixMilli())
	}
}

func TestVerifyRejects(t *testing.T) {
	t.Parallel()

	tokens := newTestTokens(t, "super-secret")
	valid, err := tokens.Issue()
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	payload, sig, _ := strings.Cut(valid, ".")

	other := newTestTokens(t, "another-secret")
	foreign, err := other.Issue()
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "garbage"},
		{name: "no signature", token: payload + "."},
		{name: "no payload", token: "." + sig},
		{name: "truncated signature", token: payload + "." + sig[:len(sig)-4]},
		{name: "extended signature", token: valid + "AAAA"},
		{name: "extra segment", token: valid + ".x"},
		{name: "tampered payload", token: b64.EncodeToString([]byte(`{"timestamp":1}`)) + "." + sig},
		{name: "signature not base64", token: payload + ".!!!"},
		{name: "signed with another secret", token: foreign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tokens.Verify(tt.token) {
				t.Errorf("Verify(%q) = true, want false", tt.token)
			}
		})
	}
}

func TestNoExpiry(t *testing.T) {
	t.Parallel()

	old, err := NewHMACTokens("k", func() time.Time { return time.Unix(0, 0) })
	if err != nil {
		t.Fatalf("NewHMACTokens() error = %v", err)
	}
	tok, err := old.Issue()
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	current := newTestTokens(t, "k")
	if !current.Verify(tok) {
		t.Error("tokens must stay valid while the secret is unchanged")
	}
}

func TestNewHMACTokensEmptySecret(t *testing.T) {
	t.Parallel()

	if _, err := NewHMACTokens("", nil); err != ErrEmptySecret {
		t.Errorf("NewHMACTokens(\"\") error = %v, want ErrEmptySecret", err)
	}
}
