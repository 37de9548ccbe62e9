package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// TokenService issues and checks session tokens.
// A stateful implementation (set membership in memory or redis) fits the
// same contract; only the stateless HMAC variant ships.
type TokenService interface {
	Issue() (string, error)
	Verify(token string) bool
}

// ErrEmptySecret is returned when an HMAC signer is built without a key.
var ErrEmptySecret = errors.New("session secret must not be empty")

var b64 = base64.RawURLEncoding

type tokenPayload struct {
	Timestamp int64 `json:"timestamp"`
}

// HMACTokens signs tokens of the form base64url(payload).base64url(sig)
// where sig = HMAC-SHA256(payload, secret).
//
// Tokens carry no expiry: they stay valid until the secret changes.
type HMACTokens struct {
	secret []byte
	now    func() time.Time
}

var _ TokenService = (*HMACTokens)(nil)

// NewHMACTokens builds a signer. now may be nil (defaults to time.Now).
func NewHMACTokens(secret string, now func() time.Time) (*HMACTokens, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if now == nil {
		now = time.Now
	}
	return &HMACTokens{secret: []byte(secret), now: now}, nil
}

// Issue returns a freshly signed token.
func (t *HMACTokens) Issue() (string, error) {
	raw, err := json.Marshal(tokenPayload{Timestamp: t.now().UnixMilli()})
	if err != nil {
		return "", fmt.Errorf("failed to encode token payload: %w", err)
	}
	payload := b64.EncodeToString(raw)
	return payload + "." + b64.EncodeToString(t.sign(payload)), nil
}

// Verify checks the signature only.
func (t *HMACTokens) Verify(token string) bool {
	payload, sig, ok := strings.Cut(token, ".")
	if !ok || payload == "" || sig == "" || strings.Contains(sig, ".") {
		return false
	}

	got, err := b64.DecodeString(sig)
	if err != nil {
		return false
	}
	want := t.sign(payload)

	// hmac.Equal is constant time only for equal lengths.
	if len(got) != len(want) {
		return false
	}
	return hmac.Equal(got, want)
}

func (t *HMACTokens) sign(payload string) []byte {
	mac := hmac.New(sha256.New, t.secret)
	mac.Write([]byte(payload))
	return mac.Sum(nil)
}
