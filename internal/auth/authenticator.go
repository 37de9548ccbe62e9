package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/shelf/internal/domain"
)

// ErrEmptyPassword is returned when the admin password is not configured.
var ErrEmptyPassword = errors.New("admin password must not be empty")

// Authenticator exchanges the admin password for a session token.
type Authenticator struct {
	passwordDigest [sha256.Size]byte
	tokens         TokenService
}

// NewAuthenticator wires the configured admin password to a token service.
func NewAuthenticator(adminPassword string, tokens TokenService) (*Authenticator, error) {
	if adminPassword == "" {
		return nil, ErrEmptyPassword
	}
	return &Authenticator{
		passwordDigest: sha256.Sum256([]byte(adminPassword)),
		tokens:         tokens,
	}, nil
}

// Login checks the submitted password and issues a token on success.
//
// An empty password is a validation error, a wrong one is unauthorized.
// Digests are compared so the check does not leak the password length.
func (a *Authenticator) Login(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: password is required", domain.ErrValidation)
	}

	submitted := sha256.Sum256([]byte(password))
	if subtle.ConstantTimeCompare(submitted[:], a.passwordDigest[:]) != 1 {
		return "", fmt.Errorf("%w: invalid password", domain.ErrUnauthorized)
	}

	token, err := a.tokens.Issue()
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}
	return token, nil
}

// Verify reports whether token proves a past successful login.
func (a *Authenticator) Verify(token string) bool {
	if token == "" {
		return false
	}
	return a.tokens.Verify(token)
}
