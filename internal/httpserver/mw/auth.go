package mw

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// TokenVerifier checks a bearer token.
type TokenVerifier interface {
	Verify(token string) bool
}

// RequireSession rejects requests without a valid "Authorization: Bearer <token>" header.
func RequireSession(tokens TokenVerifier, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok || !tokens.Verify(token) {
				log.Debug("RequireSession: rejected",
					logger.String("path", r.URL.Path),
					logger.Bool("header_present", r.Header.Get("Authorization") != ""),
					logger.String("request_id", middleware.GetReqID(r.Context())))
				w.Header().Set("WWW-Authenticate", `Bearer realm="shelf"`)
				deny(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token of a Bearer authorization header.
// The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
