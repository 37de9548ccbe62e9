package mw

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/utils"
)

// EnforceHost rejects requests whose Host header matches none of allowedHosts with 403.
// Patterns may be exact ("shelf.example.com"), carry a port, or be a
// wildcard ("*.example.com"). An empty list disables the check.
func EnforceHost(allowedHosts []string, log logger.Logger) func(http.Handler) http.Handler {
	patterns := make([]string, 0, len(allowedHosts))
	for _, h := range allowedHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			patterns = append(patterns, h)
		}
	}
	if len(patterns) == 0 {
		log.Debug("EnforceHost: no allowed hosts, passthrough mode")
		return func(next http.Handler) http.Handler { return next }
	}

	log.Debug("EnforceHost: enabled", logger.Strings("hosts", patterns))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := strings.ToLower(r.Host)
			for _, pattern := range patterns {
				if matchHost(host, pattern) {
					next.ServeHTTP(w, r)
					return
				}
			}

			log.Warn("EnforceHost: rejected",
				logger.String("host", host),
				logger.String("path", r.URL.Path))
			deny(w, http.StatusForbidden, "Forbidden")
		})
	}
}

// matchHost reports whether host matches pattern. A pattern without a port
// ignores the port of host; "*.example.com" matches any subdomain but not the apex.
func matchHost(host, pattern string) bool {
	pattern = strings.ToLower(pattern)
	if !strings.Contains(pattern, ":") {
		host = utils.ParseHostNoPort(host)
	}

	if suffix, ok := strings.CutPrefix(pattern, "*"); ok && strings.HasPrefix(suffix, ".") {
		return strings.HasSuffix(host, suffix) && len(host) > len(suffix)
	}
	return host == pattern
}
