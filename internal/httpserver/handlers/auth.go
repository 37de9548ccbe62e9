package handlers

import (
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/utils"
)

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges the admin password for a session token.
func Login(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeServiceError(w, r, d.Logger, err, "Login failed")
			return
		}

		token, err := d.Auth.Login(req.Password)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				d.Logger.Warn("admin login rejected",
					logger.String("ip", utils.ClientIP(r, d.TrustProxy)))
			}
			writeServiceError(w, r, d.Logger, err, "Login failed")
			return
		}

		d.Logger.Info("admin login",
			logger.String("ip", utils.ClientIP(r, d.TrustProxy)))
		writeJSON(w, http.StatusOK, loginResponse{Token: token})
	}
}

// Logout always succeeds: tokens are stateless, the client drops its copy.
func Logout(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	}
}
