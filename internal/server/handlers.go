package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotauth/internal/models"
	"github.com/desertthunder/spotauth/internal/services"
	"github.com/desertthunder/spotauth/internal/shared"
	"github.com/go-chi/httplog/v3"
)

// AuthClient is the subset of [services.AuthService] the HTTP server needs.
type AuthClient interface {
	TokenExchanger
	AuthURL(state, redirectURI string) (string, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error)
}

var _ AuthClient = (*services.AuthService)(nil)

func homeHandler(logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := render(w, http.StatusOK, "home", struct{ Title string }{"Spotify Authorization"}); err != nil {
			logger.Error("failed to render home page", "error", err)
		}
	}
}

// loginHandler starts a new attempt and redirects to the authorization page.
func loginHandler(auth AuthClient, states *StateStore, redirectURI string, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attempt, err := states.Issue(redirectURI)
		if err != nil {
			logger.Error("failed to start authorization", "error", err)
			render(w, http.StatusInternalServerError, "error", errorPage{
				Title:   "Authentication Error",
				Message: "Could not start the authorization flow.",
			})
			return
		}

		authURL, err := auth.AuthURL(attempt.State, attempt.RedirectURI)
		if err != nil {
			states.Consume(attempt.State)
			logger.Error("failed to build authorization url", "attempt_id", attempt.ID, "error", err)
			render(w, http.StatusInternalServerError, "error", errorPage{
				Title:   "Configuration Error",
				Message: err.Error(),
			})
			return
		}

		httplog.SetAttrs(r.Context(), slog.String("oauth.attempt_id", attempt.ID))
		logger.Debug("redirecting to authorization page", "attempt_id", attempt.ID)
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// refreshHandler trades the refresh_token query parameter for a new access token.
func refreshHandler(auth AuthClient, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rt := r.URL.Query().Get("refresh_token")
		if rt == "" {
			http.Error(w, "Refresh token is required", http.StatusBadRequest)
			return
		}

		token, err := auth.Refresh(r.Context(), rt)
		if err != nil {
			logger.Error("token refresh failed", "error", err)

			msg := err.Error()
			var te *services.TokenExchangeError
			if errors.As(err, &te) {
				msg = te.Message()
			} else if errors.Is(err, shared.ErrNetwork) {
				msg = "No response from the Spotify accounts service."
			}
			render(w, http.StatusInternalServerError, "error", errorPage{Title: "Token Refresh Error", Message: msg})
			return
		}

		logger.Info("token refreshed", "expires_in", token.ExpiresIn)
		if err := render(w, http.StatusOK, "token", newTokenPage("Token Refreshed!", token.AccessToken, "", token.ExpiresIn, true)); err != nil {
			logger.Error("failed to render refresh page", "error", err)
		}
	}
}

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "ok")
	}
}
