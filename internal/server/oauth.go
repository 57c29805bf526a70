package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotauth/internal/models"
	"github.com/desertthunder/spotauth/internal/services"
	"github.com/desertthunder/spotauth/internal/shared"
	"github.com/go-chi/httplog/v3"
)

// TokenExchanger trades an authorization code for tokens.
type TokenExchanger interface {
	ExchangeCode(ctx context.Context, code, redirectURI string) (*models.TokenResponse, error)
}

// Outcome is how a callback request ended.
type Outcome int

const (
	Authenticated Outcome = iota
	AuthorizationDenied
	CsrfRejected
	ExchangeFailed
)

func (o Outcome) String() string {
	switch o {
	case Authenticated:
		return "authenticated"
	case AuthorizationDenied:
		return "authorization_denied"
	case CsrfRejected:
		return "csrf_rejected"
	case ExchangeFailed:
		return "exchange_failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// CallbackResult is the outcome of one callback request.
type CallbackResult struct {
	Outcome   Outcome
	AttemptID string
	Status    int
	Token     *models.TokenResponse
	Message   string
	Err       error
}

// CallbackHandler completes the authorization code flow on the redirect URI.
//
// Implements the [Handler] interface for registration with a [Router].
type CallbackHandler struct {
	exchanger TokenExchanger
	states    *StateStore
	logger    *log.Logger
	onResult  func(CallbackResult)
}

// NewCallbackHandler creates a callback handler. onResult, if set, is called after every request.
func NewCallbackHandler(exchanger TokenExchanger, states *StateStore, logger *log.Logger, onResult func(CallbackResult)) *CallbackHandler {
	return &CallbackHandler{
		exchanger: exchanger,
		states:    states,
		logger:    logger,
		onResult:  onResult,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"/callback"}
}

// Handle decides the outcome for the callback query. It performs the token exchange but writes nothing.
func (h *CallbackHandler) Handle(ctx context.Context, query url.Values, remoteAddr string) CallbackResult {
	state := query.Get("state")

	if errParam := query.Get("error"); errParam != "" {
		res := CallbackResult{
			Outcome: AuthorizationDenied,
			Status:  http.StatusBadRequest,
			Message: errParam,
			Err:     fmt.Errorf("%w: %s", shared.ErrAuthDenied, errParam),
		}
		if desc := query.Get("error_description"); desc != "" {
			res.Message = fmt.Sprintf("%s: %s", errParam, desc)
		}
		if state != "" {
			if attempt, err := h.states.Consume(state); err == nil {
				res.AttemptID = attempt.ID
			}
		}
		h.logger.Warn("authorization denied", "attempt_id", res.AttemptID, "error", res.Message)
		return res
	}

	attempt, err := h.states.Consume(state)
	if err != nil {
		h.logger.Error("state verification failed, possible CSRF attack",
			"remote_addr", remoteAddr, "attempt_id", attempt.ID, "error", err)
		return CallbackResult{
			Outcome:   CsrfRejected,
			AttemptID: attempt.ID,
			Status:    http.StatusBadRequest,
			Message:   "State verification failed. Possible CSRF attack.",
			Err:       err,
		}
	}

	logger := h.logger.With("attempt_id", attempt.ID)

	code := query.Get("code")
	if code == "" {
		logger.Error("callback without authorization code")
		return CallbackResult{
			Outcome:   ExchangeFailed,
			AttemptID: attempt.ID,
			Status:    http.StatusBadRequest,
			Message:   "The callback is missing the authorization code.",
			Err:       fmt.Errorf("%w: authorization code", shared.ErrMissingArgument),
		}
	}

	token, err := h.exchanger.ExchangeCode(ctx, code, attempt.RedirectURI)
	if err != nil {
		res := CallbackResult{Outcome: ExchangeFailed, AttemptID: attempt.ID, Err: err}

		var te *services.TokenExchangeError
		switch {
		case errors.As(err, &te):
			res.Status = http.StatusBadGateway
			res.Message = te.Message()
		case errors.Is(err, shared.ErrNetwork):
			res.Status = http.StatusGatewayTimeout
			res.Message = "No response from the Spotify accounts service. Check your connection and try again."
		default:
			res.Status = http.StatusBadGateway
			res.Message = err.Error()
		}

		logger.Error("token exchange failed", "status", res.Status, "error", err)
		return res
	}

	logger.Info("authentication successful", "expires_in", token.ExpiresIn)
	return CallbackResult{
		Outcome:   Authenticated,
		AttemptID: attempt.ID,
		Status:    http.StatusOK,
		Token:     token,
	}
}

// ServeHTTP handles the callback request and renders the result page.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	res := h.Handle(r.Context(), r.URL.Query(), r.RemoteAddr)

	httplog.SetAttrs(r.Context(),
		slog.String("oauth.outcome", res.Outcome.String()),
		slog.String("oauth.attempt_id", res.AttemptID),
	)

	var err error
	switch res.Outcome {
	case Authenticated:
		err = render(w, res.Status, "token", newTokenPage("Authentication Successful!",
			res.Token.AccessToken, res.Token.RefreshToken, res.Token.ExpiresIn, false))
	case ExchangeFailed:
		err = render(w, res.Status, "error", errorPage{Title: "Token Exchange Error", Message: res.Message, Retry: true})
	default:
		err = render(w, res.Status, "error", errorPage{Title: "Authentication Error", Message: res.Message, Retry: true})
	}
	if err != nil {
		h.logger.Error("failed to render callback page", "error", err)
	}

	if h.onResult != nil {
		h.onResult(res)
	}
}
