package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/httplog/v3"
	"github.com/google/uuid"
)

type requestIDKey struct{}

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestID reads the id from the client header or generates one, then stores it in the request context,
// the response header and the access log.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}

		w.Header().Set(RequestIDHeader, id)
		httplog.SetAttrs(r.Context(), slog.String("request_id", id))

		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFrom returns the id stored by [RequestID].
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Logging writes one access log line per request through logger.
//
// Headers other than Content-Type and Origin are never logged, and neither are bodies. Query parameters
// holding credentials must be hidden with [RedactQuery] before this middleware runs.
func Logging(logger *log.Logger) Middleware {
	return httplog.RequestLogger(slog.New(logger), &httplog.Options{
		Schema: httplog.SchemaECS.Concise(true),

		LogRequestHeaders:  []string{"Content-Type", "Origin"},
		LogResponseHeaders: []string{},

		RecoverPanics: false,
	})
}

type rawQueryKey struct{}

// RedactQuery replaces the values of the named query parameters with "REDACTED" for every middleware up to
// the matching [RestoreQuery], which puts the original query back for the handler.
func RedactQuery(params ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			redacted := false
			for _, p := range params {
				if q.Has(p) {
					q.Set(p, "REDACTED")
					redacted = true
				}
			}
			if !redacted {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), rawQueryKey{}, r.URL.RawQuery)
			r = r.WithContext(ctx)
			u := *r.URL
			u.RawQuery = q.Encode()
			r.URL = &u
			r.RequestURI = u.RequestURI()

			next.ServeHTTP(w, r)
		})
	}
}

// RestoreQuery undoes [RedactQuery].
func RestoreQuery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := r.Context().Value(rawQueryKey{}).(string)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		r = r.Clone(r.Context())
		r.URL.RawQuery = raw
		r.RequestURI = r.URL.RequestURI()
		next.ServeHTTP(w, r)
	})
}

// Recovery turns a handler panic into a 500.
func Recovery(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic in handler", "path", r.URL.Path, "panic", rec)
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
