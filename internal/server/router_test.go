package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type routesHandler struct{ routes []string }

func (h routesHandler) Routes() []string { return h.routes }
func (h routesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("handled " + r.URL.Path))
}

func TestBasicRouter(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("ok")) })

	t.Run("method filter", func(t *testing.T) {
		r := NewBasicRouter()
		r.Handle(http.MethodGet, "/login", ok)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rec.Code)
		}
		if rec.Header().Get("Allow") != "GET" {
			t.Errorf("Allow = %q", rec.Header().Get("Allow"))
		}

		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("custom handler routes", func(t *testing.T) {
		r := NewBasicRouter()
		r.Handler(http.MethodGet, routesHandler{routes: []string{"/a", "/b"}})

		for _, path := range []string{"/a", "/b"} {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			if rec.Body.String() != "handled "+path {
				t.Errorf("%s: body = %q", path, rec.Body.String())
			}
		}

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/a", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rec.Code)
		}
	})

	t.Run("middleware order", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		r := NewBasicRouter()
		r.Use(mw("first"), mw("second"))
		r.Handle(http.MethodGet, "/x", ok)
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

		if strings.Join(order, ",") != "first,second" {
			t.Errorf("middleware ran in order %v", order)
		}
	})
}
