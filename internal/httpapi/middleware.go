// ABOUTME: HTTP middleware: request logging, metrics and principal resolution.
// ABOUTME: The acting user is named by the X-User-ID header.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/harperreed/cortitrack/internal/logging"
	"github.com/harperreed/cortitrack/internal/models"
	"github.com/harperreed/cortitrack/internal/storage"
	"github.com/harperreed/cortitrack/internal/wellness"
)

// UserIDHeader names the acting user on every /api request.
const UserIDHeader = "X-User-ID"

type principalKey struct{}

// requestLogger attaches a request-scoped logger to the context and logs each
// completed request. Status codes are also counted in m.
func requestLogger(base *log.Logger, m *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			logger := base.With("request_id", chimiddleware.GetReqID(r.Context()))
			ctx := logging.ContextWithLogger(r.Context(), logger)

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			m.observeRequest(r.Method, route, status)
			logger.Debug("request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"duration", time.Since(start),
				"bytes", ww.BytesWritten(),
			)
		})
	}
}

// requirePrincipal resolves X-User-ID to a Principal. Missing or unknown ids
// are rejected with 401.
func requirePrincipal(svc *wellness.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(UserIDHeader)
			if id == "" {
				writeJSON(w, http.StatusUnauthorized, ErrorResponse{
					Error:   "unauthorized",
					Message: UserIDHeader + " header is required",
				})
				return
			}

			p, err := svc.Principal(id)
			if errors.Is(err, storage.ErrNotFound) {
				writeJSON(w, http.StatusUnauthorized, ErrorResponse{
					Error:   "unauthorized",
					Message: "unknown user " + id,
				})
				return
			}
			if err != nil {
				writeError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey{}, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// principalFrom returns the acting user stored by requirePrincipal.
func principalFrom(ctx context.Context) models.Principal {
	p, _ := ctx.Value(principalKey{}).(models.Principal)
	return p
}
