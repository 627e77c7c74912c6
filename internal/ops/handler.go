// Package ops exposes the operational HTTP surface: health probes, prometheus
// metrics, and the guarded admin routes for manual cache eviction.
package ops

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	id "commune/pkg/domain"
	dErrors "commune/pkg/domain-errors"
	"commune/pkg/requestcontext"
)

// Invalidator is the access module's manual eviction surface.
type Invalidator interface {
	Invalidate(ctx context.Context, subject, actor id.UserID) (int, error)
}

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Handler serves the ops routes.
type Handler struct {
	logger      *slog.Logger
	tokens      *TokenService
	invalidator Invalidator
	readiness   map[string]HealthCheck
}

// NewHandler creates the ops handler. Readiness checks are optional; a nil
// map means /readyz always succeeds.
func NewHandler(logger *slog.Logger, tokens *TokenService, invalidator Invalidator, readiness map[string]HealthCheck) *Handler {
	return &Handler{
		logger:      logger,
		tokens:      tokens,
		invalidator: invalidator,
		readiness:   readiness,
	}
}

// Register registers the ops routes with the chi router. Admin routes sit
// behind the service-token guard; probes and metrics are open.
func (h *Handler) Register(r chi.Router) {
	r.Get("/healthz", h.handleHealthz)
	r.Get("/readyz", h.handleReadyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(h.requireServiceToken)
		r.Use(chimiddleware.Timeout(30 * time.Second))
		r.Post("/ops/access/invalidate/{subject}", h.handleInvalidate)
	})
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadyz pings every registered dependency. Any failure makes the
// instance not ready; the failing checks are named in the response.
func (h *Handler) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	failed := make(map[string]string)
	for name, check := range h.readiness {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		h.logger.WarnContext(ctx, "readiness check failed", "failed", failed)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "failed": failed})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleInvalidate evicts every cached decision for the subject. The acting
// operator comes from the verified token and lands on the audit entry.
func (h *Handler) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subject, err := id.ParseUserID(chi.URLParam(r, "subject"))
	if err != nil {
		writeError(w, err)
		return
	}
	actor, err := id.ParseUserID(actorFromContext(ctx))
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "token subject is not a user id"))
		return
	}

	removed, err := h.invalidator.Invalidate(requestcontext.WithActorID(ctx, actor), subject, actor)
	if err != nil {
		h.logger.ErrorContext(ctx, "manual cache invalidation failed",
			"subject", subject.String(),
			"error", err,
		)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"subject": subject.String(), "removed": removed})
}

type contextKeyActor struct{}

func actorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(contextKeyActor{}).(string)
	return actor
}

// requireServiceToken verifies the bearer token and stashes the actor for
// downstream handlers.
func (h *Handler) requireServiceToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const bearerPrefix = "Bearer "
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing or invalid Authorization header"})
			return
		}
		claims, err := h.tokens.Validate(token)
		if err != nil {
			h.logger.WarnContext(r.Context(), "rejected service token", "error", err)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
			return
		}
		ctx := context.WithValue(r.Context(), contextKeyActor{}, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError translates domain error codes to HTTP statuses with a stable
// JSON envelope.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInvalidInput:
		status = http.StatusBadRequest
	case dErrors.CodeNotFound:
		status = http.StatusNotFound
	case dErrors.CodeConflict:
		status = http.StatusConflict
	case dErrors.CodeUnavailable:
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
