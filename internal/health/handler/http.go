// Package handler serves GET /health for load balancers and orchestrators.
package handler

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"servease/backend/internal/server/httpx"
)

const pingTimeout = 2 * time.Second

// Pinger checks a dependency. *sql.DB and *sqlx.DB satisfy it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type statusResponse struct {
	Status string `json:"status"`
}

// Handler reports readiness from a database ping.
type Handler struct {
	db Pinger
}

// New returns a health Handler. A nil db always reports ok.
func New(db Pinger) *Handler {
	return &Handler{db: db}
}

// Check handles GET /health.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			zap.L().Warn("health: database ping failed", zap.Error(err))
			httpx.WriteJSON(w, http.StatusServiceUnavailable, statusResponse{Status: "unavailable"})
			return
		}
	}
	httpx.WriteJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}
