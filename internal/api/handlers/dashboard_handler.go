package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"shop-service/internal/dashboard"
)

type DashboardService interface {
	ForUser(ctx context.Context, userID string) (*dashboard.Dashboard, error)
	ForShop(ctx context.Context, userID, shopID string) (*dashboard.Dashboard, error)
}

type DashboardHandler struct {
	svc    DashboardService
	logger *slog.Logger
}

func NewDashboardHandler(svc DashboardService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{svc: svc, logger: logger}
}

func (h *DashboardHandler) Global(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.ForUser(r.Context(), currentUser(r))
	if err != nil {
		writeServiceError(w, r, h.logger, err, "build dashboard")
		return
	}

	writeData(w, http.StatusOK, d)
}

func (h *DashboardHandler) Shop(w http.ResponseWriter, r *http.Request) {
	shopID, ok := uuidParam(w, r, "shopID")
	if !ok {
		return
	}

	d, err := h.svc.ForShop(r.Context(), currentUser(r), shopID)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "build shop dashboard")
		return
	}

	writeData(w, http.StatusOK, d)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports liveness and whether the database answers a ping.
func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}

		writeData(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
