package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-cafe-orders/internal/stockwatch"
)

type AlertSource interface {
	Alerts(ctx context.Context) ([]stockwatch.Alert, error)
}

// InventoryHandler serves the stock alert board kept by the stockwatch
// consumer.
type InventoryHandler struct {
	Alerts  AlertSource
	Timeout time.Duration
}

func (h *InventoryHandler) Register(r chi.Router) {
	r.Get("/api/inventory/alerts", h.listAlerts)
}

func (h *InventoryHandler) listAlerts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	alerts, err := h.Alerts.Alerts(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, alerts)
}
