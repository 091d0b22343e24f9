package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-cafe-orders/internal/orders"
)

const HeaderIdempotencyKey = "Idempotency-Key"

type OrderService interface {
	PlaceOrder(ctx context.Context, req orders.PlaceOrderRequest, idempotencyKey string) (orders.Order, error)
	GetOrder(ctx context.Context, id int64) (orders.Order, error)
	ListOrders(ctx context.Context, q orders.ListQuery) ([]orders.Order, error)
	UpdateStatus(ctx context.Context, id int64, status string) (orders.StatusUpdate, error)
}

type OrdersHandler struct {
	Service OrderService
	Timeout time.Duration
}

type updateStatusReq struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/api/orders", h.placeOrder)
	r.Get("/api/orders", h.listOrders)
	r.Get("/api/orders/{orderId}", h.getOrder)
	r.Patch("/api/orders/{orderId}/status", h.updateStatus)
}

func (h *OrdersHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req orders.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	o, err := h.Service.PlaceOrder(ctx, req, r.Header.Get(HeaderIdempotencyKey))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, o)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	q, err := orders.ParseListQuery(r.URL.Query().Get("status"), r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	list, err := h.Service.ListOrders(ctx, q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, list)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "orderId", "order")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	o, err := h.Service.GetOrder(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, o)
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "orderId", "order")
	if !ok {
		return
	}
	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	u, err := h.Service.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, u)
}
