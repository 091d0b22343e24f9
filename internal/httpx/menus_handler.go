package httpx

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-cafe-orders/internal/menus"
)

type MenuService interface {
	ListMenus(ctx context.Context) ([]menus.MenuItem, error)
	GetMenu(ctx context.Context, id int64) (menus.MenuItem, error)
	UpdateStock(ctx context.Context, id int64, stock int) (menus.StockUpdate, error)
}

type MenusHandler struct {
	Service MenuService
	Timeout time.Duration
}

type updateStockReq struct {
	Stock *float64 `json:"stock"`
}

func (h *MenusHandler) Register(r chi.Router) {
	r.Get("/api/menus", h.listMenus)
	r.Get("/api/menus/{menuId}", h.getMenu)
	r.Patch("/api/menus/{menuId}/stock", h.updateStock)
}

func (h *MenusHandler) listMenus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	items, err := h.Service.ListMenus(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, items)
}

func (h *MenusHandler) getMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "menuId", "menu")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	m, err := h.Service.GetMenu(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, m)
}

func (h *MenusHandler) updateStock(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "menuId", "menu")
	if !ok {
		return
	}
	var req updateStockReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid json")
		return
	}
	// stock must be a whole, non-negative number that fits the column
	if req.Stock == nil || *req.Stock < 0 || *req.Stock != math.Trunc(*req.Stock) || *req.Stock > math.MaxInt32 {
		writeBadRequest(w, "invalid stock quantity")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	u, err := h.Service.UpdateStock(ctx, id, int(*req.Stock))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, u)
}
