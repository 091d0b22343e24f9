package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ariefcatur/go-cafe-orders/internal/apperr"
)

type dataBody struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// StockShortage is the details object of an insufficient stock response.
type StockShortage struct {
	MenuID            int64  `json:"menuId"`
	MenuName          string `json:"menuName"`
	AvailableStock    int    `json:"availableStock"`
	RequestedQuantity int    `json:"requestedQuantity"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, code int, data any) {
	writeJSON(w, code, dataBody{Success: true, Data: data})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

// writeError maps service errors onto status codes. Anything outside the
// taxonomy is logged and answered with a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve  *apperr.ValidationError
		nf  *apperr.NotFoundError
		ise *apperr.InsufficientStockError
		ce  *apperr.ConflictError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: ve.Message})
	case errors.As(err, &ise):
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error: "insufficient stock",
			Details: StockShortage{
				MenuID:            ise.MenuID,
				MenuName:          ise.MenuName,
				AvailableStock:    ise.Available,
				RequestedQuantity: ise.Requested,
			},
		})
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, errorBody{Error: nf.Error()})
	case errors.As(err, &ce):
		writeJSON(w, http.StatusConflict, errorBody{Error: ce.Message})
	default:
		logError(r, "request failed", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
}

func logError(r *http.Request, msg string, err error) {
	slog.ErrorContext(r.Context(), msg,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
		"err", err,
	)
}

// idParam reads a numeric URL parameter. It writes the 400 itself and
// reports false when the value is not an integer.
func idParam(w http.ResponseWriter, r *http.Request, name, resource string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		writeBadRequest(w, "invalid "+resource+" id")
		return 0, false
	}
	return id, true
}
