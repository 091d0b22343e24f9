package client

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ariefcatur/go-cafe-orders/internal/apperr"
	"github.com/ariefcatur/go-cafe-orders/internal/httpx"
	"github.com/ariefcatur/go-cafe-orders/internal/menus"
	"github.com/ariefcatur/go-cafe-orders/internal/orders"
	"github.com/ariefcatur/go-cafe-orders/internal/stockwatch"
)

// fakeAPI is an in-memory café behind the real HTTP handlers.
type fakeAPI struct {
	mu     sync.Mutex
	menus  []menus.MenuItem
	orders []orders.Order
	keys   map[string]int64
	fail   error
}

func (f *fakeAPI) ListMenus(context.Context) ([]menus.MenuItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	return append([]menus.MenuItem(nil), f.menus...), nil
}

func (f *fakeAPI) GetMenu(_ context.Context, id int64) (menus.MenuItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.menus {
		if m.ID == id {
			return m, nil
		}
	}
	return menus.MenuItem{}, apperr.NotFound("menu", id)
}

func (f *fakeAPI) UpdateStock(_ context.Context, id int64, stock int) (menus.StockUpdate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.menus {
		if f.menus[i].ID == id {
			f.menus[i].Stock = stock
			return menus.StockUpdate{ID: id, Stock: stock}, nil
		}
	}
	return menus.StockUpdate{}, apperr.NotFound("menu", id)
}

func (f *fakeAPI) PlaceOrder(_ context.Context, req orders.PlaceOrderRequest, key string) (orders.Order, error) {
	if err := orders.ValidatePlaceOrder(req); err != nil {
		return orders.Order{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.keys[key]; ok && key != "" {
		return f.orders[id-1], nil
	}
	idx := map[int64]int{}
	for i, m := range f.menus {
		idx[m.ID] = i
	}
	left := map[int64]int{}
	for _, it := range req.Items {
		i, ok := idx[it.MenuID]
		if !ok {
			return orders.Order{}, apperr.NotFound("menu", it.MenuID)
		}
		if _, seen := left[it.MenuID]; !seen {
			left[it.MenuID] = f.menus[i].Stock
		}
		if left[it.MenuID] < it.Quantity {
			return orders.Order{}, &apperr.InsufficientStockError{
				MenuID: it.MenuID, MenuName: f.menus[i].Name, Available: left[it.MenuID], Requested: it.Quantity,
			}
		}
		left[it.MenuID] -= it.Quantity
	}
	for id, n := range left {
		f.menus[idx[id]].Stock = n
	}
	o := orders.Order{
		ID:          int64(len(f.orders) + 1),
		OrderDate:   time.Now().UTC(),
		TotalAmount: req.TotalAmount,
		Status:      orders.StatusReceived,
		Items:       req.Items,
	}
	f.orders = append(f.orders, o)
	if key != "" {
		f.keys[key] = o.ID
	}
	return o, nil
}

func (f *fakeAPI) GetOrder(_ context.Context, id int64) (orders.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id < 1 || id > int64(len(f.orders)) {
		return orders.Order{}, apperr.NotFound("order", id)
	}
	return f.orders[id-1], nil
}

func (f *fakeAPI) ListOrders(_ context.Context, q orders.ListQuery) ([]orders.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []orders.Order{}
	for i := len(f.orders) - 1; i >= 0 && len(out) < q.Limit; i-- {
		if q.Status == "" || f.orders[i].Status == q.Status {
			out = append(out, f.orders[i])
		}
	}
	return out, nil
}

func (f *fakeAPI) UpdateStatus(_ context.Context, id int64, status string) (orders.StatusUpdate, error) {
	st, err := orders.ParseStatus(status)
	if err != nil {
		return orders.StatusUpdate{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if id < 1 || id > int64(len(f.orders)) {
		return orders.StatusUpdate{}, apperr.NotFound("order", id)
	}
	f.orders[id-1].Status = st
	return orders.StatusUpdate{ID: id, Status: st}, nil
}

func (f *fakeAPI) Alerts(context.Context) ([]stockwatch.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []stockwatch.Alert
	for _, m := range f.menus {
		if lvl := stockwatch.Classify(m.Stock); lvl != stockwatch.LevelNormal {
			out = append(out, stockwatch.Alert{MenuID: m.ID, MenuName: m.Name, Stock: m.Stock, Level: lvl})
		}
	}
	return out, nil
}

func startAPI(t *testing.T, items ...menus.MenuItem) (*Client, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{menus: items, keys: map[string]int64{}}
	r := httpx.NewRouter(5 * time.Second)
	(&httpx.MenusHandler{Service: api, Timeout: time.Second}).Register(r)
	(&httpx.OrdersHandler{Service: api, Timeout: time.Second}).Register(r)
	(&httpx.InventoryHandler{Alerts: api, Timeout: time.Second}).Register(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return New(srv.URL, srv.Client()), api
}

func (f *fakeAPI) setStock(menuID int64, stock int) {
	_, _ = f.UpdateStock(context.Background(), menuID, stock)
}

func (f *fakeAPI) setStatus(orderID int64, st orders.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[orderID-1].Status = st
}

func (f *fakeAPI) orderCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}
