package client

import (
	"context"

	"github.com/ariefcatur/go-cafe-orders/internal/menus"
	"github.com/ariefcatur/go-cafe-orders/internal/orders"
	"github.com/ariefcatur/go-cafe-orders/internal/stockwatch"
)

// Dashboard is the staff view. Stats are always computed from Orders as
// loaded, never fetched separately.
type Dashboard struct {
	api    *Client
	filter orders.Status

	Orders []orders.Order
	Stats  orders.Stats
	Menus  []menus.MenuItem
	Alerts []stockwatch.Alert
}

func NewDashboard(api *Client) *Dashboard {
	return &Dashboard{api: api}
}

// Load fetches orders with the given status filter (empty for all) and
// recomputes the stats.
func (d *Dashboard) Load(ctx context.Context, status orders.Status) error {
	list, err := d.api.Orders(ctx, status, 0)
	if err != nil {
		return err
	}
	d.filter = status
	d.Orders = list
	d.Stats = orders.ComputeStats(list)
	return nil
}

// LoadInventory fetches the catalog and the stock alert board.
func (d *Dashboard) LoadInventory(ctx context.Context) error {
	items, err := d.api.Menus(ctx)
	if err != nil {
		return err
	}
	alerts, err := d.api.Alerts(ctx)
	if err != nil {
		return err
	}
	d.Menus = items
	d.Alerts = alerts
	return nil
}

// Advance moves an order one step forward and reloads the order list.
func (d *Dashboard) Advance(ctx context.Context, orderID int64) error {
	if _, err := d.api.AdvanceOrder(ctx, orderID); err != nil {
		return err
	}
	return d.Load(ctx, d.filter)
}

// SetStock overwrites a menu's stock and reloads the catalog.
func (d *Dashboard) SetStock(ctx context.Context, menuID int64, stock int) error {
	if _, err := d.api.UpdateStock(ctx, menuID, stock); err != nil {
		return err
	}
	items, err := d.api.Menus(ctx)
	if err != nil {
		return err
	}
	d.Menus = items
	return nil
}
