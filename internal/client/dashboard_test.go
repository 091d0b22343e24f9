package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-cafe-orders/internal/menus"
	"github.com/ariefcatur/go-cafe-orders/internal/orders"
	"github.com/ariefcatur/go-cafe-orders/internal/stockwatch"
)

func TestDashboard(t *testing.T) {
	c, _ := startAPI(t, menus.MenuItem{ID: 1, Name: "Caffe Latte", Price: 5000, Stock: 10})
	ctx := context.Background()
	req := orders.PlaceOrderRequest{
		Items:       []orders.LineItem{{MenuID: 1, MenuName: "Caffe Latte", Quantity: 2, Price: 5000}},
		TotalAmount: 10000,
	}
	for i := 0; i < 3; i++ {
		_, err := c.PlaceOrder(ctx, req, "")
		require.NoError(t, err)
	}

	d := NewDashboard(c)
	require.NoError(t, d.Load(ctx, ""))
	assert.Equal(t, orders.Stats{Total: 3, Received: 3}, d.Stats)

	require.NoError(t, d.Advance(ctx, d.Orders[0].ID))
	assert.Equal(t, orders.Stats{Total: 3, Received: 2, InProgress: 1}, d.Stats)

	require.NoError(t, d.Load(ctx, orders.StatusInProgress))
	assert.Len(t, d.Orders, 1)
	assert.Equal(t, orders.Stats{Total: 1, InProgress: 1}, d.Stats)

	require.NoError(t, d.LoadInventory(ctx))
	require.Len(t, d.Menus, 1)
	assert.Equal(t, 4, d.Menus[0].Stock)
	require.Len(t, d.Alerts, 1)
	assert.Equal(t, stockwatch.LevelLow, d.Alerts[0].Level)

	require.NoError(t, d.SetStock(ctx, 1, 0))
	assert.Equal(t, 0, d.Menus[0].Stock)
}
