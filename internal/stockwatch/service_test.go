package stockwatch

import (
	"context"
	"fmt"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-cafe-orders/internal/events"
	kafkax "github.com/ariefcatur/go-cafe-orders/internal/kafka"
	"github.com/ariefcatur/go-cafe-orders/internal/redisx"
)

func message(t *testing.T, env events.Envelope) kafkago.Message {
	t.Helper()
	b, headers, err := kafkax.EnvelopeMessage(env)
	require.NoError(t, err)
	return kafkago.Message{Value: b, Headers: headers}
}

func TestService_Handle(t *testing.T) {
	rdb, mr := setupRedis(t)
	svc := &Service{Store: NewAlertStore(rdb), Redis: rdb, ServiceName: "stockwatch"}
	ctx := context.Background()

	placed, err := events.New(events.EventOrderPlaced, "cafe-api", "order-1", events.OrderPlacedPayload{
		OrderID: 1,
		Stock: []events.StockLevel{
			{MenuID: 1, MenuName: "Americano (Iced)", Stock: 0},
			{MenuID: 2, MenuName: "Caffe Latte", Stock: 4},
			{MenuID: 3, MenuName: "Caffe Mocha", Stock: 9},
		},
	})
	require.NoError(t, err)
	require.NoError(t, svc.Handle(ctx, message(t, placed)))

	alerts, err := svc.Store.Alerts(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, LevelSoldOut, alerts[0].Level)
	assert.Equal(t, LevelLow, alerts[1].Level)
	assert.True(t, mr.Exists(fmt.Sprintf(redisx.KeyDedup, "stockwatch", placed.EventID)))

	restock, err := events.New(events.EventStockAdjusted, "cafe-api", "menu-1",
		events.StockAdjustedPayload{StockLevel: events.StockLevel{MenuID: 1, MenuName: "Americano (Iced)", Stock: 10}})
	require.NoError(t, err)
	restock.OccurredAt = placed.OccurredAt.Add(time.Second)
	require.NoError(t, svc.Handle(ctx, message(t, restock)))

	alerts, err = svc.Store.Alerts(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, int64(2), alerts[0].MenuID)

	// redelivery of the first event is a no-op
	require.NoError(t, svc.Handle(ctx, message(t, placed)))
	alerts, err = svc.Store.Alerts(ctx)
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
}

func TestService_HandleSkipsJunk(t *testing.T) {
	rdb, _ := setupRedis(t)
	svc := &Service{Store: NewAlertStore(rdb), Redis: rdb, ServiceName: "stockwatch"}
	ctx := context.Background()

	assert.NoError(t, svc.Handle(ctx, kafkago.Message{Value: []byte("{")}))

	other, err := events.New(events.EventOrderStatusChanged, "cafe-api", "order-1",
		events.OrderStatusChangedPayload{OrderID: 1, Status: "completed"})
	require.NoError(t, err)
	assert.NoError(t, svc.Handle(ctx, message(t, other)))

	alerts, err := svc.Store.Alerts(ctx)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}
