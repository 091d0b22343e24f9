package stockwatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-cafe-orders/internal/events"
	kafkax "github.com/ariefcatur/go-cafe-orders/internal/kafka"
	"github.com/ariefcatur/go-cafe-orders/internal/redisx"
)

// Topics the service consumes.
var Topics = []string{events.TopicOrderPlaced, events.TopicStockAdjusted}

type Service struct {
	Store       *AlertStore
	Redis       redis.Cmdable
	ServiceName string
}

// Handle is installed as the consumer handler. Events are applied at most
// once per event id; undecodable messages are logged and skipped.
func (s *Service) Handle(ctx context.Context, m kafkago.Message) error {
	env, err := kafkax.UnmarshalEnvelope(m.Value)
	if err != nil {
		slog.WarnContext(ctx, "skipping undecodable message", "topic", m.Topic, "offset", m.Offset, "err", err)
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	if seen, err := redisx.Exists(ctx, s.Redis, dkey); err != nil {
		return err
	} else if seen {
		return nil
	}

	var levels []events.StockLevel
	switch env.EventType {
	case events.EventOrderPlaced:
		p, err := kafkax.UnwrapPayload[events.OrderPlacedPayload](env.Payload)
		if err != nil {
			slog.WarnContext(ctx, "skipping bad payload", "event_id", env.EventID, "err", err)
			return nil
		}
		levels = p.Stock
	case events.EventStockAdjusted:
		p, err := kafkax.UnwrapPayload[events.StockAdjustedPayload](env.Payload)
		if err != nil {
			slog.WarnContext(ctx, "skipping bad payload", "event_id", env.EventID, "err", err)
			return nil
		}
		levels = []events.StockLevel{p.StockLevel}
	default:
		return nil
	}

	for _, l := range levels {
		if err := s.apply(ctx, l, env.OccurredAt); err != nil {
			return err
		}
	}

	_, err = redisx.MarkOnce(ctx, s.Redis, dkey, redisx.TTLDedup)
	return err
}

func (s *Service) apply(ctx context.Context, l events.StockLevel, at time.Time) error {
	a := Alert{MenuID: l.MenuID, MenuName: l.MenuName, Stock: l.Stock, Level: Classify(l.Stock), ObservedAt: at}
	applied, err := s.Store.Record(ctx, a)
	if err != nil {
		return err
	}
	if applied && a.Level != LevelNormal {
		slog.InfoContext(ctx, "stock alert", "menu_id", a.MenuID, "menu", a.MenuName, "stock", a.Stock, "level", a.Level)
	}
	return nil
}
