package menus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ariefcatur/go-cafe-orders/internal/apperr"
	"github.com/ariefcatur/go-cafe-orders/internal/events"
)

type Store interface {
	ListMenus(ctx context.Context) ([]MenuItem, error)
	GetMenu(ctx context.Context, id int64) (MenuItem, error)
	UpdateStock(ctx context.Context, id int64, stock int) (StockUpdate, error)
}

type Service struct {
	store     Store
	cache     Cache
	publisher events.Publisher
	producer  string
	sfg       singleflight.Group
	gen       atomic.Int64 // local invalidations, keys in-process loads
}

func NewService(store Store, cache Cache, publisher events.Publisher, producer string) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{store: store, cache: cache, publisher: publisher, producer: producer}
}

// fillTimeout bounds a shared catalog load. The load runs detached from the
// caller that started it.
const fillTimeout = 5 * time.Second

// ListMenus serves the catalog from cache when possible. Cache failures are
// logged and the read falls through to the store. Concurrent misses share one
// load per generation, so a read that starts after Invalidate never joins a
// load that started before it.
func (s *Service) ListMenus(ctx context.Context) ([]MenuItem, error) {
	var gen int64
	cached := false
	if s.cache != nil {
		g, err := s.cache.Generation(ctx)
		if err != nil {
			slog.WarnContext(ctx, "menu cache generation failed", "err", err)
		} else {
			gen, cached = g, true
		}
	}

	flight := fmt.Sprintf("menus:%d:%d", s.gen.Load(), gen)
	v, err, _ := s.sfg.Do(flight, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fillTimeout)
		defer cancel()
		return s.load(fctx, gen, cached)
	})
	if err != nil {
		return nil, err
	}
	return v.([]MenuItem), nil
}

func (s *Service) load(ctx context.Context, gen int64, cached bool) ([]MenuItem, error) {
	if cached {
		items, err := s.cache.Get(ctx)
		if err == nil {
			return items, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			slog.WarnContext(ctx, "menu cache get failed", "err", err)
		}
	}

	items, err := s.store.ListMenus(ctx)
	if err != nil {
		return nil, err
	}
	if cached {
		if ok, err := s.cache.Set(ctx, gen, items); err != nil {
			slog.WarnContext(ctx, "menu cache set failed", "err", err)
		} else if !ok {
			slog.DebugContext(ctx, "menu cache set skipped, catalog invalidated during load", "generation", gen)
		}
	}
	return items, nil
}

func (s *Service) GetMenu(ctx context.Context, id int64) (MenuItem, error) {
	return s.store.GetMenu(ctx, id)
}

func (s *Service) UpdateStock(ctx context.Context, id int64, stock int) (StockUpdate, error) {
	if stock < 0 {
		return StockUpdate{}, apperr.Invalid("stock_non_negative", "stock must be a non-negative integer")
	}
	u, err := s.store.UpdateStock(ctx, id, stock)
	if err != nil {
		return StockUpdate{}, err
	}
	s.Invalidate(ctx)

	level := events.StockLevel{MenuID: u.ID, MenuName: u.Name, Stock: u.Stock}
	s.publish(ctx, events.TopicStockAdjusted, events.MenuKey(u.ID), events.EventStockAdjusted,
		events.StockAdjustedPayload{StockLevel: level})
	return u, nil
}

// Invalidate drops the cached catalog so the next read sees current stock.
func (s *Service) Invalidate(ctx context.Context) {
	s.gen.Add(1)
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(context.WithoutCancel(ctx)); err != nil {
		slog.WarnContext(ctx, "menu cache invalidate failed", "err", err)
	}
}

func (s *Service) publish(ctx context.Context, topic string, key []byte, eventType string, payload any) {
	env, err := events.New(eventType, s.producer, string(key), payload)
	if err == nil {
		err = s.publisher.PublishEvent(topic, key, events.WithTrace(ctx, env))
	}
	if err != nil {
		slog.WarnContext(ctx, "publish event failed", "event", eventType, "err", err)
	}
}
