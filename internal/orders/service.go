package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-cafe-orders/internal/apperr"
	"github.com/ariefcatur/go-cafe-orders/internal/events"
	"github.com/ariefcatur/go-cafe-orders/internal/redisx"
)

const idemPending = "pending"

type Store interface {
	PlaceOrderTx(ctx context.Context, req PlaceOrderRequest, verifyTotals bool) (Placement, error)
	GetOrder(ctx context.Context, id int64) (Order, error)
	ListOrders(ctx context.Context, q ListQuery) ([]Order, error)
	UpdateStatus(ctx context.Context, id int64, s Status) (StatusUpdate, error)
}

// CatalogCache is the part of the menu service placement needs: dropping the
// cached catalog once stock has moved.
type CatalogCache interface {
	Invalidate(ctx context.Context)
}

type ServiceConfig struct {
	Producer     string
	VerifyTotals bool
}

type Service struct {
	store     Store
	rdb       redis.Cmdable
	catalog   CatalogCache
	publisher events.Publisher
	cfg       ServiceConfig
}

// NewService wires the order service. rdb and catalog may be nil; without
// rdb idempotency keys are ignored.
func NewService(store Store, rdb redis.Cmdable, catalog CatalogCache, publisher events.Publisher, cfg ServiceConfig) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{store: store, rdb: rdb, catalog: catalog, publisher: publisher, cfg: cfg}
}

// PlaceOrder validates req, runs the placement transaction and announces the
// result. With a non-empty idempotencyKey a repeated request returns the
// order created by the first one.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest, idempotencyKey string) (Order, error) {
	if err := ValidatePlaceOrder(req); err != nil {
		return Order{}, err
	}

	claimed := false
	if idempotencyKey != "" && s.rdb != nil {
		o, replayed, ok, err := s.claim(ctx, idempotencyKey)
		if err != nil || replayed {
			return o, err
		}
		claimed = ok
	}

	p, err := s.store.PlaceOrderTx(ctx, req, s.cfg.VerifyTotals)
	if err != nil {
		if claimed {
			s.release(ctx, idempotencyKey)
		}
		return Order{}, err
	}
	if claimed {
		s.remember(ctx, idempotencyKey, p.Order.ID)
	}
	if s.catalog != nil {
		s.catalog.Invalidate(ctx)
	}

	s.publish(ctx, events.TopicOrderPlaced, events.OrderKey(p.Order.ID), events.EventOrderPlaced, placedPayload(p))
	return p.Order, nil
}

// claim reserves an idempotency key. replayed is true when the key already
// maps to an order, which is returned. ok is false when Redis could not be
// used and the placement proceeds unguarded.
func (s *Service) claim(ctx context.Context, idempotencyKey string) (o Order, replayed, ok bool, err error) {
	key := fmt.Sprintf(redisx.KeyIdemOrderPlace, idempotencyKey)
	first, err := redisx.MarkOnceValue(ctx, s.rdb, key, idemPending, redisx.TTLIdempotency)
	if err != nil {
		slog.WarnContext(ctx, "idempotency claim failed", "key", idempotencyKey, "err", err)
		return Order{}, false, false, nil
	}
	if first {
		return Order{}, false, true, nil
	}

	v, err := s.rdb.Get(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		slog.WarnContext(ctx, "idempotency lookup failed", "key", idempotencyKey, "err", err)
		return Order{}, false, false, nil
	}
	id, perr := strconv.ParseInt(v, 10, 64)
	if v == idemPending || errors.Is(err, redis.Nil) || perr != nil {
		return Order{}, false, false, &apperr.ConflictError{Message: "an order with this idempotency key is already in progress"}
	}
	o, err = s.store.GetOrder(ctx, id)
	return o, true, false, err
}

// remember points the claimed key at the new order. If that fails the claim
// is dropped so a retry is not answered with a conflict for a day.
func (s *Service) remember(ctx context.Context, idempotencyKey string, orderID int64) {
	key := fmt.Sprintf(redisx.KeyIdemOrderPlace, idempotencyKey)
	if err := s.rdb.Set(context.WithoutCancel(ctx), key, orderID, redisx.TTLIdempotency).Err(); err != nil {
		slog.WarnContext(ctx, "idempotency store failed", "order_id", orderID, "err", err)
		s.release(ctx, idempotencyKey)
	}
}

func (s *Service) release(ctx context.Context, idempotencyKey string) {
	key := fmt.Sprintf(redisx.KeyIdemOrderPlace, idempotencyKey)
	if err := s.rdb.Del(context.WithoutCancel(ctx), key).Err(); err != nil {
		slog.WarnContext(ctx, "idempotency release failed", "key", idempotencyKey, "err", err)
	}
}

func (s *Service) GetOrder(ctx context.Context, id int64) (Order, error) {
	return s.store.GetOrder(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context, q ListQuery) ([]Order, error) {
	return s.store.ListOrders(ctx, q)
}

// UpdateStatus overwrites an order's status with any canonical value.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) (StatusUpdate, error) {
	st, err := ParseStatus(status)
	if err != nil {
		return StatusUpdate{}, err
	}
	u, err := s.store.UpdateStatus(ctx, id, st)
	if err != nil {
		return StatusUpdate{}, err
	}
	s.publish(ctx, events.TopicOrderStatusChanged, events.OrderKey(u.ID), events.EventOrderStatusChanged,
		events.OrderStatusChangedPayload{OrderID: u.ID, Status: string(u.Status)})
	return u, nil
}

func (s *Service) publish(ctx context.Context, topic string, key []byte, eventType string, payload any) {
	env, err := events.New(eventType, s.cfg.Producer, string(key), payload)
	if err == nil {
		err = s.publisher.PublishEvent(topic, key, events.WithTrace(ctx, env))
	}
	if err != nil {
		slog.WarnContext(ctx, "publish event failed", "event", eventType, "err", err)
	}
}

func placedPayload(p Placement) events.OrderPlacedPayload {
	out := events.OrderPlacedPayload{
		OrderID:     p.Order.ID,
		TotalAmount: p.Order.TotalAmount,
		Items:       make([]events.OrderLine, 0, len(p.Order.Items)),
		Stock:       make([]events.StockLevel, 0, len(p.Stock)),
	}
	for _, it := range p.Order.Items {
		out.Items = append(out.Items, events.OrderLine{
			MenuID:    it.MenuID,
			MenuName:  it.MenuName,
			Quantity:  it.Quantity,
			UnitPrice: it.Price,
			Options:   events.Options(it.Options),
		})
	}
	for _, st := range p.Stock {
		out.Stock = append(out.Stock, events.StockLevel{MenuID: st.MenuID, MenuName: st.MenuName, Stock: st.Stock})
	}
	return out
}
