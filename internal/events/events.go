package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventStockAdjusted      = "StockAdjusted"
)

const Version = 1

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// New wraps payload in a fresh v1 envelope.
func New(eventType, producer, correlationID string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  Version,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: correlationID,
		Payload:       raw,
	}, nil
}

// WithTrace stamps env with the trace id of the span carried by ctx, if any.
func WithTrace(ctx context.Context, env Envelope) Envelope {
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		env.TraceID = sc.TraceID().String()
	}
	return env
}

// ---- payloads ----

type Options struct {
	AddShot  bool `json:"addShot"`
	AddSyrup bool `json:"addSyrup"`
}

type OrderLine struct {
	MenuID    int64   `json:"menu_id"`
	MenuName  string  `json:"menu_name"`
	Quantity  int     `json:"quantity"`
	UnitPrice int64   `json:"unit_price"`
	Options   Options `json:"options"`
}

// StockLevel is the stock of a menu right after the event was committed.
type StockLevel struct {
	MenuID   int64  `json:"menu_id"`
	MenuName string `json:"menu_name"`
	Stock    int    `json:"stock"`
}

type OrderPlacedPayload struct {
	OrderID     int64        `json:"order_id"`
	TotalAmount int64        `json:"total_amount"`
	Items       []OrderLine  `json:"items"`
	Stock       []StockLevel `json:"stock"`
}

type OrderStatusChangedPayload struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}

type StockAdjustedPayload struct {
	StockLevel
}

// Publisher ships envelopes to a topic. Implementations must not block on the
// broker; the caller has already committed its transaction.
type Publisher interface {
	PublishEvent(topic string, key []byte, env Envelope) error
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) PublishEvent(string, []byte, Envelope) error { return nil }
