package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atlasmedina/medina-backend/pkg/config"
	"github.com/atlasmedina/medina-backend/pkg/enums"
)

// Kind discriminates change-feed events on the orders channel.
type Kind string

const (
	KindOrderInsert Kind = "order_insert"
	KindOrderUpdate Kind = "order_update"
)

// OrderEvent is the JSON payload published for every order row change.
// Update events carry the old and new status so consumers can tell whether
// an order left the pending queue.
type OrderEvent struct {
	Kind        Kind               `json:"kind"`
	OrderID     uuid.UUID          `json:"order_id"`
	OrderNumber string             `json:"order_number"`
	OldStatus   *enums.OrderStatus `json:"old_status,omitempty"`
	NewStatus   enums.OrderStatus  `json:"new_status"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

// CartEvent tells other views holding the same cart token to re-read it.
// It intentionally carries no cart contents.
type CartEvent struct {
	Token      string    `json:"token"`
	OccurredAt time.Time `json:"occurred_at"`
}

type publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// Bus publishes change-feed events over redis pub/sub channels.
type Bus struct {
	pub publisher
	cfg config.EventsConfig
	now func() time.Time
}

// NewBus wires a Bus on top of the shared redis client.
func NewBus(pub publisher, cfg config.EventsConfig) (*Bus, error) {
	if pub == nil {
		return nil, fmt.Errorf("redis publisher required")
	}
	if cfg.OrdersChannel == "" {
		return nil, fmt.Errorf("orders channel required")
	}
	return &Bus{pub: pub, cfg: cfg, now: time.Now}, nil
}

// OrdersChannel returns the channel order events are published on.
func (b *Bus) OrdersChannel() string {
	return b.cfg.OrdersChannel
}

// CartChannel returns the per-token channel for cart-changed signals.
func (b *Bus) CartChannel(token string) string {
	return b.cfg.CartChannelPrefix + ":" + token
}

// PublishOrderInsert announces a freshly created order.
func (b *Bus) PublishOrderInsert(ctx context.Context, orderID uuid.UUID, orderNumber string, status enums.OrderStatus) error {
	return b.publishOrder(ctx, OrderEvent{
		Kind:        KindOrderInsert,
		OrderID:     orderID,
		OrderNumber: orderNumber,
		NewStatus:   status,
	})
}

// PublishOrderUpdate announces a status transition on an existing order.
func (b *Bus) PublishOrderUpdate(ctx context.Context, orderID uuid.UUID, orderNumber string, oldStatus, newStatus enums.OrderStatus) error {
	old := oldStatus
	return b.publishOrder(ctx, OrderEvent{
		Kind:        KindOrderUpdate,
		OrderID:     orderID,
		OrderNumber: orderNumber,
		OldStatus:   &old,
		NewStatus:   newStatus,
	})
}

func (b *Bus) publishOrder(ctx context.Context, event OrderEvent) error {
	event.OccurredAt = b.now().UTC()
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding order event: %w", err)
	}
	return b.pub.Publish(ctx, b.cfg.OrdersChannel, payload)
}

// PublishCartChanged signals that the cart behind the token was rewritten.
func (b *Bus) PublishCartChanged(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("cart token required")
	}
	payload, err := json.Marshal(CartEvent{Token: token, OccurredAt: b.now().UTC()})
	if err != nil {
		return fmt.Errorf("encoding cart event: %w", err)
	}
	return b.pub.Publish(ctx, b.CartChannel(token), payload)
}

// DecodeOrderEvent parses a raw message from the orders channel.
func DecodeOrderEvent(payload []byte) (*OrderEvent, error) {
	var event OrderEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("decoding order event: %w", err)
	}
	if event.Kind != KindOrderInsert && event.Kind != KindOrderUpdate {
		return nil, fmt.Errorf("unknown order event kind %q", event.Kind)
	}
	return &event, nil
}
