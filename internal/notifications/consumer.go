package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/atlasmedina/medina-backend/pkg/events"
	"github.com/atlasmedina/medina-backend/pkg/logger"
)

const reconnectDelay = 5 * time.Second

type subscriber interface {
	Subscribe(ctx context.Context, channels ...string) (*redis.PubSub, error)
}

type pendingSource interface {
	CountPending(ctx context.Context) (int64, error)
}

// Consumer follows the order change feed and keeps the badge counter fresh.
type Consumer struct {
	sub     subscriber
	channel string
	orders  pendingSource
	counter *Counter
	logg    *logger.Logger
}

// NewConsumer builds a badge consumer for the given orders channel.
func NewConsumer(sub subscriber, channel string, orders pendingSource, counter *Counter, logg *logger.Logger) (*Consumer, error) {
	if sub == nil {
		return nil, fmt.Errorf("subscriber required")
	}
	if channel == "" {
		return nil, fmt.Errorf("orders channel required")
	}
	if orders == nil {
		return nil, fmt.Errorf("pending source required")
	}
	if counter == nil {
		return nil, fmt.Errorf("counter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{sub: sub, channel: channel, orders: orders, counter: counter, logg: logg}, nil
}

// Run follows the feed until the context is canceled, reconnecting with a
// fixed delay. Every (re)connect resyncs the counter from the database
// before applying live events.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		if err := c.runOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logg.Error(ctx, "order feed dropped, reconnecting", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

func (c *Consumer) runOnce(ctx context.Context) error {
	pubsub, err := c.sub.Subscribe(ctx, c.channel)
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", c.channel, err)
	}
	defer func() { _ = pubsub.Close() }()

	if err := c.resync(ctx); err != nil {
		return err
	}
	c.logg.Info(ctx, "order feed connected")

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return fmt.Errorf("order feed channel closed")
			}
			c.Handle(ctx, []byte(msg.Payload))
		}
	}
}

// Handle folds one raw feed payload into the counter. Undecodable payloads
// are dropped; the next resync corrects any loss.
func (c *Consumer) Handle(ctx context.Context, payload []byte) {
	event, err := events.DecodeOrderEvent(payload)
	if err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "payload_bytes", len(payload)), "dropping undecodable order event")
		return
	}
	c.counter.Apply(event)
}

func (c *Consumer) resync(ctx context.Context) error {
	pending, err := c.orders.CountPending(ctx)
	if err != nil {
		return fmt.Errorf("resyncing pending count: %w", err)
	}
	c.counter.Resync(pending)
	return nil
}
