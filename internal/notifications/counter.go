package notifications

import (
	"sync"

	"github.com/atlasmedina/medina-backend/pkg/enums"
	"github.com/atlasmedina/medina-backend/pkg/events"
)

// Counter tracks the number of pending orders for the back-office badge.
// It is advanced by the order change feed and re-derived from the database
// whenever the feed (re)connects, so transient drift heals on its own.
type Counter struct {
	mu      sync.Mutex
	pending int64
}

// NewCounter builds an empty counter.
func NewCounter() *Counter {
	return &Counter{}
}

// Value returns the current pending count.
func (c *Counter) Value() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Resync replaces the count with an authoritative value.
func (c *Counter) Resync(pending int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pending < 0 {
		pending = 0
	}
	c.pending = pending
}

// Apply folds one order event into the count. Inserting a pending order
// raises it; an update leaving pending lowers it, floored at zero.
func (c *Counter) Apply(event *events.OrderEvent) {
	if event == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch event.Kind {
	case events.KindOrderInsert:
		if event.NewStatus == enums.OrderStatusPending {
			c.pending++
		}

	case events.KindOrderUpdate:
		if event.OldStatus == nil {
			return
		}
		wasPending := *event.OldStatus == enums.OrderStatusPending
		isPending := event.NewStatus == enums.OrderStatusPending

		switch {
		case wasPending && !isPending:
			if c.pending > 0 {
				c.pending--
			}
		case !wasPending && isPending:
			c.pending++
		}
	}
}
