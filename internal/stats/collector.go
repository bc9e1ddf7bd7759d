// Package stats keeps running counters of domain activity, fed by the event
// bus rather than by the model itself so the request path never pays for
// bookkeeping.
package stats

import (
	"context"
	"sync"
	"time"

	"github.com/parley-im/parley/internal/bus"
	"go.uber.org/zap"
)

// Counters is a point-in-time snapshot of activity since the daemon started.
type Counters struct {
	UsersCreated         uint64 `json:"users_created"`
	ConversationsCreated uint64 `json:"conversations_created"`
	MessagesCreated      uint64 `json:"messages_created"`
	StatusPolls          uint64 `json:"status_polls"`
}

// Collector subscribes to "chat.*" events on the bus and tallies them.
type Collector struct {
	bus    *bus.Bus
	logger *zap.Logger
	cancel context.CancelFunc

	mu       sync.Mutex
	counters Counters
	started  time.Time
}

// NewCollector creates a collector. It does nothing until Start.
func NewCollector(b *bus.Bus, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		bus:     b,
		logger:  logger,
		started: time.Now(),
	}
}

// Start subscribes to domain events on the bus.
func (c *Collector) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	ch, unsub := c.bus.Subscribe("chat.", 256)

	go func() {
		defer unsub()
		for {
			select {
			case evt := <-ch:
				c.handleEvent(evt)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
}

func (c *Collector) handleEvent(evt bus.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch evt.Kind {
	case "chat.user_created":
		c.counters.UsersCreated++
	case "chat.conversation_created":
		c.counters.ConversationsCreated++
	case "chat.message_created":
		c.counters.MessagesCreated++
	case "chat.status_polled":
		c.counters.StatusPolls++
	default:
		c.logger.Debug("unrecognized event kind", zap.String("kind", evt.Kind))
	}
}

// Snapshot returns the current counter values.
func (c *Collector) Snapshot() Counters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counters
}

// Uptime reports how long the collector has been alive.
func (c *Collector) Uptime() time.Duration {
	return time.Since(c.started)
}
