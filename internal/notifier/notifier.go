// Package notifier fans out state-change notifications to in-process
// subscribers and optionally mirrors them to Redis Pub/Sub for external
// consumers. Publishing never fails the caller: handler errors and
// panics are isolated, and the bridge is best-effort.
package notifier

import (
	"context"
	"encoding/json"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/metrics"
)

// Channels published by the reducer and the reconciliation audit.
const (
	ChannelStrategyCreated   = "strategy:created"
	ChannelStrategyUpdated   = "strategy:updated"
	ChannelStrategyPaused    = "strategy:paused"
	ChannelStrategyResumed   = "strategy:resumed"
	ChannelStrategyDeleted   = "strategy:deleted"
	ChannelRebalanceExecuted = "rebalance:executed"
	ChannelRebalanceFailed   = "rebalance:failed"
	ChannelSwapExecuted      = "swap:executed"
	ChannelGasPriceUpdated   = "gas:price-updated"
	ChannelSystemAlert       = "system:alert"
)

// SourceSystem marks notifications that originate inside the indexer
// rather than from a chain event.
const SourceSystem = "system"

// Notification is the envelope delivered to subscribers and mirrored to
// the bridge. Fields carry the kind-specific payload.
type Notification struct {
	Channel   string         `json:"channel"`
	Source    string         `json:"source"`
	Timestamp time.Time      `json:"timestamp"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// HandlerFunc consumes one notification. Errors are logged and counted,
// never propagated to the publisher.
type HandlerFunc func(ctx context.Context, n Notification) error

// Subscription identifies one registered handler.
type Subscription struct {
	ID      uuid.UUID
	Channel string
}

// Bridge mirrors notifications outside the process.
type Bridge interface {
	Publish(ctx context.Context, channel string, payload []byte)
}

type Notifier struct {
	mu     sync.RWMutex
	subs   map[string]map[uuid.UUID]HandlerFunc
	bridge Bridge
	logger *slog.Logger
}

type Option func(*Notifier)

// WithBridge mirrors every publish to an external transport.
func WithBridge(b Bridge) Option {
	return func(n *Notifier) { n.bridge = b }
}

func New(logger *slog.Logger, opts ...Option) *Notifier {
	n := &Notifier{
		subs:   make(map[string]map[uuid.UUID]HandlerFunc),
		logger: logger.With("component", "notifier"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Subscribe registers a handler for one channel. The returned handle is
// the only way to remove it again.
func (n *Notifier) Subscribe(channel string, h HandlerFunc) Subscription {
	sub := Subscription{ID: uuid.New(), Channel: channel}

	n.mu.Lock()
	if n.subs[channel] == nil {
		n.subs[channel] = make(map[uuid.UUID]HandlerFunc)
	}
	n.subs[channel][sub.ID] = h
	count := len(n.subs[channel])
	n.mu.Unlock()

	metrics.NotifierSubscribers.WithLabelValues(channel).Set(float64(count))
	return sub
}

func (n *Notifier) Unsubscribe(sub Subscription) {
	n.mu.Lock()
	count := 0
	if handlers, ok := n.subs[sub.Channel]; ok {
		delete(handlers, sub.ID)
		count = len(handlers)
		if count == 0 {
			delete(n.subs, sub.Channel)
		}
	}
	n.mu.Unlock()

	metrics.NotifierSubscribers.WithLabelValues(sub.Channel).Set(float64(count))
}

// Publish delivers to every subscriber of the channel, then mirrors to
// the bridge. Handlers run sequentially; a failing one never affects
// its siblings or the caller.
func (n *Notifier) Publish(ctx context.Context, channel, source string, fields map[string]any) {
	note := Notification{
		Channel:   channel,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Fields:    fields,
	}

	n.mu.RLock()
	handlers := make([]HandlerFunc, 0, len(n.subs[channel]))
	for _, h := range n.subs[channel] {
		handlers = append(handlers, h)
	}
	n.mu.RUnlock()

	metrics.NotifierPublishedTotal.WithLabelValues(channel).Inc()

	for _, h := range handlers {
		n.invoke(ctx, h, note)
	}

	if n.bridge != nil {
		payload, err := json.Marshal(note)
		if err != nil {
			n.logger.Warn("notification not mirrorable", "channel", channel, "error", err)
			return
		}
		n.bridge.Publish(ctx, channel, payload)
	}
}

func (n *Notifier) invoke(ctx context.Context, h HandlerFunc, note Notification) {
	defer func() {
		if r := recover(); r != nil {
			metrics.NotifierHandlerFailures.WithLabelValues(note.Channel).Inc()
			n.logger.Error("notification handler panicked",
				"channel", note.Channel, "panic", r, "stack", string(debug.Stack()))
		}
	}()

	if err := h(ctx, note); err != nil {
		metrics.NotifierHandlerFailures.WithLabelValues(note.Channel).Inc()
		n.logger.Warn("notification handler failed", "channel", note.Channel, "error", err)
	}
}
