// Package queue carries raw events from the discovery paths to the
// reducer over Redis Streams. Delivery is at-least-once with per-chain
// FIFO; transient handler failures are retried in-process with bounded
// backoff, and items that cannot be applied are parked in the
// dead-letter store so the pipeline keeps moving.
package queue

import (
	"context"
	"fmt"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/event"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/model"
)

// Handler applies one delivered event. A nil return finishes the
// delivery. Errors are classified: transient ones are retried with
// backoff, everything else dead-letters the item.
type Handler func(ctx context.Context, ev event.RawEvent) error

// Producer is the write side used by the backfill scanner and the live
// subscriber. Enqueue is synchronous and must not silently drop:
// producers only advance their watermark once the event is queued.
type Producer interface {
	Enqueue(ctx context.Context, ev event.RawEvent) error
}

// Stream entry field names. The full event rides in data; the flat
// fields exist so operators can inspect streams with redis-cli.
const (
	fieldData   = "data"
	fieldChain  = "chain_id"
	fieldEvent  = "event"
	fieldSource = "source"
)

// StreamKey names the ingestion stream for one chain. Separate streams
// keep per-producer ordering and let chains drain independently.
func StreamKey(prefix string, chainID model.ChainID) string {
	return fmt.Sprintf("%s:%d", prefix, chainID)
}
