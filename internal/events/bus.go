// Package events is the change-notification fan-out used by catalog
// subscriptions and cart sync. Publishers fire after every write; each
// subscriber gets its own channel that closes when its context ends.
package events

import "context"

// Bus publishes payloads to named topics and delivers them to live
// subscribers. Delivery is best-effort fan-out: subscribers re-read
// authoritative state on every notification, so a dropped message only
// delays convergence until the next one.
type Bus interface {
	Publish(ctx context.Context, topic string, payload []byte) error

	// Subscribe returns a channel of payloads for topic. The channel is
	// closed once ctx is canceled; no sends happen after that.
	Subscribe(ctx context.Context, topic string) (<-chan []byte, error)
}
