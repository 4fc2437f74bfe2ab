package events

import "context"

// Publisher sends domain events to an external stream. Implementations must
// be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event any) error
}

// NoopPublisher discards all events. Used when outbound events are disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, event any) error {
	return nil
}
