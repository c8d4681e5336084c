package providers

import (
	"context"

	"github.com/zatekoja/patientqueue/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to queue events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.QueueEvent) error

	// Subscribe subscribes to events on a channel until ctx is done
	Subscribe(ctx context.Context, channel string) (<-chan *entities.QueueEvent, error)

	// Unsubscribe drops every subscriber of a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

const (
	// EventChannelQueueUpdates carries every queue event
	EventChannelQueueUpdates = "queue:updates"

	// EventChannelQueuePrefix is the prefix for queue-specific channels
	EventChannelQueuePrefix = "queue:"
)

// GetQueueChannel returns the channel name for a specific queue
func GetQueueChannel(queueUUID string) string {
	return EventChannelQueuePrefix + queueUUID
}
