package repositories

import (
	"context"
	"time"

	"github.com/zatekoja/patientqueue/internal/domain/entities"
)

// QueueRoomRepository defines the interface for queue room data operations.
// Lookups return (nil, nil) when nothing matches.
type QueueRoomRepository interface {
	Create(ctx context.Context, room *entities.QueueRoom) error
	GetByUUID(ctx context.Context, uuid string) (*entities.QueueRoom, error)
	GetByID(ctx context.Context, id int64) (*entities.QueueRoom, error)

	// ListByQueueAndLocation retrieves rooms serving a queue at a location
	ListByQueueAndLocation(ctx context.Context, queueID int64, locationUUID string, includeVoided bool) ([]*entities.QueueRoom, error)

	// Void soft-deletes a room. Returns a not found error for unknown UUIDs.
	Void(ctx context.Context, uuid, reason string, at time.Time) error

	// Purge removes a room permanently
	Purge(ctx context.Context, id int64) error
}
