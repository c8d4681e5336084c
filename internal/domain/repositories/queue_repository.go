package repositories

import (
	"context"
	"time"

	"github.com/zatekoja/patientqueue/internal/domain/entities"
)

// QueueRepository defines the interface for queue data operations.
// Lookups return (nil, nil) when nothing matches.
type QueueRepository interface {
	// Create persists a new queue and sets its ID
	Create(ctx context.Context, queue *entities.Queue) error

	// GetByUUID retrieves a queue by UUID
	GetByUUID(ctx context.Context, uuid string) (*entities.Queue, error)

	// GetByID retrieves a queue by numeric ID
	GetByID(ctx context.Context, id int64) (*entities.Queue, error)

	// ListByLocation retrieves every queue at a location
	ListByLocation(ctx context.Context, locationUUID string, includeVoided bool) ([]*entities.Queue, error)

	// Void soft-deletes a queue. Returns a not found error for unknown UUIDs.
	Void(ctx context.Context, uuid, reason string, at time.Time) error

	// Purge removes a queue permanently
	Purge(ctx context.Context, id int64) error
}

// QueueSearchParams defines queue search input
type QueueSearchParams struct {
	Query        string
	LocationUUID string
	Limit        int
}

// QueueSearchRepository defines the interface for queue full-text search (e.g. Typesense)
type QueueSearchRepository interface {
	// Index adds or replaces a queue document
	Index(ctx context.Context, queue *entities.Queue) error

	// Delete removes a queue document
	Delete(ctx context.Context, uuid string) error

	// Search returns matching queues. Results carry indexed fields only.
	Search(ctx context.Context, params QueueSearchParams) ([]*entities.Queue, error)
}
