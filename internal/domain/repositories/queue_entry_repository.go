package repositories

import (
	"context"
	"time"

	"github.com/zatekoja/patientqueue/internal/domain/criteria"
	"github.com/zatekoja/patientqueue/internal/domain/entities"
)

// QueueEntryRepository defines the interface for queue entry data operations
type QueueEntryRepository interface {
	// Create persists a new entry and sets its ID
	Create(ctx context.Context, entry *entities.QueueEntry) error

	// GetByUUID retrieves an entry by UUID, or (nil, nil) when absent
	GetByUUID(ctx context.Context, uuid string) (*entities.QueueEntry, error)

	// Update saves status, priority, sort weight and end time
	Update(ctx context.Context, entry *entities.QueueEntry) error

	// Void soft-deletes an entry. Returns a not found error for unknown UUIDs.
	Void(ctx context.Context, uuid, reason string, at time.Time) error

	// Find returns entries matching the predicate ordered by start time.
	// Fields are the entities.QueueEntryField* names.
	Find(ctx context.Context, where criteria.Predicate) ([]*entities.QueueEntry, error)
}
