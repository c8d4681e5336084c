// Package memory holds process-local repositories used by the memory storage
// driver and by service tests. Every method returns copies so callers never
// share state with the store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/zatekoja/patientqueue/internal/domain/entities"
	"github.com/zatekoja/patientqueue/internal/domain/repositories"
	apperrors "github.com/zatekoja/patientqueue/pkg/errors"
)

// QueueRepository is an in-memory QueueRepository
type QueueRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*entities.Queue
	rooms   *QueueRoomRepository
	entries *QueueEntryRepository
}

var _ repositories.QueueRepository = (*QueueRepository)(nil)

// NewQueueRepository creates an empty store
func NewQueueRepository() *QueueRepository {
	return &QueueRepository{byID: make(map[int64]*entities.Queue)}
}

// ReferencedBy makes Purge refuse queues that still have rooms or entries,
// like the foreign keys do in PostgreSQL. Either store may be nil.
func (r *QueueRepository) ReferencedBy(rooms *QueueRoomRepository, entries *QueueEntryRepository) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms = rooms
	r.entries = entries
}

// Create stores the queue and assigns its ID
func (r *QueueRepository) Create(ctx context.Context, queue *entities.Queue) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if existing.UUID == queue.UUID {
			return apperrors.NewConflictError("failed to create queue: duplicate record", nil)
		}
	}

	r.nextID++
	queue.ID = r.nextID
	stored := *queue
	r.byID[stored.ID] = &stored
	return nil
}

// GetByUUID returns a copy of the queue, or nil when absent
func (r *QueueRepository) GetByUUID(ctx context.Context, uuid string) (*entities.Queue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, q := range r.byID {
		if q.UUID == uuid {
			c := *q
			return &c, nil
		}
	}
	return nil, nil
}

// GetByID returns a copy of the queue, or nil when absent
func (r *QueueRepository) GetByID(ctx context.Context, id int64) (*entities.Queue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	c := *q
	return &c, nil
}

// ListByLocation returns queues at a location ordered by name
func (r *QueueRepository) ListByLocation(ctx context.Context, locationUUID string, includeVoided bool) ([]*entities.Queue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	queues := []*entities.Queue{}
	for _, q := range r.byID {
		if q.LocationUUID != locationUUID || (q.Voided && !includeVoided) {
			continue
		}
		c := *q
		queues = append(queues, &c)
	}
	sort.Slice(queues, func(i, j int) bool {
		if queues[i].Name != queues[j].Name {
			return queues[i].Name < queues[j].Name
		}
		return queues[i].ID < queues[j].ID
	})
	return queues, nil
}

// Void soft-deletes the queue
func (r *QueueRepository) Void(ctx context.Context, uuid, reason string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, q := range r.byID {
		if q.UUID == uuid {
			voidedAt := at
			q.Voided = true
			q.VoidReason = &reason
			q.DateVoided = &voidedAt
			q.UpdatedAt = at
			return nil
		}
	}
	return apperrors.NewNotFoundError("queue not found")
}

// Purge removes the queue unless something still references it
func (r *QueueRepository) Purge(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return apperrors.NewNotFoundError("queue not found")
	}
	referenced := (r.rooms != nil && r.rooms.countForQueue(id) > 0) ||
		(r.entries != nil && r.entries.countForQueue(id) > 0)
	if referenced {
		return apperrors.NewConflictError("failed to purge queue: still referenced by other records", nil)
	}
	delete(r.byID, id)
	return nil
}
