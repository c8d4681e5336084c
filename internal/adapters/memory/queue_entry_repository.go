package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/zatekoja/patientqueue/internal/domain/criteria"
	"github.com/zatekoja/patientqueue/internal/domain/entities"
	"github.com/zatekoja/patientqueue/internal/domain/repositories"
	apperrors "github.com/zatekoja/patientqueue/pkg/errors"
)

// QueueEntryRepository is an in-memory QueueEntryRepository. Find evaluates
// predicates with SQL NULL semantics so results match the PostgreSQL adapter.
type QueueEntryRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*entities.QueueEntry
}

var _ repositories.QueueEntryRepository = (*QueueEntryRepository)(nil)

// NewQueueEntryRepository creates an empty store
func NewQueueEntryRepository() *QueueEntryRepository {
	return &QueueEntryRepository{byID: make(map[int64]*entities.QueueEntry)}
}

// Create stores the entry and assigns its ID
func (r *QueueEntryRepository) Create(ctx context.Context, entry *entities.QueueEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if existing.UUID == entry.UUID {
			return apperrors.NewConflictError("failed to create queue entry: duplicate record", nil)
		}
	}

	r.nextID++
	entry.ID = r.nextID
	r.byID[entry.ID] = copyEntry(entry)
	return nil
}

// GetByUUID returns a copy of the entry, or nil when absent
func (r *QueueEntryRepository) GetByUUID(ctx context.Context, uuid string) (*entities.QueueEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e := r.findByUUID(uuid); e != nil {
		return copyEntry(e), nil
	}
	return nil, nil
}

// Update overwrites the mutable fields of an existing entry
func (r *QueueEntryRepository) Update(ctx context.Context, entry *entities.QueueEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.findByUUID(entry.UUID)
	if e == nil {
		return apperrors.NewNotFoundError("queue entry not found")
	}
	updated := copyEntry(entry)
	e.StatusUUID = updated.StatusUUID
	e.PriorityUUID = updated.PriorityUUID
	e.SortWeight = updated.SortWeight
	e.EndedAt = updated.EndedAt
	e.UpdatedAt = updated.UpdatedAt
	return nil
}

// Void soft-deletes the entry
func (r *QueueEntryRepository) Void(ctx context.Context, uuid, reason string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.findByUUID(uuid)
	if e == nil {
		return apperrors.NewNotFoundError("queue entry not found")
	}
	voidedAt := at
	e.Voided = true
	e.VoidReason = &reason
	e.DateVoided = &voidedAt
	e.UpdatedAt = at
	return nil
}

// Find returns entries matching the predicate, ordered by start time
func (r *QueueEntryRepository) Find(ctx context.Context, where criteria.Predicate) ([]*entities.QueueEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := []*entities.QueueEntry{}
	for _, e := range r.byID {
		ok, err := criteria.Matches(where, e)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
		if ok {
			entries = append(entries, copyEntry(e))
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].StartedAt.Equal(entries[j].StartedAt) {
			return entries[i].StartedAt.Before(entries[j].StartedAt)
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}

func (r *QueueEntryRepository) countForQueue(queueID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, e := range r.byID {
		if e.QueueID == queueID {
			n++
		}
	}
	return n
}

func (r *QueueEntryRepository) findByUUID(uuid string) *entities.QueueEntry {
	for _, e := range r.byID {
		if e.UUID == uuid {
			return e
		}
	}
	return nil
}

// copyEntry deep-copies the pointer fields as well
func copyEntry(e *entities.QueueEntry) *entities.QueueEntry {
	c := *e
	if e.EndedAt != nil {
		t := *e.EndedAt
		c.EndedAt = &t
	}
	if e.PriorityUUID != nil {
		p := *e.PriorityUUID
		c.PriorityUUID = &p
	}
	if e.VoidReason != nil {
		v := *e.VoidReason
		c.VoidReason = &v
	}
	if e.DateVoided != nil {
		d := *e.DateVoided
		c.DateVoided = &d
	}
	return &c
}
