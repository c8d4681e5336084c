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

// QueueRoomRepository is an in-memory QueueRoomRepository
type QueueRoomRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*entities.QueueRoom
}

var _ repositories.QueueRoomRepository = (*QueueRoomRepository)(nil)

// NewQueueRoomRepository creates an empty store
func NewQueueRoomRepository() *QueueRoomRepository {
	return &QueueRoomRepository{byID: make(map[int64]*entities.QueueRoom)}
}

// Create stores the room and assigns its ID
func (r *QueueRoomRepository) Create(ctx context.Context, room *entities.QueueRoom) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if existing.UUID == room.UUID {
			return apperrors.NewConflictError("failed to create queue room: duplicate record", nil)
		}
	}

	r.nextID++
	room.ID = r.nextID
	stored := *room
	r.byID[stored.ID] = &stored
	return nil
}

// GetByUUID returns a copy of the room, or nil when absent
func (r *QueueRoomRepository) GetByUUID(ctx context.Context, uuid string) (*entities.QueueRoom, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, room := range r.byID {
		if room.UUID == uuid {
			c := *room
			return &c, nil
		}
	}
	return nil, nil
}

// GetByID returns a copy of the room, or nil when absent
func (r *QueueRoomRepository) GetByID(ctx context.Context, id int64) (*entities.QueueRoom, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	c := *room
	return &c, nil
}

// ListByQueueAndLocation returns the rooms of a queue at a location
func (r *QueueRoomRepository) ListByQueueAndLocation(ctx context.Context, queueID int64, locationUUID string, includeVoided bool) ([]*entities.QueueRoom, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := []*entities.QueueRoom{}
	for _, room := range r.byID {
		if room.QueueID != queueID || room.LocationUUID != locationUUID {
			continue
		}
		if room.Voided && !includeVoided {
			continue
		}
		c := *room
		rooms = append(rooms, &c)
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].Name != rooms[j].Name {
			return rooms[i].Name < rooms[j].Name
		}
		return rooms[i].ID < rooms[j].ID
	})
	return rooms, nil
}

// Void soft-deletes the room
func (r *QueueRoomRepository) Void(ctx context.Context, uuid, reason string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, room := range r.byID {
		if room.UUID == uuid {
			voidedAt := at
			room.Voided = true
			room.VoidReason = &reason
			room.DateVoided = &voidedAt
			room.UpdatedAt = at
			return nil
		}
	}
	return apperrors.NewNotFoundError("queue room not found")
}

// Purge removes the room permanently
func (r *QueueRoomRepository) Purge(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return apperrors.NewNotFoundError("queue room not found")
	}
	delete(r.byID, id)
	return nil
}

func (r *QueueRoomRepository) countForQueue(queueID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, room := range r.byID {
		if room.QueueID == queueID {
			n++
		}
	}
	return n
}
