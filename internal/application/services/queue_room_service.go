package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/zatekoja/patientqueue/internal/domain/entities"
	"github.com/zatekoja/patientqueue/internal/domain/providers"
	"github.com/zatekoja/patientqueue/internal/domain/repositories"
	apperrors "github.com/zatekoja/patientqueue/pkg/errors"
)

// QueueRoomService manages the physical rooms serving queues
type QueueRoomService struct {
	repo   repositories.QueueRoomRepository
	queues repositories.QueueRepository
	events providers.EventBus
	clock  providers.Clock
}

// NewQueueRoomService creates a new queue room service. events may be nil.
func NewQueueRoomService(repo repositories.QueueRoomRepository, queues repositories.QueueRepository, events providers.EventBus, clock providers.Clock) *QueueRoomService {
	if clock == nil {
		clock = providers.SystemClock{}
	}
	return &QueueRoomService{
		repo:   repo,
		queues: queues,
		events: events,
		clock:  clock,
	}
}

// GetQueueRoomByUUID returns the room, or nil when absent
func (s *QueueRoomService) GetQueueRoomByUUID(ctx context.Context, roomUUID string) (*entities.QueueRoom, error) {
	return s.repo.GetByUUID(ctx, roomUUID)
}

// GetQueueRoomByID returns the room, or nil when absent
func (s *QueueRoomService) GetQueueRoomByID(ctx context.Context, id int64) (*entities.QueueRoom, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateQueueRoom persists a room, assigning a UUID when none is set
func (s *QueueRoomService) CreateQueueRoom(ctx context.Context, room *entities.QueueRoom) (*entities.QueueRoom, error) {
	if room == nil {
		return nil, apperrors.NewValidationError("queue room is required")
	}
	if err := validateEntity(room); err != nil {
		return nil, err
	}

	queue, err := s.queues.GetByID(ctx, room.QueueID)
	if err != nil {
		return nil, err
	}
	if queue == nil {
		return nil, apperrors.NewNotFoundError("queue not found")
	}

	now := s.clock.Now()
	if room.UUID == "" {
		room.UUID = uuid.NewString()
	}
	room.Voided = false
	room.VoidReason = nil
	room.DateVoided = nil
	room.CreatedAt = now
	room.UpdatedAt = now

	if err := s.repo.Create(ctx, room); err != nil {
		return nil, err
	}

	publish(ctx, s.events, entities.NewQueueEvent(queue.UUID, room.UUID, entities.QueueEventTypeRoomCreated, now, map[string]interface{}{
		"name":          room.Name,
		"location_uuid": room.LocationUUID,
	}))
	return room, nil
}

// GetQueueRoomsByQueueAndLocation lists the non-voided rooms of a queue at a location
func (s *QueueRoomService) GetQueueRoomsByQueueAndLocation(ctx context.Context, queue *entities.Queue, locationUUID string) ([]*entities.QueueRoom, error) {
	if queue == nil {
		return nil, apperrors.NewValidationError("queue cannot be nil")
	}
	if err := requireValue(locationUUID, "location uuid"); err != nil {
		return nil, err
	}
	return s.repo.ListByQueueAndLocation(ctx, queue.ID, locationUUID, false)
}

// VoidQueueRoom soft-deletes a room. Unknown UUIDs are not found.
func (s *QueueRoomService) VoidQueueRoom(ctx context.Context, roomUUID, reason string) (*entities.QueueRoom, error) {
	if err := requireValue(reason, "void reason"); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if err := s.repo.Void(ctx, roomUUID, reason, now); err != nil {
		return nil, err
	}

	room, err := s.repo.GetByUUID(ctx, roomUUID)
	if err != nil {
		return nil, err
	}
	if room != nil {
		s.publishForRoom(ctx, room, entities.QueueEventTypeRoomVoided, map[string]interface{}{"reason": reason})
	}
	return room, nil
}

// PurgeQueueRoom permanently deletes a room
func (s *QueueRoomService) PurgeQueueRoom(ctx context.Context, roomUUID string) error {
	room, err := s.repo.GetByUUID(ctx, roomUUID)
	if err != nil {
		return err
	}
	if room == nil {
		return apperrors.NewNotFoundError("queue room not found")
	}

	if err := s.repo.Purge(ctx, room.ID); err != nil {
		return err
	}

	s.publishForRoom(ctx, room, entities.QueueEventTypeRoomPurged, nil)
	return nil
}

func (s *QueueRoomService) publishForRoom(ctx context.Context, room *entities.QueueRoom, eventType entities.QueueEventType, data map[string]interface{}) {
	if s.events == nil {
		return
	}
	queue, err := s.queues.GetByID(ctx, room.QueueID)
	if err != nil || queue == nil {
		return
	}
	publish(ctx, s.events, entities.NewQueueEvent(queue.UUID, room.UUID, eventType, s.clock.Now(), data))
}
