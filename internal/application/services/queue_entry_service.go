package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/zatekoja/patientqueue/internal/domain/criteria"
	"github.com/zatekoja/patientqueue/internal/domain/entities"
	"github.com/zatekoja/patientqueue/internal/domain/providers"
	"github.com/zatekoja/patientqueue/internal/domain/repositories"
	apperrors "github.com/zatekoja/patientqueue/pkg/errors"
)

// QueueEntryService manages patients moving through queues
type QueueEntryService struct {
	repo   repositories.QueueEntryRepository
	queues repositories.QueueRepository
	events providers.EventBus
	clock  providers.Clock
}

// NewQueueEntryService creates a new queue entry service. events may be nil.
func NewQueueEntryService(repo repositories.QueueEntryRepository, queues repositories.QueueRepository, events providers.EventBus, clock providers.Clock) *QueueEntryService {
	if clock == nil {
		clock = providers.SystemClock{}
	}
	return &QueueEntryService{
		repo:   repo,
		queues: queues,
		events: events,
		clock:  clock,
	}
}

// CreateQueueEntry adds a patient to a queue. StartedAt defaults to now.
func (s *QueueEntryService) CreateQueueEntry(ctx context.Context, queueUUID string, entry *entities.QueueEntry) (*entities.QueueEntry, error) {
	if entry == nil {
		return nil, apperrors.NewValidationError("queue entry is required")
	}

	queue, err := s.queues.GetByUUID(ctx, queueUUID)
	if err != nil {
		return nil, err
	}
	if queue == nil {
		return nil, apperrors.NewNotFoundError("queue not found")
	}
	if queue.Voided {
		return nil, apperrors.NewValidationError("cannot add entries to a voided queue")
	}

	now := s.clock.Now()
	entry.QueueID = queue.ID
	if entry.UUID == "" {
		entry.UUID = uuid.NewString()
	}
	if entry.StartedAt.IsZero() {
		entry.StartedAt = now
	}
	if entry.EndedAt != nil && entry.EndedAt.Before(entry.StartedAt) {
		return nil, apperrors.NewValidationError("ended at must not be before started at")
	}
	entry.Voided = false
	entry.VoidReason = nil
	entry.DateVoided = nil
	entry.CreatedAt = now
	entry.UpdatedAt = now

	if err := validateEntity(entry); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}

	publish(ctx, s.events, entities.NewQueueEvent(queue.UUID, entry.UUID, entities.QueueEventTypeEntryCreated, now, map[string]interface{}{
		"patient_uuid": entry.PatientUUID,
		"status_uuid":  entry.StatusUUID,
	}))
	return entry, nil
}

// GetQueueEntryByUUID returns the entry, or nil when absent
func (s *QueueEntryService) GetQueueEntryByUUID(ctx context.Context, entryUUID string) (*entities.QueueEntry, error) {
	return s.repo.GetByUUID(ctx, entryUUID)
}

// ListActiveEntries returns the open, non-voided entries of a queue in arrival order
func (s *QueueEntryService) ListActiveEntries(ctx context.Context, queueUUID string) ([]*entities.QueueEntry, error) {
	queue, err := s.queues.GetByUUID(ctx, queueUUID)
	if err != nil {
		return nil, err
	}
	if queue == nil {
		return nil, apperrors.NewNotFoundError("queue not found")
	}

	return s.repo.Find(ctx, criteria.And(
		criteria.Eq(entities.QueueEntryFieldQueueID, queue.ID),
		criteria.Eq(entities.QueueEntryFieldVoided, false),
		criteria.IsNull(entities.QueueEntryFieldEndedAt),
	))
}

// UpdateQueueEntryStatus moves an entry to a new status
func (s *QueueEntryService) UpdateQueueEntryStatus(ctx context.Context, entryUUID, status string) (*entities.QueueEntry, error) {
	if err := requireValue(status, "status"); err != nil {
		return nil, err
	}

	entry, err := s.loadMutable(ctx, entryUUID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	previous := entry.StatusUUID
	entry.StatusUUID = status
	entry.UpdatedAt = now
	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, err
	}

	s.publishForEntry(ctx, entry, entities.QueueEventTypeEntryStatusChanged, now, map[string]interface{}{
		"previous_status_uuid": previous,
		"status_uuid":          status,
	})
	return entry, nil
}

// EndQueueEntry records the patient leaving the queue. endedAt defaults to now.
func (s *QueueEntryService) EndQueueEntry(ctx context.Context, entryUUID string, endedAt *time.Time) (*entities.QueueEntry, error) {
	entry, err := s.loadMutable(ctx, entryUUID)
	if err != nil {
		return nil, err
	}
	if !entry.IsOpen() {
		return nil, apperrors.NewConflictError("queue entry has already ended", nil)
	}

	now := s.clock.Now()
	end := now
	if endedAt != nil {
		end = *endedAt
	}
	if end.Before(entry.StartedAt) {
		return nil, apperrors.NewValidationError("ended at must not be before started at")
	}

	entry.EndedAt = &end
	entry.UpdatedAt = now
	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, err
	}

	s.publishForEntry(ctx, entry, entities.QueueEventTypeEntryEnded, now, map[string]interface{}{
		"wait_minutes": entry.WaitMinutes(now),
	})
	return entry, nil
}

// VoidQueueEntry soft-deletes an entry
func (s *QueueEntryService) VoidQueueEntry(ctx context.Context, entryUUID, reason string) (*entities.QueueEntry, error) {
	if err := requireValue(reason, "void reason"); err != nil {
		return nil, err
	}

	entry, err := s.repo.GetByUUID(ctx, entryUUID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, apperrors.NewNotFoundError("queue entry not found")
	}

	now := s.clock.Now()
	if err := s.repo.Void(ctx, entryUUID, reason, now); err != nil {
		return nil, err
	}
	entry.Voided = true
	entry.VoidReason = &reason
	entry.DateVoided = &now
	entry.UpdatedAt = now

	s.publishForEntry(ctx, entry, entities.QueueEventTypeEntryVoided, now, map[string]interface{}{
		"reason": reason,
	})
	return entry, nil
}

// loadMutable fetches an entry that may still change
func (s *QueueEntryService) loadMutable(ctx context.Context, entryUUID string) (*entities.QueueEntry, error) {
	entry, err := s.repo.GetByUUID(ctx, entryUUID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, apperrors.NewNotFoundError("queue entry not found")
	}
	if entry.Voided {
		return nil, apperrors.NewConflictError("queue entry is voided", nil)
	}
	return entry, nil
}

func (s *QueueEntryService) publishForEntry(ctx context.Context, entry *entities.QueueEntry, eventType entities.QueueEventType, at time.Time, data map[string]interface{}) {
	if s.events == nil {
		return
	}
	queue, err := s.queues.GetByID(ctx, entry.QueueID)
	if err != nil || queue == nil {
		return
	}
	publish(ctx, s.events, entities.NewQueueEvent(queue.UUID, entry.UUID, eventType, at, data))
}
