package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zatekoja/patientqueue/internal/domain/entities"
	"github.com/zatekoja/patientqueue/internal/domain/providers"
	"github.com/zatekoja/patientqueue/internal/domain/repositories"
	"github.com/zatekoja/patientqueue/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/patientqueue/pkg/errors"
)

// QueueService handles queue administration and wait-time statistics
type QueueService struct {
	repo       repositories.QueueRepository
	entryRepo  repositories.QueueEntryRepository
	searchRepo repositories.QueueSearchRepository
	events     providers.EventBus
	clock      providers.Clock
	location   *time.Location
	window     WaitWindow
	metrics    *observability.Metrics
}

// QueueServiceOption customises a QueueService
type QueueServiceOption func(*QueueService)

// WithTimeZone sets the zone used for calendar-day boundaries
func WithTimeZone(loc *time.Location) QueueServiceOption {
	return func(s *QueueService) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithWaitWindow selects which entries count toward a day's average
func WithWaitWindow(window WaitWindow) QueueServiceOption {
	return func(s *QueueService) { s.window = window }
}

// WithMetrics records wait-time computations
func WithMetrics(metrics *observability.Metrics) QueueServiceOption {
	return func(s *QueueService) { s.metrics = metrics }
}

// NewQueueService creates a new queue service. searchRepo and events may be nil.
func NewQueueService(
	repo repositories.QueueRepository,
	entryRepo repositories.QueueEntryRepository,
	searchRepo repositories.QueueSearchRepository,
	events providers.EventBus,
	clock providers.Clock,
	opts ...QueueServiceOption,
) *QueueService {
	if clock == nil {
		clock = providers.SystemClock{}
	}
	s := &QueueService{
		repo:       repo,
		entryRepo:  entryRepo,
		searchRepo: searchRepo,
		events:     events,
		clock:      clock,
		location:   time.Local,
		window:     WaitWindowStarted,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the zone used for day boundaries
func (s *QueueService) Location() *time.Location {
	return s.location
}

// GetQueueByUUID returns the queue, or nil when absent
func (s *QueueService) GetQueueByUUID(ctx context.Context, queueUUID string) (*entities.Queue, error) {
	return s.repo.GetByUUID(ctx, queueUUID)
}

// GetQueueByID returns the queue, or nil when absent
func (s *QueueService) GetQueueByID(ctx context.Context, id int64) (*entities.Queue, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateQueue validates, persists and indexes a new queue
func (s *QueueService) CreateQueue(ctx context.Context, queue *entities.Queue) (*entities.Queue, error) {
	if queue == nil {
		return nil, apperrors.NewValidationError("queue is required")
	}
	if err := validateEntity(queue); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if queue.UUID == "" {
		queue.UUID = uuid.NewString()
	}
	queue.Voided = false
	queue.VoidReason = nil
	queue.DateVoided = nil
	queue.CreatedAt = now
	queue.UpdatedAt = now

	if err := s.repo.Create(ctx, queue); err != nil {
		return nil, err
	}

	if s.searchRepo != nil {
		if err := s.searchRepo.Index(ctx, queue); err != nil {
			// search catches up on the next write
			log.Warn().Err(err).Str("queue_uuid", queue.UUID).Msg("failed to index queue")
		}
	}

	publish(ctx, s.events, entities.NewQueueEvent(queue.UUID, queue.UUID, entities.QueueEventTypeQueueCreated, now, map[string]interface{}{
		"name":          queue.Name,
		"location_uuid": queue.LocationUUID,
	}))
	return queue, nil
}

// ListQueuesByLocation returns every queue at a location. Voided queues are
// only included when includeVoided is set.
func (s *QueueService) ListQueuesByLocation(ctx context.Context, locationUUID string, includeVoided bool) ([]*entities.Queue, error) {
	if err := requireValue(locationUUID, "location uuid"); err != nil {
		return nil, err
	}
	return s.repo.ListByLocation(ctx, locationUUID, includeVoided)
}

// VoidQueue soft-deletes a queue
func (s *QueueService) VoidQueue(ctx context.Context, queueUUID, reason string) (*entities.Queue, error) {
	if err := requireValue(reason, "void reason"); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if err := s.repo.Void(ctx, queueUUID, reason, now); err != nil {
		return nil, err
	}

	if s.searchRepo != nil {
		if err := s.searchRepo.Delete(ctx, queueUUID); err != nil {
			log.Warn().Err(err).Str("queue_uuid", queueUUID).Msg("failed to remove voided queue from index")
		}
	}

	queue, err := s.repo.GetByUUID(ctx, queueUUID)
	if err != nil {
		return nil, err
	}

	data := map[string]interface{}{"reason": reason}
	if queue != nil {
		data["location_uuid"] = queue.LocationUUID
	}
	publish(ctx, s.events, entities.NewQueueEvent(queueUUID, queueUUID, entities.QueueEventTypeQueueVoided, now, data))
	return queue, nil
}

// PurgeQueue permanently deletes a queue. Fails with a conflict while rooms
// or entries still reference it.
func (s *QueueService) PurgeQueue(ctx context.Context, queueUUID string) error {
	queue, err := s.repo.GetByUUID(ctx, queueUUID)
	if err != nil {
		return err
	}
	if queue == nil {
		return apperrors.NewNotFoundError("queue not found")
	}

	if err := s.repo.Purge(ctx, queue.ID); err != nil {
		return err
	}

	if s.searchRepo != nil {
		if err := s.searchRepo.Delete(ctx, queueUUID); err != nil {
			log.Warn().Err(err).Str("queue_uuid", queueUUID).Msg("failed to remove purged queue from index")
		}
	}

	publish(ctx, s.events, entities.NewQueueEvent(queueUUID, queueUUID, entities.QueueEventTypeQueuePurged, s.clock.Now(), map[string]interface{}{
		"location_uuid": queue.LocationUUID,
	}))
	return nil
}

// SearchQueues runs a full-text search over queue names and descriptions
func (s *QueueService) SearchQueues(ctx context.Context, params repositories.QueueSearchParams) ([]*entities.Queue, error) {
	if s.searchRepo == nil {
		return nil, apperrors.NewValidationError("queue search is not configured")
	}
	params.Query = strings.TrimSpace(params.Query)
	queues, err := s.searchRepo.Search(ctx, params)
	if err != nil {
		return nil, apperrors.NewExternalError("queue search failed", err)
	}
	return queues, nil
}

// GetAverageWaitTime returns the mean whole minutes spent in the queue by the
// entries of the given calendar day, optionally restricted to one status.
// Open entries are measured up to now. Returns 0 when nothing matches.
func (s *QueueService) GetAverageWaitTime(ctx context.Context, queue *entities.Queue, status *string, date time.Time) (float64, error) {
	if queue == nil {
		return 0, apperrors.NewValidationError("queue cannot be nil")
	}

	ctx, span := observability.StartSpan(ctx, "QueueService.GetAverageWaitTime")
	defer span.End()

	start, end := DayBounds(date, s.location)
	observability.SetSpanAttributes(span,
		attribute.String("queue.uuid", queue.UUID),
		attribute.String("queue.day_start", start.Format(time.RFC3339)),
		attribute.String("queue.wait_window", string(s.window)),
	)

	entries, err := s.entryRepo.Find(ctx, waitTimeFilter(queue.ID, status, start, end, s.window))
	if err != nil {
		observability.RecordError(span, err)
		return 0, err
	}

	avg := averageWaitMinutes(entries, s.clock.Now())
	observability.SetSpanAttributes(span, attribute.Int("queue.entries", len(entries)))
	observability.RecordWaitTime(ctx, s.metrics, queue.UUID, avg)
	return avg, nil
}

// GetAverageWaitTimeByUUID resolves the queue first. Unknown queues are not found.
func (s *QueueService) GetAverageWaitTimeByUUID(ctx context.Context, queueUUID string, status *string, date time.Time) (float64, error) {
	queue, err := s.repo.GetByUUID(ctx, queueUUID)
	if err != nil {
		return 0, err
	}
	if queue == nil {
		return 0, apperrors.NewNotFoundError("queue not found")
	}
	return s.GetAverageWaitTime(ctx, queue, status, date)
}

// Today returns the current calendar date in the service time zone
func (s *QueueService) Today() time.Time {
	return s.clock.Now().In(s.location)
}
