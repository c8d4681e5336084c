package database

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/patientqueue/internal/domain/entities"
	"github.com/zatekoja/patientqueue/internal/domain/repositories"
	"github.com/zatekoja/patientqueue/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/patientqueue/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/patientqueue/pkg/errors"
)

const queuesTable = "queues"

var queueColumns = []interface{}{
	"id", "uuid", "name", "description", "location_uuid", "service_uuid",
	"voided", "void_reason", "date_voided", "created_at", "updated_at",
}

// QueueAdapter implements QueueRepository
type QueueAdapter struct {
	client  *postgres.Client
	db      *goqu.Database
	metrics *observability.Metrics
}

var _ repositories.QueueRepository = (*QueueAdapter)(nil)

// NewQueueAdapter creates a new queue adapter. metrics may be nil.
func NewQueueAdapter(client *postgres.Client, metrics *observability.Metrics) *QueueAdapter {
	return &QueueAdapter{
		client:  client,
		db:      goqu.New("postgres", client.DB()),
		metrics: metrics,
	}
}

// Create inserts a queue and stores the generated ID on it
func (a *QueueAdapter) Create(ctx context.Context, queue *entities.Queue) error {
	defer observe(ctx, a.metrics, "queue.create", time.Now())

	record := goqu.Record{
		"uuid":          queue.UUID,
		"name":          queue.Name,
		"description":   queue.Description,
		"location_uuid": queue.LocationUUID,
		"service_uuid":  nullString(queue.ServiceUUID),
		"voided":        queue.Voided,
		"void_reason":   nullString(queue.VoidReason),
		"date_voided":   nullTime(queue.DateVoided),
		"created_at":    queue.CreatedAt,
		"updated_at":    queue.UpdatedAt,
	}

	query, args, err := a.db.Insert(queuesTable).Rows(record).Returning("id").ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if err := a.client.DB().QueryRowxContext(ctx, query, args...).Scan(&queue.ID); err != nil {
		return mapWriteError("failed to create queue", err)
	}
	return nil
}

// GetByUUID retrieves a queue by UUID
func (a *QueueAdapter) GetByUUID(ctx context.Context, uuid string) (*entities.Queue, error) {
	return a.getOne(ctx, goqu.Ex{"uuid": uuid})
}

// GetByID retrieves a queue by numeric ID
func (a *QueueAdapter) GetByID(ctx context.Context, id int64) (*entities.Queue, error) {
	return a.getOne(ctx, goqu.Ex{"id": id})
}

func (a *QueueAdapter) getOne(ctx context.Context, where goqu.Ex) (*entities.Queue, error) {
	defer observe(ctx, a.metrics, "queue.get", time.Now())

	query, args, err := a.db.Select(queueColumns...).From(queuesTable).Where(where).Limit(1).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	queue := &entities.Queue{}
	found, err := getOptional(ctx, a.client, queue, query, args)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get queue", err)
	}
	if !found {
		return nil, nil
	}
	return queue, nil
}

// ListByLocation retrieves queues at a location ordered by name
func (a *QueueAdapter) ListByLocation(ctx context.Context, locationUUID string, includeVoided bool) ([]*entities.Queue, error) {
	defer observe(ctx, a.metrics, "queue.list", time.Now())

	where := goqu.Ex{"location_uuid": locationUUID}
	if !includeVoided {
		where["voided"] = false
	}

	query, args, err := a.db.Select(queueColumns...).From(queuesTable).
		Where(where).
		Order(goqu.I("name").Asc(), goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	queues := []*entities.Queue{}
	if err := a.client.DB().SelectContext(ctx, &queues, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list queues", err)
	}
	return queues, nil
}

// Void marks a queue as voided
func (a *QueueAdapter) Void(ctx context.Context, uuid, reason string, at time.Time) error {
	defer observe(ctx, a.metrics, "queue.void", time.Now())

	query, args, err := a.db.Update(queuesTable).
		Set(goqu.Record{
			"voided":      true,
			"void_reason": reason,
			"date_voided": at,
			"updated_at":  at,
		}).
		Where(goqu.Ex{"uuid": uuid}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	return execAffecting(ctx, a.client, query, args, "failed to void queue", "queue not found")
}

// Purge deletes a queue row
func (a *QueueAdapter) Purge(ctx context.Context, id int64) error {
	defer observe(ctx, a.metrics, "queue.purge", time.Now())

	query, args, err := a.db.Delete(queuesTable).Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	return execAffecting(ctx, a.client, query, args, "failed to purge queue", "queue not found")
}
