package database

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/patientqueue/internal/domain/criteria"
	"github.com/zatekoja/patientqueue/internal/domain/entities"
	"github.com/zatekoja/patientqueue/internal/domain/repositories"
	"github.com/zatekoja/patientqueue/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/patientqueue/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/patientqueue/pkg/errors"
)

const queueEntriesTable = "queue_entries"

var queueEntryColumns = []interface{}{
	"id", "uuid", "queue_id", "patient_uuid", "status_uuid", "priority_uuid", "sort_weight",
	"started_at", "ended_at", "voided", "void_reason", "date_voided", "created_at", "updated_at",
}

var queueEntryFilter = newPredicateTranslator(
	entities.QueueEntryFieldID,
	entities.QueueEntryFieldQueueID,
	entities.QueueEntryFieldStatus,
	entities.QueueEntryFieldStartedAt,
	entities.QueueEntryFieldEndedAt,
	entities.QueueEntryFieldVoided,
)

// QueueEntryAdapter implements QueueEntryRepository
type QueueEntryAdapter struct {
	client  *postgres.Client
	db      *goqu.Database
	metrics *observability.Metrics
}

var _ repositories.QueueEntryRepository = (*QueueEntryAdapter)(nil)

// NewQueueEntryAdapter creates a new queue entry adapter. metrics may be nil.
func NewQueueEntryAdapter(client *postgres.Client, metrics *observability.Metrics) *QueueEntryAdapter {
	return &QueueEntryAdapter{
		client:  client,
		db:      goqu.New("postgres", client.DB()),
		metrics: metrics,
	}
}

// Create inserts an entry and stores the generated ID on it
func (a *QueueEntryAdapter) Create(ctx context.Context, entry *entities.QueueEntry) error {
	defer observe(ctx, a.metrics, "queue_entry.create", time.Now())

	record := goqu.Record{
		"uuid":          entry.UUID,
		"queue_id":      entry.QueueID,
		"patient_uuid":  entry.PatientUUID,
		"status_uuid":   entry.StatusUUID,
		"priority_uuid": nullString(entry.PriorityUUID),
		"sort_weight":   entry.SortWeight,
		"started_at":    entry.StartedAt,
		"ended_at":      nullTime(entry.EndedAt),
		"voided":        entry.Voided,
		"void_reason":   nullString(entry.VoidReason),
		"date_voided":   nullTime(entry.DateVoided),
		"created_at":    entry.CreatedAt,
		"updated_at":    entry.UpdatedAt,
	}

	query, args, err := a.db.Insert(queueEntriesTable).Rows(record).Returning("id").ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if err := a.client.DB().QueryRowxContext(ctx, query, args...).Scan(&entry.ID); err != nil {
		return mapWriteError("failed to create queue entry", err)
	}
	return nil
}

// GetByUUID retrieves an entry by UUID
func (a *QueueEntryAdapter) GetByUUID(ctx context.Context, uuid string) (*entities.QueueEntry, error) {
	defer observe(ctx, a.metrics, "queue_entry.get", time.Now())

	query, args, err := a.db.Select(queueEntryColumns...).From(queueEntriesTable).
		Where(goqu.Ex{"uuid": uuid}).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	entry := &entities.QueueEntry{}
	found, err := getOptional(ctx, a.client, entry, query, args)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get queue entry", err)
	}
	if !found {
		return nil, nil
	}
	return entry, nil
}

// Update saves the mutable fields of an entry
func (a *QueueEntryAdapter) Update(ctx context.Context, entry *entities.QueueEntry) error {
	defer observe(ctx, a.metrics, "queue_entry.update", time.Now())

	query, args, err := a.db.Update(queueEntriesTable).
		Set(goqu.Record{
			"status_uuid":   entry.StatusUUID,
			"priority_uuid": nullString(entry.PriorityUUID),
			"sort_weight":   entry.SortWeight,
			"ended_at":      nullTime(entry.EndedAt),
			"updated_at":    entry.UpdatedAt,
		}).
		Where(goqu.Ex{"uuid": entry.UUID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	return execAffecting(ctx, a.client, query, args, "failed to update queue entry", "queue entry not found")
}

// Void marks an entry as voided
func (a *QueueEntryAdapter) Void(ctx context.Context, uuid, reason string, at time.Time) error {
	defer observe(ctx, a.metrics, "queue_entry.void", time.Now())

	query, args, err := a.db.Update(queueEntriesTable).
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

	return execAffecting(ctx, a.client, query, args, "failed to void queue entry", "queue entry not found")
}

// Find retrieves entries matching the predicate. The whole filter runs in SQL.
func (a *QueueEntryAdapter) Find(ctx context.Context, where criteria.Predicate) ([]*entities.QueueEntry, error) {
	defer observe(ctx, a.metrics, "queue_entry.find", time.Now())

	filter, err := queueEntryFilter.translate(where)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	ds := a.db.Select(queueEntryColumns...).From(queueEntriesTable)
	if filter != nil {
		ds = ds.Where(filter)
	}

	query, args, err := ds.Order(goqu.I("started_at").Asc(), goqu.I("id").Asc()).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	entries := []*entities.QueueEntry{}
	if err := a.client.DB().SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to find queue entries", err)
	}
	return entries, nil
}
