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

const queueRoomsTable = "queue_rooms"

var queueRoomColumns = []interface{}{
	"id", "uuid", "name", "description", "queue_id", "location_uuid",
	"voided", "void_reason", "date_voided", "created_at", "updated_at",
}

// QueueRoomAdapter implements QueueRoomRepository
type QueueRoomAdapter struct {
	client  *postgres.Client
	db      *goqu.Database
	metrics *observability.Metrics
}

var _ repositories.QueueRoomRepository = (*QueueRoomAdapter)(nil)

// NewQueueRoomAdapter creates a new queue room adapter. metrics may be nil.
func NewQueueRoomAdapter(client *postgres.Client, metrics *observability.Metrics) *QueueRoomAdapter {
	return &QueueRoomAdapter{
		client:  client,
		db:      goqu.New("postgres", client.DB()),
		metrics: metrics,
	}
}

// Create inserts a room and stores the generated ID on it
func (a *QueueRoomAdapter) Create(ctx context.Context, room *entities.QueueRoom) error {
	defer observe(ctx, a.metrics, "queue_room.create", time.Now())

	record := goqu.Record{
		"uuid":          room.UUID,
		"name":          room.Name,
		"description":   room.Description,
		"queue_id":      room.QueueID,
		"location_uuid": room.LocationUUID,
		"voided":        room.Voided,
		"void_reason":   nullString(room.VoidReason),
		"date_voided":   nullTime(room.DateVoided),
		"created_at":    room.CreatedAt,
		"updated_at":    room.UpdatedAt,
	}

	query, args, err := a.db.Insert(queueRoomsTable).Rows(record).Returning("id").ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if err := a.client.DB().QueryRowxContext(ctx, query, args...).Scan(&room.ID); err != nil {
		return mapWriteError("failed to create queue room", err)
	}
	return nil
}

// GetByUUID retrieves a room by UUID
func (a *QueueRoomAdapter) GetByUUID(ctx context.Context, uuid string) (*entities.QueueRoom, error) {
	return a.getOne(ctx, goqu.Ex{"uuid": uuid})
}

// GetByID retrieves a room by numeric ID
func (a *QueueRoomAdapter) GetByID(ctx context.Context, id int64) (*entities.QueueRoom, error) {
	return a.getOne(ctx, goqu.Ex{"id": id})
}

func (a *QueueRoomAdapter) getOne(ctx context.Context, where goqu.Ex) (*entities.QueueRoom, error) {
	defer observe(ctx, a.metrics, "queue_room.get", time.Now())

	query, args, err := a.db.Select(queueRoomColumns...).From(queueRoomsTable).Where(where).Limit(1).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	room := &entities.QueueRoom{}
	found, err := getOptional(ctx, a.client, room, query, args)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get queue room", err)
	}
	if !found {
		return nil, nil
	}
	return room, nil
}

// ListByQueueAndLocation retrieves rooms serving a queue at a location
func (a *QueueRoomAdapter) ListByQueueAndLocation(ctx context.Context, queueID int64, locationUUID string, includeVoided bool) ([]*entities.QueueRoom, error) {
	defer observe(ctx, a.metrics, "queue_room.list", time.Now())

	where := goqu.Ex{
		"queue_id":      queueID,
		"location_uuid": locationUUID,
	}
	if !includeVoided {
		where["voided"] = false
	}

	query, args, err := a.db.Select(queueRoomColumns...).From(queueRoomsTable).
		Where(where).
		Order(goqu.I("name").Asc(), goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rooms := []*entities.QueueRoom{}
	if err := a.client.DB().SelectContext(ctx, &rooms, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list queue rooms", err)
	}
	return rooms, nil
}

// Void marks a room as voided
func (a *QueueRoomAdapter) Void(ctx context.Context, uuid, reason string, at time.Time) error {
	defer observe(ctx, a.metrics, "queue_room.void", time.Now())

	query, args, err := a.db.Update(queueRoomsTable).
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

	return execAffecting(ctx, a.client, query, args, "failed to void queue room", "queue room not found")
}

// Purge deletes a room row
func (a *QueueRoomAdapter) Purge(ctx context.Context, id int64) error {
	defer observe(ctx, a.metrics, "queue_room.purge", time.Now())

	query, args, err := a.db.Delete(queueRoomsTable).Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	return execAffecting(ctx, a.client, query, args, "failed to purge queue room", "queue room not found")
}
