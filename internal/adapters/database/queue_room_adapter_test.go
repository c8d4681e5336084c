package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/patientqueue/internal/domain/entities"
	"github.com/zatekoja/patientqueue/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/patientqueue/pkg/errors"
)

var queueRoomRowColumns = []string{
	"id", "uuid", "name", "description", "queue_id", "location_uuid",
	"voided", "void_reason", "date_voided", "created_at", "updated_at",
}

func newMockClient(t *testing.T) (*postgres.Client, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return postgres.NewClientFromDB(db), mock
}

func TestQueueRoomAdapter_Create(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := NewQueueRoomAdapter(client, nil)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO "queue_rooms" .* RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	room := &entities.QueueRoom{UUID: "r-1", Name: "Room 1", QueueID: 3, LocationUUID: "loc-1", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, adapter.Create(context.Background(), room))
	assert.Equal(t, int64(42), room.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRoomAdapter_CreateMissingQueue(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := NewQueueRoomAdapter(client, nil)

	mock.ExpectQuery(`INSERT INTO "queue_rooms"`).
		WillReturnError(&pq.Error{Code: pqForeignKeyViolation})

	err := adapter.Create(context.Background(), &entities.QueueRoom{UUID: "r-1", Name: "Room", QueueID: 99, LocationUUID: "loc"})
	assert.Equal(t, apperrors.ErrorTypeConflict, apperrors.TypeOf(err))
}

func TestQueueRoomAdapter_GetByUUID(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := NewQueueRoomAdapter(client, nil)
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM "queue_rooms" WHERE \("uuid" = 'r-1'\) LIMIT 1`).
			WillReturnRows(sqlmock.NewRows(queueRoomRowColumns).
				AddRow(1, "r-1", "Room 1", "", 3, "loc-1", false, nil, nil, now, now))

		room, err := adapter.GetByUUID(context.Background(), "r-1")
		require.NoError(t, err)
		require.NotNil(t, room)
		assert.Equal(t, int64(3), room.QueueID)
		assert.Nil(t, room.VoidReason)
	})

	t.Run("absent returns nil without error", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM "queue_rooms"`).
			WillReturnRows(sqlmock.NewRows(queueRoomRowColumns))

		room, err := adapter.GetByUUID(context.Background(), "missing")
		require.NoError(t, err)
		assert.Nil(t, room)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRoomAdapter_GetByID(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := NewQueueRoomAdapter(client, nil)

	mock.ExpectQuery(`SELECT .* FROM "queue_rooms" WHERE \("id" = 7\)`).
		WillReturnRows(sqlmock.NewRows(queueRoomRowColumns))

	room, err := adapter.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, room)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRoomAdapter_ListByQueueAndLocation(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := NewQueueRoomAdapter(client, nil)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM "queue_rooms" WHERE .*"voided" IS FALSE.* ORDER BY "name" ASC`).
		WillReturnRows(sqlmock.NewRows(queueRoomRowColumns).
			AddRow(1, "r-1", "A", "", 3, "loc-1", false, nil, nil, now, now).
			AddRow(2, "r-2", "B", "", 3, "loc-1", false, nil, nil, now, now))

	rooms, err := adapter.ListByQueueAndLocation(context.Background(), 3, "loc-1", false)
	require.NoError(t, err)
	assert.Len(t, rooms, 2)

	mock.ExpectQuery(`SELECT .* FROM "queue_rooms"`).
		WillReturnRows(sqlmock.NewRows(queueRoomRowColumns))

	rooms, err = adapter.ListByQueueAndLocation(context.Background(), 3, "loc-2", true)
	require.NoError(t, err)
	assert.NotNil(t, rooms)
	assert.Empty(t, rooms)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRoomAdapter_Void(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := NewQueueRoomAdapter(client, nil)

	mock.ExpectExec(`UPDATE "queue_rooms" SET .* WHERE \("uuid" = 'r-1'\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, adapter.Void(context.Background(), "r-1", "closed", time.Now()))

	mock.ExpectExec(`UPDATE "queue_rooms"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := adapter.Void(context.Background(), "missing", "closed", time.Now())
	assert.True(t, apperrors.IsNotFound(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRoomAdapter_Purge(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := NewQueueRoomAdapter(client, nil)

	mock.ExpectExec(`DELETE FROM "queue_rooms" WHERE \("id" = 5\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, adapter.Purge(context.Background(), 5))

	mock.ExpectExec(`DELETE FROM "queue_rooms"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.True(t, apperrors.IsNotFound(adapter.Purge(context.Background(), 6)))

	assert.NoError(t, mock.ExpectationsWereMet())
}
