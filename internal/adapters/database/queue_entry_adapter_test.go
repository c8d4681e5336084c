package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/patientqueue/internal/domain/criteria"
	"github.com/zatekoja/patientqueue/internal/domain/entities"
	apperrors "github.com/zatekoja/patientqueue/pkg/errors"
)

var queueEntryRowColumns = []string{
	"id", "uuid", "queue_id", "patient_uuid", "status_uuid", "priority_uuid", "sort_weight",
	"started_at", "ended_at", "voided", "void_reason", "date_voided", "created_at", "updated_at",
}

func TestQueueEntryAdapter_Find(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := NewQueueEntryAdapter(client, nil)
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(20 * time.Minute)

	mock.ExpectQuery(`SELECT .* FROM "queue_entries" WHERE .*"queue_id" = 1.*"ended_at" IS NULL.* ORDER BY "started_at" ASC, "id" ASC`).
		WillReturnRows(sqlmock.NewRows(queueEntryRowColumns).
			AddRow(1, "e-1", 1, "p-1", "waiting", nil, 0.0, start, end, false, nil, nil, start, end).
			AddRow(2, "e-2", 1, "p-2", "waiting", "urgent", 1.5, start, nil, false, nil, nil, start, start))

	entries, err := adapter.Find(context.Background(), criteria.And(
		criteria.Eq(entities.QueueEntryFieldQueueID, int64(1)),
		criteria.Or(
			criteria.Gte(entities.QueueEntryFieldEndedAt, start),
			criteria.IsNull(entities.QueueEntryFieldEndedAt),
		),
	))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.NotNil(t, entries[0].EndedAt)
	assert.True(t, end.Equal(*entries[0].EndedAt))
	assert.Nil(t, entries[1].EndedAt)
	require.NotNil(t, entries[1].PriorityUUID)
	assert.Equal(t, "urgent", *entries[1].PriorityUUID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueEntryAdapter_FindRejectsUnknownField(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := NewQueueEntryAdapter(client, nil)

	_, err := adapter.Find(context.Background(), criteria.Eq("patient_name", "x"))
	assert.True(t, apperrors.IsValidation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueEntryAdapter_FindQueryError(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := NewQueueEntryAdapter(client, nil)

	mock.ExpectQuery(`SELECT .* FROM "queue_entries"`).WillReturnError(errors.New("connection reset"))

	_, err := adapter.Find(context.Background(), nil)
	assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.TypeOf(err))
}

func TestQueueEntryAdapter_CreateAndUpdate(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := NewQueueEntryAdapter(client, nil)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO "queue_entries"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))

	entry := &entities.QueueEntry{UUID: "e-9", QueueID: 1, PatientUUID: "p", StatusUUID: "waiting", StartedAt: now, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, adapter.Create(context.Background(), entry))
	assert.Equal(t, int64(9), entry.ID)

	mock.ExpectExec(`UPDATE "queue_entries" SET .* WHERE \("uuid" = 'e-9'\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	ended := now.Add(time.Minute)
	entry.EndedAt = &ended
	require.NoError(t, adapter.Update(context.Background(), entry))

	mock.ExpectExec(`UPDATE "queue_entries"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.True(t, apperrors.IsNotFound(adapter.Void(context.Background(), "missing", "dup", now)))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueEntryAdapter_GetByUUIDAbsent(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := NewQueueEntryAdapter(client, nil)

	mock.ExpectQuery(`SELECT .* FROM "queue_entries"`).
		WillReturnRows(sqlmock.NewRows(queueEntryRowColumns))

	entry, err := adapter.GetByUUID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, entry)
}
