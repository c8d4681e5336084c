package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/patientqueue/internal/domain/criteria"
	"github.com/zatekoja/patientqueue/internal/domain/entities"
	apperrors "github.com/zatekoja/patientqueue/pkg/errors"
)

func TestQueueRoomRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewQueueRoomRepository()

	room := &entities.QueueRoom{UUID: "r-1", Name: "Room B", QueueID: 1, LocationUUID: "loc-1"}
	require.NoError(t, repo.Create(ctx, room))
	assert.Equal(t, int64(1), room.ID)

	require.NoError(t, repo.Create(ctx, &entities.QueueRoom{UUID: "r-2", Name: "Room A", QueueID: 1, LocationUUID: "loc-1"}))
	require.NoError(t, repo.Create(ctx, &entities.QueueRoom{UUID: "r-3", Name: "Room C", QueueID: 2, LocationUUID: "loc-1"}))

	err := repo.Create(ctx, &entities.QueueRoom{UUID: "r-1", Name: "dup", QueueID: 1, LocationUUID: "loc-1"})
	assert.Equal(t, apperrors.ErrorTypeConflict, apperrors.TypeOf(err))

	got, err := repo.GetByUUID(ctx, "r-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Room B", got.Name)

	missing, err := repo.GetByID(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)

	rooms, err := repo.ListByQueueAndLocation(ctx, 1, "loc-1", false)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "Room A", rooms[0].Name)

	require.NoError(t, repo.Void(ctx, "r-2", "closed", time.Now()))
	rooms, err = repo.ListByQueueAndLocation(ctx, 1, "loc-1", false)
	require.NoError(t, err)
	assert.Len(t, rooms, 1)

	rooms, err = repo.ListByQueueAndLocation(ctx, 1, "loc-1", true)
	require.NoError(t, err)
	assert.Len(t, rooms, 2)

	assert.True(t, apperrors.IsNotFound(repo.Void(ctx, "nope", "x", time.Now())))

	require.NoError(t, repo.Purge(ctx, room.ID))
	got, err = repo.GetByUUID(ctx, "r-1")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.True(t, apperrors.IsNotFound(repo.Purge(ctx, room.ID)))
}

func TestQueueRepository_PurgeReferencedQueue(t *testing.T) {
	ctx := context.Background()
	queues := NewQueueRepository()
	rooms := NewQueueRoomRepository()
	queues.ReferencedBy(rooms, nil)

	q := &entities.Queue{UUID: "q-1", Name: "Triage", LocationUUID: "loc-1"}
	require.NoError(t, queues.Create(ctx, q))
	require.NoError(t, rooms.Create(ctx, &entities.QueueRoom{UUID: "r-1", Name: "Room", QueueID: q.ID, LocationUUID: "loc-1"}))

	err := queues.Purge(ctx, q.ID)
	assert.Equal(t, apperrors.ErrorTypeConflict, apperrors.TypeOf(err))
}

func TestQueueRepository_PurgeQueueWithEntries(t *testing.T) {
	ctx := context.Background()
	queues := NewQueueRepository()
	entries := NewQueueEntryRepository()
	queues.ReferencedBy(nil, entries)

	q := &entities.Queue{UUID: "q-1", Name: "Triage", LocationUUID: "loc-1"}
	require.NoError(t, queues.Create(ctx, q))
	require.NoError(t, entries.Create(ctx, &entities.QueueEntry{
		UUID: "e-1", QueueID: q.ID, PatientUUID: "p-1", StatusUUID: "waiting", StartedAt: time.Now(),
	}))

	err := queues.Purge(ctx, q.ID)
	assert.True(t, apperrors.IsConflict(err))

	stored, err := queues.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored)

	left, err := entries.GetByUUID(ctx, "e-1")
	require.NoError(t, err)
	assert.NotNil(t, left)

	// an unreferenced queue still purges
	other := &entities.Queue{UUID: "q-2", Name: "Lab", LocationUUID: "loc-1"}
	require.NoError(t, queues.Create(ctx, other))
	assert.NoError(t, queues.Purge(ctx, other.ID))
}

func TestQueueRepository_ListByLocation(t *testing.T) {
	ctx := context.Background()
	repo := NewQueueRepository()

	require.NoError(t, repo.Create(ctx, &entities.Queue{UUID: "q-1", Name: "Pharmacy", LocationUUID: "loc-1"}))
	require.NoError(t, repo.Create(ctx, &entities.Queue{UUID: "q-2", Name: "Lab", LocationUUID: "loc-1"}))
	require.NoError(t, repo.Create(ctx, &entities.Queue{UUID: "q-3", Name: "Triage", LocationUUID: "loc-2"}))
	require.NoError(t, repo.Void(ctx, "q-1", "merged", time.Now()))

	active, err := repo.ListByLocation(ctx, "loc-1", false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Lab", active[0].Name)

	all, err := repo.ListByLocation(ctx, "loc-1", true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := repo.ListByLocation(ctx, "loc-9", true)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestQueueEntryRepository_FindUsesNullSemantics(t *testing.T) {
	ctx := context.Background()
	repo := NewQueueEntryRepository()
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)

	require.NoError(t, repo.Create(ctx, &entities.QueueEntry{UUID: "open", QueueID: 1, StatusUUID: "s", StartedAt: start}))
	require.NoError(t, repo.Create(ctx, &entities.QueueEntry{UUID: "closed", QueueID: 1, StatusUUID: "s", StartedAt: start.Add(time.Minute), EndedAt: &end}))

	// ended_at >= x is unknown for NULL, so only the closed entry matches
	got, err := repo.Find(ctx, criteria.Gte(entities.QueueEntryFieldEndedAt, start))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "closed", got[0].UUID)

	got, err = repo.Find(ctx, criteria.Or(
		criteria.Gte(entities.QueueEntryFieldEndedAt, start),
		criteria.IsNull(entities.QueueEntryFieldEndedAt),
	))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "open", got[0].UUID)

	_, err = repo.Find(ctx, criteria.Eq("patient_name", "x"))
	assert.True(t, apperrors.IsValidation(err))
}

func TestQueueEntryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewQueueEntryRepository()
	entry := &entities.QueueEntry{UUID: "e-1", QueueID: 1, StatusUUID: "waiting", StartedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, entry))

	got, err := repo.GetByUUID(ctx, "e-1")
	require.NoError(t, err)
	got.StatusUUID = "mutated"

	again, err := repo.GetByUUID(ctx, "e-1")
	require.NoError(t, err)
	assert.Equal(t, "waiting", again.StatusUUID)

	again.StatusUUID = "serving"
	require.NoError(t, repo.Update(ctx, again))
	updated, err := repo.GetByUUID(ctx, "e-1")
	require.NoError(t, err)
	assert.Equal(t, "serving", updated.StatusUUID)

	assert.True(t, apperrors.IsNotFound(repo.Update(ctx, &entities.QueueEntry{UUID: "missing"})))
}
