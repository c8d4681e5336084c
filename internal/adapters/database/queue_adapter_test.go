package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/patientqueue/internal/domain/entities"
	"github.com/zatekoja/patientqueue/internal/domain/providers"
	apperrors "github.com/zatekoja/patientqueue/pkg/errors"
)

var queueRowColumns = []string{
	"id", "uuid", "name", "description", "location_uuid", "service_uuid",
	"voided", "void_reason", "date_voided", "created_at", "updated_at",
}

func TestQueueAdapter_ListByLocation(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := NewQueueAdapter(client, nil)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM "queues" WHERE \(\("location_uuid" = 'loc-1'\) AND \("voided" IS FALSE\)\)`).
		WillReturnRows(sqlmock.NewRows(queueRowColumns).
			AddRow(1, "q-1", "Lab", "", "loc-1", nil, false, nil, nil, now, now))

	queues, err := adapter.ListByLocation(context.Background(), "loc-1", false)
	require.NoError(t, err)
	require.Len(t, queues, 1)
	assert.Nil(t, queues[0].ServiceUUID)

	mock.ExpectQuery(`SELECT .* FROM "queues" WHERE \("location_uuid" = 'loc-1'\) ORDER BY`).
		WillReturnRows(sqlmock.NewRows(queueRowColumns).
			AddRow(1, "q-1", "Lab", "", "loc-1", "svc", false, nil, nil, now, now).
			AddRow(2, "q-2", "Old", "", "loc-1", nil, true, "merged", now, now, now))

	queues, err = adapter.ListByLocation(context.Background(), "loc-1", true)
	require.NoError(t, err)
	require.Len(t, queues, 2)
	assert.True(t, queues[1].Voided)
	assert.Equal(t, "merged", *queues[1].VoidReason)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueAdapter_PurgeReferenced(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := NewQueueAdapter(client, nil)

	mock.ExpectExec(`DELETE FROM "queues"`).WillReturnError(&pq.Error{Code: pqForeignKeyViolation})

	err := adapter.Purge(context.Background(), 1)
	assert.Equal(t, apperrors.ErrorTypeConflict, apperrors.TypeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// fakeCache is a map-backed CacheProvider
type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, providers.ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func TestCachedQueueAdapter_ReadThroughAndInvalidate(t *testing.T) {
	client, mock := newMockClient(t)
	cache := newFakeCache()
	adapter := NewCachedQueueAdapter(NewQueueAdapter(client, nil), cache, time.Minute, nil)
	ctx := context.Background()
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .* FROM "queues"`).
		WillReturnRows(sqlmock.NewRows(queueRowColumns).
			AddRow(1, "q-1", "Lab", "", "loc-1", nil, false, nil, nil, now, now))

	first, err := adapter.ListByLocation(ctx, "loc-1", false)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// served from cache, no query expected
	second, err := adapter.ListByLocation(ctx, "loc-1", false)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "q-1", second[0].UUID)

	mock.ExpectQuery(`INSERT INTO "queues"`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	require.NoError(t, adapter.Create(ctx, &entities.Queue{UUID: "q-2", Name: "Pharmacy", LocationUUID: "loc-1"}))

	_, err = cache.Get(ctx, queuesByLocationCacheKey("loc-1", false))
	assert.ErrorIs(t, err, providers.ErrCacheMiss)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedQueueAdapter_AbsentIsNotCached(t *testing.T) {
	client, mock := newMockClient(t)
	cache := newFakeCache()
	adapter := NewCachedQueueAdapter(NewQueueAdapter(client, nil), cache, time.Minute, nil)

	mock.ExpectQuery(`SELECT .* FROM "queues"`).WillReturnRows(sqlmock.NewRows(queueRowColumns))

	queue, err := adapter.GetByUUID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, queue)
	assert.Empty(t, cache.data)
}

func TestCachedQueueAdapter_VoidEvicts(t *testing.T) {
	client, mock := newMockClient(t)
	cache := newFakeCache()
	adapter := NewCachedQueueAdapter(NewQueueAdapter(client, nil), cache, time.Minute, nil)
	ctx := context.Background()
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .* FROM "queues" WHERE \("uuid" = 'q-1'\)`).
		WillReturnRows(sqlmock.NewRows(queueRowColumns).
			AddRow(1, "q-1", "Lab", "", "loc-1", nil, false, nil, nil, now, now))
	_, err := adapter.GetByUUID(ctx, "q-1")
	require.NoError(t, err)
	require.Contains(t, cache.data, queueCacheKey("q-1"))

	mock.ExpectQuery(`SELECT .* FROM "queues" WHERE \("uuid" = 'q-1'\)`).
		WillReturnRows(sqlmock.NewRows(queueRowColumns).
			AddRow(1, "q-1", "Lab", "", "loc-1", nil, false, nil, nil, now, now))
	mock.ExpectExec(`UPDATE "queues"`).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, adapter.Void(ctx, "q-1", "merged", now))
	assert.NotContains(t, cache.data, queueCacheKey("q-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedQueueAdapter_InvalidateQueue(t *testing.T) {
	cache := newFakeCache()
	adapter := NewCachedQueueAdapter(nil, cache, time.Minute, nil)
	ctx := context.Background()

	for _, key := range []string{
		queueCacheKey("q-1"),
		queuesByLocationCacheKey("loc-1", false),
		queuesByLocationCacheKey("loc-1", true),
		queuesByLocationCacheKey("loc-2", false),
	} {
		require.NoError(t, cache.Set(ctx, key, []byte("{}"), time.Minute))
	}

	require.NoError(t, adapter.InvalidateQueue(ctx, "q-1", "loc-1"))
	assert.Equal(t, []string{queuesByLocationCacheKey("loc-2", false)}, keysOf(cache))

	require.NoError(t, adapter.InvalidateQueue(ctx, "q-9", ""))
	assert.Len(t, cache.data, 1)
}

func keysOf(c *fakeCache) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.data))
	for k := range c.data {
		keys = append(keys, k)
	}
	return keys
}
