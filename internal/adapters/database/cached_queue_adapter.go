package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/patientqueue/internal/domain/entities"
	"github.com/zatekoja/patientqueue/internal/domain/providers"
	"github.com/zatekoja/patientqueue/internal/domain/repositories"
	"github.com/zatekoja/patientqueue/internal/infrastructure/observability"
)

// CachedQueueAdapter wraps a QueueRepository with read-through caching
type CachedQueueAdapter struct {
	adapter repositories.QueueRepository
	cache   providers.CacheProvider
	ttl     time.Duration
	metrics *observability.Metrics
}

var _ repositories.QueueRepository = (*CachedQueueAdapter)(nil)

// NewCachedQueueAdapter creates a new cached queue adapter
func NewCachedQueueAdapter(adapter repositories.QueueRepository, cache providers.CacheProvider, ttl time.Duration, metrics *observability.Metrics) *CachedQueueAdapter {
	return &CachedQueueAdapter{
		adapter: adapter,
		cache:   cache,
		ttl:     ttl,
		metrics: metrics,
	}
}

// Cache key generators
func queueCacheKey(uuid string) string {
	return fmt.Sprintf("queue:uuid:%s", uuid)
}

func queuesByLocationCacheKey(locationUUID string, includeVoided bool) string {
	return fmt.Sprintf("queues:location:%s:%t", locationUUID, includeVoided)
}

func locationCacheKeys(locationUUID string) []string {
	return []string{
		queuesByLocationCacheKey(locationUUID, false),
		queuesByLocationCacheKey(locationUUID, true),
	}
}

// Create persists the queue and drops the location listings it now belongs to
func (a *CachedQueueAdapter) Create(ctx context.Context, queue *entities.Queue) error {
	if err := a.adapter.Create(ctx, queue); err != nil {
		return err
	}
	a.invalidate(ctx, locationCacheKeys(queue.LocationUUID)...)
	return nil
}

// GetByUUID retrieves a queue by UUID with caching
func (a *CachedQueueAdapter) GetByUUID(ctx context.Context, uuid string) (*entities.Queue, error) {
	key := queueCacheKey(uuid)

	var cached entities.Queue
	if a.load(ctx, key, "queue", &cached) {
		return &cached, nil
	}

	queue, err := a.adapter.GetByUUID(ctx, uuid)
	if err != nil || queue == nil {
		return queue, err
	}

	a.store(ctx, key, queue)
	return queue, nil
}

// GetByID is served by the wrapped repository
func (a *CachedQueueAdapter) GetByID(ctx context.Context, id int64) (*entities.Queue, error) {
	return a.adapter.GetByID(ctx, id)
}

// ListByLocation retrieves queues at a location with caching
func (a *CachedQueueAdapter) ListByLocation(ctx context.Context, locationUUID string, includeVoided bool) ([]*entities.Queue, error) {
	key := queuesByLocationCacheKey(locationUUID, includeVoided)

	var cached []*entities.Queue
	if a.load(ctx, key, "queue_list", &cached) {
		return cached, nil
	}

	queues, err := a.adapter.ListByLocation(ctx, locationUUID, includeVoided)
	if err != nil {
		return nil, err
	}

	a.store(ctx, key, queues)
	return queues, nil
}

// Void voids the queue and evicts every key that could hold it
func (a *CachedQueueAdapter) Void(ctx context.Context, uuid, reason string, at time.Time) error {
	queue, err := a.adapter.GetByUUID(ctx, uuid)
	if err != nil {
		return err
	}

	if err := a.adapter.Void(ctx, uuid, reason, at); err != nil {
		return err
	}

	keys := []string{queueCacheKey(uuid)}
	if queue != nil {
		keys = append(keys, locationCacheKeys(queue.LocationUUID)...)
	}
	a.invalidate(ctx, keys...)
	return nil
}

// Purge deletes the queue and evicts every key that could hold it
func (a *CachedQueueAdapter) Purge(ctx context.Context, id int64) error {
	queue, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := a.adapter.Purge(ctx, id); err != nil {
		return err
	}

	if queue != nil {
		keys := append([]string{queueCacheKey(queue.UUID)}, locationCacheKeys(queue.LocationUUID)...)
		a.invalidate(ctx, keys...)
	}
	return nil
}

// load reads key into dest, reporting a usable hit
func (a *CachedQueueAdapter) load(ctx context.Context, key, family string, dest interface{}) bool {
	data, err := a.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, providers.ErrCacheMiss) {
			log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		observability.RecordCacheMiss(ctx, a.metrics, family)
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to unmarshal cached value")
		observability.RecordCacheMiss(ctx, a.metrics, family)
		return false
	}

	observability.RecordCacheHit(ctx, a.metrics, family)
	return true
}

func (a *CachedQueueAdapter) store(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to marshal value for cache")
		return
	}
	if err := a.cache.Set(ctx, key, data, a.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to write cache")
	}
}

func (a *CachedQueueAdapter) invalidate(ctx context.Context, keys ...string) {
	if err := a.cache.Delete(ctx, keys...); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("failed to invalidate cache")
	}
}

// InvalidateQueue evicts a queue and, when locationUUID is known, the
// listings of its location. Used when another instance changed the queue.
func (a *CachedQueueAdapter) InvalidateQueue(ctx context.Context, uuid, locationUUID string) error {
	keys := []string{queueCacheKey(uuid)}
	if locationUUID != "" {
		keys = append(keys, locationCacheKeys(locationUUID)...)
	}
	return a.cache.Delete(ctx, keys...)
}
