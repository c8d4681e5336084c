// Package bootstrap opens the persistence engine selected by configuration
// and hands back repositories ready for the application services.
package bootstrap

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/patientqueue/internal/adapters/cache"
	"github.com/zatekoja/patientqueue/internal/adapters/database"
	"github.com/zatekoja/patientqueue/internal/adapters/memory"
	"github.com/zatekoja/patientqueue/internal/domain/repositories"
	"github.com/zatekoja/patientqueue/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/patientqueue/internal/infrastructure/clients/redis"
	"github.com/zatekoja/patientqueue/internal/infrastructure/observability"
	"github.com/zatekoja/patientqueue/pkg/config"
)

// Storage bundles the repositories of the configured engine
type Storage struct {
	Queues  repositories.QueueRepository
	Entries repositories.QueueEntryRepository
	Rooms   repositories.QueueRoomRepository

	// Redis is nil when disabled or unreachable
	Redis *redis.Client
	// QueueCache is set when queue lookups go through Redis
	QueueCache *database.CachedQueueAdapter

	closers []func() error
}

// OpenStorage builds repositories for cfg.Storage.Driver. PostgreSQL queue
// lookups are wrapped with the Redis cache when Redis is reachable.
func OpenStorage(cfg *config.Config, metrics *observability.Metrics) (*Storage, error) {
	s := &Storage{}

	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			// the service works without caching and falls back to in-process events
			log.Warn().Err(err).Msg("Redis unavailable, continuing without cache")
		} else {
			s.Redis = redisClient
			s.closers = append(s.closers, redisClient.Close)
			log.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("Redis client initialized")
		}
	}

	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		queues := memory.NewQueueRepository()
		rooms := memory.NewQueueRoomRepository()
		entries := memory.NewQueueEntryRepository()
		queues.ReferencedBy(rooms, entries)

		s.Queues = queues
		s.Rooms = rooms
		s.Entries = entries
		log.Warn().Msg("using in-memory storage, data is lost on restart")

	case config.StorageDriverPostgres:
		pgClient, err := postgres.NewClient(&cfg.Database)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to initialize PostgreSQL client: %w", err)
		}
		s.closers = append(s.closers, pgClient.Close)

		var queues repositories.QueueRepository = database.NewQueueAdapter(pgClient, metrics)
		if s.Redis != nil {
			s.QueueCache = database.NewCachedQueueAdapter(queues, cache.NewRedisAdapter(s.Redis), cfg.Queue.CacheTTL, metrics)
			queues = s.QueueCache
			log.Info().Dur("ttl", cfg.Queue.CacheTTL).Msg("queue adapter wrapped with caching layer")
		}

		s.Queues = queues
		s.Entries = database.NewQueueEntryAdapter(pgClient, metrics)
		s.Rooms = database.NewQueueRoomAdapter(pgClient, metrics)

	default:
		s.Close()
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}

	return s, nil
}

// Close releases every client opened by OpenStorage
func (s *Storage) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
