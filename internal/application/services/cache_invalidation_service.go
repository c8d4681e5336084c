package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/patientqueue/internal/domain/entities"
	"github.com/zatekoja/patientqueue/internal/domain/providers"
)

// QueueCacheInvalidator evicts cached queue data
type QueueCacheInvalidator interface {
	InvalidateQueue(ctx context.Context, queueUUID, locationUUID string) error
}

// CacheInvalidationService keeps queue caches of several instances coherent.
// Each instance evicts its own writes inline; this listener handles the
// writes of the others, delivered over the shared event bus.
type CacheInvalidationService struct {
	cache    QueueCacheInvalidator
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
	done     sync.WaitGroup
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache QueueCacheInvalidator, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins listening for queue events
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelQueueUpdates)
	if err != nil {
		return fmt.Errorf("failed to subscribe to queue updates: %w", err)
	}

	s.done.Add(1)
	go s.processEvents(eventChan)
	log.Info().Msg("cache invalidation service started")
	return nil
}

// Stop stops listening and waits for the worker to exit
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	s.done.Wait()
	log.Info().Msg("cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.QueueEvent) {
	defer s.done.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

// handleEvent evicts the queue named by a void or purge event. Entry and
// room events leave cached queues untouched.
func (s *CacheInvalidationService) handleEvent(event *entities.QueueEvent) {
	switch event.EventType {
	case entities.QueueEventTypeQueueVoided, entities.QueueEventTypeQueuePurged, entities.QueueEventTypeQueueCreated:
	default:
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()

	location, _ := event.Data["location_uuid"].(string)
	if err := s.cache.InvalidateQueue(ctx, event.QueueUUID, location); err != nil {
		log.Warn().Err(err).Str("queue_uuid", event.QueueUUID).Str("event_type", string(event.EventType)).Msg("failed to invalidate queue cache")
		return
	}
	log.Debug().Str("queue_uuid", event.QueueUUID).Str("event_type", string(event.EventType)).Msg("queue cache invalidated")
}
