package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/patientqueue/internal/domain/criteria"
	"github.com/zatekoja/patientqueue/internal/domain/entities"
	"github.com/zatekoja/patientqueue/internal/domain/repositories"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock(now time.Time) *fixedClock { return &fixedClock{now: now} }

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type MockQueueEntryRepository struct {
	mock.Mock
}

func (m *MockQueueEntryRepository) Create(ctx context.Context, entry *entities.QueueEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockQueueEntryRepository) GetByUUID(ctx context.Context, uuid string) (*entities.QueueEntry, error) {
	args := m.Called(ctx, uuid)
	entry, _ := args.Get(0).(*entities.QueueEntry)
	return entry, args.Error(1)
}

func (m *MockQueueEntryRepository) Update(ctx context.Context, entry *entities.QueueEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockQueueEntryRepository) Void(ctx context.Context, uuid, reason string, at time.Time) error {
	return m.Called(ctx, uuid, reason, at).Error(0)
}

func (m *MockQueueEntryRepository) Find(ctx context.Context, where criteria.Predicate) ([]*entities.QueueEntry, error) {
	args := m.Called(ctx, where)
	entries, _ := args.Get(0).([]*entities.QueueEntry)
	return entries, args.Error(1)
}

type MockQueueSearchRepository struct {
	mock.Mock
}

func (m *MockQueueSearchRepository) Index(ctx context.Context, queue *entities.Queue) error {
	return m.Called(ctx, queue).Error(0)
}

func (m *MockQueueSearchRepository) Delete(ctx context.Context, uuid string) error {
	return m.Called(ctx, uuid).Error(0)
}

func (m *MockQueueSearchRepository) Search(ctx context.Context, params repositories.QueueSearchParams) ([]*entities.Queue, error) {
	args := m.Called(ctx, params)
	queues, _ := args.Get(0).([]*entities.Queue)
	return queues, args.Error(1)
}

// recordingBus captures published events per channel
type recordingBus struct {
	mu     sync.Mutex
	events map[string][]*entities.QueueEvent
}

func newRecordingBus() *recordingBus {
	return &recordingBus{events: map[string][]*entities.QueueEvent{}}
}

func (b *recordingBus) Publish(ctx context.Context, channel string, event *entities.QueueEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events[channel] = append(b.events[channel], event)
	return nil
}

func (b *recordingBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.QueueEvent, error) {
	ch := make(chan *entities.QueueEvent)
	close(ch)
	return ch, nil
}

func (b *recordingBus) Unsubscribe(ctx context.Context, channel string) error { return nil }

func (b *recordingBus) Close() error { return nil }

func (b *recordingBus) types(channel string) []entities.QueueEventType {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []entities.QueueEventType{}
	for _, e := range b.events[channel] {
		out = append(out, e.EventType)
	}
	return out
}
