package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/patientqueue/internal/domain/entities"
)

func TestMemoryEventBus_PublishSubscribe(t *testing.T) {
	bus := NewMemoryEventBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx, "queue:q1")
	require.NoError(t, err)

	event := entities.NewQueueEvent("q1", "e1", entities.QueueEventTypeEntryCreated, time.Now(), nil)
	require.NoError(t, bus.Publish(context.Background(), "queue:q1", event))
	require.NoError(t, bus.Publish(context.Background(), "queue:other", event))

	select {
	case got := <-ch:
		assert.Equal(t, event.ID, got.ID)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	select {
	case got := <-ch:
		t.Fatalf("unexpected event %v", got)
	default:
	}
}

func TestMemoryEventBus_ContextCancelClosesChannel(t *testing.T) {
	bus := NewMemoryEventBus()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := bus.Subscribe(ctx, "queue:updates")
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed")
	}
}

func TestMemoryEventBus_Close(t *testing.T) {
	bus := NewMemoryEventBus()
	ch, err := bus.Subscribe(context.Background(), "queue:updates")
	require.NoError(t, err)

	require.NoError(t, bus.Close())
	_, ok := <-ch
	assert.False(t, ok)

	late, err := bus.Subscribe(context.Background(), "queue:updates")
	require.NoError(t, err)
	_, ok = <-late
	assert.False(t, ok)
}
