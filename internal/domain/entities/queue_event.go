package entities

import (
	"time"

	"github.com/google/uuid"
)

// QueueEventType represents the type of queue event
type QueueEventType string

const (
	QueueEventTypeQueueCreated       QueueEventType = "queue.created"
	QueueEventTypeQueueVoided        QueueEventType = "queue.voided"
	QueueEventTypeQueuePurged        QueueEventType = "queue.purged"
	QueueEventTypeEntryCreated       QueueEventType = "entry.created"
	QueueEventTypeEntryStatusChanged QueueEventType = "entry.status_changed"
	QueueEventTypeEntryEnded         QueueEventType = "entry.ended"
	QueueEventTypeEntryVoided        QueueEventType = "entry.voided"
	QueueEventTypeRoomCreated        QueueEventType = "room.created"
	QueueEventTypeRoomVoided         QueueEventType = "room.voided"
	QueueEventTypeRoomPurged         QueueEventType = "room.purged"
)

// QueueEvent is a real-time notification about a change inside a queue
type QueueEvent struct {
	ID         string                 `json:"id"`
	QueueUUID  string                 `json:"queue_uuid"`
	EntityUUID string                 `json:"entity_uuid"`
	EventType  QueueEventType         `json:"event_type"`
	Timestamp  time.Time              `json:"timestamp"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// NewQueueEvent creates a new queue event
func NewQueueEvent(queueUUID, entityUUID string, eventType QueueEventType, at time.Time, data map[string]interface{}) *QueueEvent {
	return &QueueEvent{
		ID:         uuid.NewString(),
		QueueUUID:  queueUUID,
		EntityUUID: entityUUID,
		EventType:  eventType,
		Timestamp:  at,
		Data:       data,
	}
}
