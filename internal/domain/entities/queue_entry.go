package entities

import (
	"time"
)

// Queue entry field names shared by every persistence engine
const (
	QueueEntryFieldID        = "id"
	QueueEntryFieldQueueID   = "queue_id"
	QueueEntryFieldStatus    = "status_uuid"
	QueueEntryFieldStartedAt = "started_at"
	QueueEntryFieldEndedAt   = "ended_at"
	QueueEntryFieldVoided    = "voided"
)

// QueueEntry is one patient's occupancy of a queue
type QueueEntry struct {
	ID           int64      `json:"id" db:"id"`
	UUID         string     `json:"uuid" db:"uuid"`
	QueueID      int64      `json:"queue_id" db:"queue_id" validate:"required"`
	PatientUUID  string     `json:"patient_uuid" db:"patient_uuid" validate:"required"`
	StatusUUID   string     `json:"status_uuid" db:"status_uuid" validate:"required"`
	PriorityUUID *string    `json:"priority_uuid,omitempty" db:"priority_uuid"`
	SortWeight   float64    `json:"sort_weight" db:"sort_weight"`
	StartedAt    time.Time  `json:"started_at" db:"started_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty" db:"ended_at"`
	Voided       bool       `json:"voided" db:"voided"`
	VoidReason   *string    `json:"void_reason,omitempty" db:"void_reason"`
	DateVoided   *time.Time `json:"date_voided,omitempty" db:"date_voided"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// IsOpen reports whether the patient is still waiting or being served
func (e *QueueEntry) IsOpen() bool {
	return e.EndedAt == nil
}

// WaitMinutes returns the whole minutes spent in the queue, truncated.
// Open entries are measured against now.
func (e *QueueEntry) WaitMinutes(now time.Time) int64 {
	end := now
	if e.EndedAt != nil {
		end = *e.EndedAt
	}
	return int64(end.Sub(e.StartedAt) / time.Minute)
}

// FieldValue exposes entry fields by name for criteria evaluation
func (e *QueueEntry) FieldValue(field string) (interface{}, bool) {
	switch field {
	case QueueEntryFieldID:
		return e.ID, true
	case QueueEntryFieldQueueID:
		return e.QueueID, true
	case QueueEntryFieldStatus:
		return e.StatusUUID, true
	case QueueEntryFieldStartedAt:
		return e.StartedAt, true
	case QueueEntryFieldEndedAt:
		if e.EndedAt == nil {
			return nil, true
		}
		return *e.EndedAt, true
	case QueueEntryFieldVoided:
		return e.Voided, true
	}
	return nil, false
}
