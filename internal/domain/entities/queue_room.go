package entities

import (
	"time"
)

// QueueRoom represents a physical room serving a queue at a location
type QueueRoom struct {
	ID           int64      `json:"id" db:"id"`
	UUID         string     `json:"uuid" db:"uuid"`
	Name         string     `json:"name" db:"name" validate:"required,max=255"`
	Description  string     `json:"description,omitempty" db:"description"`
	QueueID      int64      `json:"queue_id" db:"queue_id" validate:"required"`
	LocationUUID string     `json:"location_uuid" db:"location_uuid" validate:"required"`
	Voided       bool       `json:"voided" db:"voided"`
	VoidReason   *string    `json:"void_reason,omitempty" db:"void_reason"`
	DateVoided   *time.Time `json:"date_voided,omitempty" db:"date_voided"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}
