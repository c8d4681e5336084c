package entities

import (
	"time"
)

// Queue represents a named waiting line at a location, optionally tied to a clinical service
type Queue struct {
	ID           int64      `json:"id" db:"id"`
	UUID         string     `json:"uuid" db:"uuid"`
	Name         string     `json:"name" db:"name" validate:"required,max=255"`
	Description  string     `json:"description,omitempty" db:"description"`
	LocationUUID string     `json:"location_uuid" db:"location_uuid" validate:"required"`
	ServiceUUID  *string    `json:"service_uuid,omitempty" db:"service_uuid"`
	Voided       bool       `json:"voided" db:"voided"`
	VoidReason   *string    `json:"void_reason,omitempty" db:"void_reason"`
	DateVoided   *time.Time `json:"date_voided,omitempty" db:"date_voided"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}
