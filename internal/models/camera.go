package models

import (
	"time"

	"github.com/google/uuid"
)

// Camera is a registered surveillance camera. Deactivated cameras keep their
// history but cannot be attached to new reports.
type Camera struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Latitude  float64   `json:"latitude" db:"latitude"`
	Longitude float64   `json:"longitude" db:"longitude"`
	Active    bool      `json:"active" db:"active"`
	AddedAt   time.Time `json:"added_at" db:"added_at"`
}
