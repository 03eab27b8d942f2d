package models

import (
	"time"

	"github.com/google/uuid"
)

// Report is a named bundle of camera-bound video slots submitted for analysis.
type Report struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	CreatorBadge string    `json:"creator_badge" db:"creator_badge"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Upload is one video slot in a report, bound to the camera that produced it.
// The slot exists before any video is uploaded; the object lives in MinIO
// under <reportID>/<uploadID>.
type Upload struct {
	ID       uuid.UUID `json:"id" db:"id"`
	ReportID uuid.UUID `json:"report_id" db:"report_id"`
	CameraID uuid.UUID `json:"camera_id" db:"camera_id"`
}
