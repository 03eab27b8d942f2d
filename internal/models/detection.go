package models

import (
	"time"

	"github.com/google/uuid"
)

// Point is a 2D coordinate inside a video frame.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Detection is one worker-emitted observation tied to a video and timestamp.
// A record carries a bounding polygon or a segmentation mask, never both;
// records with neither are metadata-only and excluded from assembled views.
type Detection struct {
	ID         uuid.UUID `json:"id" db:"id"`
	VideoID    string    `json:"video_id" db:"video_id"`
	AnalysisID string    `json:"analysis_id" db:"analysis_id"`
	ReportID   string    `json:"report_id,omitempty" db:"report_id"`
	Confidence float64   `json:"confidence" db:"confidence"`
	// Timestamp is in producer-defined units: monotonic within one video,
	// not globally ordered across videos.
	Timestamp        int64       `json:"timestamp" db:"ts"`
	Type             string      `json:"type" db:"type"`
	DetectionBox     []Point     `json:"detection_box,omitempty" db:"detection_box"`
	SegmentationMask [][]float64 `json:"segmentation_mask,omitempty" db:"segmentation_mask"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
}

// HasDetectionBox reports whether the record carries a bounding polygon.
func (d *Detection) HasDetectionBox() bool {
	return len(d.DetectionBox) > 0
}

// HasSegmentationMask reports whether the record carries a segmentation mask.
func (d *Detection) HasSegmentationMask() bool {
	return len(d.SegmentationMask) > 0
}

// DetectionResult is the message a vision worker publishes for one observation.
type DetectionResult struct {
	VideoID          string      `json:"video_id"`
	AnalysisID       string      `json:"analysis_id"`
	ReportID         string      `json:"report_id,omitempty"`
	Confidence       float64     `json:"confidence"`
	Timestamp        int64       `json:"timestamp"`
	Type             string      `json:"type"`
	DetectionBox     []Point     `json:"detection_box,omitempty"`
	SegmentationMask [][]float64 `json:"segmentation_mask,omitempty"`
}
