package dto

// DetectionEvent is one worker observation pushed to watching clients as it
// lands in the result store.
type DetectionEvent struct {
	ID               string      `json:"id"`
	VideoID          string      `json:"video_id"`
	AnalysisID       string      `json:"analysis_id"`
	ReportID         string      `json:"report_id,omitempty"`
	Confidence       float64     `json:"confidence"`
	Timestamp        int64       `json:"timestamp"`
	Type             string      `json:"type"`
	DetectionBox     []Point     `json:"detection_box,omitempty"`
	SegmentationMask [][]float64 `json:"segmentation_mask,omitempty"`
	CreatedAt        string      `json:"created_at"`
}

// WSEvent is a WebSocket message for real-time detection delivery.
type WSEvent struct {
	Type       string         `json:"type"` // detection
	AnalysisID string         `json:"analysis_id"`
	Data       DetectionEvent `json:"data"`
}
