package dto

import "github.com/google/uuid"

type NewReportRequest struct {
	Name    string      `json:"name" binding:"required"`
	Cameras []uuid.UUID `json:"cameras" binding:"required,min=1"`
}

// UploadSlot is one camera-bound video slot of a report. UploadURL is a
// presigned PUT URL, present only while the object has not been uploaded.
type UploadSlot struct {
	ID        uuid.UUID `json:"id"`
	CameraID  uuid.UUID `json:"camera_id"`
	Uploaded  bool      `json:"uploaded"`
	UploadURL string    `json:"upload_url,omitempty"`
}

type ReportResponse struct {
	ID        uuid.UUID    `json:"id"`
	Name      string       `json:"name"`
	Creator   string       `json:"creator"`
	Uploads   []UploadSlot `json:"uploads"`
	CreatedAt string       `json:"created_at"`
}

type ReportListResponse struct {
	Reports []ReportResponse `json:"reports"`
	Total   int              `json:"total"`
}

// ReportAnalysisResponse lists every analysis that has produced results for
// a report.
type ReportAnalysisResponse struct {
	AnalysisIDs []string `json:"analysisIds"`
}
