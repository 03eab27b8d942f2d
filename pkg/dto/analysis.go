package dto

import "github.com/google/uuid"

// Point is a 2D frame coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SelectedPoint seeds suspect tracking: a click on a frame of one video.
type SelectedPoint struct {
	VideoID   string `json:"videoId" binding:"required"`
	Timestamp int64  `json:"timestamp"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
}

// Detection is one bounding-box observation in an analysis response.
type Detection struct {
	ClassName   string  `json:"className"`
	Confidence  float64 `json:"confidence"`
	Coordinates []Point `json:"coordinates"`
	VideoID     string  `json:"videoId"`
	Timestamp   int64   `json:"timestamp"`
}

// Segmentation is one polygon-mask observation in an analysis response.
type Segmentation struct {
	Polygon   [][]float64 `json:"polygon"`
	VideoID   string      `json:"videoId"`
	Timestamp int64       `json:"timestamp"`
}

type AnalysisResponse struct {
	AnalysisID    string         `json:"analysisId"`
	Detections    []Detection    `json:"detections"`
	Segmentations []Segmentation `json:"segmentations"`
}

// CameraTimeInterval is a contiguous dwell span attributed to one camera
// within a job's reconstructed timeline.
type CameraTimeInterval struct {
	CameraID       uuid.UUID `json:"cameraId"`
	EntryTimestamp int64     `json:"entryTimestamp"`
	ExitTimestamp  int64     `json:"exitTimestamp"`
}

type DispatchResponse struct {
	AnalysisID string `json:"analysisId"`
	ReportID   string `json:"reportId,omitempty"`
}

// SearchPersonRequest is forwarded to the worker's search-person endpoint.
type SearchPersonRequest struct {
	ReportID  string `json:"reportId" binding:"required"`
	VideoID   string `json:"videoId" binding:"required"`
	Timestamp int64  `json:"timestamp"`
}

// SearchPersonResponse carries the mask polygons the worker found around
// the requested frame.
type SearchPersonResponse struct {
	Segmentations []SegmentationPolygon `json:"segmentations"`
}

type SegmentationPolygon struct {
	Polygon [][]float64 `json:"polygon"`
}
