package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/trackd/internal/models"
)

// Detection result store. Append-only: the consumer inserts records as
// workers emit them, the analysis package reads them back by analysis id.

func (s *PostgresStore) InsertDetection(ctx context.Context, result *models.DetectionResult) (*models.Detection, error) {
	det := &models.Detection{
		ID:               uuid.New(),
		VideoID:          result.VideoID,
		AnalysisID:       result.AnalysisID,
		ReportID:         result.ReportID,
		Confidence:       result.Confidence,
		Timestamp:        result.Timestamp,
		Type:             result.Type,
		DetectionBox:     result.DetectionBox,
		SegmentationMask: result.SegmentationMask,
		CreatedAt:        time.Now().UTC(),
	}

	var box, mask []byte
	var err error
	if det.HasDetectionBox() {
		if box, err = json.Marshal(det.DetectionBox); err != nil {
			return nil, fmt.Errorf("marshal detection box: %w", err)
		}
	}
	if det.HasSegmentationMask() {
		if mask, err = json.Marshal(det.SegmentationMask); err != nil {
			return nil, fmt.Errorf("marshal segmentation mask: %w", err)
		}
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO detections (id, video_id, analysis_id, report_id, confidence, ts, type, detection_box, segmentation_mask, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		det.ID, det.VideoID, det.AnalysisID, nullString(det.ReportID), det.Confidence,
		det.Timestamp, det.Type, box, mask, det.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert detection: %w", err)
	}
	return det, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *PostgresStore) FindByAnalysisID(ctx context.Context, analysisID string) ([]models.Detection, error) {
	return s.queryDetections(ctx,
		`SELECT id, video_id, analysis_id, COALESCE(report_id, ''), confidence, ts, type, detection_box, segmentation_mask, created_at
		 FROM detections WHERE analysis_id = $1 ORDER BY created_at`, analysisID)
}

func (s *PostgresStore) FindWithDetectionBox(ctx context.Context, analysisID string) ([]models.Detection, error) {
	return s.queryDetections(ctx,
		`SELECT id, video_id, analysis_id, COALESCE(report_id, ''), confidence, ts, type, detection_box, segmentation_mask, created_at
		 FROM detections WHERE analysis_id = $1 AND detection_box IS NOT NULL ORDER BY created_at`, analysisID)
}

func (s *PostgresStore) FindWithSegmentationMask(ctx context.Context, analysisID string) ([]models.Detection, error) {
	return s.queryDetections(ctx,
		`SELECT id, video_id, analysis_id, COALESCE(report_id, ''), confidence, ts, type, detection_box, segmentation_mask, created_at
		 FROM detections WHERE analysis_id = $1 AND segmentation_mask IS NOT NULL ORDER BY created_at`, analysisID)
}

func (s *PostgresStore) ExistsByAnalysisID(ctx context.Context, analysisID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM detections WHERE analysis_id = $1)`, analysisID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists by analysis id: %w", err)
	}
	return exists, nil
}

// DistinctAnalysisIDsByReportID lists every analysis that ever produced a
// record for the report.
func (s *PostgresStore) DistinctAnalysisIDsByReportID(ctx context.Context, reportID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT analysis_id FROM detections WHERE report_id = $1`, reportID)
	if err != nil {
		return nil, fmt.Errorf("distinct analysis ids: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan analysis id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *PostgresStore) queryDetections(ctx context.Context, query string, args ...interface{}) ([]models.Detection, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query detections: %w", err)
	}
	defer rows.Close()

	var detections []models.Detection
	for rows.Next() {
		var det models.Detection
		var box, mask []byte
		if err := rows.Scan(&det.ID, &det.VideoID, &det.AnalysisID, &det.ReportID,
			&det.Confidence, &det.Timestamp, &det.Type, &box, &mask, &det.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan detection: %w", err)
		}
		if len(box) > 0 {
			if err := json.Unmarshal(box, &det.DetectionBox); err != nil {
				return nil, fmt.Errorf("unmarshal detection box: %w", err)
			}
		}
		if len(mask) > 0 {
			if err := json.Unmarshal(mask, &det.SegmentationMask); err != nil {
				return nil, fmt.Errorf("unmarshal segmentation mask: %w", err)
			}
		}
		detections = append(detections, det)
	}
	return detections, nil
}
