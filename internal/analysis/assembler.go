package analysis

import (
	"context"
	"fmt"

	"github.com/your-org/trackd/internal/models"
	"github.com/your-org/trackd/pkg/dto"
)

// Assembler produces the externally consumed per-job views from the result
// store. Two concurrent reads of the same id may observe different result
// sets while the worker is still writing; callers poll.
type Assembler struct {
	store    ResultStore
	timeline *TimelineReconstructor
}

func NewAssembler(store ResultStore, timeline *TimelineReconstructor) *Assembler {
	return &Assembler{store: store, timeline: timeline}
}

// Exists distinguishes "unknown job" from "known job with no detections yet":
// false until the first record for the id lands in the store.
func (a *Assembler) Exists(ctx context.Context, analysisID string) (bool, error) {
	ok, err := a.store.ExistsByAnalysisID(ctx, analysisID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return ok, nil
}

// BuildResponse assembles the unified analysis response, partitioning
// records by payload kind. Records carrying neither a detection box nor a
// segmentation mask land in neither view. Returns ErrNotFound when the store
// has never seen the id; a seen-but-empty job yields empty lists.
func (a *Assembler) BuildResponse(ctx context.Context, analysisID string) (*dto.AnalysisResponse, error) {
	exists, err := a.Exists(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("analysis %s: %w", analysisID, ErrNotFound)
	}

	detections, err := a.detectionsByAnalysisID(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	segmentations, err := a.segmentationsByAnalysisID(ctx, analysisID)
	if err != nil {
		return nil, err
	}

	return &dto.AnalysisResponse{
		AnalysisID:    analysisID,
		Detections:    detections,
		Segmentations: segmentations,
	}, nil
}

// BuildTimeIntervals reconstructs the camera dwell timeline for a job. An id
// with no records yields an empty sequence, not an error; the transport
// boundary maps empty to not-found where the API contract wants a 404.
func (a *Assembler) BuildTimeIntervals(ctx context.Context, analysisID string) ([]dto.CameraTimeInterval, error) {
	records, err := a.store.FindByAnalysisID(ctx, analysisID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return a.timeline.Reconstruct(ctx, records)
}

func (a *Assembler) detectionsByAnalysisID(ctx context.Context, analysisID string) ([]dto.Detection, error) {
	records, err := a.store.FindWithDetectionBox(ctx, analysisID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	detections := make([]dto.Detection, 0, len(records))
	for _, rec := range records {
		if !rec.HasDetectionBox() {
			continue
		}
		detections = append(detections, dto.Detection{
			ClassName:   rec.Type,
			Confidence:  rec.Confidence,
			Coordinates: pointsToDTO(rec.DetectionBox),
			VideoID:     rec.VideoID,
			Timestamp:   rec.Timestamp,
		})
	}
	return detections, nil
}

func (a *Assembler) segmentationsByAnalysisID(ctx context.Context, analysisID string) ([]dto.Segmentation, error) {
	records, err := a.store.FindWithSegmentationMask(ctx, analysisID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	segmentations := make([]dto.Segmentation, 0, len(records))
	for _, rec := range records {
		if !rec.HasSegmentationMask() {
			continue
		}
		segmentations = append(segmentations, dto.Segmentation{
			Polygon:   rec.SegmentationMask,
			VideoID:   rec.VideoID,
			Timestamp: rec.Timestamp,
		})
	}
	return segmentations, nil
}

func pointsToDTO(points []models.Point) []dto.Point {
	out := make([]dto.Point, 0, len(points))
	for _, p := range points {
		out = append(out, dto.Point{X: p.X, Y: p.Y})
	}
	return out
}
