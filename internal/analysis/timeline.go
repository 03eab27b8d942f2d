package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/your-org/trackd/internal/models"
	"github.com/your-org/trackd/internal/observability"
	"github.com/your-org/trackd/pkg/dto"
)

// TimelineReconstructor turns the unordered detection records of one job into
// the chronologically ordered set of camera dwell intervals.
type TimelineReconstructor struct {
	cameras CameraResolver
}

func NewTimelineReconstructor(cameras CameraResolver) *TimelineReconstructor {
	return &TimelineReconstructor{cameras: cameras}
}

// Reconstruct sorts the records by timestamp (stable, so equal timestamps
// keep their arrival order and the output is deterministic for a fixed input
// sequence) and sweeps once, merging adjacent same-camera runs and splitting
// on any intervening detection from another camera. No gap tolerance is
// applied: a single foreign detection always splits, even if the subject
// returns to the original camera one timestamp later. Records whose video
// has no camera mapping are logged and skipped; one mis-linked upload must
// not blank out an otherwise valid timeline.
func (r *TimelineReconstructor) Reconstruct(ctx context.Context, records []models.Detection) ([]dto.CameraTimeInterval, error) {
	type resolved struct {
		cameraID  uuid.UUID
		timestamp int64
	}

	rs := make([]resolved, 0, len(records))
	for _, rec := range records {
		cameraID, err := r.cameras.CameraForVideo(ctx, rec.VideoID)
		if err != nil {
			return nil, fmt.Errorf("resolve camera for video %s: %w", rec.VideoID, err)
		}
		if cameraID == uuid.Nil {
			observability.UnresolvedVideos.Inc()
			slog.Warn("skipping detection with unmapped video",
				"video_id", rec.VideoID,
				"analysis_id", rec.AnalysisID,
				"error", ErrUnresolvedVideo,
			)
			continue
		}
		rs = append(rs, resolved{cameraID: cameraID, timestamp: rec.Timestamp})
	}

	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].timestamp < rs[j].timestamp
	})

	intervals := make([]dto.CameraTimeInterval, 0)
	var current *dto.CameraTimeInterval

	for _, rec := range rs {
		if current != nil && current.CameraID == rec.cameraID {
			current.ExitTimestamp = rec.timestamp
			continue
		}
		if current != nil {
			intervals = append(intervals, *current)
		}
		current = &dto.CameraTimeInterval{
			CameraID:       rec.cameraID,
			EntryTimestamp: rec.timestamp,
			ExitTimestamp:  rec.timestamp,
		}
	}
	if current != nil {
		intervals = append(intervals, *current)
	}

	return intervals, nil
}
