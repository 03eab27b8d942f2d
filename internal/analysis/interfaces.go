package analysis

import (
	"context"

	"github.com/google/uuid"

	"github.com/your-org/trackd/internal/models"
)

// Publisher pushes job and control messages onto the message channel.
// Request traffic (batch report and face jobs) and camera control traffic
// (live start/stop) are segregated onto distinct channels. Implementations
// must be safe for concurrent use.
type Publisher interface {
	PublishRequest(ctx context.Context, payload []byte) error
	PublishCameraControl(ctx context.Context, msg string) error
}

// ResultStore is the append-only keyed store of worker detection records.
// The core only reads from it; workers write out of band.
type ResultStore interface {
	FindByAnalysisID(ctx context.Context, analysisID string) ([]models.Detection, error)
	FindWithDetectionBox(ctx context.Context, analysisID string) ([]models.Detection, error)
	FindWithSegmentationMask(ctx context.Context, analysisID string) ([]models.Detection, error)
	ExistsByAnalysisID(ctx context.Context, analysisID string) (bool, error)
}

// CameraResolver maps a video slot to the camera that produced it.
// Returns uuid.Nil with a nil error when no mapping exists.
type CameraResolver interface {
	CameraForVideo(ctx context.Context, videoID string) (uuid.UUID, error)
}

// ReportResolver resolves a report to its ordered set of video refs.
// Returns a nil slice with a nil error when the report does not exist; an
// existing report with no slots yields an empty non-nil slice.
type ReportResolver interface {
	VideoRefsForReport(ctx context.Context, reportID uuid.UUID) ([]string, error)
}
