package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/your-org/trackd/internal/observability"
	"github.com/your-org/trackd/pkg/dto"
)

// Dispatcher creates correlation identifiers and pushes job and control
// messages onto the message channel. It never blocks on worker completion
// and keeps no state between calls: all correlation lives in the analysis id
// and in what the worker later writes to the result store.
type Dispatcher struct {
	pub     Publisher
	reports ReportResolver
}

func NewDispatcher(pub Publisher, reports ReportResolver) *Dispatcher {
	return &Dispatcher{pub: pub, reports: reports}
}

// DispatchReportAnalysis publishes a batch analysis job for every video slot
// of the report and returns the fresh analysis id. The analysis itself
// proceeds out of band; polling the assembler is the only completion signal.
func (d *Dispatcher) DispatchReportAnalysis(ctx context.Context, reportID uuid.UUID, selected *dto.SelectedPoint) (string, error) {
	videos, err := d.reports.VideoRefsForReport(ctx, reportID)
	if err != nil {
		return "", fmt.Errorf("resolve report %s: %w", reportID, err)
	}
	if videos == nil {
		return "", fmt.Errorf("report %s: %w", reportID, ErrNotFound)
	}

	analysisID := uuid.NewString()

	payload, err := buildReportAnalysisMessage(analysisID, reportID.String(), videos, selected)
	if err != nil {
		return "", err
	}

	kind := "report"
	if selected != nil {
		kind = "report_suspect"
	}

	if err := d.pub.PublishRequest(ctx, payload); err != nil {
		observability.DispatchFailures.WithLabelValues(kind).Inc()
		return "", fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}

	observability.AnalysesDispatched.WithLabelValues(kind).Inc()
	slog.Info("dispatched report analysis",
		"analysis_id", analysisID,
		"report_id", reportID,
		"videos", len(videos),
		"with_suspect", selected != nil,
	)
	return analysisID, nil
}

// DispatchLiveAnalysis starts a live multi-camera job and returns its id.
// An empty camera list is rejected before anything is published.
func (d *Dispatcher) DispatchLiveAnalysis(ctx context.Context, cameraIDs []string) (string, error) {
	if len(cameraIDs) == 0 {
		return "", fmt.Errorf("%w: empty camera list", ErrInvalidInput)
	}

	analysisID := uuid.NewString()

	if err := d.pub.PublishCameraControl(ctx, buildLiveStartMessage(analysisID, cameraIDs)); err != nil {
		observability.DispatchFailures.WithLabelValues("live").Inc()
		return "", fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}

	observability.AnalysesDispatched.WithLabelValues("live").Inc()
	slog.Info("dispatched live analysis", "analysis_id", analysisID, "cameras", len(cameraIDs))
	return analysisID, nil
}

// StopLiveAnalysis signals the worker to end a live session. Advisory and
// idempotent: stopping twice, or stopping an id the worker never saw, is
// harmless. A session cannot be restarted under the same id.
func (d *Dispatcher) StopLiveAnalysis(ctx context.Context, analysisID string) error {
	if err := d.pub.PublishCameraControl(ctx, buildLiveStopMessage(analysisID)); err != nil {
		observability.DispatchFailures.WithLabelValues("stop_live").Inc()
		return fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}
	slog.Info("dispatched live analysis stop", "analysis_id", analysisID)
	return nil
}

// DispatchFaceDetection submits a face-match job over the report's videos,
// seeded with the reference image.
func (d *Dispatcher) DispatchFaceDetection(ctx context.Context, analysisID, reportID string, image []byte) error {
	return d.dispatchFaceJob(ctx, analysisID, reportID, image, false)
}

// DispatchFaceValidation submits the lighter pre-check that the image
// contains a usable face. Same channel, distinct payload shape.
func (d *Dispatcher) DispatchFaceValidation(ctx context.Context, analysisID, reportID string, image []byte) error {
	return d.dispatchFaceJob(ctx, analysisID, reportID, image, true)
}

func (d *Dispatcher) dispatchFaceJob(ctx context.Context, analysisID, reportID string, image []byte, validate bool) error {
	payload, err := buildFaceJobMessage(analysisID, reportID, image, validate)
	if err != nil {
		return err
	}

	kind := "face_detection"
	if validate {
		kind = "face_validation"
	}

	if err := d.pub.PublishRequest(ctx, payload); err != nil {
		observability.DispatchFailures.WithLabelValues(kind).Inc()
		return fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}

	observability.AnalysesDispatched.WithLabelValues(kind).Inc()
	slog.Info("dispatched face job", "analysis_id", analysisID, "report_id", reportID, "validate", validate)
	return nil
}
