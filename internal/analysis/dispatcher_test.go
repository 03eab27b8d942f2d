package analysis

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/your-org/trackd/pkg/dto"
)

type fakePublisher struct {
	mu       sync.Mutex
	requests [][]byte
	controls []string
	err      error
}

func (f *fakePublisher) PublishRequest(_ context.Context, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.requests = append(f.requests, payload)
	return nil
}

func (f *fakePublisher) PublishCameraControl(_ context.Context, msg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.controls = append(f.controls, msg)
	return nil
}

type fakeReportResolver struct {
	videos map[uuid.UUID][]string
}

func (f *fakeReportResolver) VideoRefsForReport(_ context.Context, reportID uuid.UUID) ([]string, error) {
	refs, ok := f.videos[reportID]
	if !ok {
		return nil, nil
	}
	return refs, nil
}

func TestDispatchReportAnalysis(t *testing.T) {
	reportID := uuid.New()
	pub := &fakePublisher{}
	d := NewDispatcher(pub, &fakeReportResolver{videos: map[uuid.UUID][]string{
		reportID: {"http://minio/videos/r/u1", "http://minio/videos/r/u2"},
	}})

	analysisID, err := d.DispatchReportAnalysis(context.Background(), reportID, nil)
	if err != nil {
		t.Fatalf("DispatchReportAnalysis: %v", err)
	}
	if analysisID == "" {
		t.Fatal("expected non-empty analysis id")
	}
	if len(pub.requests) != 1 {
		t.Fatalf("expected exactly one publish, got %d", len(pub.requests))
	}

	var msg struct {
		AnalysisID string             `json:"analysisId"`
		ReportID   string             `json:"reportId"`
		Videos     []string           `json:"videos"`
		Selected   *dto.SelectedPoint `json:"selected"`
	}
	if err := json.Unmarshal(pub.requests[0], &msg); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if msg.AnalysisID != analysisID {
		t.Errorf("payload analysisId = %q, want %q", msg.AnalysisID, analysisID)
	}
	if msg.ReportID != reportID.String() {
		t.Errorf("payload reportId = %q, want %q", msg.ReportID, reportID)
	}
	if len(msg.Videos) != 2 {
		t.Errorf("payload videos = %v, want 2 refs", msg.Videos)
	}
	if msg.Selected != nil {
		t.Errorf("payload selected = %+v, want absent", msg.Selected)
	}
}

func TestDispatchReportAnalysisWithSuspect(t *testing.T) {
	reportID := uuid.New()
	pub := &fakePublisher{}
	d := NewDispatcher(pub, &fakeReportResolver{videos: map[uuid.UUID][]string{
		reportID: {"http://minio/videos/r/u1"},
	}})

	selected := &dto.SelectedPoint{VideoID: "u1", Timestamp: 42, X: 100, Y: 200}
	if _, err := d.DispatchReportAnalysis(context.Background(), reportID, selected); err != nil {
		t.Fatalf("DispatchReportAnalysis: %v", err)
	}

	var msg struct {
		Selected *dto.SelectedPoint `json:"selected"`
	}
	if err := json.Unmarshal(pub.requests[0], &msg); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if msg.Selected == nil || *msg.Selected != *selected {
		t.Fatalf("payload selected = %+v, want %+v", msg.Selected, selected)
	}
}

func TestDispatchReportAnalysisUnknownReport(t *testing.T) {
	pub := &fakePublisher{}
	d := NewDispatcher(pub, &fakeReportResolver{videos: map[uuid.UUID][]string{}})

	_, err := d.DispatchReportAnalysis(context.Background(), uuid.New(), nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(pub.requests) != 0 {
		t.Fatal("nothing may be published for an unknown report")
	}
}

func TestDispatchReportAnalysisIDsAreUnique(t *testing.T) {
	reportID := uuid.New()
	d := NewDispatcher(&fakePublisher{}, &fakeReportResolver{videos: map[uuid.UUID][]string{
		reportID: {"v1"},
	}})

	first, err := d.DispatchReportAnalysis(context.Background(), reportID, nil)
	if err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	second, err := d.DispatchReportAnalysis(context.Background(), reportID, nil)
	if err != nil {
		t.Fatalf("second dispatch: %v", err)
	}
	if first == second {
		t.Fatalf("two dispatches for the same report must yield distinct ids, both %q", first)
	}
}

func TestDispatchLiveAnalysis(t *testing.T) {
	pub := &fakePublisher{}
	d := NewDispatcher(pub, &fakeReportResolver{})

	analysisID, err := d.DispatchLiveAnalysis(context.Background(), []string{"cam-1", "cam-2"})
	if err != nil {
		t.Fatalf("DispatchLiveAnalysis: %v", err)
	}
	if len(pub.controls) != 1 {
		t.Fatalf("expected one control message, got %d", len(pub.controls))
	}
	want := analysisID + ";cam-1,cam-2"
	if pub.controls[0] != want {
		t.Fatalf("control message = %q, want %q", pub.controls[0], want)
	}
}

func TestDispatchLiveAnalysisEmptyCameraList(t *testing.T) {
	pub := &fakePublisher{}
	d := NewDispatcher(pub, &fakeReportResolver{})

	_, err := d.DispatchLiveAnalysis(context.Background(), nil)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(pub.controls) != 0 {
		t.Fatal("empty camera list must be rejected before publish")
	}
}

func TestStopLiveAnalysis(t *testing.T) {
	pub := &fakePublisher{}
	d := NewDispatcher(pub, &fakeReportResolver{})

	// Stopping twice is harmless, including for an id no worker ever saw.
	if err := d.StopLiveAnalysis(context.Background(), "job-1"); err != nil {
		t.Fatalf("StopLiveAnalysis: %v", err)
	}
	if err := d.StopLiveAnalysis(context.Background(), "job-1"); err != nil {
		t.Fatalf("StopLiveAnalysis repeat: %v", err)
	}
	if len(pub.controls) != 2 {
		t.Fatalf("expected two control messages, got %d", len(pub.controls))
	}
	if pub.controls[0] != "Stop:job-1" {
		t.Fatalf("control message = %q, want %q", pub.controls[0], "Stop:job-1")
	}
}

func TestDispatchFailedPropagates(t *testing.T) {
	reportID := uuid.New()
	pub := &fakePublisher{err: errors.New("nats: no responders")}
	d := NewDispatcher(pub, &fakeReportResolver{videos: map[uuid.UUID][]string{
		reportID: {"v1"},
	}})

	if _, err := d.DispatchReportAnalysis(context.Background(), reportID, nil); !errors.Is(err, ErrDispatchFailed) {
		t.Fatalf("report dispatch: expected ErrDispatchFailed, got %v", err)
	}
	if _, err := d.DispatchLiveAnalysis(context.Background(), []string{"c"}); !errors.Is(err, ErrDispatchFailed) {
		t.Fatalf("live dispatch: expected ErrDispatchFailed, got %v", err)
	}
	if err := d.StopLiveAnalysis(context.Background(), "job-1"); !errors.Is(err, ErrDispatchFailed) {
		t.Fatalf("stop: expected ErrDispatchFailed, got %v", err)
	}
}

func TestDispatchFaceDetection(t *testing.T) {
	pub := &fakePublisher{}
	d := NewDispatcher(pub, &fakeReportResolver{})

	image := []byte{0xff, 0xd8, 0xff, 0xe0}
	if err := d.DispatchFaceDetection(context.Background(), "job-1", "report-1", image); err != nil {
		t.Fatalf("DispatchFaceDetection: %v", err)
	}

	var msg struct {
		AnalysisID string `json:"analysisId"`
		ReportID   string `json:"reportId"`
		FaceID     string `json:"faceId"`
		Validate   bool   `json:"validate"`
	}
	if err := json.Unmarshal(pub.requests[0], &msg); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	decoded, err := base64.StdEncoding.DecodeString(msg.FaceID)
	if err != nil {
		t.Fatalf("faceId is not valid base64: %v", err)
	}
	if string(decoded) != string(image) {
		t.Fatal("faceId does not round-trip the image bytes")
	}
	if msg.Validate {
		t.Fatal("detection job must not carry the validate flag")
	}
}

func TestDispatchFaceValidation(t *testing.T) {
	pub := &fakePublisher{}
	d := NewDispatcher(pub, &fakeReportResolver{})

	if err := d.DispatchFaceValidation(context.Background(), "job-1", "report-1", []byte{0x01}); err != nil {
		t.Fatalf("DispatchFaceValidation: %v", err)
	}
	if !strings.Contains(string(pub.requests[0]), `"validate":true`) {
		t.Fatalf("validation payload missing validate flag: %s", pub.requests[0])
	}
}

func TestDispatchFaceJobEmptyImage(t *testing.T) {
	pub := &fakePublisher{}
	d := NewDispatcher(pub, &fakeReportResolver{})

	if err := d.DispatchFaceDetection(context.Background(), "job-1", "report-1", nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(pub.requests) != 0 {
		t.Fatal("invalid image must be rejected before publish")
	}
}
