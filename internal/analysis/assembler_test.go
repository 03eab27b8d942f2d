package analysis

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/your-org/trackd/internal/models"
)

type fakeResultStore struct {
	mu      sync.Mutex
	records []models.Detection
	err     error
}

func (f *fakeResultStore) add(recs ...models.Detection) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, recs...)
}

func (f *fakeResultStore) filter(analysisID string, keep func(*models.Detection) bool) ([]models.Detection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Detection
	for _, rec := range f.records {
		if rec.AnalysisID == analysisID && keep(&rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeResultStore) FindByAnalysisID(_ context.Context, analysisID string) ([]models.Detection, error) {
	return f.filter(analysisID, func(*models.Detection) bool { return true })
}

func (f *fakeResultStore) FindWithDetectionBox(_ context.Context, analysisID string) ([]models.Detection, error) {
	return f.filter(analysisID, (*models.Detection).HasDetectionBox)
}

func (f *fakeResultStore) FindWithSegmentationMask(_ context.Context, analysisID string) ([]models.Detection, error) {
	return f.filter(analysisID, (*models.Detection).HasSegmentationMask)
}

func (f *fakeResultStore) ExistsByAnalysisID(_ context.Context, analysisID string) (bool, error) {
	recs, err := f.FindByAnalysisID(context.Background(), analysisID)
	if err != nil {
		return false, err
	}
	return len(recs) > 0, nil
}

func boxRecord(analysisID, videoID string, ts int64, class string) models.Detection {
	return models.Detection{
		ID:           uuid.New(),
		VideoID:      videoID,
		AnalysisID:   analysisID,
		Confidence:   0.9,
		Timestamp:    ts,
		Type:         class,
		DetectionBox: []models.Point{{X: 1, Y: 2}, {X: 3, Y: 4}},
	}
}

func maskRecord(analysisID, videoID string, ts int64) models.Detection {
	return models.Detection{
		ID:               uuid.New(),
		VideoID:          videoID,
		AnalysisID:       analysisID,
		Confidence:       0.8,
		Timestamp:        ts,
		Type:             "suspect",
		SegmentationMask: [][]float64{{0, 0, 1, 0, 1, 1}},
	}
}

func newTestAssembler(store *fakeResultStore) *Assembler {
	return NewAssembler(store, newTestReconstructor())
}

func TestExists(t *testing.T) {
	store := &fakeResultStore{}
	a := newTestAssembler(store)

	ok, err := a.Exists(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if ok {
		t.Fatal("Exists must be false before any record is stored")
	}

	store.add(boxRecord("job-1", "vid-a", 1, "person"))

	ok, err = a.Exists(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !ok {
		t.Fatal("Exists must be true after the first record lands")
	}
}

func TestBuildResponseUnknownJob(t *testing.T) {
	a := newTestAssembler(&fakeResultStore{})

	_, err := a.BuildResponse(context.Background(), "unknown-id")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBuildResponsePartitionsPayloadKinds(t *testing.T) {
	store := &fakeResultStore{}
	store.add(
		boxRecord("job-1", "vid-a", 1, "person"),
		boxRecord("job-1", "vid-a", 2, "knife"),
		maskRecord("job-1", "vid-b", 3),
		// Metadata-only record: neither payload kind, excluded from both views.
		models.Detection{ID: uuid.New(), VideoID: "vid-a", AnalysisID: "job-1", Timestamp: 4, Type: "person"},
		// Another job's record must not leak in.
		boxRecord("job-2", "vid-a", 5, "person"),
	)
	a := newTestAssembler(store)

	resp, err := a.BuildResponse(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("BuildResponse: %v", err)
	}
	if resp.AnalysisID != "job-1" {
		t.Errorf("analysisId = %q, want job-1", resp.AnalysisID)
	}
	if len(resp.Detections) != 2 {
		t.Errorf("detections = %d, want 2", len(resp.Detections))
	}
	if len(resp.Segmentations) != 1 {
		t.Errorf("segmentations = %d, want 1", len(resp.Segmentations))
	}
	if resp.Detections[0].ClassName != "person" || resp.Detections[1].ClassName != "knife" {
		t.Errorf("detection classes = %q, %q", resp.Detections[0].ClassName, resp.Detections[1].ClassName)
	}
	if len(resp.Detections[0].Coordinates) != 2 {
		t.Errorf("coordinates = %d points, want 2", len(resp.Detections[0].Coordinates))
	}
	if len(resp.Segmentations[0].Polygon) != 1 {
		t.Errorf("polygon = %d rings, want 1", len(resp.Segmentations[0].Polygon))
	}
}

func TestBuildResponseSeenButEmptyViews(t *testing.T) {
	store := &fakeResultStore{}
	// One metadata-only record: the job exists but both views are empty.
	store.add(models.Detection{ID: uuid.New(), VideoID: "vid-a", AnalysisID: "job-1", Timestamp: 1})
	a := newTestAssembler(store)

	resp, err := a.BuildResponse(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("BuildResponse: %v", err)
	}
	if resp.Detections == nil || resp.Segmentations == nil {
		t.Fatal("empty views must be empty slices, not nil")
	}
	if len(resp.Detections) != 0 || len(resp.Segmentations) != 0 {
		t.Fatalf("views must be empty, got %d/%d", len(resp.Detections), len(resp.Segmentations))
	}
}

func TestBuildTimeIntervals(t *testing.T) {
	store := &fakeResultStore{}
	store.add(
		boxRecord("job-1", "vid-a", 1, "person"),
		boxRecord("job-1", "vid-b", 3, "person"),
		boxRecord("job-1", "vid-a", 2, "person"),
	)
	a := newTestAssembler(store)

	intervals, err := a.BuildTimeIntervals(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("BuildTimeIntervals: %v", err)
	}
	if len(intervals) != 2 {
		t.Fatalf("intervals = %+v, want 2", intervals)
	}
	if intervals[0].CameraID != camA || intervals[0].EntryTimestamp != 1 || intervals[0].ExitTimestamp != 2 {
		t.Errorf("first interval = %+v", intervals[0])
	}
	if intervals[1].CameraID != camB || intervals[1].EntryTimestamp != 3 {
		t.Errorf("second interval = %+v", intervals[1])
	}
}

func TestBuildTimeIntervalsEmptyIsNotAnError(t *testing.T) {
	a := newTestAssembler(&fakeResultStore{})

	intervals, err := a.BuildTimeIntervals(context.Background(), "unknown-id")
	if err != nil {
		t.Fatalf("BuildTimeIntervals: %v", err)
	}
	if len(intervals) != 0 {
		t.Fatalf("expected empty sequence, got %+v", intervals)
	}
}

func TestStoreErrorsSurfaceAsStoreUnavailable(t *testing.T) {
	store := &fakeResultStore{err: errors.New("connection reset")}
	a := newTestAssembler(store)

	if _, err := a.Exists(context.Background(), "job-1"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("Exists: expected ErrStoreUnavailable, got %v", err)
	}
	if _, err := a.BuildResponse(context.Background(), "job-1"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("BuildResponse: expected ErrStoreUnavailable, got %v", err)
	}
	if _, err := a.BuildTimeIntervals(context.Background(), "job-1"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("BuildTimeIntervals: expected ErrStoreUnavailable, got %v", err)
	}
}
