package analysis

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/your-org/trackd/internal/models"
	"github.com/your-org/trackd/pkg/dto"
)

type fakeCameraResolver struct {
	mapping map[string]uuid.UUID
	err     error
}

func (f *fakeCameraResolver) CameraForVideo(_ context.Context, videoID string) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.Nil, f.err
	}
	return f.mapping[videoID], nil
}

var (
	camA = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	camB = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	camC = uuid.MustParse("33333333-3333-3333-3333-333333333333")
)

func record(videoID string, ts int64) models.Detection {
	return models.Detection{
		ID:         uuid.New(),
		VideoID:    videoID,
		AnalysisID: "job-1",
		Timestamp:  ts,
		Type:       "person",
	}
}

func newTestReconstructor() *TimelineReconstructor {
	return NewTimelineReconstructor(&fakeCameraResolver{mapping: map[string]uuid.UUID{
		"vid-a": camA,
		"vid-b": camB,
		"vid-c": camC,
	}})
}

func TestReconstructSplitsOnCameraChange(t *testing.T) {
	r := newTestReconstructor()

	// Camera A at t=1,2 then B at t=3, then back to A at t=4. The return to
	// A must not be merged with the earlier A run.
	records := []models.Detection{
		record("vid-a", 1),
		record("vid-a", 2),
		record("vid-b", 3),
		record("vid-a", 4),
	}

	got, err := r.Reconstruct(context.Background(), records)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}

	want := []dto.CameraTimeInterval{
		{CameraID: camA, EntryTimestamp: 1, ExitTimestamp: 2},
		{CameraID: camB, EntryTimestamp: 3, ExitTimestamp: 3},
		{CameraID: camA, EntryTimestamp: 4, ExitTimestamp: 4},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("intervals = %+v, want %+v", got, want)
	}
}

func TestReconstructSortsOutOfOrderRecords(t *testing.T) {
	r := newTestReconstructor()

	records := []models.Detection{
		record("vid-a", 5),
		record("vid-a", 1),
		record("vid-a", 3),
	}

	got, err := r.Reconstruct(context.Background(), records)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}

	want := []dto.CameraTimeInterval{
		{CameraID: camA, EntryTimestamp: 1, ExitTimestamp: 5},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("intervals = %+v, want %+v", got, want)
	}
}

func TestReconstructEmptyInput(t *testing.T) {
	r := newTestReconstructor()

	got, err := r.Reconstruct(context.Background(), nil)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty interval set, got %+v", got)
	}
}

func TestReconstructSkipsUnmappedVideos(t *testing.T) {
	r := newTestReconstructor()

	records := []models.Detection{
		record("vid-a", 1),
		record("vid-unknown", 2),
		record("vid-a", 3),
	}

	got, err := r.Reconstruct(context.Background(), records)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}

	// The mis-linked record is skipped, not fatal, and must not split the run.
	want := []dto.CameraTimeInterval{
		{CameraID: camA, EntryTimestamp: 1, ExitTimestamp: 3},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("intervals = %+v, want %+v", got, want)
	}
}

func TestReconstructResolverErrorPropagates(t *testing.T) {
	storeErr := errors.New("connection refused")
	r := NewTimelineReconstructor(&fakeCameraResolver{err: storeErr})

	_, err := r.Reconstruct(context.Background(), []models.Detection{record("vid-a", 1)})
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected resolver error to propagate, got %v", err)
	}
}

func TestReconstructOrderIndependence(t *testing.T) {
	r := newTestReconstructor()

	records := []models.Detection{
		record("vid-a", 1),
		record("vid-a", 4),
		record("vid-b", 6),
		record("vid-b", 9),
		record("vid-c", 12),
		record("vid-a", 15),
		record("vid-a", 17),
	}

	want, err := r.Reconstruct(context.Background(), records)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]models.Detection, len(records))
		copy(shuffled, records)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got, err := r.Reconstruct(context.Background(), shuffled)
		if err != nil {
			t.Fatalf("Reconstruct shuffle %d: %v", i, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("shuffle %d: intervals = %+v, want %+v", i, got, want)
		}
	}
}

func TestReconstructNoAdjacentIntervalsShareCamera(t *testing.T) {
	r := newTestReconstructor()

	records := []models.Detection{
		record("vid-a", 1), record("vid-b", 2), record("vid-b", 3),
		record("vid-a", 4), record("vid-c", 5), record("vid-c", 6),
		record("vid-b", 9), record("vid-a", 10),
	}

	got, err := r.Reconstruct(context.Background(), records)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}

	for i := 1; i < len(got); i++ {
		if got[i].CameraID == got[i-1].CameraID {
			t.Fatalf("adjacent intervals %d and %d share camera %s", i-1, i, got[i].CameraID)
		}
	}

	// Every record's timestamp must fall inside exactly one interval.
	for _, rec := range records {
		covered := 0
		for _, iv := range got {
			if rec.Timestamp >= iv.EntryTimestamp && rec.Timestamp <= iv.ExitTimestamp {
				covered++
			}
		}
		if covered != 1 {
			t.Fatalf("timestamp %d covered by %d intervals, want 1", rec.Timestamp, covered)
		}
	}
}

func TestReconstructTieBreakIsArrivalOrder(t *testing.T) {
	r := newTestReconstructor()

	// Two records at the same timestamp on different cameras: the stable
	// sort keeps storage order, so the output is deterministic for a fixed
	// input sequence.
	records := []models.Detection{
		record("vid-a", 5),
		record("vid-b", 5),
	}

	got, err := r.Reconstruct(context.Background(), records)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}

	want := []dto.CameraTimeInterval{
		{CameraID: camA, EntryTimestamp: 5, ExitTimestamp: 5},
		{CameraID: camB, EntryTimestamp: 5, ExitTimestamp: 5},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("intervals = %+v, want %+v", got, want)
	}
}
