package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestLocationTrailAppendAndOrder(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	var trail LocationTrail
	trail.Append(LocationEvent{LocationID: "loc-1", VerifiedAt: base})
	trail.Append(LocationEvent{LocationID: "loc-2", VerifiedAt: base.Add(time.Hour)})
	trail.Append(LocationEvent{LocationID: "loc-3", VerifiedAt: base.Add(time.Hour)})

	if trail.Len() != 3 {
		t.Fatalf("expected 3 events, got %d", trail.Len())
	}
	if !trail.Ordered() {
		t.Fatalf("trail with non-decreasing timestamps should be ordered")
	}
	last, ok := trail.Last()
	if !ok || last.LocationID != "loc-3" {
		t.Fatalf("expected last event loc-3, got %+v ok=%v", last, ok)
	}

	trail.Append(LocationEvent{LocationID: "loc-0", VerifiedAt: base.Add(-time.Hour)})
	if trail.Ordered() {
		t.Fatalf("trail with backwards timestamp should not be ordered")
	}
}

func TestLocationTrailEventsReturnsCopy(t *testing.T) {
	trail := NewLocationTrail(LocationEvent{LocationID: "loc-1", VerifiedAt: time.Now().UTC()})
	events := trail.Events()
	events[0].LocationID = "tampered"
	got, _ := trail.Last()
	if got.LocationID != "loc-1" {
		t.Fatalf("mutating Events() result changed the trail")
	}
}

func TestLocationTrailJSONRoundTrip(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	trail := NewLocationTrail(
		LocationEvent{LocationID: "loc-1", VerifiedAt: base},
		LocationEvent{LocationID: "loc-2", VerifiedAt: base.Add(time.Minute)},
	)
	data, err := json.Marshal(trail)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var restored LocationTrail
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if restored.Len() != 2 {
		t.Fatalf("expected 2 events after round trip, got %d", restored.Len())
	}
	last, _ := restored.Last()
	if last.LocationID != "loc-2" || !last.VerifiedAt.Equal(base.Add(time.Minute)) {
		t.Fatalf("unexpected last event after round trip: %+v", last)
	}
}

func TestLocationTrailEmptyMarshalsAsArray(t *testing.T) {
	var trail LocationTrail
	data, err := json.Marshal(trail)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "[]" {
		t.Fatalf("expected empty array, got %s", data)
	}
}
