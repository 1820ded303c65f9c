package session

import (
	"testing"
	"time"
)

func TestTouchCreatesAndUpdates(t *testing.T) {
	r := NewRegistry()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	now := base
	r.clock = func() time.Time { return now }

	if !r.Touch(100, "alice") {
		t.Fatal("first touch must report a new user")
	}
	now = base.Add(time.Minute)
	if r.Touch(100, "") {
		t.Fatal("second touch must not report new")
	}

	users := r.List(0)
	if len(users) != 1 {
		t.Fatalf("expected one user, got %d", len(users))
	}
	u := users[0]
	if u.Username != "alice" {
		t.Fatalf("username = %q", u.Username)
	}
	if !u.FirstSeen.Equal(base) {
		t.Fatalf("first seen = %v", u.FirstSeen)
	}
	if !u.LastActive.Equal(base.Add(time.Minute)) {
		t.Fatalf("last active = %v", u.LastActive)
	}
	if u.Interactions != 2 {
		t.Fatalf("interactions = %d", u.Interactions)
	}
}

func TestSnapshotKeepsFirstSeenOrder(t *testing.T) {
	r := NewRegistry()
	for _, id := range []int64{30, 10, 20} {
		r.Touch(id, "")
	}
	// Re-touching must not reorder.
	r.Touch(30, "")

	snap := r.Snapshot()
	want := []int64{30, 10, 20}
	if len(snap) != len(want) {
		t.Fatalf("snapshot len = %d", len(snap))
	}
	for i := range want {
		if snap[i] != want[i] {
			t.Fatalf("snapshot[%d] = %d, want %d", i, snap[i], want[i])
		}
	}

	// Mutating the snapshot must not leak into the registry.
	snap[0] = 999
	if r.Snapshot()[0] != 30 {
		t.Fatal("snapshot must be a copy")
	}
}

func TestListLimit(t *testing.T) {
	r := NewRegistry()
	for i := int64(1); i <= 5; i++ {
		r.Touch(i, "")
	}
	if got := len(r.List(3)); got != 3 {
		t.Fatalf("List(3) len = %d", got)
	}
	if got := len(r.List(0)); got != 5 {
		t.Fatalf("List(0) len = %d", got)
	}
	if r.Count() != 5 {
		t.Fatalf("count = %d", r.Count())
	}
}

func TestPrefs(t *testing.T) {
	r := NewRegistry()
	r.Touch(7, "")
	r.SetPref(7, "units", "metric")

	if v, ok := r.Pref(7, "units"); !ok || v != "metric" {
		t.Fatalf("pref = %q, %v", v, ok)
	}
	if _, ok := r.Pref(7, "missing"); ok {
		t.Fatal("missing pref must not be found")
	}
	if _, ok := r.Pref(8, "units"); ok {
		t.Fatal("unknown user must not have prefs")
	}
}

func TestTouchIgnoresZeroID(t *testing.T) {
	r := NewRegistry()
	if r.Touch(0, "ghost") {
		t.Fatal("zero id must be ignored")
	}
	if r.Count() != 0 {
		t.Fatalf("count = %d", r.Count())
	}
}
