package reconcile

import (
	"testing"
	"time"

	"expoplan/schedule"
)

func session(start, end time.Time) schedule.Session {
	return schedule.Session{Start: start, End: end}
}

func TestDateRange(t *testing.T) {
	day1 := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.Local)
	day2 := time.Date(2026, time.March, 3, 16, 0, 0, 0, time.Local)

	sessions := []schedule.Session{
		session(day1.Add(time.Hour), day1.Add(2*time.Hour)),
		session(day1, day1.Add(30*time.Minute)),
		session(day2, day2.Add(30*time.Minute)),
	}

	start, end, ok := DateRange(sessions)
	if !ok {
		t.Fatalf("expected a range")
	}
	if !start.Equal(day1) {
		t.Fatalf("unexpected start: %v", start)
	}
	if !end.Equal(day2.Add(30 * time.Minute)) {
		t.Fatalf("unexpected end: %v", end)
	}
}

func TestDateRange_Empty(t *testing.T) {
	if _, _, ok := DateRange(nil); ok {
		t.Fatalf("expected no range for empty input")
	}
}

func TestNeedsUpdate(t *testing.T) {
	base := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.Local)

	if NeedsUpdate(base, base.Add(time.Hour), base, base.Add(time.Hour)) {
		t.Fatalf("identical ranges must not need an update")
	}
	if !NeedsUpdate(base, base.Add(time.Hour), base, base.Add(2*time.Hour)) {
		t.Fatalf("different end must need an update")
	}
	if !NeedsUpdate(base.Add(time.Minute), base.Add(time.Hour), base, base.Add(time.Hour)) {
		t.Fatalf("different start must need an update")
	}
}
