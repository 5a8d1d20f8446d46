// Package reconcile compares the date range covered by parsed sessions with
// the event's stored range.
package reconcile

import (
	"time"

	"expoplan/schedule"
)

// DateRange returns the earliest start and latest end across sessions.
// ok is false when there are no sessions to derive a range from.
func DateRange(sessions []schedule.Session) (start, end time.Time, ok bool) {
	for _, session := range sessions {
		if !ok {
			start, end, ok = session.Start, session.End, true
			continue
		}
		if session.Start.Before(start) {
			start = session.Start
		}
		if session.End.After(end) {
			end = session.End
		}
	}
	return start, end, ok
}

// NeedsUpdate reports whether the stored event range differs from the
// parsed schedule's range.
func NeedsUpdate(storedStart, storedEnd, start, end time.Time) bool {
	return !storedStart.Equal(start) || !storedEnd.Equal(end)
}
