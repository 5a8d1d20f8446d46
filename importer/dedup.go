package importer

import (
	"fmt"
	"strings"
	"time"

	"expoplan/internal/timeutil"
)

// nameTracker detects repeated session names across one whole import run and
// deterministically renames later occurrences.
type nameTracker struct {
	seen     map[string]*nameRecord
	resolved map[string]struct{}
}

type nameRecord struct {
	count     int
	firstSeen time.Time
}

func newNameTracker() *nameTracker {
	return &nameTracker{
		seen:     make(map[string]*nameRecord),
		resolved: make(map[string]struct{}),
	}
}

// uniqueName registers name for the given day and returns the resolved name.
// Repeats on a different day get a date suffix, repeats on the same day a
// running counter; note carries the duplicate report when a rename happened.
func (t *nameTracker) uniqueName(name string, day time.Time) (resolved string, renamed bool, note string) {
	key := strings.ToLower(strings.TrimSpace(name))

	record, dup := t.seen[key]
	if !dup {
		t.seen[key] = &nameRecord{count: 1, firstSeen: day}
		t.resolved[key] = struct{}{}
		return name, false, ""
	}

	record.count++
	suffix := fmt.Sprintf(" (%d)", record.count)
	if !timeutil.SameDay(day, record.firstSeen) {
		suffix = " (" + day.Format("Jan 2") + ")"
	}

	resolved = name + suffix
	// The date suffix can itself collide when a name repeats twice on the
	// same extra day; fall back to the counter until the result is fresh.
	for {
		resolvedKey := strings.ToLower(strings.TrimSpace(resolved))
		if _, taken := t.resolved[resolvedKey]; !taken {
			t.resolved[resolvedKey] = struct{}{}
			break
		}
		record.count++
		resolved = name + fmt.Sprintf(" (%d)", record.count)
	}

	note = fmt.Sprintf("duplicate session name %q renamed to %q", name, resolved)
	return resolved, true, note
}
