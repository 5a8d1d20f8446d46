package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"expoplan/internal/timeutil"
)

// TimeResolution is the derived start/end of one session. Name is only set
// when the anchor cell carried a clock value instead of a label.
type TimeResolution struct {
	Start       time.Time
	End         time.Time
	Name        string
	NeedsReview bool
	Reason      string
}

var (
	clockPattern       = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
	parentheticalNotes = regexp.MustCompile(`\([^)]*\)`)
)

// mojibake artifacts seen in exported labels.
const strippedLabelRunes = "\u00c2\ufeff"

// CleanLabel strips parenthetical notes and encoding artifacts from a raw
// session label.
func CleanLabel(label string) string {
	cleaned := parentheticalNotes.ReplaceAllString(label, "")
	for _, r := range strippedLabelRunes {
		cleaned = strings.ReplaceAll(cleaned, string(r), "")
	}
	return strings.TrimSpace(cleaned)
}

// ResolveSessionTime derives a session's start and end from its anchor cell.
// Clock-valued cells win; text labels are searched for an H:MM substring;
// anything else falls back to now with a review flag.
func ResolveSessionTime(anchor Cell, baseDate time.Time, defaultMinutes int, now time.Time) TimeResolution {
	duration := time.Duration(defaultMinutes) * time.Minute

	if anchor.Kind == CellDateTime {
		start := timeutil.CombineDayTime(baseDate, anchor.Clock)
		return TimeResolution{
			Start: start,
			End:   start.Add(duration),
			Name:  "Session @ " + start.Format("15:04"),
		}
	}

	label := CleanLabel(anchor.Text)
	match := clockPattern.FindStringSubmatch(label)
	if match == nil {
		return TimeResolution{
			Start:       now,
			End:         now.Add(duration),
			NeedsReview: true,
			Reason:      fmt.Sprintf("no time found in session label %q", anchor.Text),
		}
	}

	hour, _ := strconv.Atoi(match[1])
	minute, _ := strconv.Atoi(match[2])
	if hour > 23 || minute > 59 {
		return TimeResolution{
			Start:       now,
			End:         now.Add(duration),
			NeedsReview: true,
			Reason:      fmt.Sprintf("invalid time %q in session label %q", match[0], anchor.Text),
		}
	}

	start := timeutil.AtClock(baseDate, hour, minute)
	return TimeResolution{Start: start, End: start.Add(duration)}
}
