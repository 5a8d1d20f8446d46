package importer

import (
	"strings"
	"time"

	"expoplan/internal/timeutil"
)

// DateResolution is a heuristically derived calendar date; NeedsReview marks
// values that fell back to a placeholder and should be confirmed by a human.
type DateResolution struct {
	Date        time.Time
	NeedsReview bool
	Reason      string
}

var sheetDateLayouts = []string{
	"2006-01-02",
	"01-02-2006",
	"1-2-2006",
	"01.02.2006",
	"2.1.2006",
	"Jan 2 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

var sheetDateYearlessLayouts = []string{
	"Jan 2",
	"January 2",
	"2 Jan",
	"01-02",
	"1-2",
}

// ResolveSheetDate derives a sheet's base calendar date from its tab name.
// Tab names without a year assume the year of now. Unparseable names resolve
// to today with a review flag.
func ResolveSheetDate(sheetName string, now time.Time) DateResolution {
	cleaned := strings.TrimSpace(sheetName)

	for _, layout := range sheetDateLayouts {
		if parsed, err := time.ParseInLocation(layout, cleaned, now.Location()); err == nil {
			return DateResolution{Date: timeutil.StartOfDay(parsed)}
		}
	}

	for _, layout := range sheetDateYearlessLayouts {
		if parsed, err := time.ParseInLocation(layout, cleaned, now.Location()); err == nil {
			dated := time.Date(now.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, now.Location())
			return DateResolution{Date: dated}
		}
	}

	return DateResolution{
		Date:        timeutil.StartOfDay(now),
		NeedsReview: true,
		Reason:      "sheet name does not parse as a calendar date",
	}
}
