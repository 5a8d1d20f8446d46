package importer

import (
	"strings"
	"testing"
	"time"
)

func fixedNow() time.Time {
	return time.Date(2026, time.March, 2, 12, 0, 0, 0, time.Local)
}

func testOptions() Options {
	return Options{CompanyMarker: "►", DefaultSessionMinutes: 30, Now: fixedNow}
}

func TestParseSheets_SingleSheet(t *testing.T) {
	sheet := gridSheet("2026-03-02", [][]string{
		{"Spring Expo", "", ""},
		{"", "Booth: A-1", "Booth: B-2"},
		{"Kickoff 9:30", "► Acme", "► Globex"},
		{"", "Pat Doe", "Sam Roe"},
		{"Wrap-up 16:00", "", "► Globex"},
		{"", "", "Kim Lee"},
	})

	result := ParseSheets([]Sheet{sheet}, testOptions())

	if result.RunID == "" {
		t.Fatalf("expected a run id")
	}
	if result.SheetsProcessed != 1 || result.SheetsSkipped != 0 {
		t.Fatalf("unexpected sheet counters: %+v", result)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}

	if len(result.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(result.Sessions))
	}
	kickoff := result.Sessions[0]
	if kickoff.Name != "Kickoff 9:30" {
		t.Fatalf("unexpected session name: %q", kickoff.Name)
	}
	wantStart := time.Date(2026, time.March, 2, 9, 30, 0, 0, time.Local)
	if !kickoff.Start.Equal(wantStart) || !kickoff.End.Equal(wantStart.Add(30*time.Minute)) {
		t.Fatalf("unexpected kickoff times: %v - %v", kickoff.Start, kickoff.End)
	}
	if kickoff.TimeNeedsReview || kickoff.DateNeedsReview {
		t.Fatalf("unexpected review flags: %+v", kickoff)
	}

	if len(result.Booths) != 2 {
		t.Fatalf("expected 2 booths, got %d", len(result.Booths))
	}
	if result.Booths[0].PhysicalID != "A-1" || result.Booths[0].CompanyName != "Acme" {
		t.Fatalf("unexpected first booth: %+v", result.Booths[0])
	}

	if len(result.Registrations) != 3 {
		t.Fatalf("expected 3 registrations, got %d", len(result.Registrations))
	}
	for _, reg := range result.Registrations {
		if !reg.Vendor {
			t.Fatalf("everyone sits under their own booth's company here: %+v", reg)
		}
	}
}

func TestParseSheets_SheetWithoutHeaderSkipped(t *testing.T) {
	sheets := []Sheet{
		gridSheet("2026-03-02", [][]string{
			{"Notes"},
			{"Nothing to parse here"},
		}),
		gridSheet("2026-03-03", [][]string{
			{"", "Booth: A-1"},
			{"Kickoff 9:30", "► Acme"},
			{"", "Pat Doe"},
		}),
	}

	result := ParseSheets(sheets, testOptions())

	if result.SheetsSkipped != 1 || result.SheetsProcessed != 1 {
		t.Fatalf("unexpected sheet counters: skipped=%d processed=%d", result.SheetsSkipped, result.SheetsProcessed)
	}
	headerErrors := 0
	for _, e := range result.Errors {
		if strings.Contains(e, "no \"Booth:\" header row") {
			headerErrors++
		}
	}
	if headerErrors != 1 {
		t.Fatalf("expected exactly one header error, got %v", result.Errors)
	}
	if len(result.Sessions) != 1 {
		t.Fatalf("expected the good sheet to still parse, got %d sessions", len(result.Sessions))
	}
}

func TestParseSheets_UnparseableSheetDateFlagsEverySession(t *testing.T) {
	sheet := gridSheet("Overflow schedule", [][]string{
		{"", "Booth: A-1"},
		{"Kickoff 9:30", ""},
		{"Wrap-up 16:00", ""},
	})

	result := ParseSheets([]Sheet{sheet}, testOptions())

	dateErrors := 0
	for _, e := range result.Errors {
		if strings.Contains(e, "does not parse as a calendar date") {
			dateErrors++
		}
	}
	if dateErrors != 1 {
		t.Fatalf("expected one sheet-level date error, got %v", result.Errors)
	}
	for _, session := range result.Sessions {
		if !session.DateNeedsReview {
			t.Fatalf("expected date review flag on %q", session.Name)
		}
	}
}

func TestParseSheets_BoothsCollapseAcrossSheets(t *testing.T) {
	sheets := []Sheet{
		gridSheet("2026-03-02", [][]string{
			{"", "Booth: A-1"},
			{"Kickoff 9:30", "► Acme"},
			{"", "Pat Doe"},
		}),
		gridSheet("2026-03-03", [][]string{
			{"", "Booth: a-1"},
			{"Day two 10:00", "► Initech"},
			{"", "Sam Roe"},
		}),
	}

	result := ParseSheets(sheets, testOptions())

	if len(result.Booths) != 1 {
		t.Fatalf("expected one logical booth, got %d", len(result.Booths))
	}
	if result.Booths[0].CompanyName != "Acme" {
		t.Fatalf("first-seen company must win, got %q", result.Booths[0].CompanyName)
	}
}

func TestParseSheets_DuplicateSessionNamesRenamed(t *testing.T) {
	sheets := []Sheet{
		gridSheet("2026-03-02", [][]string{
			{"", "Booth: A-1"},
			{"Keynote 9:00", ""},
		}),
		gridSheet("2026-03-03", [][]string{
			{"", "Booth: A-1"},
			{"Keynote 9:00", ""},
		}),
	}

	result := ParseSheets(sheets, testOptions())

	if len(result.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(result.Sessions))
	}
	first, second := result.Sessions[0], result.Sessions[1]
	if first.Renamed {
		t.Fatalf("first occurrence must keep its name")
	}
	if !second.Renamed || second.Name != "Keynote 9:00 (Mar 3)" {
		t.Fatalf("unexpected second session: %+v", second)
	}
	if second.OriginalName != "Keynote 9:00" {
		t.Fatalf("original name must be kept, got %q", second.OriginalName)
	}
	if strings.EqualFold(first.Name, second.Name) {
		t.Fatalf("sessions still share a name after dedup")
	}
}

func TestParseSheets_ClockAnchorSynthesizesName(t *testing.T) {
	sheet := gridSheet("2026-03-02", [][]string{
		{"", "Booth: A-1"},
		{"9:30 AM", "► Acme"},
		{"", "Pat Doe"},
	})

	result := ParseSheets([]Sheet{sheet}, testOptions())

	if len(result.Sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(result.Sessions))
	}
	if result.Sessions[0].Name != "Session @ 09:30" {
		t.Fatalf("unexpected name: %q", result.Sessions[0].Name)
	}
}

func TestResultSnapshot(t *testing.T) {
	result := ParseSheets([]Sheet{gridSheet("2026-03-02", [][]string{
		{"", "Booth: A-1"},
		{"Kickoff 9:30", "► Acme"},
		{"", "Pat Doe"},
	})}, testOptions())

	snap := result.Snapshot(fixedNow())
	if snap.RunID != result.RunID {
		t.Fatalf("run id must carry over")
	}
	if len(snap.Sessions) != 1 || len(snap.Booths) != 1 || len(snap.Registrations) != 1 {
		t.Fatalf("unexpected snapshot shape: %+v", snap)
	}
}
