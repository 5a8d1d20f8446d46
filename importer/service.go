package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"expoplan/schedule"
)

type Options struct {
	CompanyMarker         string
	DefaultSessionMinutes int

	// Now is the placeholder clock for unresolvable dates and times;
	// tests pin it, callers leave it nil for time.Now.
	Now func() time.Time
}

type Result struct {
	RunID           string
	Sessions        []schedule.Session
	Booths          []schedule.Booth
	Registrations   []schedule.Registration
	SheetsProcessed int
	SheetsSkipped   int
	Errors          []string
}

// Snapshot converts a parse result into the staged form handed to storage.
func (r *Result) Snapshot(importedAt time.Time) schedule.Snapshot {
	return schedule.Snapshot{
		RunID:         r.RunID,
		ImportedAt:    importedAt,
		Sessions:      r.Sessions,
		Booths:        r.Booths,
		Registrations: r.Registrations,
	}
}

// Run reads every workbook and parses all sheets into one normalized result.
func Run(paths []string, reader WorkbookReader, opts Options) (*Result, error) {
	sheets := make([]Sheet, 0, 8)
	for _, path := range paths {
		read, err := reader.Read(path)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, read...)
	}
	return ParseSheets(sheets, opts), nil
}

// ParseSheets runs the grid parser over all sheets with one fresh
// accumulator per call; nothing is shared between runs.
func ParseSheets(sheets []Sheet, opts Options) *Result {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.CompanyMarker == "" {
		opts.CompanyMarker = "►"
	}
	if opts.DefaultSessionMinutes <= 0 {
		opts.DefaultSessionMinutes = 30
	}

	run := &parseRun{
		opts:      opts,
		result:    &Result{RunID: uuid.NewString()},
		names:     newNameTracker(),
		booths:    make(map[string]*schedule.Booth),
		boothKeys: make([]string, 0, 8),
		regKeys:   make(map[string]struct{}),
	}

	for _, sheet := range sheets {
		run.parseSheet(sheet)
	}

	for _, key := range run.boothKeys {
		run.result.Booths = append(run.result.Booths, *run.booths[key])
	}

	return run.result
}

// parseRun is the arena for one import run: dedup trackers, the logical
// booth set, and the accumulating result.
type parseRun struct {
	opts      Options
	result    *Result
	names     *nameTracker
	booths    map[string]*schedule.Booth
	boothKeys []string
	regKeys   map[string]struct{}
}

func (r *parseRun) parseSheet(sheet Sheet) {
	headerRow, found := findHeaderRow(sheet)
	if !found {
		r.errorf("sheet %q: no %q header row found; sheet skipped", sheet.Name, "Booth:")
		r.result.SheetsSkipped++
		return
	}
	r.result.SheetsProcessed++

	date := ResolveSheetDate(sheet.Name, r.opts.Now())
	if date.NeedsReview {
		r.errorf("sheet %q: %s; defaulting to today", sheet.Name, date.Reason)
	}

	columns, problems := collectBoothColumns(sheet, headerRow)
	r.report(problems)
	sheetBooths := r.registerBooths(sheet.Name, columns)

	blocks, problems := segmentBlocks(sheet, headerRow)
	r.report(problems)

	for _, block := range blocks {
		r.parseBlock(sheet, block, columns, sheetBooths, date)
	}
}

func (r *parseRun) parseBlock(sheet Sheet, block sessionBlock, columns []boothColumn, booths []*schedule.Booth, date DateResolution) {
	resolved := ResolveSessionTime(block.anchor, date.Date, r.opts.DefaultSessionMinutes, r.opts.Now())
	if resolved.NeedsReview {
		r.errorf("sheet %q row %d: %s", sheet.Name, block.startRow+1, resolved.Reason)
	}

	name := resolved.Name
	if name == "" {
		name = CleanLabel(block.anchor.Text)
	}
	if name == "" {
		name = "Session @ " + resolved.Start.Format("15:04")
	}

	originalName := name
	name, renamed, note := r.names.uniqueName(name, date.Date)
	if renamed {
		r.errorf("sheet %q row %d: %s", sheet.Name, block.startRow+1, note)
	}

	session := schedule.Session{
		Name:            name,
		OriginalName:    originalName,
		Start:           resolved.Start,
		End:             resolved.End,
		Renamed:         renamed,
		TimeNeedsReview: resolved.NeedsReview,
		DateNeedsReview: date.NeedsReview,
		SourceSheet:     sheet.Name,
		SourceRow:       block.startRow + 1,
	}
	r.result.Sessions = append(r.result.Sessions, session)

	for i, column := range columns {
		candidates, problems := extractRegistrations(
			sheet, block, column, session.Name, r.opts.CompanyMarker, booths[i], r.regKeys)
		r.report(problems)
		r.result.Registrations = append(r.result.Registrations, candidates...)
	}
}

// registerBooths collapses booth columns into the run-wide logical booth
// set, keyed by lowercased physical id; the first sheet to mention a booth
// owns its record.
func (r *parseRun) registerBooths(sheetName string, columns []boothColumn) []*schedule.Booth {
	booths := make([]*schedule.Booth, len(columns))
	for i, column := range columns {
		key := strings.ToLower(column.physicalID)
		existing, ok := r.booths[key]
		if !ok {
			existing = &schedule.Booth{PhysicalID: column.physicalID, SourceSheet: sheetName}
			r.booths[key] = existing
			r.boothKeys = append(r.boothKeys, key)
		}
		booths[i] = existing
	}
	return booths
}

func (r *parseRun) report(problems []string) {
	r.result.Errors = append(r.result.Errors, problems...)
}

func (r *parseRun) errorf(format string, args ...any) {
	r.result.Errors = append(r.result.Errors, fmt.Sprintf(format, args...))
}
