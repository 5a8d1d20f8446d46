package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"expoplan/schedule"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

// ErrNoStagedImport is returned by LoadStagedImport when the database holds
// no staged run, typically because commit ran before import.
var ErrNoStagedImport = errors.New("no staged import found")

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS import_runs (
	run_id TEXT PRIMARY KEY,
	imported_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS staged_sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL REFERENCES import_runs(run_id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	original_name TEXT NOT NULL,
	start_datetime TEXT NOT NULL,
	end_datetime TEXT NOT NULL,
	renamed INTEGER NOT NULL DEFAULT 0,
	time_needs_review INTEGER NOT NULL DEFAULT 0,
	date_needs_review INTEGER NOT NULL DEFAULT 0,
	source_sheet TEXT NOT NULL,
	source_row INTEGER NOT NULL,
	UNIQUE(run_id, name)
);

CREATE TABLE IF NOT EXISTS staged_booths (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL REFERENCES import_runs(run_id) ON DELETE CASCADE,
	physical_id TEXT NOT NULL,
	company_name TEXT NOT NULL,
	source_sheet TEXT NOT NULL,
	UNIQUE(run_id, physical_id)
);

CREATE TABLE IF NOT EXISTS staged_registrations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL REFERENCES import_runs(run_id) ON DELETE CASCADE,
	session_name TEXT NOT NULL,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	organization TEXT NOT NULL,
	vendor INTEGER NOT NULL DEFAULT 0,
	booth_physical_id TEXT NOT NULL,
	source_sheet TEXT NOT NULL,
	source_row INTEGER NOT NULL
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

// ReplaceStagedImport wipes any previously staged run and stores the given
// snapshot as the single staged run. Staging holds at most one run at a time.
func (s *SQLiteStore) ReplaceStagedImport(snap schedule.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	for _, table := range []string{"staged_registrations", "staged_booths", "staged_sessions", "import_runs"} {
		if _, err := tx.Exec(`DELETE FROM ` + table + `;`); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if _, err := tx.Exec(
		`INSERT INTO import_runs (run_id, imported_at) VALUES (?, ?);`,
		snap.RunID,
		snap.ImportedAt.Format(time.RFC3339),
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert import run: %w", err)
	}

	const sessionStmt = `
INSERT INTO staged_sessions (
	run_id,
	name,
	original_name,
	start_datetime,
	end_datetime,
	renamed,
	time_needs_review,
	date_needs_review,
	source_sheet,
	source_row
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

	for _, session := range snap.Sessions {
		if _, err := tx.Exec(
			sessionStmt,
			snap.RunID,
			session.Name,
			session.OriginalName,
			session.Start.Format(time.RFC3339),
			session.End.Format(time.RFC3339),
			boolToInt(session.Renamed),
			boolToInt(session.TimeNeedsReview),
			boolToInt(session.DateNeedsReview),
			session.SourceSheet,
			session.SourceRow,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert session %q: %w", session.Name, err)
		}
	}

	const boothStmt = `
INSERT INTO staged_booths (
	run_id,
	physical_id,
	company_name,
	source_sheet
) VALUES (?, ?, ?, ?);`

	for _, booth := range snap.Booths {
		if _, err := tx.Exec(
			boothStmt,
			snap.RunID,
			booth.PhysicalID,
			booth.CompanyName,
			booth.SourceSheet,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert booth %q: %w", booth.PhysicalID, err)
		}
	}

	const registrationStmt = `
INSERT INTO staged_registrations (
	run_id,
	session_name,
	first_name,
	last_name,
	organization,
	vendor,
	booth_physical_id,
	source_sheet,
	source_row
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`

	for _, reg := range snap.Registrations {
		if _, err := tx.Exec(
			registrationStmt,
			snap.RunID,
			reg.SessionName,
			reg.FirstName,
			reg.LastName,
			reg.Organization,
			boolToInt(reg.Vendor),
			reg.BoothPhysicalID,
			reg.SourceSheet,
			reg.SourceRow,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert registration for %q: %w", reg.SessionName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// LoadStagedImport returns the staged snapshot, or ErrNoStagedImport when
// nothing has been staged yet.
func (s *SQLiteStore) LoadStagedImport() (schedule.Snapshot, error) {
	var (
		snap          schedule.Snapshot
		importedAtRaw string
	)

	err := s.db.QueryRow(`SELECT run_id, imported_at FROM import_runs LIMIT 1;`).
		Scan(&snap.RunID, &importedAtRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return schedule.Snapshot{}, ErrNoStagedImport
	}
	if err != nil {
		return schedule.Snapshot{}, fmt.Errorf("query import run: %w", err)
	}

	snap.ImportedAt, err = time.Parse(time.RFC3339, importedAtRaw)
	if err != nil {
		return schedule.Snapshot{}, fmt.Errorf("parse imported_at %q: %w", importedAtRaw, err)
	}

	if snap.Sessions, err = s.loadSessions(snap.RunID); err != nil {
		return schedule.Snapshot{}, err
	}
	if snap.Booths, err = s.loadBooths(snap.RunID); err != nil {
		return schedule.Snapshot{}, err
	}
	if snap.Registrations, err = s.loadRegistrations(snap.RunID); err != nil {
		return schedule.Snapshot{}, err
	}

	return snap, nil
}

func (s *SQLiteStore) loadSessions(runID string) ([]schedule.Session, error) {
	const query = `
SELECT
	id,
	name,
	original_name,
	start_datetime,
	end_datetime,
	renamed,
	time_needs_review,
	date_needs_review,
	source_sheet,
	source_row
FROM staged_sessions
WHERE run_id = ?
ORDER BY start_datetime, id;
`

	rows, err := s.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]schedule.Session, 0, 64)
	for rows.Next() {
		var (
			session         schedule.Session
			startRaw        string
			endRaw          string
			renamed         int
			timeNeedsReview int
			dateNeedsReview int
		)

		if err := rows.Scan(
			&session.ID,
			&session.Name,
			&session.OriginalName,
			&startRaw,
			&endRaw,
			&renamed,
			&timeNeedsReview,
			&dateNeedsReview,
			&session.SourceSheet,
			&session.SourceRow,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}

		session.Start, err = time.Parse(time.RFC3339, startRaw)
		if err != nil {
			return nil, fmt.Errorf("parse start datetime %q: %w", startRaw, err)
		}
		session.End, err = time.Parse(time.RFC3339, endRaw)
		if err != nil {
			return nil, fmt.Errorf("parse end datetime %q: %w", endRaw, err)
		}
		session.Renamed = renamed != 0
		session.TimeNeedsReview = timeNeedsReview != 0
		session.DateNeedsReview = dateNeedsReview != 0

		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return sessions, nil
}

func (s *SQLiteStore) loadBooths(runID string) ([]schedule.Booth, error) {
	const query = `
SELECT id, physical_id, company_name, source_sheet
FROM staged_booths
WHERE run_id = ?
ORDER BY id;
`

	rows, err := s.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("query booths: %w", err)
	}
	defer rows.Close()

	booths := make([]schedule.Booth, 0, 32)
	for rows.Next() {
		var booth schedule.Booth
		if err := rows.Scan(&booth.ID, &booth.PhysicalID, &booth.CompanyName, &booth.SourceSheet); err != nil {
			return nil, fmt.Errorf("scan booth: %w", err)
		}
		booths = append(booths, booth)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booths: %w", err)
	}

	return booths, nil
}

func (s *SQLiteStore) loadRegistrations(runID string) ([]schedule.Registration, error) {
	const query = `
SELECT
	id,
	session_name,
	first_name,
	last_name,
	organization,
	vendor,
	booth_physical_id,
	source_sheet,
	source_row
FROM staged_registrations
WHERE run_id = ?
ORDER BY id;
`

	rows, err := s.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("query registrations: %w", err)
	}
	defer rows.Close()

	registrations := make([]schedule.Registration, 0, 256)
	for rows.Next() {
		var (
			reg    schedule.Registration
			vendor int
		)
		if err := rows.Scan(
			&reg.ID,
			&reg.SessionName,
			&reg.FirstName,
			&reg.LastName,
			&reg.Organization,
			&vendor,
			&reg.BoothPhysicalID,
			&reg.SourceSheet,
			&reg.SourceRow,
		); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		reg.Vendor = vendor != 0
		registrations = append(registrations, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrations: %w", err)
	}

	return registrations, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
