package schedule

import (
	"strings"
	"time"
)

// Session is one normalized schedule slot parsed from a sheet.
type Session struct {
	ID              int64
	Name            string
	OriginalName    string
	Start           time.Time
	End             time.Time
	Renamed         bool
	TimeNeedsReview bool
	DateNeedsReview bool
	SourceSheet     string
	SourceRow       int
}

// Booth is a physical exhibition location. Booths repeating across sheets
// collapse into one record per physical id; the first company name seen wins.
type Booth struct {
	ID          int64
	PhysicalID  string
	CompanyName string
	SourceSheet string
}

// Registration is the expectation that one person visits one booth during
// one session. Vendor registrations are excluded from capacity counts.
type Registration struct {
	ID              int64
	SessionName     string
	FirstName       string
	LastName        string
	Organization    string
	Vendor          bool
	BoothPhysicalID string
	SourceSheet     string
	SourceRow       int
}

// Snapshot is the full staged result of one import run.
type Snapshot struct {
	RunID         string
	ImportedAt    time.Time
	Sessions      []Session
	Booths        []Booth
	Registrations []Registration
}

func fold(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// DedupKey identifies a registration within one parse run.
func (r Registration) DedupKey() string {
	return strings.Join([]string{fold(r.SessionName), r.IdentityKey()}, "|")
}

// IdentityKey collapses repeated people into one logical attendee.
func (r Registration) IdentityKey() string {
	return strings.Join([]string{fold(r.FirstName), fold(r.LastName), fold(r.Organization)}, "|")
}

// FullName joins first and last name for display and export.
func (r Registration) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(r.FirstName) + " " + strings.TrimSpace(r.LastName))
}

// EqualFold reports case-insensitive equality after trimming, the comparison
// used for session names, booth ids, and organizations throughout.
func EqualFold(a, b string) bool {
	return fold(a) == fold(b)
}
