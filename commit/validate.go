package commit

import (
	"fmt"
	"strings"

	"expoplan/schedule"
)

// ValidateSnapshot is the hard precondition gate run before any phase:
// records surviving deduplication must not collide on session name or booth
// physical id. A violation rejects the whole run and points the caller at
// the first offender.
func ValidateSnapshot(snap schedule.Snapshot) error {
	sessionRows := make(map[string]schedule.Session, len(snap.Sessions))
	for _, session := range snap.Sessions {
		key := strings.ToLower(strings.TrimSpace(session.Name))
		if earlier, dup := sessionRows[key]; dup {
			return fmt.Errorf(
				"duplicate session name %q (sheet %q row %d collides with sheet %q row %d)",
				session.Name, session.SourceSheet, session.SourceRow, earlier.SourceSheet, earlier.SourceRow)
		}
		sessionRows[key] = session
	}

	boothSheets := make(map[string]schedule.Booth, len(snap.Booths))
	for _, booth := range snap.Booths {
		key := strings.ToLower(strings.TrimSpace(booth.PhysicalID))
		if earlier, dup := boothSheets[key]; dup {
			return fmt.Errorf(
				"duplicate booth physical id %q (sheet %q collides with sheet %q)",
				booth.PhysicalID, booth.SourceSheet, earlier.SourceSheet)
		}
		boothSheets[key] = booth
	}

	return nil
}
