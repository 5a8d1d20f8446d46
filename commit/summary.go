package commit

import "fmt"

// ClassSummary counts one entity class's outcome across a commit run.
// Skipped is only populated for registrations, where an unresolved foreign
// key is a skip rather than a failure.
type ClassSummary struct {
	Success int
	Failed  int
	Skipped int
	Errors  []string
}

func (s *ClassSummary) errorf(format string, args ...any) {
	s.Errors = append(s.Errors, fmt.Sprintf(format, args...))
}

// Summary is the final per-entity-class report card of one commit run.
// Earlier phases' writes stay persisted even when Aborted is set; the
// pipeline never rolls back.
type Summary struct {
	RunID string

	Booths        ClassSummary
	Sessions      ClassSummary
	Capacities    ClassSummary
	Attendees     ClassSummary
	Registrations ClassSummary
	Event         ClassSummary

	Aborted     bool
	AbortReason string
}

// Classes returns the per-class blocks with display labels, in phase order.
func (s *Summary) Classes() []struct {
	Label string
	Class ClassSummary
} {
	return []struct {
		Label string
		Class ClassSummary
	}{
		{"booths", s.Booths},
		{"sessions", s.Sessions},
		{"capacities", s.Capacities},
		{"attendees", s.Attendees},
		{"registrations", s.Registrations},
		{"event", s.Event},
	}
}
