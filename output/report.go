// Package output renders staged import snapshots as tabular reports and
// writes them as CSV or Excel files.
package output

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"expoplan/schedule"
)

// Table is one rendered report: a header row plus data rows, all stringly
// typed so every writer can emit it unchanged.
type Table struct {
	Sheet   string
	Headers []string
	Rows    [][]string
}

const (
	ModeAttendees     = "attendees"
	ModeSessions      = "sessions"
	ModeRegistrations = "registrations"
)

// BuildTable renders the snapshot for the given export mode.
func BuildTable(mode string, snap schedule.Snapshot) (Table, error) {
	switch strings.TrimSpace(strings.ToLower(mode)) {
	case ModeAttendees:
		return buildAttendeesTable(snap), nil
	case ModeSessions:
		return buildSessionsTable(snap), nil
	case ModeRegistrations:
		return buildRegistrationsTable(snap), nil
	default:
		return Table{}, fmt.Errorf("unsupported export mode: %s", mode)
	}
}

// buildAttendeesTable ranks attendees by how many distinct sessions they are
// registered for, ties broken alphabetically. Attendees tied on count share
// a rank position ordering but keep individual rank numbers.
func buildAttendeesTable(snap schedule.Snapshot) Table {
	type attendee struct {
		name     string
		org      string
		sessions map[string]struct{}
	}

	byIdentity := make(map[string]*attendee)
	order := make([]string, 0, len(snap.Registrations))

	for _, reg := range snap.Registrations {
		key := reg.IdentityKey()
		entry, ok := byIdentity[key]
		if !ok {
			entry = &attendee{
				name:     reg.FullName(),
				org:      reg.Organization,
				sessions: make(map[string]struct{}),
			}
			byIdentity[key] = entry
			order = append(order, key)
		}
		entry.sessions[strings.ToLower(strings.TrimSpace(reg.SessionName))] = struct{}{}
	}

	sort.Slice(order, func(i, j int) bool {
		a, b := byIdentity[order[i]], byIdentity[order[j]]
		if len(a.sessions) != len(b.sessions) {
			return len(a.sessions) > len(b.sessions)
		}
		return a.name < b.name
	})

	rows := make([][]string, 0, len(order))
	for rank, key := range order {
		entry := byIdentity[key]
		rows = append(rows, []string{
			strconv.Itoa(rank + 1),
			entry.name,
			entry.org,
			strconv.Itoa(len(entry.sessions)),
		})
	}

	return Table{
		Sheet:   "Attendees",
		Headers: []string{"Rank", "Name", "Organization", "Meetings Attended"},
		Rows:    rows,
	}
}

func buildSessionsTable(snap schedule.Snapshot) Table {
	sessions := make([]schedule.Session, len(snap.Sessions))
	copy(sessions, snap.Sessions)
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].Start.Equal(sessions[j].Start) {
			return sessions[i].Start.Before(sessions[j].Start)
		}
		return sessions[i].Name < sessions[j].Name
	})

	rows := make([][]string, 0, len(sessions))
	for _, session := range sessions {
		rows = append(rows, []string{
			session.Name,
			session.Start.Format(time.RFC3339),
			session.End.Format(time.RFC3339),
			session.OriginalName,
			yesNo(session.TimeNeedsReview || session.DateNeedsReview),
		})
	}

	return Table{
		Sheet:   "Sessions",
		Headers: []string{"Name", "Start", "End", "Original Name", "Needs Review"},
		Rows:    rows,
	}
}

func buildRegistrationsTable(snap schedule.Snapshot) Table {
	rows := make([][]string, 0, len(snap.Registrations))
	for _, reg := range snap.Registrations {
		rows = append(rows, []string{
			reg.SessionName,
			reg.BoothPhysicalID,
			reg.FirstName,
			reg.LastName,
			reg.Organization,
			yesNo(reg.Vendor),
		})
	}

	return Table{
		Sheet:   "Registrations",
		Headers: []string{"Session", "Booth", "First Name", "Last Name", "Organization", "Vendor"},
		Rows:    rows,
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
