// Package capacity derives expected-headcount links for every
// (session, booth) pair from non-vendor registrations.
package capacity

import (
	"strings"

	"expoplan/eventhub"
	"expoplan/schedule"
)

// BuildLinks emits one capacity link per created-session × created-booth
// pair, including explicit zero-capacity rows. Only registrations whose
// session and booth both resolve to a created record are counted, and
// identities in vendorKeys never count toward capacity.
func BuildLinks(
	sessions []eventhub.Session,
	booths []eventhub.Booth,
	registrations []schedule.Registration,
	vendorKeys map[string]struct{},
) []eventhub.CapacityLink {
	sessionIDs := make(map[string]int64, len(sessions))
	for _, session := range sessions {
		sessionIDs[fold(session.Name)] = session.ID
	}
	boothIDs := make(map[string]int64, len(booths))
	for _, booth := range booths {
		boothIDs[fold(booth.PhysicalID)] = booth.ID
	}

	type pair struct{ sessionID, boothID int64 }
	counts := make(map[pair]int)
	for _, reg := range registrations {
		if _, vendor := vendorKeys[reg.IdentityKey()]; vendor {
			continue
		}
		sessionID, ok := sessionIDs[fold(reg.SessionName)]
		if !ok {
			continue
		}
		boothID, ok := boothIDs[fold(reg.BoothPhysicalID)]
		if !ok {
			continue
		}
		counts[pair{sessionID, boothID}]++
	}

	links := make([]eventhub.CapacityLink, 0, len(sessions)*len(booths))
	for _, session := range sessions {
		for _, booth := range booths {
			links = append(links, eventhub.CapacityLink{
				SessionID: session.ID,
				BoothID:   booth.ID,
				Capacity:  counts[pair{session.ID, booth.ID}],
			})
		}
	}

	return links
}

func fold(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
