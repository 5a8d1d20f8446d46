// Package identity collapses parsed registration candidates into unique
// attendee identities and decides which of them count as vendor staff.
package identity

import (
	"strings"

	"expoplan/schedule"
)

// Identity is one logical attendee, collapsed from every registration that
// shares their case-insensitive (first, last, organization) triple. The
// first occurrence's casing is kept.
type Identity struct {
	Key          string
	FirstName    string
	LastName     string
	Organization string
}

// Collapse dedupes registrations into identities, preserving first-seen order.
func Collapse(registrations []schedule.Registration) []Identity {
	seen := make(map[string]struct{}, len(registrations))
	identities := make([]Identity, 0, len(registrations))

	for _, reg := range registrations {
		key := reg.IdentityKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		identities = append(identities, Identity{
			Key:          key,
			FirstName:    reg.FirstName,
			LastName:     reg.LastName,
			Organization: reg.Organization,
		})
	}

	return identities
}

// VendorKeys returns the identity keys classified as vendor staff.
// boothCompanies maps lowercased booth physical ids to the company names the
// backend persisted. An identity is vendor when any of its registrations was
// parsed as vendor, or when its organization matches its target booth's
// persisted company; the booth match wins even where the parser saw a
// regular attendee.
func VendorKeys(registrations []schedule.Registration, boothCompanies map[string]string) map[string]struct{} {
	vendors := make(map[string]struct{})

	for _, reg := range registrations {
		vendor := reg.Vendor
		if company, ok := boothCompanies[strings.ToLower(strings.TrimSpace(reg.BoothPhysicalID))]; ok {
			if schedule.EqualFold(company, reg.Organization) {
				vendor = true
			}
		}
		if vendor {
			vendors[reg.IdentityKey()] = struct{}{}
		}
	}

	return vendors
}
