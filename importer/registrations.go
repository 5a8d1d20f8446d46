package importer

import (
	"fmt"
	"strings"

	"expoplan/schedule"
)

// blockScan carries the rolling company context while walking one
// (session block × booth column) cell run top to bottom.
type blockScan struct {
	vendor  string
	company string
}

// extractRegistrations walks a session block under one booth column and
// emits a registration candidate per person row. The first company marker in
// the block is the booth's vendor; the most recent marker is the company the
// following people belong to. seenKeys deduplicates candidates across the
// whole run; booth gains its company name from the first marker seen.
func extractRegistrations(
	sheet Sheet,
	block sessionBlock,
	column boothColumn,
	sessionName string,
	marker string,
	booth *schedule.Booth,
	seenKeys map[string]struct{},
) ([]schedule.Registration, []string) {
	candidates := make([]schedule.Registration, 0, 8)
	problems := make([]string, 0)
	scan := blockScan{}

	for row := block.startRow; row < block.endRow; row++ {
		cell := sheet.Cell(row, column.col)
		if cell.Text == "" {
			continue
		}

		if company, ok := companyFromMarker(cell.Text, marker); ok {
			if company == "" {
				problems = append(problems, fmt.Sprintf(
					"sheet %q row %d: company marker without a company name", sheet.Name, row+1))
				continue
			}
			if scan.vendor == "" {
				scan.vendor = company
				if booth.CompanyName == "" {
					booth.CompanyName = company
				}
			}
			scan.company = company
			continue
		}

		if scan.company == "" && scan.vendor == "" {
			problems = append(problems, fmt.Sprintf(
				"sheet %q row %d: person %q has no preceding company marker", sheet.Name, row+1, cell.Text))
			continue
		}

		first, last := splitPersonName(cell.Text)
		candidate := schedule.Registration{
			SessionName:     sessionName,
			FirstName:       first,
			LastName:        last,
			Organization:    scan.company,
			Vendor:          scan.vendor == scan.company,
			BoothPhysicalID: booth.PhysicalID,
			SourceSheet:     sheet.Name,
			SourceRow:       row + 1,
		}

		key := candidate.DedupKey()
		if _, dup := seenKeys[key]; dup {
			continue
		}
		seenKeys[key] = struct{}{}
		candidates = append(candidates, candidate)
	}

	return candidates, problems
}

func companyFromMarker(text, marker string) (string, bool) {
	if !strings.HasPrefix(text, marker) {
		return "", false
	}
	return strings.TrimSpace(CleanLabel(text[len(marker):])), true
}

// splitPersonName treats the last whitespace token as the surname and joins
// the rest as the first name.
func splitPersonName(text string) (first, last string) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return "", ""
	}
	last = tokens[len(tokens)-1]
	first = strings.Join(tokens[:len(tokens)-1], " ")
	return first, last
}
