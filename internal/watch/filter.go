package watch

import (
	"strings"

	"skywatcher/internal/models"
)

// FilterByOperator returns, in input order, the records whose operator
// contains target, ignoring case. This is a plain substring test, so an
// operator such as "Not-Ryanair-Airlines-Inc" also matches "ryanair".
// Records without an operator never match, nor does an empty target.
func FilterByOperator(records []models.AircraftRecord, target string) []models.AircraftRecord {
	needle := strings.ToLower(strings.TrimSpace(target))
	if needle == "" {
		return nil
	}

	var matches []models.AircraftRecord
	for _, rec := range records {
		if rec.Operator == "" {
			continue
		}
		if strings.Contains(strings.ToLower(rec.Operator), needle) {
			matches = append(matches, rec)
		}
	}
	return matches
}
