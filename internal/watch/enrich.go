package watch

import (
	"log/slog"

	"skywatcher/internal/models"
)

// AircraftLookup resolves reference data by ICAO hex address.
// A nil result with a nil error means the aircraft is unknown.
type AircraftLookup interface {
	LookupByICAO(icao string) (*models.Aircraft, error)
}

// enrich fills a missing aircraft type from the reference database
func enrich(logger *slog.Logger, lookup AircraftLookup, rec models.AircraftRecord) models.AircraftRecord {
	if lookup == nil || rec.AircraftType != "" || rec.ICAO == "" {
		return rec
	}

	ac, err := lookup.LookupByICAO(rec.ICAO)
	if err != nil {
		logger.Warn("Aircraft reference lookup failed", "icao", rec.ICAO, "error", err)
		return rec
	}

	if typ := ac.TypeDesignator(); typ != "" {
		rec.AircraftType = typ
	}
	if rec.Registration == "" && ac != nil {
		rec.Registration = ac.Registration
	}
	return rec
}
