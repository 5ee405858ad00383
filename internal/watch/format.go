package watch

import (
	"fmt"
	"time"

	"skywatcher/internal/models"
)

const (
	UnknownPlaceholder = "Unknown"
	AirportPlaceholder = "---"
	seenLayout         = "15:04:05 UTC"
)

// Formatter renders a matched record into the alert text
type Formatter struct {
	// OperatorName is shown in the title line, e.g. "Ryanair"
	OperatorName string
	// Now is the clock used when a record has no usable position time
	Now func() time.Time
}

// NewFormatter creates a formatter for operatorName using the wall clock
func NewFormatter(operatorName string) *Formatter {
	return &Formatter{OperatorName: operatorName, Now: time.Now}
}

// Format builds the fixed multi-line alert. Missing fields are replaced with
// placeholders; it never fails.
func (f *Formatter) Format(rec models.AircraftRecord) string {
	return fmt.Sprintf(
		"🛫 %s flight detected!\n\n"+
			"Flight: %s\n"+
			"Type: %s\n"+
			"From: %s\n"+
			"To: %s\n"+
			"Seen: %s",
		f.OperatorName,
		orDefault(rec.Callsign, UnknownPlaceholder),
		orDefault(rec.AircraftType, UnknownPlaceholder),
		orDefault(rec.Origin, AirportPlaceholder),
		orDefault(rec.Destination, AirportPlaceholder),
		f.SeenAt(rec).Format(seenLayout),
	)
}

// SeenAt returns the record's last position time in UTC, or now when the
// position time is absent or unparsable.
func (f *Formatter) SeenAt(rec models.AircraftRecord) time.Time {
	if seen, ok := rec.LastPositionTime(); ok {
		return seen
	}
	return f.now().UTC()
}

func (f *Formatter) now() time.Time {
	if f.Now == nil {
		return time.Now()
	}
	return f.Now()
}

func orDefault(value, placeholder string) string {
	if value == "" {
		return placeholder
	}
	return value
}
