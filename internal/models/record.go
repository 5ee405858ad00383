package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// AircraftRecord is one entry of the tracking API's aircraft list.
// Every field is optional; a missing or mistyped field is left empty.
type AircraftRecord struct {
	ICAO         string          // Icao - 24-bit address, hex
	Registration string          // Reg
	Operator     string          // Op
	Callsign     string          // Call
	Origin       string          // From
	Destination  string          // To
	AircraftType string          // Type
	PosTime      json.RawMessage // PosTime - epoch milliseconds, number or numeric string
}

// UnmarshalJSON decodes a record leniently. A non-object value yields an
// empty record instead of failing the surrounding list.
func (r *AircraftRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*r = AircraftRecord{}
		return nil
	}

	*r = AircraftRecord{
		ICAO:         stringField(raw, "Icao"),
		Registration: stringField(raw, "Reg"),
		Operator:     stringField(raw, "Op"),
		Callsign:     stringField(raw, "Call"),
		Origin:       stringField(raw, "From"),
		Destination:  stringField(raw, "To"),
		AircraftType: stringField(raw, "Type"),
	}
	if pt, ok := raw["PosTime"]; ok {
		r.PosTime = append(json.RawMessage(nil), pt...)
	}
	return nil
}

func stringField(raw map[string]json.RawMessage, key string) string {
	v, ok := raw[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return ""
	}
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}

// LastPositionTime returns the time of the last position report. It reports
// false when the field is absent, zero, negative or not an integer.
func (r *AircraftRecord) LastPositionTime() (time.Time, bool) {
	ms, ok := parseEpochMillis(r.PosTime)
	if !ok || ms <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}

func parseEpochMillis(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int64(f), true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return n, true
		}
	}

	return 0, false
}

// EpochMillis encodes t as a PosTime value
func EpochMillis(t time.Time) json.RawMessage {
	return json.RawMessage(strconv.FormatInt(t.UnixMilli(), 10))
}
