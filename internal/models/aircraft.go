package models

// Aircraft is one row of the local aircraft reference database.
// Fields correspond to columns of the aircraft-database CSV export.
type Aircraft struct {
	ICAO24           string // Primary key - 6 hex digit ICAO address
	Registration     string // Registration mark
	TypeCode         string // ICAO type designator, e.g. B738
	ManufacturerName string // Manufacturer name
	Model            string // Aircraft model
	Operator         string // Registered operator
}

// TypeDesignator returns the best available type label: the ICAO type code,
// then the model, then empty.
func (a *Aircraft) TypeDesignator() string {
	if a == nil {
		return ""
	}
	if a.TypeCode != "" {
		return a.TypeCode
	}
	return a.Model
}
