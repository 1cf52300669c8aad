package timezone

import (
	"strings"
	"time"
)

const (
	Copenhagen = "Europe/Copenhagen"
	Sofia      = "Europe/Sofia"
)

var airportTimezones = map[string]string{
	// Denmark
	"CPH": Copenhagen, // Copenhagen - Kastrup
	"BLL": Copenhagen, // Billund
	"AAR": Copenhagen, // Aarhus
	"AAL": Copenhagen, // Aalborg

	// Bulgaria
	"VAR": Sofia, // Varna
	"BOJ": Sofia, // Burgas
	"SOF": Sofia, // Sofia
	"PDV": Sofia, // Plovdiv
}

// NameForAirport returns the IANA zone of a served airport, or "" when the
// airport is not known.
func NameForAirport(code string) string {
	return airportTimezones[strings.ToUpper(strings.TrimSpace(code))]
}

// LocationByAirport loads the zone of code. Unknown airports and hosts
// without zoneinfo fall back to UTC.
func LocationByAirport(code string) *time.Location {
	name := NameForAirport(code)
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// InAirportZone attaches the airport's zone to a wall-clock time without
// shifting the clock reading. The carrier prints local times only.
func InAirportZone(t time.Time, code string) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, LocationByAirport(code))
}
