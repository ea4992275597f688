package catalog

import (
	"sort"
	"time"
)

// UpcomingDates returns the departure dates leaving at or after ref, ordered
// ascending by departure. Entries with identical departures keep their
// original relative order. An empty result is a normal outcome, not an error.
func UpcomingDates(dates []DepartureDate, ref time.Time) []DepartureDate {
	var out []DepartureDate
	for _, d := range dates {
		if !d.Departure.Before(ref) {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Departure.Before(out[j].Departure)
	})
	return out
}
