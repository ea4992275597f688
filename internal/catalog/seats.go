package catalog

// OccupiedSeats sums (total - available) over the given departure dates.
// A nil or empty list yields zero. Inventory violations (available > total)
// are not clamped: the raw, possibly negative, arithmetic is surfaced and
// callers ranking by occupancy must tolerate it.
func OccupiedSeats(dates []DepartureDate) int {
	occupied := 0
	for _, d := range dates {
		occupied += d.SeatsTotal - d.SeatsAvailable
	}
	return occupied
}

// TotalSeatsOffered sums the total seat inventory over the given dates.
func TotalSeatsOffered(dates []DepartureDate) int {
	total := 0
	for _, d := range dates {
		total += d.SeatsTotal
	}
	return total
}
