package catalog

import (
	"sort"
	"strings"
	"time"
)

// Query holds the availability search filters. Zero-valued fields match
// everything. DateFrom/DateTo are compared at calendar-day granularity.
type Query struct {
	Text            string
	DestinationSlug string
	DateFrom        *time.Time
	DateTo          *time.Time
}

// ResultRow pairs one package with one specific departure date plus its
// owning destination. A package with three matching dates yields three rows.
type ResultRow struct {
	Package          Package       `json:"pacote"`
	DestinationTitle string        `json:"destinoTitle"`
	DestinationSlug  string        `json:"destinoSlug"`
	Date             DepartureDate `json:"currentDate"`
}

// Search flattens the destination→package→date graph into the rows matching
// the query, ordered ascending by departure. Text matches case-insensitively
// against the package or destination title. The destination filter is exact
// slug equality. With only DateFrom set, the departure day must be on or
// after it; with both bounds the day must fall inside them inclusively.
// Ties on departure keep catalog traversal order.
func Search(catalog []Destination, q Query) []ResultRow {
	text := strings.ToLower(q.Text)

	var rows []ResultRow
	for _, dest := range catalog {
		for _, pkg := range dest.Packages {
			if text != "" &&
				!strings.Contains(strings.ToLower(pkg.Title), text) &&
				!strings.Contains(strings.ToLower(dest.Title), text) {
				continue
			}
			if q.DestinationSlug != "" && dest.Slug != q.DestinationSlug {
				continue
			}
			for _, date := range pkg.Dates {
				if !matchesRange(date.Departure, q.DateFrom, q.DateTo) {
					continue
				}
				rows = append(rows, ResultRow{
					Package:          pkg,
					DestinationTitle: dest.Title,
					DestinationSlug:  dest.Slug,
					Date:             date,
				})
			}
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Departure.Before(rows[j].Date.Departure)
	})
	return rows
}

func matchesRange(departure time.Time, from, to *time.Time) bool {
	if from == nil {
		return true
	}
	day := startOfDay(departure)
	if day.Before(startOfDay(*from)) {
		return false
	}
	if to != nil && day.After(startOfDay(*to)) {
		return false
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
