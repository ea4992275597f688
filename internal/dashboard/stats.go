// Package dashboard aggregates the back-office overview: top packages by
// occupied seats, most liked/viewed photos, total reservations, and the
// subscriber count.
package dashboard

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/dhages/turismo-api/internal/catalog"
)

const (
	topPackagesLimit = 5
	topPhotosLimit   = 8
)

// StatsRepo defines the storage aggregates the collector needs.
type StatsRepo interface {
	ListPackages(ctx context.Context) ([]catalog.Package, error)
	TopLikedPhotos(ctx context.Context, limit int) ([]catalog.Photo, error)
	TopViewedPhotos(ctx context.Context, limit int) ([]catalog.Photo, error)
	CountSubscribers(ctx context.Context) (int64, error)
}

// RankedPackage is a package annotated with its occupancy, the dashboard's
// "sold" metric: the sum of (total - available) over all its dates.
type RankedPackage struct {
	catalog.Package
	OccupiedSeats int `json:"vagasOcupadas"`
}

// Stats is the dashboard payload.
type Stats struct {
	TopPackages       []RankedPackage `json:"topPackages"`
	TopLikedPhotos    []catalog.Photo `json:"topLikedPackages"`
	TopViewedPhotos   []catalog.Photo `json:"topViewedPackages"`
	TotalReservations int             `json:"totalReservations"`
	TotalSubscribers  int64           `json:"totalSubscribers"`
}

// Collector gathers dashboard stats from the repository.
type Collector struct {
	repo StatsRepo
}

// NewCollector constructs a Collector.
func NewCollector(repo StatsRepo) *Collector {
	return &Collector{repo: repo}
}

// Collect runs the four storage aggregates in parallel and assembles the
// dashboard payload. Unlike the public read path there is no snapshot cache
// here; the back office always sees live numbers. Any aggregate failing
// fails the whole collection, since the payload is rendered as one view.
func (c *Collector) Collect(ctx context.Context) (*Stats, error) {
	g, gCtx := errgroup.WithContext(ctx)

	var pkgs []catalog.Package
	var liked, viewed []catalog.Photo
	var subscribers int64

	g.Go(func() error {
		var err error
		if pkgs, err = c.repo.ListPackages(gCtx); err != nil {
			return fmt.Errorf("listing packages: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if liked, err = c.repo.TopLikedPhotos(gCtx, topPhotosLimit); err != nil {
			return fmt.Errorf("fetching most liked photos: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if viewed, err = c.repo.TopViewedPhotos(gCtx, topPhotosLimit); err != nil {
			return fmt.Errorf("fetching most viewed photos: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if subscribers, err = c.repo.CountSubscribers(gCtx); err != nil {
			return fmt.Errorf("counting subscribers: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	ranked := make([]RankedPackage, 0, len(pkgs))
	total := 0
	for _, p := range pkgs {
		occupied := catalog.OccupiedSeats(p.Dates)
		total += occupied
		ranked = append(ranked, RankedPackage{Package: p, OccupiedSeats: occupied})
	}

	// Occupancy can be negative on corrupt seat data; the ranking tolerates
	// it instead of rejecting the whole dashboard.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].OccupiedSeats > ranked[j].OccupiedSeats
	})
	if len(ranked) > topPackagesLimit {
		ranked = ranked[:topPackagesLimit]
	}

	return &Stats{
		TopPackages:       ranked,
		TopLikedPhotos:    orEmpty(liked),
		TopViewedPhotos:   orEmpty(viewed),
		TotalReservations: total,
		TotalSubscribers:  subscribers,
	}, nil
}

func orEmpty(p []catalog.Photo) []catalog.Photo {
	if p == nil {
		return []catalog.Photo{}
	}
	return p
}
