package api

import (
	"context"

	"github.com/dhages/turismo-api/internal/catalog"
	"github.com/dhages/turismo-api/internal/dashboard"
	"github.com/dhages/turismo-api/internal/reviews"
	"github.com/dhages/turismo-api/internal/site"
	"github.com/dhages/turismo-api/internal/storage"
)

// CatalogRepo serves the public read surface.
type CatalogRepo interface {
	FetchCatalog(ctx context.Context) ([]catalog.Destination, error)
	GetPackageBySlug(ctx context.Context, slug string) (*catalog.Package, error)
}

// AdminRepo covers the back-office write operations.
type AdminRepo interface {
	CreateDestination(ctx context.Context, in storage.DestinationInput) (*catalog.Destination, error)
	UpdateDestination(ctx context.Context, in storage.DestinationInput) (*catalog.Destination, error)
	DeleteDestination(ctx context.Context, id string) error
	CreatePackage(ctx context.Context, in storage.PackageInput) (*catalog.Package, error)
	UpdatePackage(ctx context.Context, in storage.PackageInput) (*catalog.Package, error)
	DeletePackage(ctx context.Context, id string) error
	CreateFAQ(ctx context.Context, question, answer string) (*site.FAQ, error)
	DeleteFAQ(ctx context.Context, id string) error
	CreateTestimonial(ctx context.Context, name, content, kind string) (*site.Testimonial, error)
	DeleteTestimonial(ctx context.Context, id string) error
}

// CounterRepo mutates engagement counters.
type CounterRepo interface {
	IncrementPackageLike(ctx context.Context, id string) (int64, error)
	IncrementPackageView(ctx context.Context, id string) (int64, error)
	IncrementPhotoLike(ctx context.Context, id string) (int64, error)
	IncrementPhotoView(ctx context.Context, id string) (int64, error)
}

// ContentRepo serves site content that lives outside the catalog graph.
type ContentRepo interface {
	ListFAQs(ctx context.Context) ([]site.FAQ, error)
	ListTestimonials(ctx context.Context) ([]site.Testimonial, error)
	UpsertSubscriber(ctx context.Context, in site.Subscriber) error
}

// CatalogCache caches the assembled destination graph.
type CatalogCache interface {
	GetCatalog(ctx context.Context) ([]catalog.Destination, error)
	SetCatalog(ctx context.Context, snapshot []catalog.Destination) error
	Invalidate(ctx context.Context) error
}

// ReviewSource fetches the agency's Google reviews.
type ReviewSource interface {
	Fetch(ctx context.Context) ([]reviews.Review, error)
}

// StatsCollector aggregates the admin dashboard numbers.
type StatsCollector interface {
	Collect(ctx context.Context) (*dashboard.Stats, error)
}
