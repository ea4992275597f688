package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dhages/turismo-api/internal/catalog"
)

// ErrNotFound is returned by mutations targeting an id that does not exist
// (or was soft-deleted). Read paths return nil, nil instead.
var ErrNotFound = errors.New("storage: not found")

// ErrConflict is returned when a write violates a uniqueness constraint,
// e.g. two active destinations slugifying to the same value.
var ErrConflict = errors.New("storage: conflict")

// Querier abstracts the subset of pgxpool.Pool used by Repository.
// This allows injection of a mock in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Tx is the subset of pgx.Tx the repository needs for multi-statement writes.
type Tx interface {
	Querier
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TxBeginner opens transactions for multi-statement writes.
type TxBeginner interface {
	Begin(ctx context.Context) (Tx, error)
}

// Repository provides database access for the destination/package graph,
// engagement counters, and site content.
type Repository struct {
	q     Querier
	begin TxBeginner
}

// NewRepository constructs a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{q: pool, begin: poolBeginner{pool}}
}

// NewRepositoryWithQuerier constructs a Repository with a custom Querier (for
// tests). Multi-statement writes run directly against q, without a transaction.
func NewRepositoryWithQuerier(q Querier) *Repository {
	return &Repository{q: q}
}

// NewRepositoryWithTxBeginner constructs a Repository whose multi-statement
// writes go through begin (for tests over a fake transaction).
func NewRepositoryWithTxBeginner(q Querier, begin TxBeginner) *Repository {
	return &Repository{q: q, begin: begin}
}

// poolBeginner adapts pgxpool.Pool's Begin signature to TxBeginner.
type poolBeginner struct {
	pool *pgxpool.Pool
}

func (p poolBeginner) Begin(ctx context.Context) (Tx, error) {
	return p.pool.Begin(ctx)
}

// inTx runs fn against a transaction-scoped Repository and commits on
// success. Repositories built over a bare Querier run fn directly, so a
// Repository already scoped to a transaction composes without nesting.
func (r *Repository) inTx(ctx context.Context, fn func(tr *Repository) error) error {
	if r.begin == nil {
		return fn(r)
	}

	tx, err := r.begin.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&Repository{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

const destinationColumns = `id, title, subtitle, description, image, slug, display_order, created_at, updated_at`
const packageColumns = `id, title, subtitle, slug, description, destino_id, like_count, view_count, created_at, updated_at`
const photoColumns = `id, url, caption, pacote_id, like_count, view_count, created_at, updated_at`
const dateColumns = `id, pacote_id, saida, retorno, vagas_total, vagas_disponiveis, price, price_card, status, notes, created_at, updated_at`

// FetchCatalog loads the full active destination graph in four queries and
// assembles it in memory: destinations ordered by display order, their
// packages, photos, and departure dates (ordered by saida ascending).
// Children of soft-deleted parents are dropped during assembly.
func (r *Repository) FetchCatalog(ctx context.Context) ([]catalog.Destination, error) {
	dests, err := r.queryDestinations(ctx)
	if err != nil {
		return nil, err
	}

	pkgs, err := r.queryPackages(ctx)
	if err != nil {
		return nil, err
	}

	photosByPkg, err := r.queryPhotosGrouped(ctx)
	if err != nil {
		return nil, err
	}

	datesByPkg, err := r.queryDatesGrouped(ctx)
	if err != nil {
		return nil, err
	}

	pkgsByDest := make(map[string][]catalog.Package)
	for _, p := range pkgs {
		p.Photos = orEmptyPhotos(photosByPkg[p.ID])
		p.Dates = orEmptyDates(datesByPkg[p.ID])
		pkgsByDest[p.DestinationID] = append(pkgsByDest[p.DestinationID], p)
	}

	for i := range dests {
		dests[i].Packages = pkgsByDest[dests[i].ID]
		if dests[i].Packages == nil {
			dests[i].Packages = []catalog.Package{}
		}
	}

	return dests, nil
}

// GetPackageBySlug retrieves one active package with its photos and dates.
// The owning destination must also be active. Returns nil, nil when absent.
func (r *Repository) GetPackageBySlug(ctx context.Context, slug string) (*catalog.Package, error) {
	const q = `
		SELECT p.id, p.title, p.subtitle, p.slug, p.description, p.destino_id,
		       p.like_count, p.view_count, p.created_at, p.updated_at
		FROM pacotes p
		JOIN destinos d ON d.id = p.destino_id AND d.deleted_at IS NULL
		WHERE p.slug = $1 AND p.deleted_at IS NULL
	`

	var p catalog.Package
	err := r.q.QueryRow(ctx, q, slug).Scan(
		&p.ID, &p.Title, &p.Subtitle, &p.Slug, &p.Description, &p.DestinationID,
		&p.Likes, &p.Views, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying package %s: %w", slug, err)
	}

	if err := r.loadPackageChildren(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// getPackageByID is the id-keyed variant used after admin writes.
func (r *Repository) getPackageByID(ctx context.Context, id string) (*catalog.Package, error) {
	q := `SELECT ` + packageColumns + ` FROM pacotes WHERE id = $1 AND deleted_at IS NULL`

	var p catalog.Package
	err := r.q.QueryRow(ctx, q, id).Scan(
		&p.ID, &p.Title, &p.Subtitle, &p.Slug, &p.Description, &p.DestinationID,
		&p.Likes, &p.Views, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying package id %s: %w", id, err)
	}

	if err := r.loadPackageChildren(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) loadPackageChildren(ctx context.Context, p *catalog.Package) error {
	photos, err := r.queryPhotos(ctx, `SELECT `+photoColumns+` FROM pacote_fotos WHERE pacote_id = $1 ORDER BY created_at`, p.ID)
	if err != nil {
		return err
	}
	p.Photos = orEmptyPhotos(photos)

	dates, err := r.queryDates(ctx, `SELECT `+dateColumns+` FROM pacote_dates WHERE pacote_id = $1 ORDER BY saida`, p.ID)
	if err != nil {
		return err
	}
	p.Dates = orEmptyDates(dates)
	return nil
}

// ListPackages returns every active package with photos and dates, used by
// the dashboard's occupancy ranking.
func (r *Repository) ListPackages(ctx context.Context) ([]catalog.Package, error) {
	pkgs, err := r.queryPackages(ctx)
	if err != nil {
		return nil, err
	}

	photosByPkg, err := r.queryPhotosGrouped(ctx)
	if err != nil {
		return nil, err
	}
	datesByPkg, err := r.queryDatesGrouped(ctx)
	if err != nil {
		return nil, err
	}

	for i := range pkgs {
		pkgs[i].Photos = orEmptyPhotos(photosByPkg[pkgs[i].ID])
		pkgs[i].Dates = orEmptyDates(datesByPkg[pkgs[i].ID])
	}
	return pkgs, nil
}

// TopLikedPhotos returns the most liked photos across all packages.
func (r *Repository) TopLikedPhotos(ctx context.Context, limit int) ([]catalog.Photo, error) {
	return r.queryPhotos(ctx, `SELECT `+photoColumns+` FROM pacote_fotos ORDER BY like_count DESC LIMIT $1`, limit)
}

// TopViewedPhotos returns the most viewed photos across all packages.
func (r *Repository) TopViewedPhotos(ctx context.Context, limit int) ([]catalog.Photo, error) {
	return r.queryPhotos(ctx, `SELECT `+photoColumns+` FROM pacote_fotos ORDER BY view_count DESC LIMIT $1`, limit)
}

// ---- row scanning helpers ----

func (r *Repository) queryDestinations(ctx context.Context) ([]catalog.Destination, error) {
	q := `SELECT ` + destinationColumns + ` FROM destinos WHERE deleted_at IS NULL ORDER BY display_order, created_at DESC`

	rows, err := r.q.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying destinations: %w", err)
	}
	defer rows.Close()

	var dests []catalog.Destination
	for rows.Next() {
		var d catalog.Destination
		if err := rows.Scan(
			&d.ID, &d.Title, &d.Subtitle, &d.Description, &d.Image,
			&d.Slug, &d.Order, &d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning destination row: %w", err)
		}
		dests = append(dests, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating destination rows: %w", err)
	}
	return dests, nil
}

func (r *Repository) queryPackages(ctx context.Context) ([]catalog.Package, error) {
	q := `SELECT ` + packageColumns + ` FROM pacotes WHERE deleted_at IS NULL ORDER BY created_at`

	rows, err := r.q.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying packages: %w", err)
	}
	defer rows.Close()

	var pkgs []catalog.Package
	for rows.Next() {
		var p catalog.Package
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Subtitle, &p.Slug, &p.Description, &p.DestinationID,
			&p.Likes, &p.Views, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning package row: %w", err)
		}
		pkgs = append(pkgs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating package rows: %w", err)
	}
	return pkgs, nil
}

func (r *Repository) queryPhotos(ctx context.Context, q string, args ...any) ([]catalog.Photo, error) {
	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying photos: %w", err)
	}
	defer rows.Close()

	var photos []catalog.Photo
	for rows.Next() {
		var f catalog.Photo
		if err := rows.Scan(
			&f.ID, &f.URL, &f.Caption, &f.PackageID,
			&f.Likes, &f.Views, &f.CreatedAt, &f.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning photo row: %w", err)
		}
		photos = append(photos, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating photo rows: %w", err)
	}
	return photos, nil
}

func (r *Repository) queryDates(ctx context.Context, q string, args ...any) ([]catalog.DepartureDate, error) {
	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying departure dates: %w", err)
	}
	defer rows.Close()

	var dates []catalog.DepartureDate
	for rows.Next() {
		var d catalog.DepartureDate
		if err := rows.Scan(
			&d.ID, &d.PackageID, &d.Departure, &d.Return,
			&d.SeatsTotal, &d.SeatsAvailable, &d.Price, &d.PriceCard,
			&d.Status, &d.Notes, &d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning departure date row: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating departure date rows: %w", err)
	}
	return dates, nil
}

func (r *Repository) queryPhotosGrouped(ctx context.Context) (map[string][]catalog.Photo, error) {
	photos, err := r.queryPhotos(ctx, `SELECT `+photoColumns+` FROM pacote_fotos ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]catalog.Photo)
	for _, f := range photos {
		grouped[f.PackageID] = append(grouped[f.PackageID], f)
	}
	return grouped, nil
}

func (r *Repository) queryDatesGrouped(ctx context.Context) (map[string][]catalog.DepartureDate, error) {
	dates, err := r.queryDates(ctx, `SELECT `+dateColumns+` FROM pacote_dates ORDER BY saida`)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]catalog.DepartureDate)
	for _, d := range dates {
		grouped[d.PackageID] = append(grouped[d.PackageID], d)
	}
	return grouped, nil
}

// JSON consumers expect "fotos": [] rather than null.
func orEmptyPhotos(p []catalog.Photo) []catalog.Photo {
	if p == nil {
		return []catalog.Photo{}
	}
	return p
}

func orEmptyDates(d []catalog.DepartureDate) []catalog.DepartureDate {
	if d == nil {
		return []catalog.DepartureDate{}
	}
	return d
}
