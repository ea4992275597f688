package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dhages/turismo-api/internal/catalog"
)

// PhotoInput describes one photo in an admin create/update payload. A blank
// ID means "new photo"; a known ID means "update in place". Like/view
// counters are never part of the payload and survive updates untouched.
type PhotoInput struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

// DateInput describes one departure date in an admin payload.
type DateInput struct {
	ID             string             `json:"id"`
	Departure      time.Time          `json:"saida"`
	Return         time.Time          `json:"retorno"`
	SeatsTotal     int                `json:"vagas_total"`
	SeatsAvailable int                `json:"vagas_disponiveis"`
	Price          int64              `json:"price"`
	PriceCard      int64              `json:"price_card"`
	Status         catalog.DateStatus `json:"status"`
	Notes          string             `json:"notes"`
}

// PackageInput is the admin payload for creating or updating a package.
type PackageInput struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Subtitle      string       `json:"subtitle"`
	Description   string       `json:"description"`
	DestinationID string       `json:"destinoId"`
	Photos        []PhotoInput `json:"fotos"`
	Dates         []DateInput  `json:"dates"`
}

// DestinationInput is the admin payload for creating or updating a
// destination, optionally with nested packages (create path only inserts
// them; the update path touches nested package core fields by id).
type DestinationInput struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Subtitle    string         `json:"subtitle"`
	Description string         `json:"description"`
	Image       string         `json:"image"`
	Order       int            `json:"order"`
	Packages    []PackageInput `json:"pacotes"`
}

// CreateDestination inserts a destination and any nested packages in one
// transaction. The slug derives from the title; a collision within the
// active set yields ErrConflict.
func (r *Repository) CreateDestination(ctx context.Context, in DestinationInput) (*catalog.Destination, error) {
	id := uuid.NewString()
	slug := catalog.Slugify(in.Title)

	err := r.inTx(ctx, func(tr *Repository) error {
		const q = `
			INSERT INTO destinos (id, title, subtitle, description, image, slug, display_order)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		if _, err := tr.q.Exec(ctx, q, id, in.Title, in.Subtitle, in.Description, in.Image, slug, in.Order); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("destination slug %q already in use: %w", slug, ErrConflict)
			}
			return fmt.Errorf("inserting destination: %w", err)
		}

		for _, p := range in.Packages {
			p.DestinationID = id
			if _, err := tr.CreatePackage(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.getDestinationByID(ctx, id)
}

// UpdateDestination updates destination fields and, when nested packages are
// present, updates existing ones by id (core fields only) and inserts new
// ones. It never deletes packages; that is DeletePackage's job.
func (r *Repository) UpdateDestination(ctx context.Context, in DestinationInput) (*catalog.Destination, error) {
	slug := catalog.Slugify(in.Title)

	err := r.inTx(ctx, func(tr *Repository) error {
		const q = `
			UPDATE destinos
			SET title = $2, subtitle = $3, description = $4, image = $5,
			    slug = $6, display_order = $7, updated_at = NOW()
			WHERE id = $1 AND deleted_at IS NULL
		`
		tag, err := tr.q.Exec(ctx, q, in.ID, in.Title, in.Subtitle, in.Description, in.Image, slug, in.Order)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("destination slug %q already in use: %w", slug, ErrConflict)
			}
			return fmt.Errorf("updating destination %s: %w", in.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}

		for _, p := range in.Packages {
			p.DestinationID = in.ID
			if p.ID == "" {
				if _, err := tr.CreatePackage(ctx, p); err != nil {
					return err
				}
				continue
			}
			if err := tr.updatePackageRow(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.getDestinationByID(ctx, in.ID)
}

// DeleteDestination soft-deletes a destination and all its active packages
// in one transaction.
func (r *Repository) DeleteDestination(ctx context.Context, id string) error {
	return r.inTx(ctx, func(tr *Repository) error {
		tag, err := tr.q.Exec(ctx, `UPDATE destinos SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
		if err != nil {
			return fmt.Errorf("deleting destination %s: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}

		if _, err := tr.q.Exec(ctx, `UPDATE pacotes SET deleted_at = NOW() WHERE destino_id = $1 AND deleted_at IS NULL`, id); err != nil {
			return fmt.Errorf("deleting packages of destination %s: %w", id, err)
		}
		return nil
	})
}

// CreatePackage inserts a package with its photos and dates in one
// transaction. The slug is always id-suffixed, so identically titled
// packages never collide.
func (r *Repository) CreatePackage(ctx context.Context, in PackageInput) (*catalog.Package, error) {
	id := uuid.NewString()
	slug := catalog.UniqueSlug(in.Title, id)

	err := r.inTx(ctx, func(tr *Repository) error {
		const q = `
			INSERT INTO pacotes (id, title, subtitle, slug, description, destino_id)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		if _, err := tr.q.Exec(ctx, q, id, in.Title, in.Subtitle, slug, in.Description, in.DestinationID); err != nil {
			return fmt.Errorf("inserting package: %w", err)
		}

		for _, f := range in.Photos {
			if _, err := tr.insertPhoto(ctx, id, f); err != nil {
				return err
			}
		}
		for _, d := range in.Dates {
			if _, err := tr.insertDate(ctx, id, d); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.getPackageByID(ctx, id)
}

// UpdatePackage updates package fields and reconciles its photos and dates
// by id: matching ids are updated in place (photo counters survive), blank
// ids are inserted, ids missing from the payload are deleted. The row update
// and both reconciliations commit or roll back together.
func (r *Repository) UpdatePackage(ctx context.Context, in PackageInput) (*catalog.Package, error) {
	err := r.inTx(ctx, func(tr *Repository) error {
		if err := tr.updatePackageRow(ctx, in); err != nil {
			return err
		}

		if in.Photos != nil {
			if err := tr.reconcilePhotos(ctx, in.ID, in.Photos); err != nil {
				return err
			}
		}
		if in.Dates != nil {
			if err := tr.reconcileDates(ctx, in.ID, in.Dates); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.getPackageByID(ctx, in.ID)
}

// DeletePackage soft-deletes a package. Its photos and dates stay in place
// but become unreachable through the active graph.
func (r *Repository) DeletePackage(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE pacotes SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("deleting package %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) updatePackageRow(ctx context.Context, in PackageInput) error {
	slug := catalog.UniqueSlug(in.Title, in.ID)

	const q = `
		UPDATE pacotes
		SET title = $2, subtitle = $3, slug = $4, description = $5,
		    destino_id = $6, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	tag, err := r.q.Exec(ctx, q, in.ID, in.Title, in.Subtitle, slug, in.Description, in.DestinationID)
	if err != nil {
		return fmt.Errorf("updating package %s: %w", in.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) insertPhoto(ctx context.Context, pacoteID string, f PhotoInput) (string, error) {
	id := f.ID
	if id == "" {
		id = uuid.NewString()
	}
	const q = `INSERT INTO pacote_fotos (id, url, caption, pacote_id) VALUES ($1, $2, $3, $4)`
	if _, err := r.q.Exec(ctx, q, id, f.URL, f.Caption, pacoteID); err != nil {
		return "", fmt.Errorf("inserting photo for package %s: %w", pacoteID, err)
	}
	return id, nil
}

func (r *Repository) insertDate(ctx context.Context, pacoteID string, d DateInput) (string, error) {
	id := d.ID
	if id == "" {
		id = uuid.NewString()
	}
	status := d.Status
	if status == "" {
		status = catalog.StatusAvailable
	}
	const q = `
		INSERT INTO pacote_dates
			(id, pacote_id, saida, retorno, vagas_total, vagas_disponiveis, price, price_card, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	if _, err := r.q.Exec(ctx, q, id, pacoteID, d.Departure, d.Return,
		d.SeatsTotal, d.SeatsAvailable, d.Price, d.PriceCard, status, d.Notes); err != nil {
		return "", fmt.Errorf("inserting departure date for package %s: %w", pacoteID, err)
	}
	return id, nil
}

func (r *Repository) reconcilePhotos(ctx context.Context, pacoteID string, photos []PhotoInput) error {
	existing, err := r.childIDs(ctx, `SELECT id FROM pacote_fotos WHERE pacote_id = $1`, pacoteID)
	if err != nil {
		return err
	}

	kept := make([]string, 0, len(photos))
	for _, f := range photos {
		if f.ID != "" && existing[f.ID] {
			const q = `UPDATE pacote_fotos SET url = $2, caption = $3, updated_at = NOW() WHERE id = $1`
			if _, err := r.q.Exec(ctx, q, f.ID, f.URL, f.Caption); err != nil {
				return fmt.Errorf("updating photo %s: %w", f.ID, err)
			}
			kept = append(kept, f.ID)
			continue
		}
		id, err := r.insertPhoto(ctx, pacoteID, f)
		if err != nil {
			return err
		}
		kept = append(kept, id)
	}

	return r.deleteAbsentChildren(ctx, "pacote_fotos", pacoteID, kept)
}

func (r *Repository) reconcileDates(ctx context.Context, pacoteID string, dates []DateInput) error {
	existing, err := r.childIDs(ctx, `SELECT id FROM pacote_dates WHERE pacote_id = $1`, pacoteID)
	if err != nil {
		return err
	}

	kept := make([]string, 0, len(dates))
	for _, d := range dates {
		if d.ID != "" && existing[d.ID] {
			const q = `
				UPDATE pacote_dates
				SET saida = $2, retorno = $3, vagas_total = $4, vagas_disponiveis = $5,
				    price = $6, price_card = $7, status = $8, notes = $9, updated_at = NOW()
				WHERE id = $1
			`
			if _, err := r.q.Exec(ctx, q, d.ID, d.Departure, d.Return,
				d.SeatsTotal, d.SeatsAvailable, d.Price, d.PriceCard, d.Status, d.Notes); err != nil {
				return fmt.Errorf("updating departure date %s: %w", d.ID, err)
			}
			kept = append(kept, d.ID)
			continue
		}
		id, err := r.insertDate(ctx, pacoteID, d)
		if err != nil {
			return err
		}
		kept = append(kept, id)
	}

	return r.deleteAbsentChildren(ctx, "pacote_dates", pacoteID, kept)
}

func (r *Repository) childIDs(ctx context.Context, q, pacoteID string) (map[string]bool, error) {
	rows, err := r.q.Query(ctx, q, pacoteID)
	if err != nil {
		return nil, fmt.Errorf("querying child ids for package %s: %w", pacoteID, err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning child id: %w", err)
		}
		ids[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating child ids: %w", err)
	}
	return ids, nil
}

func (r *Repository) deleteAbsentChildren(ctx context.Context, table, pacoteID string, kept []string) error {
	var err error
	if len(kept) == 0 {
		_, err = r.q.Exec(ctx, `DELETE FROM `+table+` WHERE pacote_id = $1`, pacoteID)
	} else {
		_, err = r.q.Exec(ctx, `DELETE FROM `+table+` WHERE pacote_id = $1 AND NOT (id = ANY($2))`, pacoteID, kept)
	}
	if err != nil {
		return fmt.Errorf("pruning %s for package %s: %w", table, pacoteID, err)
	}
	return nil
}

func (r *Repository) getDestinationByID(ctx context.Context, id string) (*catalog.Destination, error) {
	q := `SELECT ` + destinationColumns + ` FROM destinos WHERE id = $1 AND deleted_at IS NULL`

	var d catalog.Destination
	err := r.q.QueryRow(ctx, q, id).Scan(
		&d.ID, &d.Title, &d.Subtitle, &d.Description, &d.Image,
		&d.Slug, &d.Order, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("querying destination id %s: %w", id, err)
	}

	pkgs, err := r.queryPackages(ctx)
	if err != nil {
		return nil, err
	}
	d.Packages = []catalog.Package{}
	for _, p := range pkgs {
		if p.DestinationID != d.ID {
			continue
		}
		if err := r.loadPackageChildren(ctx, &p); err != nil {
			return nil, err
		}
		d.Packages = append(d.Packages, p)
	}
	return &d, nil
}
