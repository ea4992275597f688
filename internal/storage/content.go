package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dhages/turismo-api/internal/site"
)

// ListFAQs returns all FAQ entries, oldest first.
func (r *Repository) ListFAQs(ctx context.Context) ([]site.FAQ, error) {
	rows, err := r.q.Query(ctx, `SELECT id, pergunta, resposta FROM faqs ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("querying faqs: %w", err)
	}
	defer rows.Close()

	var faqs []site.FAQ
	for rows.Next() {
		var f site.FAQ
		if err := rows.Scan(&f.ID, &f.Question, &f.Answer); err != nil {
			return nil, fmt.Errorf("scanning faq row: %w", err)
		}
		faqs = append(faqs, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating faq rows: %w", err)
	}
	return faqs, nil
}

// CreateFAQ inserts one FAQ entry and returns it with its generated id.
func (r *Repository) CreateFAQ(ctx context.Context, question, answer string) (*site.FAQ, error) {
	f := site.FAQ{ID: uuid.NewString(), Question: question, Answer: answer}
	const q = `INSERT INTO faqs (id, pergunta, resposta) VALUES ($1, $2, $3)`
	if _, err := r.q.Exec(ctx, q, f.ID, f.Question, f.Answer); err != nil {
		return nil, fmt.Errorf("inserting faq: %w", err)
	}
	return &f, nil
}

// DeleteFAQ removes an FAQ entry.
func (r *Repository) DeleteFAQ(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM faqs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting faq %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTestimonials returns all testimonials, newest first.
func (r *Repository) ListTestimonials(ctx context.Context) ([]site.Testimonial, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, content, type FROM testimonials ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying testimonials: %w", err)
	}
	defer rows.Close()

	var items []site.Testimonial
	for rows.Next() {
		var tm site.Testimonial
		if err := rows.Scan(&tm.ID, &tm.Name, &tm.Content, &tm.Type); err != nil {
			return nil, fmt.Errorf("scanning testimonial row: %w", err)
		}
		items = append(items, tm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating testimonial rows: %w", err)
	}
	return items, nil
}

// CreateTestimonial inserts one testimonial and returns it with its id.
func (r *Repository) CreateTestimonial(ctx context.Context, name, content, typ string) (*site.Testimonial, error) {
	tm := site.Testimonial{ID: uuid.NewString(), Name: name, Content: content, Type: typ}
	const q = `INSERT INTO testimonials (id, name, content, type) VALUES ($1, $2, $3, $4)`
	if _, err := r.q.Exec(ctx, q, tm.ID, tm.Name, tm.Content, tm.Type); err != nil {
		return nil, fmt.Errorf("inserting testimonial: %w", err)
	}
	return &tm, nil
}

// DeleteTestimonial removes a testimonial.
func (r *Repository) DeleteTestimonial(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM testimonials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting testimonial %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertSubscriber records a newsletter signup. Re-subscribing with a known
// email refreshes name and phone instead of failing.
func (r *Repository) UpsertSubscriber(ctx context.Context, in site.Subscriber) error {
	const q = `
		INSERT INTO subscribers (id, name, email, phone)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE
		SET name = EXCLUDED.name, phone = EXCLUDED.phone
	`
	if _, err := r.q.Exec(ctx, q, uuid.NewString(), in.Name, in.Email, in.Phone); err != nil {
		return fmt.Errorf("upserting subscriber %s: %w", in.Email, err)
	}
	return nil
}

// CountSubscribers returns the total number of newsletter subscribers.
func (r *Repository) CountSubscribers(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM subscribers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting subscribers: %w", err)
	}
	return n, nil
}
