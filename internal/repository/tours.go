package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/globomantics/cms/internal/models"
	"github.com/globomantics/cms/pkg/db"
)

const tourColumns = `id, title, artist, description, genre, start_date, end_date, slug, user_id`

// Tours stores tours.
type Tours struct {
	pool Pool
}

func scanTour(row pgx.Row) (*models.Tour, error) {
	var t models.Tour
	err := row.Scan(&t.ID, &t.Title, &t.Artist, &t.Description, &t.Genre, &t.StartDate, &t.EndDate, &t.Slug, &t.UserID)
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// Create inserts t and fills its ID.
func (r *Tours) Create(ctx context.Context, t *models.Tour) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO tours (title, artist, description, genre, start_date, end_date, slug, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		t.Title, t.Artist, t.Description, t.Genre, t.StartDate, t.EndDate, t.Slug, t.UserID,
	).Scan(&t.ID)
	return translate(err)
}

// FindAll returns every tour ordered by start date.
func (r *Tours) FindAll(ctx context.Context) ([]*models.Tour, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+tourColumns+` FROM tours ORDER BY start_date, id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Tour, error) {
		return scanTour(row)
	})
}

func (r *Tours) FindByID(ctx context.Context, id int64) (*models.Tour, error) {
	return scanTour(r.pool.QueryRow(ctx, `SELECT `+tourColumns+` FROM tours WHERE id = $1`, id))
}

func (r *Tours) FindBySlug(ctx context.Context, slug string) (*models.Tour, error) {
	return scanTour(r.pool.QueryRow(ctx, `SELECT `+tourColumns+` FROM tours WHERE slug = $1`, slug))
}

// Save updates every column but id, slug and owner in a transaction.
func (r *Tours) Save(ctx context.Context, t *models.Tour) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE tours SET title = $2, artist = $3, description = $4, genre = $5,
			 start_date = $6, end_date = $7 WHERE id = $1`,
			t.ID, t.Title, t.Artist, t.Description, t.Genre, t.StartDate, t.EndDate,
		)
		if err != nil {
			return translate(err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *Tours) Delete(ctx context.Context, t *models.Tour) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM tours WHERE id = $1`, t.ID)
		return err
	})
}
