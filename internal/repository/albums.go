package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/globomantics/cms/internal/models"
	"github.com/globomantics/cms/pkg/db"
)

const albumColumns = `id, title, artist, description, genre, image, release_date, slug, user_id`

// Albums stores albums.
type Albums struct {
	pool Pool
}

func scanAlbum(row pgx.Row) (*models.Album, error) {
	var a models.Album
	err := row.Scan(&a.ID, &a.Title, &a.Artist, &a.Description, &a.Genre, &a.Image, &a.ReleaseDate, &a.Slug, &a.UserID)
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *Albums) collect(ctx context.Context, sql string, args ...any) ([]*models.Album, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Album, error) {
		return scanAlbum(row)
	})
}

// Create inserts a and fills its ID.
func (r *Albums) Create(ctx context.Context, a *models.Album) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO albums (title, artist, description, genre, image, release_date, slug, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		a.Title, a.Artist, a.Description, a.Genre, a.Image, a.ReleaseDate, a.Slug, a.UserID,
	).Scan(&a.ID)
	return translate(err)
}

// FindAll returns every album, newest release first.
func (r *Albums) FindAll(ctx context.Context) ([]*models.Album, error) {
	return r.collect(ctx, `SELECT `+albumColumns+` FROM albums ORDER BY release_date DESC, id`)
}

// Latest returns up to n albums, newest first.
func (r *Albums) Latest(ctx context.Context, n int) ([]*models.Album, error) {
	return r.collect(ctx, `SELECT `+albumColumns+` FROM albums ORDER BY id DESC LIMIT $1`, n)
}

func (r *Albums) FindByID(ctx context.Context, id int64) (*models.Album, error) {
	return scanAlbum(r.pool.QueryRow(ctx, `SELECT `+albumColumns+` FROM albums WHERE id = $1`, id))
}

func (r *Albums) FindBySlug(ctx context.Context, slug string) (*models.Album, error) {
	return scanAlbum(r.pool.QueryRow(ctx, `SELECT `+albumColumns+` FROM albums WHERE slug = $1`, slug))
}

// Save updates every column but id, slug and owner in a transaction.
func (r *Albums) Save(ctx context.Context, a *models.Album) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE albums SET title = $2, artist = $3, description = $4, genre = $5,
			 image = $6, release_date = $7 WHERE id = $1`,
			a.ID, a.Title, a.Artist, a.Description, a.Genre, a.Image, a.ReleaseDate,
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

func (r *Albums) Delete(ctx context.Context, a *models.Album) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM albums WHERE id = $1`, a.ID)
		return err
	})
}
