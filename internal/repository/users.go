package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/globomantics/cms/internal/models"
	"github.com/globomantics/cms/pkg/db"
)

const userColumns = `id, username, email, password_hash, is_admin, created_at`

// Users stores accounts.
type Users struct {
	pool Pool
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// Create inserts u and fills ID and CreatedAt.
func (r *Users) Create(ctx context.Context, u *models.User) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, is_admin)
		 VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		u.Username, u.Email, u.PasswordHash, u.IsAdmin,
	).Scan(&u.ID, &u.CreatedAt)
	return translate(err)
}

func (r *Users) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *Users) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

// UsernameTaken reports whether an account uses username.
func (r *Users) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username)
}

// EmailTaken reports whether an account uses email.
func (r *Users) EmailTaken(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *Users) exists(ctx context.Context, sql string, arg any) (bool, error) {
	var ok bool
	if err := r.pool.QueryRow(ctx, sql, arg).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// FindAll returns every account ordered by id.
func (r *Users) FindAll(ctx context.Context) ([]*models.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.User, error) {
		return scanUser(row)
	})
}

// Save updates the profile columns of u in a transaction.
func (r *Users) Save(ctx context.Context, u *models.User) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE users SET username = $2, email = $3, is_admin = $4 WHERE id = $1`,
			u.ID, u.Username, u.Email, u.IsAdmin,
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

// Delete removes u together with its albums, tours and sessions.
func (r *Users) Delete(ctx context.Context, u *models.User) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, u.ID)
		return err
	})
}

// IsNotFound reports whether err means the record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
