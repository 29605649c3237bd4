// Package repository stores the domain records in PostgreSQL.
package repository

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/globomantics/cms/internal/admin"
	"github.com/globomantics/cms/pkg/db"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrations returns the goose migrations at the root of the FS.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

var (
	// ErrNotFound also matches admin.ErrNotFound.
	ErrNotFound = fmt.Errorf("repository: %w", admin.ErrNotFound)

	ErrDuplicateUsername = errors.New("repository: username already taken")
	ErrDuplicateEmail    = errors.New("repository: email already registered")
	ErrDuplicateSlug     = errors.New("repository: slug already taken")
)

// Unique constraint names from the migrations.
const (
	constraintUsername  = "users_username_key"
	constraintEmail     = "users_email_key"
	constraintAlbumSlug = "albums_slug_key"
	constraintTourSlug  = "tours_slug_key"
)

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case db.IsNotFound(err):
		return ErrNotFound
	case db.IsUniqueViolation(err, constraintUsername):
		return ErrDuplicateUsername
	case db.IsUniqueViolation(err, constraintEmail):
		return ErrDuplicateEmail
	case db.IsUniqueViolation(err, constraintAlbumSlug, constraintTourSlug):
		return ErrDuplicateSlug
	default:
		return err
	}
}

// Store bundles the repositories over one connection pool.
type Store struct {
	Users    *Users
	Albums   *Albums
	Tours    *Tours
	Sessions *Sessions
}

// Pool is what the repositories need from *pgxpool.Pool.
type Pool interface {
	db.Querier
	db.Beginner
}

// New creates every repository on pool.
func New(pool Pool) *Store {
	return &Store{
		Users:    &Users{pool: pool},
		Albums:   &Albums{pool: pool},
		Tours:    &Tours{pool: pool},
		Sessions: &Sessions{pool: pool},
	}
}
