// Package models holds the domain records shared by repositories,
// handlers and views.
package models

import "time"

// User is a registered account.
type User struct {
	CreatedAt    time.Time
	Username     string
	Email        string
	PasswordHash string
	ID           int64
	IsAdmin      bool
}

// Owns reports whether the user created a record owned by ownerID.
func (u *User) Owns(ownerID int64) bool {
	return u != nil && u.ID != 0 && u.ID == ownerID
}

// Album is a published record.
type Album struct {
	ReleaseDate time.Time
	Title       string
	Artist      string
	Description string
	Genre       string
	Image       string // storage key of the cover, may be empty
	Slug        string
	ID          int64
	UserID      int64
}

// Tour is a series of concerts.
type Tour struct {
	StartDate   time.Time
	EndDate     time.Time
	Title       string
	Artist      string
	Description string
	Genre       string
	Slug        string
	ID          int64
	UserID      int64
}
