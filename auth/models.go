// Package auth handles authentication: credential checks, JWT issuing and
// validation, and the middleware that identifies the requesting user.
package auth

import "time"

// User is the core account model shared across the application. The users
// package layers profile, avatar and subscription behavior on top of it;
// auth needs it for credential checks and is the lowest package in the
// dependency order, so the struct lives here.
type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Avatar         string    `json:"-"` // media path, rendered as a URL by DTOs
	HashedPassword string    `json:"-"`
	IsAdmin        bool      `json:"-"`
	CreatedAt      time.Time `json:"-"`
}
