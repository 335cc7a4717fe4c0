// Package model defines domain entities for the application.
package model

import "time"

// User represents an account that owns product records.
// PasswordHash is never serialized and leaves the credential store only on
// the login verification path.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Sanitized returns a copy of the user with the password hash cleared.
// Call before embedding the user into a response or token claim.
func (u *User) Sanitized() *User {
	clean := *u
	clean.PasswordHash = ""
	return &clean
}
