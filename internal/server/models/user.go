// Package models defines the server-side records persisted by the repositories.
package models

import "time"

// MaxUsernameLength bounds User.UserName, counted in characters.
const MaxUsernameLength = 80

// User is an identity that owns tasks. UserName is unique, case-sensitive and
// never changes after registration.
type User struct {
	ID           string
	UserName     string
	PasswordHash []byte
	CreatedAt    time.Time
}
