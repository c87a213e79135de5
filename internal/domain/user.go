package domain

import "time"

// User is the stored credential together with the profile fields returned to clients.
type User struct {
	ID           int64
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	RoleID       int64
	RoleName     string
	CreatedAt    time.Time
}
