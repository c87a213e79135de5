package domain

import "time"

// Identity is the caller proven by a validated token. Role reflects the value at issuance.
type Identity struct {
	UserID    int64
	Email     string
	Role      string
	ExpiresAt time.Time
}

// Token is an issued access token and its expiry.
type Token struct {
	Value     string
	ExpiresAt time.Time
}
