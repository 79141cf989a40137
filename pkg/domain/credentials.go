package domain

import "time"

// Credentials is the durable part of a session: the bearer token plus the
// identity it was issued for and its absolute expiry in epoch milliseconds.
// A zero Token means logged out regardless of the other fields.
type Credentials struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	UserID    string `json:"userId"`
	ExpiresAt int64  `json:"expiresAt"`
}

// Expiry returns ExpiresAt as a time.Time. Zero when no expiry is set.
func (c Credentials) Expiry() time.Time {
	if c.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.UnixMilli(c.ExpiresAt)
}
