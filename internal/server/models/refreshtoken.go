package models

import "time"

// RefreshToken is single use: exchanging it deletes it and issues a new pair.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}

// Valid reports whether the token can still be exchanged at now.
func (t *RefreshToken) Valid(now time.Time) bool {
	return now.Before(t.Expires)
}
