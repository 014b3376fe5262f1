package models

import "time"

// User is an account. The password never reaches the server: the client
// derives Verifier from it and the per-user Salt.
type User struct {
	ID        string
	UserName  string
	Salt      []byte
	Verifier  []byte
	CreatedAt time.Time
}
