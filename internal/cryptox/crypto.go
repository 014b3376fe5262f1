// Package cryptox derives the login verifier from a password. The password
// itself never leaves the client.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

// SaltSize is the length of a freshly generated account salt.
const SaltSize = 32

// DeriveMasterKey stretches password with argon2id.
func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// MakeVerifier hashes the master key into the value the server stores.
func MakeVerifier(masterKey []byte) []byte {
	hash := sha256.Sum256(masterKey)
	return hash[:]
}

// VerifierFor is MakeVerifier(DeriveMasterKey(password, salt)) with the
// intermediate key wiped.
func VerifierFor(password, salt []byte) []byte {
	key := DeriveMasterKey(password, salt)
	v := MakeVerifier(key)
	for i := range key {
		key[i] = 0
	}
	return v
}

// CheckVerifier compares in constant time.
func CheckVerifier(stored, candidate []byte) bool {
	return len(stored) > 0 && subtle.ConstantTimeCompare(stored, candidate) == 1
}
