// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

// PasswordHasher turns plaintext passwords into salted one-way hashes and
// verifies candidates against them. The salt lives inside the hash string.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password.
	Hash(password string) (string, error)

	// Verify reports whether password matches hash. A mismatch or a malformed
	// hash is false, never an error.
	Verify(password, hash string) bool
}
