// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

// PasswordHasher defines the interface for password hashing and verification.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password.
	Hash(password string) (string, error)

	// Check compares a plaintext password with a hash to see if they match.
	Check(password, hash string) bool
}

// TOTPService wraps the RFC 6238 algorithm used by authenticator apps.
type TOTPService interface {
	// GenerateSecret creates a new secret for the account and the otpauth:// URL that encodes it.
	GenerateSecret(accountName string) (secret, otpauthURL string, err error)

	// KeyURL rebuilds the otpauth:// URL of an existing secret.
	KeyURL(accountName, secret string) string

	// Validate checks a code against the secret with a one-step skew window.
	Validate(code, secret string) bool
}
