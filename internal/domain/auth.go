package domain

import "time"

// TokenIssuer issues bearer tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a bearer token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// ShareCodeHasher generates, hashes, and verifies list share codes. Only the
// hash is stored on the list; the plaintext code is shown once at creation.
type ShareCodeHasher interface {
	Generate() (code string, err error)
	Hash(code string) (hash string, err error)
	Compare(hash, code string) error
}
