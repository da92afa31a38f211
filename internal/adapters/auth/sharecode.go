package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"

	"placelists/internal/domain"
)

const shareCodeLength = 8

var shareCodeAlphabet = []rune("abcdefghijklmnopqrstuvwxyz0123456789")

type bcryptShareCodes struct {
	cost int
}

// NewBcryptShareCodes returns a ShareCodeHasher that generates random
// lowercase codes and stores them bcrypt-hashed.
func NewBcryptShareCodes(cost int) domain.ShareCodeHasher {
	return &bcryptShareCodes{cost: cost}
}

func (h *bcryptShareCodes) Generate() (string, error) {
	b := make([]rune, shareCodeLength)
	max := big.NewInt(int64(len(shareCodeAlphabet)))
	for i := 0; i < shareCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate share code: %w", err)
		}
		b[i] = shareCodeAlphabet[n.Int64()]
	}
	return string(b), nil
}

func (h *bcryptShareCodes) Hash(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash share code: %w", err)
	}
	return string(hash), nil
}

func (h *bcryptShareCodes) Compare(hash, code string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code))
}
