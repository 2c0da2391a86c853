// Package security holds credential primitives used by the auth service.
package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/garyjia/surat-menyurat/internal/application/port"
)

// DefaultCost matches the cost of hashes already stored in the Users sheet.
const DefaultCost = 10

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a PasswordHasher. Costs outside bcrypt's range
// fall back to DefaultCost.
func NewBcryptHasher(cost int) port.PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(b), nil
}

func (h *bcryptHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
