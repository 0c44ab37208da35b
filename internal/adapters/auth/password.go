package auth

import (
	"golang.org/x/crypto/bcrypt"

	"beaconattendance/internal/domain"
)

type bcryptHasher struct{}

// NewBcryptHasher returns a PasswordHasher that checks plain bcrypt hashes,
// matching how user records are provisioned.
func NewBcryptHasher() domain.PasswordHasher {
	return &bcryptHasher{}
}

func (h *bcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
