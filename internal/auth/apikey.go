package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt cost factor used for the bootstrap admin key.
const DefaultCost = bcrypt.DefaultCost

// HashAPIKey bcrypt-hashes a bootstrap admin API key for storage in
// configuration; this is a static credential, not an end-user password,
// since identity belongs to an external layer.
func HashAPIKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash api key: %w", err)
	}
	return string(hash), nil
}

// CheckAPIKey compares a plaintext key against its bcrypt hash.
func CheckAPIKey(key, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}
