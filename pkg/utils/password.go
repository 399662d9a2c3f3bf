package utils

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// PasswordPolicy decides how passwords are stored and compared.
// Plaintext is the default; Hash switches to bcrypt.
type PasswordPolicy struct {
	Hash bool
}

func (p PasswordPolicy) Seal(password string) (string, error) {
	if !p.Hash {
		return password, nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (p PasswordPolicy) Matches(stored, password string) bool {
	if !p.Hash {
		return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}
