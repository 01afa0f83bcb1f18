// Package credentials decides how a submitted password is turned into the
// value that gets stored.
package credentials

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordTooLong is returned by Bcrypt for passwords over 72 bytes.
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

type Hasher interface {
	Hash(password string) (string, error)
}

// Plain stores the password exactly as received.
type Plain struct{}

func (Plain) Hash(password string) (string, error) { return password, nil }

// Bcrypt stores a bcrypt hash of the password.
type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Select returns Bcrypt when hashing is enabled and Plain otherwise.
func Select(hashPasswords bool, cost int) Hasher {
	if hashPasswords {
		return Bcrypt{Cost: cost}
	}
	return Plain{}
}
