// password.go - Salted password hashing and temporary credentials

package auth

import (
	"crypto/rand"
	"math/big"

	"cafesantander/apperr"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns the bcrypt hash of a plaintext password.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", apperr.Unexpected("failed to hash password", err)
	}
	return string(hash), nil
}

// CheckPassword compares plain against hash in constant time.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

const (
	lowerAlnum = "abcdefghijklmnopqrstuvwxyz0123456789"
	upper      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// TemporaryPassword generates a 10 character reset credential: eight lowercase
// letters or digits followed by two uppercase letters.
func TemporaryPassword() (string, error) {
	out := make([]byte, 0, 10)
	for i := 0; i < 10; i++ {
		set := lowerAlnum
		if i >= 8 {
			set = upper
		}
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
		if err != nil {
			return "", apperr.Unexpected("failed to generate password", err)
		}
		out = append(out, set[n.Int64()])
	}
	return string(out), nil
}
