package hasher

import (
	"golang.org/x/crypto/bcrypt"
)

// HashPassword derives the bcrypt hash expected by the control API's basic
// auth. Generate one with the hash-password subcommand.
func HashPassword(pw []byte) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword(pw, 10)
	return string(bytes), err
}

func PasswordCorrect(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
