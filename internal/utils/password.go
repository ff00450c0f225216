package utils

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// passwordSpecials are the punctuation characters accepted as the
// required special character in a password.
const passwordSpecials = "!$#@-_%"

// StrongPassword reports whether a candidate password meets the
// account policy: at least 6 characters with at least one letter, one
// digit and one special character.
func StrongPassword(plain string) bool {
	if len(plain) < 6 {
		return false
	}
	var hasLetter, hasDigit, hasSpecial bool
	for _, r := range plain {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSpecials, r):
			hasSpecial = true
		}
	}
	return hasLetter && hasDigit && hasSpecial
}
