package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
	"unicode"
)

// SlugifyName lowercases a full name and strips everything that is not a
// letter or digit, producing the base for generated usernames.
func SlugifyName(fullName string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(fullName) {
		if unicode.IsLower(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

const passwordChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRandomPassword returns a random alphanumeric password for
// auto-provisioned customer accounts.
func GenerateRandomPassword(length int) string {
	if length <= 0 {
		length = 8
	}
	b := make([]byte, length)
	max := big.NewInt(int64(len(passwordChars)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken;
			// fall back to a fixed character rather than panicking.
			b[i] = passwordChars[0]
			continue
		}
		b[i] = passwordChars[n.Int64()]
	}
	return string(b)
}
