package identity

import "math/rand/v2"

const (
	passwordCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%"

	// DefaultPasswordLength is the length of generated initial passwords
	DefaultPasswordLength = 10
)

// GeneratePassword returns a random initial password drawn from a fixed
// charset. The source is not cryptographically secure: initial passwords are
// handed out by the administrator and rotated on first login.
func GeneratePassword(length int) string {
	if length <= 0 {
		length = DefaultPasswordLength
	}

	b := make([]byte, length)
	for i := range b {
		b[i] = passwordCharset[rand.IntN(len(passwordCharset))]
	}
	return string(b)
}
