package booking

import (
	"crypto/rand"
	"fmt"
)

// confirmationAlphabet skips 0/O, 1/I and lowercase so codes survive being
// read over the phone.
const confirmationAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const confirmationCodeLength = 8

// GenerateConfirmationCode returns a short human-shareable booking code.
// Uniqueness is enforced by the database index, not by this generator.
func GenerateConfirmationCode() (string, error) {
	buf := make([]byte, confirmationCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate confirmation code: %w", err)
	}
	for i, b := range buf {
		buf[i] = confirmationAlphabet[int(b)%len(confirmationAlphabet)]
	}
	return string(buf), nil
}
