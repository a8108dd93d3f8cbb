package scheduling

import (
	"crypto/rand"
	"fmt"
)

// confirmationAlphabet omits I and O to keep codes unambiguous when read
// aloud over the phone. 32 characters, so a random byte mod 32 is unbiased.
const confirmationAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const confirmationCodeLength = 6

// GenerateConfirmationCode produces a 6-character code handed to the
// customer as a human-readable booking reference. Codes are random with no
// global uniqueness check; the 32^6 space keeps per-tenant collisions
// negligible.
func GenerateConfirmationCode() (string, error) {
	buf := make([]byte, confirmationCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	code := make([]byte, confirmationCodeLength)
	for i, b := range buf {
		code[i] = confirmationAlphabet[int(b)%len(confirmationAlphabet)]
	}
	return string(code), nil
}
