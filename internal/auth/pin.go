package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/mschirtz/daybook/internal/schema"
)

// NewSalt returns a fresh random salt for PIN hashing.
func NewSalt() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashPIN derives the stored credential: hex(sha256(salt + pin)).
func HashPIN(salt, pin string) string {
	sum := sha256.Sum256([]byte(salt + pin))
	return hex.EncodeToString(sum[:])
}

// SetPIN stores the PIN hash and salt in settings. An empty pin clears the
// gate.
func SetPIN(settings *schema.Settings, pin string) error {
	if pin == "" {
		settings.PINSalt = ""
		settings.PINHash = ""
		return nil
	}
	salt, err := NewSalt()
	if err != nil {
		return err
	}
	settings.PINSalt = salt
	settings.PINHash = HashPIN(salt, pin)
	return nil
}

// VerifyPIN checks pin against the stored hash. A document with no PIN set
// passes any check.
func VerifyPIN(settings *schema.Settings, pin string) bool {
	if settings.PINHash == "" {
		return true
	}
	derived := HashPIN(settings.PINSalt, pin)
	return subtle.ConstantTimeCompare([]byte(derived), []byte(settings.PINHash)) == 1
}

// PromptPIN reads a PIN from the terminal without echo.
func PromptPIN(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	pin, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read PIN: %w", err)
	}
	return string(pin), nil
}
