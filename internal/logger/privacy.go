package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// MinHashSaltLength is the minimum accepted length of LOG_HASH_SALT.
const MinHashSaltLength = 32

const defaultHashSalt = "expense-ledger-default-salt-change-me"

var hashSalt = defaultHashSalt

// ErrWeakHashSalt is returned when the configured salt is too short.
var ErrWeakHashSalt = errors.New("LOG_HASH_SALT must be at least 32 characters")

// SetHashSalt replaces the salt used by HashOwnerID.
// An empty salt keeps the built-in default.
func SetHashSalt(salt string) error {
	if salt == "" {
		hashSalt = defaultHashSalt
		return nil
	}
	if len(salt) < MinHashSaltLength {
		return ErrWeakHashSalt
	}
	hashSalt = salt
	return nil
}

// HashOwnerID creates a privacy-preserving hash of an owner ID.
// This allows correlating an owner's log lines without exposing the ID.
func HashOwnerID(ownerID int64) string {
	data := fmt.Sprintf("%d:%s", ownerID, hashSalt)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])[:8]
}

// SanitizeDescription redacts a description but preserves length information for debugging.
func SanitizeDescription(desc string) string {
	if desc == "" {
		return "<empty>"
	}

	words := strings.Fields(desc)
	return fmt.Sprintf("<redacted: %d words, %d chars>", len(words), len(desc))
}

// SanitizeText is a general-purpose sanitizer for any user-provided text.
func SanitizeText(text string) string {
	if text == "" {
		return "<empty>"
	}

	runes := []rune(text)
	if len(runes) <= 10 {
		return fmt.Sprintf("<%d chars>", len(runes))
	}

	return fmt.Sprintf("%s...<%d chars>", string(runes[:3]), len(runes))
}

// SanitizeRow sanitizes every field of an imported row.
func SanitizeRow(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = SanitizeText(strings.TrimSpace(f))
	}
	return out
}
