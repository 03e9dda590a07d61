package id

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
)

var re = regexp.MustCompile(`^[a-f0-9]{32}$`)

// NewID32 mints a public identifier: exactly 32 lowercase hex characters,
// no separators or prefixes. Used for template, document, and user ids.
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Valid reports whether s is a well-formed public identifier.
func Valid(s string) bool { return re.MatchString(s) }
