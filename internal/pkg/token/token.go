// Package token generates collection tokens that recipients read out or show
// to a shop when picking up an order. Tokens are random, collision-resistant,
// and restricted to characters that survive handwriting and phone calls.
package token

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// Alphabet is the set of characters used in collection tokens. Visually
// ambiguous characters (O, 0, I, 1) are excluded.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const groupLength = 4

// NewCollectionToken returns a fresh token formatted as two 4-character
// groups joined by a hyphen, e.g. "K7XP-R4MN".
func NewCollectionToken() (string, error) {
	raw := make([]byte, groupLength*2)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	var b strings.Builder
	b.Grow(groupLength*2 + 1)
	for i, c := range raw {
		if i == groupLength {
			b.WriteByte('-')
		}
		b.WriteByte(Alphabet[int(c)%len(Alphabet)])
	}

	return b.String(), nil
}

// IsWellFormed reports whether s matches the XXXX-XXXX token format over the
// token alphabet. Used to validate tokens presented by shops.
func IsWellFormed(s string) bool {
	if len(s) != groupLength*2+1 {
		return false
	}
	for i := range len(s) {
		if i == groupLength {
			if s[i] != '-' {
				return false
			}
			continue
		}
		if !strings.ContainsRune(Alphabet, rune(s[i])) {
			return false
		}
	}
	return true
}
