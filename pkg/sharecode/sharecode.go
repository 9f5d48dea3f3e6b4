// Package sharecode generates the short human-enterable codes students use
// to join an assignment.
package sharecode

import (
	"math/rand"
	"strings"
)

// Alphabet excludes 0, 1, I and O so codes survive being read aloud or
// copied from a projector.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const Length = 6

// New returns a fresh 6-character code. Uniqueness is not checked here;
// the assignments table has a unique index and an insert conflict surfaces
// to the caller.
func New() string {
	var b strings.Builder
	b.Grow(Length)
	for i := 0; i < Length; i++ {
		b.WriteByte(Alphabet[rand.Intn(len(Alphabet))])
	}
	return b.String()
}

// Normalize maps user input to the stored form. Codes are case-insensitive
// at lookup time.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Valid reports whether code has the right length and only uses the code
// alphabet. The input is expected to be normalized already.
func Valid(code string) bool {
	if len(code) != Length {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(Alphabet, rune(code[i])) {
			return false
		}
	}
	return true
}
