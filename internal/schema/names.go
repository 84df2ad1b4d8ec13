package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Simplify derives the simple_name slug of a display name: case-folded,
// diacritics removed, whitespace and apostrophes replaced by underscores.
func Simplify(name string) string {
	folded := strings.ToLower(strings.TrimSpace(name))

	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), folded)
	if err != nil {
		stripped = folded
	}

	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\'' || r == '’' {
			return '_'
		}
		return r
	}, stripped)
}

var now = time.Now

// NewID derives an identifier from a name and the current time.
func NewID(name string) string {
	sum := sha256.Sum256([]byte(name + strconv.FormatInt(now().UnixNano(), 10)))
	return hex.EncodeToString(sum[:])
}
