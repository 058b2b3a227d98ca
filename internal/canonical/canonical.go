// Package canonical normalizes raw comment bodies into the canonical form
// used for fingerprint hashing and similarity comparison. Canonicalization
// is pure: identical inputs always produce identical outputs.
package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Canonicalize normalizes a raw comment body for comparison.
// The transform is: NFKC normalization, code-fence stripping, Unicode case
// folding, whitespace collapse to single spaces, surrounding punctuation
// strip, trim.
func Canonicalize(raw string) string {
	text := norm.NFKC.String(raw)
	text = stripCodeFences(text)
	text = cases.Fold().String(text)
	text = strings.Join(strings.Fields(text), " ")
	text = strings.TrimFunc(text, isStrippablePunct)
	return strings.TrimSpace(text)
}

// Hash returns the hex-encoded sha256 digest of a canonical text.
// Used as the exact-match index key in the fingerprint store.
func Hash(canonicalText string) string {
	sum := sha256.Sum256([]byte(canonicalText))
	return hex.EncodeToString(sum[:])
}

// stripCodeFences removes Markdown fence markers so fenced snippets compare
// by their content. Fence language tags (the word immediately after an
// opening fence) are kept; they are ordinary tokens after folding.
func stripCodeFences(text string) string {
	text = strings.ReplaceAll(text, "```", " ")
	return strings.ReplaceAll(text, "`", " ")
}

func isStrippablePunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}
