package canonical_test

import (
	"testing"

	"github.com/bkyoung/comment-dedup/internal/canonical"
	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	t.Run("lowercases", func(t *testing.T) {
		assert.Equal(t, "sql injection vulnerability",
			canonical.Canonicalize("SQL Injection Vulnerability"))
	})

	t.Run("collapses whitespace", func(t *testing.T) {
		assert.Equal(t, "sql injection vulnerability",
			canonical.Canonicalize("  SQL   injection\t\nvulnerability  "))
	})

	t.Run("strips surrounding punctuation", func(t *testing.T) {
		assert.Equal(t, "missing error check",
			canonical.Canonicalize("**Missing error check.**"))
	})

	t.Run("strips code fences", func(t *testing.T) {
		got := canonical.Canonicalize("Use `context.Background()` here")
		assert.Equal(t, "use context.background() here", got)
	})

	t.Run("strips fenced blocks to their content", func(t *testing.T) {
		raw := "Avoid this:\n```go\nquery := fmt.Sprintf(q, input)\n```"
		got := canonical.Canonicalize(raw)
		assert.NotContains(t, got, "```")
		assert.Contains(t, got, "query := fmt.sprintf")
	})

	t.Run("deterministic", func(t *testing.T) {
		raw := "N+1 query in `loadUsers`"
		assert.Equal(t, canonical.Canonicalize(raw), canonical.Canonicalize(raw))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "", canonical.Canonicalize(""))
		assert.Equal(t, "", canonical.Canonicalize("   \n\t  "))
	})

	t.Run("full-width characters normalize", func(t *testing.T) {
		// NFKC folds full-width Latin to ASCII
		assert.Equal(t, canonical.Canonicalize("SQL"), canonical.Canonicalize("ＳＱＬ"))
	})
}

func TestHash(t *testing.T) {
	t.Run("same text produces same hash", func(t *testing.T) {
		assert.Equal(t, canonical.Hash("sql injection"), canonical.Hash("sql injection"))
	})

	t.Run("different texts produce different hashes", func(t *testing.T) {
		assert.NotEqual(t, canonical.Hash("sql injection"), canonical.Hash("xss vulnerability"))
	})

	t.Run("hash is hex encoded sha256", func(t *testing.T) {
		assert.Len(t, canonical.Hash("anything"), 64)
	})
}
