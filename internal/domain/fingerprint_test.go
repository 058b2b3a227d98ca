package domain_test

import (
	"testing"
	"time"

	"github.com/bkyoung/comment-dedup/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFingerprint(t *testing.T) {
	seenAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("first sighting", func(t *testing.T) {
		fp, err := domain.NewFingerprint(domain.FingerprintInput{
			ID:            "fp-1",
			RepositoryID:  "github.com/acme/api",
			CanonicalText: "sql injection vulnerability",
			Category:      "security",
			PatternType:   "sql-injection",
			SeenAt:        seenAt,
		})
		require.NoError(t, err)

		assert.Equal(t, 1, fp.OccurrenceCount)
		assert.Equal(t, seenAt, fp.FirstSeenAt)
		assert.Equal(t, seenAt, fp.LastSeenAt)
		assert.Nil(t, fp.ResolvedAt)
		assert.False(t, fp.UserAcknowledged)
		assert.NoError(t, fp.Validate())
	})

	t.Run("requires ID", func(t *testing.T) {
		_, err := domain.NewFingerprint(domain.FingerprintInput{
			RepositoryID:  "github.com/acme/api",
			CanonicalText: "x",
			SeenAt:        seenAt,
		})
		assert.Error(t, err)
	})

	t.Run("requires repository", func(t *testing.T) {
		_, err := domain.NewFingerprint(domain.FingerprintInput{
			ID:            "fp-1",
			CanonicalText: "x",
			SeenAt:        seenAt,
		})
		assert.Error(t, err)
	})

	t.Run("requires canonical text", func(t *testing.T) {
		_, err := domain.NewFingerprint(domain.FingerprintInput{
			ID:           "fp-1",
			RepositoryID: "github.com/acme/api",
			SeenAt:       seenAt,
		})
		assert.Error(t, err)
	})
}

func TestFingerprint_Validate(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	valid := domain.Fingerprint{
		ID:              "fp-1",
		RepositoryID:    "repo",
		CanonicalText:   "x",
		OccurrenceCount: 1,
		FirstSeenAt:     base,
		LastSeenAt:      base.Add(time.Hour),
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, valid.Validate())
	})

	t.Run("occurrence count below one", func(t *testing.T) {
		fp := valid
		fp.OccurrenceCount = 0
		assert.Error(t, fp.Validate())
	})

	t.Run("last seen before first seen", func(t *testing.T) {
		fp := valid
		fp.LastSeenAt = base.Add(-time.Hour)
		assert.Error(t, fp.Validate())
	})

	t.Run("resolved before first seen", func(t *testing.T) {
		fp := valid
		resolved := base.Add(-time.Minute)
		fp.ResolvedAt = &resolved
		assert.Error(t, fp.Validate())
	})

	t.Run("resolved after first seen", func(t *testing.T) {
		fp := valid
		resolved := base.Add(time.Minute)
		fp.ResolvedAt = &resolved
		assert.NoError(t, fp.Validate())
		assert.True(t, fp.IsResolved())
	})
}

func TestFingerprint_SeenWithin(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	fp := domain.Fingerprint{LastSeenAt: now.Add(-2 * time.Hour)}

	assert.True(t, fp.SeenWithin(24*time.Hour, now))
	assert.False(t, fp.SeenWithin(time.Hour, now))
	assert.False(t, fp.SeenWithin(2*time.Hour, now), "window boundary is exclusive")
}

func TestNewOccurrence(t *testing.T) {
	createdAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("valid", func(t *testing.T) {
		occ, err := domain.NewOccurrence(domain.OccurrenceInput{
			ID:            "occ-1",
			FingerprintID: "fp-1",
			ReviewID:      "review-1",
			FilePath:      "db/query.go",
			LineNumber:    42,
			CommentBody:   "SQL injection vulnerability",
			CreatedAt:     createdAt,
		})
		require.NoError(t, err)
		assert.Equal(t, "fp-1", occ.FingerprintID)
		assert.Equal(t, 42, occ.LineNumber)
	})

	t.Run("requires file path", func(t *testing.T) {
		_, err := domain.NewOccurrence(domain.OccurrenceInput{
			ID:            "occ-1",
			FingerprintID: "fp-1",
			ReviewID:      "review-1",
			CreatedAt:     createdAt,
		})
		assert.Error(t, err)
	})

	t.Run("requires review ID", func(t *testing.T) {
		_, err := domain.NewOccurrence(domain.OccurrenceInput{
			ID:            "occ-1",
			FingerprintID: "fp-1",
			FilePath:      "main.go",
			CreatedAt:     createdAt,
		})
		assert.Error(t, err)
	})
}
