package store

import (
	"context"
	"time"

	"github.com/bkyoung/comment-dedup/internal/domain"
)

// Store defines the persistence layer contract for fingerprints and their
// occurrence history, scoped per repository.
//
// The narrow and broad lookups are deliberately separate methods rather
// than one parameterized query: the narrow path is an exact canonical-hash
// index hit, the broad path a fuzzy scan, and implementations index them
// differently.
type Store interface {
	// FindNarrowMatch returns the single most relevant fingerprint whose
	// canonical text exactly matches the given one, or nil when none
	// exists. When non-transactional writes have produced several
	// fingerprints with the same canonical text, implementations must
	// deterministically pick the most recently seen one rather than fail.
	FindNarrowMatch(ctx context.Context, repositoryID, canonicalText string) (*domain.Fingerprint, error)

	// FindBroadMatches returns every fingerprint in the repository scoring
	// at least minScore against the canonical text, best first, ignoring
	// resolved/acknowledged/recency state.
	FindBroadMatches(ctx context.Context, repositoryID, canonicalText string, minScore float64) ([]Match, error)

	// CreateFingerprint persists a first-sighting fingerprint.
	CreateFingerprint(ctx context.Context, fp domain.Fingerprint) error

	// MarkSeen atomically increments the fingerprint's occurrence count,
	// refreshes its last-seen time and clears any resolution, reporting
	// the prior state. Implementations must use a single atomic update or
	// an equivalent transaction, never a plain read-then-write pair;
	// concurrent reviews of the same repository would otherwise lose
	// increments.
	MarkSeen(ctx context.Context, fingerprintID string, seenAt time.Time) (MarkSeenResult, error)

	// UpdateFingerprint applies external lifecycle signals (resolution,
	// acknowledgment) to a fingerprint.
	UpdateFingerprint(ctx context.Context, fingerprintID string, update FingerprintUpdate) error

	// CreateOccurrence appends one sighting. Occurrences are append-only.
	CreateOccurrence(ctx context.Context, occ domain.Occurrence) error

	// GetOccurrencesByFingerprint returns a fingerprint's sightings,
	// newest first.
	GetOccurrencesByFingerprint(ctx context.Context, fingerprintID string) ([]domain.Occurrence, error)

	// Utility
	Close() error
}

// Match pairs a fingerprint with its similarity score against a query text.
type Match struct {
	Fingerprint domain.Fingerprint
	Score       float64
}

// MarkSeenResult reports the fingerprint state prior to a MarkSeen call.
type MarkSeenResult struct {
	// PreviousCount is the occurrence count before the increment.
	PreviousCount int

	// WasResolved is true if the fingerprint had been marked fixed and
	// this sighting reintroduced it.
	WasResolved bool
}

// FingerprintUpdate describes a partial fingerprint update.
// Nil/false fields are left unchanged.
type FingerprintUpdate struct {
	// ResolvedAt sets the resolution time when non-nil.
	ResolvedAt *time.Time

	// ClearResolved clears the resolution. Mutually exclusive with
	// ResolvedAt.
	ClearResolved bool

	// UserAcknowledged sets the acknowledgment flag when non-nil.
	UserAcknowledged *bool
}
