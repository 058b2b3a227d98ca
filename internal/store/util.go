package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// GenerateFingerprintID creates a deterministic, repository-scoped ID for
// a fingerprint. Two fingerprints for the same canonical text in the same
// repository get the same ID, which keeps concurrent first sightings from
// diverging.
// Format: fp-<hash>
func GenerateFingerprintID(repositoryID, canonicalText string) string {
	input := fmt.Sprintf("%s|%s", repositoryID, canonicalText)
	hash := sha256.Sum256([]byte(input))
	return "fp-" + hex.EncodeToString(hash[:16])
}

// GenerateOccurrenceID creates a unique, time-ordered occurrence ID.
// Format: occ-<timestamp>-<hash>
// Example: occ-20251021T143052Z-a3f9c2
func GenerateOccurrenceID(timestamp time.Time, fingerprintID, reviewID string) string {
	// UTC timestamp in ISO format for consistent ordering
	ts := timestamp.UTC().Format("20060102T150405Z")

	input := fmt.Sprintf("%s|%s|%d", fingerprintID, reviewID, timestamp.UnixNano())
	hash := sha256.Sum256([]byte(input))
	shortHash := hex.EncodeToString(hash[:3]) // 6 character hash

	return fmt.Sprintf("occ-%s-%s", ts, shortHash)
}
