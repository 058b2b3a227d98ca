package domain

// Reason classifies why a comment was marked as a duplicate.
type Reason string

const (
	// ReasonExactMatch indicates the canonical texts are identical or
	// near-identical (score at or above the exact threshold).
	ReasonExactMatch Reason = "EXACT_MATCH"
	// ReasonResolvedIssue indicates the comment matches a fingerprint that
	// was already confirmed fixed.
	ReasonResolvedIssue Reason = "RESOLVED_ISSUE"
	// ReasonAcknowledged indicates the comment matches a fingerprint the
	// user has marked as known and intentionally unfixed.
	ReasonAcknowledged Reason = "ACKNOWLEDGED"
	// ReasonRecentlyReported indicates the matched fingerprint was seen
	// within the recency window.
	ReasonRecentlyReported Reason = "RECENTLY_REPORTED"
	// ReasonSamePattern indicates a similar fingerprint sharing the
	// comment's declared pattern type.
	ReasonSamePattern Reason = "SAME_PATTERN"
	// ReasonHighSimilarity indicates a similar fingerprint above the
	// configured similarity threshold with no stronger classification.
	ReasonHighSimilarity Reason = "HIGH_SIMILARITY"
)

// AllReasons returns every reason in tie-break priority order,
// highest priority first. Stats maps are zero-filled from this list.
func AllReasons() []Reason {
	return []Reason{
		ReasonExactMatch,
		ReasonResolvedIssue,
		ReasonAcknowledged,
		ReasonRecentlyReported,
		ReasonSamePattern,
		ReasonHighSimilarity,
	}
}

// IsValid returns true if the reason is a recognized value.
func (r Reason) IsValid() bool {
	switch r {
	case ReasonExactMatch, ReasonResolvedIssue, ReasonAcknowledged,
		ReasonRecentlyReported, ReasonSamePattern, ReasonHighSimilarity:
		return true
	default:
		return false
	}
}

// Priority returns the tie-break rank of the reason; lower is stronger.
// Unknown reasons sort last.
func (r Reason) Priority() int {
	for i, known := range AllReasons() {
		if r == known {
			return i
		}
	}
	return len(AllReasons())
}
