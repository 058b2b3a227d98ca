package dedup

import "time"

// exactThreshold is the fixed score at or above which two texts are
// treated as the same text. It is intentionally not configurable; the
// similarity threshold below it is.
const exactThreshold = 0.99

const (
	// DefaultSimilarityThreshold is the minimum score for two comments to
	// count as similar.
	DefaultSimilarityThreshold = 0.85

	// DefaultRecencyWindow is how recently a fingerprint must have been
	// seen to count as still hot.
	DefaultRecencyWindow = 24 * time.Hour
)

// Options tunes one deduplication call. The zero value means defaults.
type Options struct {
	// SimilarityThreshold is the minimum score for a similarity match.
	// Zero means DefaultSimilarityThreshold.
	SimilarityThreshold float64

	// IncludeResolved lets comments matching resolved fingerprints pass
	// the narrow check instead of being classified RESOLVED_ISSUE.
	IncludeResolved bool

	// IncludeAcknowledged lets comments matching acknowledged fingerprints
	// pass the narrow check instead of being classified ACKNOWLEDGED.
	IncludeAcknowledged bool

	// RecencyWindow bounds the RECENTLY_REPORTED classification.
	// Zero means DefaultRecencyWindow.
	RecencyWindow time.Duration
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		SimilarityThreshold: DefaultSimilarityThreshold,
		RecencyWindow:       DefaultRecencyWindow,
	}
}

// withDefaults fills in zero-valued fields.
func (o Options) withDefaults() Options {
	if o.SimilarityThreshold == 0 {
		o.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if o.RecencyWindow == 0 {
		o.RecencyWindow = DefaultRecencyWindow
	}
	return o
}
