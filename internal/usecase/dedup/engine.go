// Package dedup decides, for each newly generated review comment, whether
// it is a genuinely new issue or a restatement of something already
// reported, resolved, acknowledged, or recently flagged in the repository's
// history.
//
// Classification happens in three stages per comment, in input order:
//   - intra-batch comparison against the originals already accepted in the
//     same call
//   - a narrow historical lookup (exact-or-near canonical match)
//   - a broad historical lookup (fuzzy scan above the similarity threshold)
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/bkyoung/comment-dedup/internal/canonical"
	"github.com/bkyoung/comment-dedup/internal/domain"
	"github.com/bkyoung/comment-dedup/internal/similarity"
	"github.com/bkyoung/comment-dedup/internal/store"
)

// Engine partitions candidate comments into originals and duplicates.
// It holds no process-wide state; all persistence goes through the
// injected store.
type Engine struct {
	store  store.Store
	scorer similarity.Scorer
	logger Logger
	clock  func() time.Time
}

// Dependencies captures the collaborators for the engine.
type Dependencies struct {
	// Store is the repository-scoped fingerprint store.
	Store store.Store

	// Scorer computes similarity between canonical texts.
	Scorer similarity.Scorer

	// Logger receives warnings and info messages. Optional.
	Logger Logger

	// Clock supplies the current time. Optional; defaults to time.Now.
	// Inject a fixed clock for deterministic tests.
	Clock func() time.Time
}

// NewEngine constructs an Engine, validating required dependencies.
func NewEngine(deps Dependencies) (*Engine, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if deps.Scorer == nil {
		return nil, fmt.Errorf("scorer is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = NopLogger{}
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Engine{
		store:  deps.Store,
		scorer: deps.Scorer,
		logger: logger,
		clock:  clock,
	}, nil
}

// Result is the outcome of one deduplication batch.
type Result struct {
	// OriginalComments are the comments accepted as genuinely new,
	// in input order.
	OriginalComments []domain.Comment `json:"originalComments"`

	// Duplicates are the comments classified as restatements.
	Duplicates []domain.DuplicateRecord `json:"duplicates"`

	// Rejected are malformed comments excluded from the batch. They count
	// toward neither originals nor duplicates.
	Rejected []RejectedComment `json:"rejected,omitempty"`

	// Stats summarizes the batch.
	Stats domain.Stats `json:"stats"`
}

// RejectedComment pairs an invalid comment with the validation failure.
type RejectedComment struct {
	Comment domain.Comment `json:"comment"`
	Reason  string         `json:"reason"`
}

// acceptedComment is an in-batch original plus its lookup context. Later
// comments in the same batch are compared against these.
type acceptedComment struct {
	comment       domain.Comment
	canonicalText string
	fingerprintID *string
}

// Deduplicate partitions a batch of candidate comments into originals and
// duplicates. Comments are processed sequentially in input order: later
// comments must see the originals accepted earlier in the same batch.
//
// A malformed comment is rejected without aborting the batch. A store
// failure on one comment's lookup fails open (the comment is kept as an
// original and the failure logged) unless the context has been cancelled,
// in which case a retryable STORAGE_UNAVAILABLE error is returned.
func (e *Engine) Deduplicate(ctx context.Context, repositoryID string, comments []domain.Comment, opts Options) (Result, error) {
	opts = opts.withDefaults()

	result := Result{Stats: domain.NewStats()}
	var accepted []acceptedComment

	for _, comment := range comments {
		if err := comment.Validate(); err != nil {
			invalid := NewInvalidCommentError("comment rejected", err)
			e.logger.LogWarning(ctx, "rejecting invalid comment", map[string]interface{}{
				"tempId": comment.TempID,
				"error":  invalid.Error(),
			})
			result.Rejected = append(result.Rejected, RejectedComment{
				Comment: comment,
				Reason:  invalid.Error(),
			})
			continue
		}

		result.Stats.TotalInput++
		canonicalText := canonical.Canonicalize(comment.Body)

		// Stage 1: intra-batch comparison.
		if dup := e.matchIntraBatch(comment, canonicalText, accepted, opts); dup != nil {
			result.Duplicates = append(result.Duplicates, *dup)
			result.Stats.DuplicateCount++
			result.Stats.ByReason[dup.Reason]++
			continue
		}

		// Stages 2 and 3: historical lookups.
		dup, knownFingerprintID, err := e.classifyAgainstHistory(ctx, repositoryID, comment, canonicalText, opts)
		if err != nil {
			if ctx.Err() != nil {
				return Result{}, NewStorageUnavailableError("deduplication aborted", err)
			}
			// Fail open: keep the comment rather than silently dropping
			// feedback over a transient store failure.
			e.logger.LogWarning(ctx, "historical lookup failed, keeping comment", map[string]interface{}{
				"tempId": comment.TempID,
				"error":  err.Error(),
			})
		}
		if dup != nil {
			result.Duplicates = append(result.Duplicates, *dup)
			result.Stats.DuplicateCount++
			result.Stats.ByReason[dup.Reason]++
			continue
		}

		accepted = append(accepted, acceptedComment{
			comment:       comment,
			canonicalText: canonicalText,
			fingerprintID: knownFingerprintID,
		})
		result.OriginalComments = append(result.OriginalComments, comment)
		result.Stats.OriginalCount++
	}

	result.Stats.Finalize()
	return result, nil
}

// matchIntraBatch compares a comment against every original already
// accepted in this batch and returns a duplicate record for the best match
// above the thresholds, or nil.
func (e *Engine) matchIntraBatch(comment domain.Comment, canonicalText string, accepted []acceptedComment, opts Options) *domain.DuplicateRecord {
	bestScore := 0.0
	var bestMatch *acceptedComment

	for i := range accepted {
		score := e.scorer.Score(canonicalText, accepted[i].canonicalText)
		if score > bestScore {
			bestScore = score
			bestMatch = &accepted[i]
		}
	}

	if bestMatch == nil {
		return nil
	}

	var reason domain.Reason
	switch {
	case bestScore >= exactThreshold:
		reason = domain.ReasonExactMatch
	case bestScore >= opts.SimilarityThreshold:
		reason = domain.ReasonHighSimilarity
	default:
		return nil
	}

	// The fingerprint ID stays nil unless the earlier original itself
	// resolved to a historical fingerprint.
	return &domain.DuplicateRecord{
		TempID:                   comment.TempID,
		DuplicateOfFingerprintID: bestMatch.fingerprintID,
		SimilarityScore:          bestScore,
		Reason:                   reason,
	}
}

// classifyAgainstHistory runs the narrow then broad historical lookups.
// It returns the duplicate record when the comment is a restatement, or
// nil with the ID of any fingerprint encountered on the way (so intra-batch
// duplicates of this comment can point at it).
func (e *Engine) classifyAgainstHistory(ctx context.Context, repositoryID string, comment domain.Comment, canonicalText string, opts Options) (*domain.DuplicateRecord, *string, error) {
	now := e.clock()
	var knownFingerprintID *string

	// Stage 2: narrow lookup, exact-or-near canonical match.
	narrow, err := e.store.FindNarrowMatch(ctx, repositoryID, canonicalText)
	if err != nil {
		return nil, nil, fmt.Errorf("narrow lookup: %w", err)
	}

	if narrow != nil {
		score := e.scorer.Score(canonicalText, narrow.CanonicalText)
		fingerprintID := narrow.ID

		switch {
		case score >= exactThreshold:
			// Exact match wins regardless of resolved/acknowledged state.
			return duplicateOf(comment, fingerprintID, score, domain.ReasonExactMatch), nil, nil
		case narrow.IsResolved() && !opts.IncludeResolved:
			return duplicateOf(comment, fingerprintID, score, domain.ReasonResolvedIssue), nil, nil
		case narrow.UserAcknowledged && !opts.IncludeAcknowledged:
			return duplicateOf(comment, fingerprintID, score, domain.ReasonAcknowledged), nil, nil
		case narrow.SeenWithin(opts.RecencyWindow, now):
			return duplicateOf(comment, fingerprintID, score, domain.ReasonRecentlyReported), nil, nil
		}

		// Fell through the narrow filters; remember the fingerprint.
		knownFingerprintID = &fingerprintID
	}

	// Stage 3: broad lookup over the whole repository, state filters
	// ignored, best match decides.
	matches, err := e.store.FindBroadMatches(ctx, repositoryID, canonicalText, opts.SimilarityThreshold)
	if err != nil {
		return nil, knownFingerprintID, fmt.Errorf("broad lookup: %w", err)
	}

	if len(matches) == 0 {
		return nil, knownFingerprintID, nil
	}

	best := matches[0]
	fingerprintID := best.Fingerprint.ID

	var reason domain.Reason
	switch {
	case best.Fingerprint.IsResolved():
		reason = domain.ReasonResolvedIssue
	case best.Fingerprint.UserAcknowledged:
		reason = domain.ReasonAcknowledged
	case comment.PatternType != "" && best.Fingerprint.PatternType == comment.PatternType:
		reason = domain.ReasonSamePattern
	default:
		reason = domain.ReasonHighSimilarity
	}

	return duplicateOf(comment, fingerprintID, best.Score, reason), nil, nil
}

func duplicateOf(comment domain.Comment, fingerprintID string, score float64, reason domain.Reason) *domain.DuplicateRecord {
	return &domain.DuplicateRecord{
		TempID:                   comment.TempID,
		DuplicateOfFingerprintID: &fingerprintID,
		SimilarityScore:          score,
		Reason:                   reason,
	}
}

// IsDuplicate reports whether a single comment body restates an issue
// already known in the repository, using default options.
func (e *Engine) IsDuplicate(ctx context.Context, repositoryID, commentBody string) (bool, error) {
	info, err := e.GetDuplicateInfo(ctx, repositoryID, commentBody, 0)
	if err != nil {
		return false, err
	}
	return info != nil, nil
}

// GetDuplicateInfo classifies a single comment body against the
// repository's history and returns the duplicate record, or nil when the
// comment is original. minScore overrides the similarity threshold when
// positive.
func (e *Engine) GetDuplicateInfo(ctx context.Context, repositoryID, commentBody string, minScore float64) (*domain.DuplicateRecord, error) {
	if commentBody == "" {
		return nil, NewInvalidCommentError("comment body is required", nil)
	}

	comment := domain.Comment{Body: commentBody}
	opts := Options{SimilarityThreshold: minScore}.withDefaults()
	canonicalText := canonical.Canonicalize(commentBody)

	dup, _, err := e.classifyAgainstHistory(ctx, repositoryID, comment, canonicalText, opts)
	if err != nil {
		return nil, NewStorageUnavailableError("duplicate lookup failed", err)
	}
	return dup, nil
}
