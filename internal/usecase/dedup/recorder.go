package dedup

import (
	"context"
	"fmt"

	"github.com/bkyoung/comment-dedup/internal/canonical"
	"github.com/bkyoung/comment-dedup/internal/domain"
	"github.com/bkyoung/comment-dedup/internal/store"
)

// RecordRequest captures one accepted original comment to persist.
type RecordRequest struct {
	RepositoryID  string
	ReviewID      string
	PullRequestID string
	FilePath      string
	LineNumber    int
	CommentBody   string
	Severity      string
	Category      string
	PatternType   string
}

// Validate checks the fields required to record an occurrence.
func (r RecordRequest) Validate() error {
	if r.RepositoryID == "" {
		return fmt.Errorf("repository ID is required")
	}
	if r.ReviewID == "" {
		return fmt.Errorf("review ID is required")
	}
	if r.FilePath == "" {
		return fmt.Errorf("file path is required")
	}
	if r.CommentBody == "" {
		return fmt.Errorf("comment body is required")
	}
	return nil
}

// RecordResult reports what recording an occurrence did to the
// fingerprint.
type RecordResult struct {
	// FingerprintID is the created or matched fingerprint.
	FingerprintID string `json:"fingerprintId"`

	// IsNewFingerprint is true when this was the first sighting of the
	// canonical text in the repository.
	IsNewFingerprint bool `json:"isNewFingerprint"`

	// PreviousOccurrenceCount is the occurrence count before this
	// sighting; zero for a new fingerprint.
	PreviousOccurrenceCount int `json:"previousOccurrenceCount"`

	// WasReintroduced is true when a previously resolved fingerprint was
	// matched again; its resolution has been cleared.
	WasReintroduced bool `json:"wasReintroduced"`
}

// RecordOccurrence persists one accepted original: it creates or updates
// the fingerprint for the comment's canonical text and appends an
// occurrence row.
//
// The increment path goes through the store's atomic MarkSeen, so
// concurrent reviews of the same repository never lose counts.
func (e *Engine) RecordOccurrence(ctx context.Context, req RecordRequest) (RecordResult, error) {
	if err := req.Validate(); err != nil {
		return RecordResult{}, NewInvalidCommentError("record rejected", err)
	}

	canonicalText := canonical.Canonicalize(req.CommentBody)
	now := e.clock()

	fp, err := e.store.FindNarrowMatch(ctx, req.RepositoryID, canonicalText)
	if err != nil {
		return RecordResult{}, NewStorageUnavailableError("fingerprint lookup failed", err)
	}

	if fp == nil {
		created, err := e.createFingerprint(ctx, req, canonicalText)
		if err != nil {
			return RecordResult{}, err
		}
		if created != nil {
			if err := e.appendOccurrence(ctx, created.ID, req); err != nil {
				return RecordResult{}, err
			}
			return RecordResult{
				FingerprintID:    created.ID,
				IsNewFingerprint: true,
			}, nil
		}

		// A concurrent review created the fingerprint between the lookup
		// and the insert; fall through to the existing-fingerprint path.
		fp, err = e.store.FindNarrowMatch(ctx, req.RepositoryID, canonicalText)
		if err != nil {
			return RecordResult{}, NewStorageUnavailableError("fingerprint lookup failed", err)
		}
		if fp == nil {
			return RecordResult{}, NewStorageUnavailableError("fingerprint create conflicted but no match found", nil)
		}
	}

	seen, err := e.store.MarkSeen(ctx, fp.ID, now)
	if err != nil {
		return RecordResult{}, NewStorageUnavailableError("fingerprint update failed", err)
	}

	if seen.WasResolved {
		e.logger.LogInfo(ctx, "resolved issue reintroduced", map[string]interface{}{
			"repositoryId":  req.RepositoryID,
			"fingerprintId": fp.ID,
		})
	}

	if err := e.appendOccurrence(ctx, fp.ID, req); err != nil {
		return RecordResult{}, err
	}

	return RecordResult{
		FingerprintID:           fp.ID,
		IsNewFingerprint:        false,
		PreviousOccurrenceCount: seen.PreviousCount,
		WasReintroduced:         seen.WasResolved,
	}, nil
}

// createFingerprint inserts a first-sighting fingerprint. It returns
// (nil, nil) when the insert lost a race against a concurrent first
// sighting of the same canonical text.
func (e *Engine) createFingerprint(ctx context.Context, req RecordRequest, canonicalText string) (*domain.Fingerprint, error) {
	fp, err := domain.NewFingerprint(domain.FingerprintInput{
		ID:            store.GenerateFingerprintID(req.RepositoryID, canonicalText),
		RepositoryID:  req.RepositoryID,
		CanonicalText: canonicalText,
		Category:      req.Category,
		PatternType:   req.PatternType,
		SeenAt:        e.clock(),
	})
	if err != nil {
		return nil, NewInvalidCommentError("fingerprint construction failed", err)
	}

	if err := e.store.CreateFingerprint(ctx, fp); err != nil {
		// The fingerprint ID is deterministic per canonical text, so a
		// concurrent first sighting shows up as a key conflict here.
		e.logger.LogWarning(ctx, "fingerprint create failed, assuming concurrent sighting", map[string]interface{}{
			"repositoryId":  req.RepositoryID,
			"fingerprintId": fp.ID,
			"error":         err.Error(),
		})
		return nil, nil
	}

	return &fp, nil
}

func (e *Engine) appendOccurrence(ctx context.Context, fingerprintID string, req RecordRequest) error {
	now := e.clock()

	occ, err := domain.NewOccurrence(domain.OccurrenceInput{
		ID:            store.GenerateOccurrenceID(now, fingerprintID, req.ReviewID),
		FingerprintID: fingerprintID,
		ReviewID:      req.ReviewID,
		PullRequestID: req.PullRequestID,
		FilePath:      req.FilePath,
		LineNumber:    req.LineNumber,
		CommentBody:   req.CommentBody,
		Severity:      req.Severity,
		CreatedAt:     now,
	})
	if err != nil {
		return NewInvalidCommentError("occurrence construction failed", err)
	}

	if err := e.store.CreateOccurrence(ctx, occ); err != nil {
		return NewStorageUnavailableError("occurrence insert failed", err)
	}

	return nil
}

// Resolve marks the fingerprint matching the comment body as fixed.
// This is the entry point for the external resolution-tracking signal.
func (e *Engine) Resolve(ctx context.Context, repositoryID, commentBody string) error {
	fp, err := e.findByBody(ctx, repositoryID, commentBody)
	if err != nil {
		return err
	}

	now := e.clock()
	if err := e.store.UpdateFingerprint(ctx, fp.ID, store.FingerprintUpdate{ResolvedAt: &now}); err != nil {
		return NewStorageUnavailableError("fingerprint update failed", err)
	}
	return nil
}

// Acknowledge marks the fingerprint matching the comment body as known
// and intentionally not being fixed.
func (e *Engine) Acknowledge(ctx context.Context, repositoryID, commentBody string) error {
	fp, err := e.findByBody(ctx, repositoryID, commentBody)
	if err != nil {
		return err
	}

	acknowledged := true
	if err := e.store.UpdateFingerprint(ctx, fp.ID, store.FingerprintUpdate{UserAcknowledged: &acknowledged}); err != nil {
		return NewStorageUnavailableError("fingerprint update failed", err)
	}
	return nil
}

func (e *Engine) findByBody(ctx context.Context, repositoryID, commentBody string) (*domain.Fingerprint, error) {
	if commentBody == "" {
		return nil, NewInvalidCommentError("comment body is required", nil)
	}

	canonicalText := canonical.Canonicalize(commentBody)
	fp, err := e.store.FindNarrowMatch(ctx, repositoryID, canonicalText)
	if err != nil {
		return nil, NewStorageUnavailableError("fingerprint lookup failed", err)
	}
	if fp == nil {
		return nil, NewNotFoundError(fmt.Sprintf("no fingerprint for comment in repository %s", repositoryID))
	}
	return fp, nil
}
