package domain

import (
	"fmt"
	"time"
)

// Fingerprint is the persistent record for one distinct issue type ever
// detected in a repository. One fingerprint accumulates many occurrences.
type Fingerprint struct {
	ID               string
	RepositoryID     string
	CanonicalText    string
	Category         string
	PatternType      string
	OccurrenceCount  int
	FirstSeenAt      time.Time
	LastSeenAt       time.Time
	ResolvedAt       *time.Time
	UserAcknowledged bool
}

// FingerprintInput captures the information required to create a Fingerprint.
type FingerprintInput struct {
	ID            string
	RepositoryID  string
	CanonicalText string
	Category      string
	PatternType   string
	SeenAt        time.Time
}

// NewFingerprint constructs a first-sighting Fingerprint with validation.
func NewFingerprint(input FingerprintInput) (Fingerprint, error) {
	if input.ID == "" {
		return Fingerprint{}, fmt.Errorf("fingerprint ID is required")
	}
	if input.RepositoryID == "" {
		return Fingerprint{}, fmt.Errorf("repository ID is required")
	}
	if input.CanonicalText == "" {
		return Fingerprint{}, fmt.Errorf("canonical text is required")
	}

	return Fingerprint{
		ID:              input.ID,
		RepositoryID:    input.RepositoryID,
		CanonicalText:   input.CanonicalText,
		Category:        input.Category,
		PatternType:     input.PatternType,
		OccurrenceCount: 1,
		FirstSeenAt:     input.SeenAt,
		LastSeenAt:      input.SeenAt,
	}, nil
}

// Validate checks the fingerprint invariants.
func (f Fingerprint) Validate() error {
	if f.OccurrenceCount < 1 {
		return fmt.Errorf("occurrence count must be >= 1, got %d", f.OccurrenceCount)
	}
	if f.LastSeenAt.Before(f.FirstSeenAt) {
		return fmt.Errorf("last seen (%v) cannot be before first seen (%v)", f.LastSeenAt, f.FirstSeenAt)
	}
	if f.ResolvedAt != nil && f.ResolvedAt.Before(f.FirstSeenAt) {
		return fmt.Errorf("resolved at (%v) cannot be before first seen (%v)", f.ResolvedAt, f.FirstSeenAt)
	}
	return nil
}

// IsResolved returns true if the issue has been confirmed fixed.
func (f Fingerprint) IsResolved() bool {
	return f.ResolvedAt != nil
}

// SeenWithin reports whether the fingerprint was last seen inside the
// given window ending at now.
func (f Fingerprint) SeenWithin(window time.Duration, now time.Time) bool {
	return now.Sub(f.LastSeenAt) < window
}

// Occurrence is one concrete sighting of a fingerprint's issue, tied to a
// specific review, file and line. Occurrences are append-only.
type Occurrence struct {
	ID            string
	FingerprintID string
	ReviewID      string
	PullRequestID string
	FilePath      string
	LineNumber    int
	CommentBody   string
	Severity      string
	CreatedAt     time.Time
}

// OccurrenceInput captures the information required to create an Occurrence.
type OccurrenceInput struct {
	ID            string
	FingerprintID string
	ReviewID      string
	PullRequestID string
	FilePath      string
	LineNumber    int
	CommentBody   string
	Severity      string
	CreatedAt     time.Time
}

// NewOccurrence constructs an Occurrence with validation.
func NewOccurrence(input OccurrenceInput) (Occurrence, error) {
	if input.ID == "" {
		return Occurrence{}, fmt.Errorf("occurrence ID is required")
	}
	if input.FingerprintID == "" {
		return Occurrence{}, fmt.Errorf("fingerprint ID is required")
	}
	if input.ReviewID == "" {
		return Occurrence{}, fmt.Errorf("review ID is required")
	}
	if input.FilePath == "" {
		return Occurrence{}, fmt.Errorf("file path is required")
	}

	return Occurrence{
		ID:            input.ID,
		FingerprintID: input.FingerprintID,
		ReviewID:      input.ReviewID,
		PullRequestID: input.PullRequestID,
		FilePath:      input.FilePath,
		LineNumber:    input.LineNumber,
		CommentBody:   input.CommentBody,
		Severity:      input.Severity,
		CreatedAt:     input.CreatedAt,
	}, nil
}
