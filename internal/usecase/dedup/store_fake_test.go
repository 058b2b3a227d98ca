package dedup_test

import (
	"context"
	"sort"
	"time"

	"github.com/bkyoung/comment-dedup/internal/domain"
	"github.com/bkyoung/comment-dedup/internal/similarity"
	"github.com/bkyoung/comment-dedup/internal/store"
)

// fakeStore is an in-memory store.Store for engine tests. Error fields
// inject failures per method. narrowFn, when set, replaces the default
// exact-text narrow lookup so tests can simulate near-match backends.
type fakeStore struct {
	fingerprints map[string]domain.Fingerprint
	occurrences  []domain.Occurrence
	scorer       similarity.Scorer
	narrowFn     func(repositoryID, canonicalText string) (*domain.Fingerprint, error)

	narrowErr error
	broadErr  error
	createErr error
	seenErr   error
	occErr    error
	updateErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		fingerprints: make(map[string]domain.Fingerprint),
		scorer:       similarity.NewJaccard(),
	}
}

func (f *fakeStore) add(fp domain.Fingerprint) {
	f.fingerprints[fp.ID] = fp
}

func (f *fakeStore) FindNarrowMatch(ctx context.Context, repositoryID, canonicalText string) (*domain.Fingerprint, error) {
	if f.narrowErr != nil {
		return nil, f.narrowErr
	}
	if f.narrowFn != nil {
		return f.narrowFn(repositoryID, canonicalText)
	}

	var best *domain.Fingerprint
	for id := range f.fingerprints {
		fp := f.fingerprints[id]
		if fp.RepositoryID != repositoryID || fp.CanonicalText != canonicalText {
			continue
		}
		if best == nil || fp.LastSeenAt.After(best.LastSeenAt) {
			match := fp
			best = &match
		}
	}
	return best, nil
}

func (f *fakeStore) FindBroadMatches(ctx context.Context, repositoryID, canonicalText string, minScore float64) ([]store.Match, error) {
	if f.broadErr != nil {
		return nil, f.broadErr
	}

	var matches []store.Match
	for _, fp := range f.fingerprints {
		if fp.RepositoryID != repositoryID {
			continue
		}
		score := f.scorer.Score(canonicalText, fp.CanonicalText)
		if score >= minScore {
			matches = append(matches, store.Match{Fingerprint: fp, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches, nil
}

func (f *fakeStore) CreateFingerprint(ctx context.Context, fp domain.Fingerprint) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.fingerprints[fp.ID] = fp
	return nil
}

func (f *fakeStore) MarkSeen(ctx context.Context, fingerprintID string, seenAt time.Time) (store.MarkSeenResult, error) {
	if f.seenErr != nil {
		return store.MarkSeenResult{}, f.seenErr
	}

	fp, ok := f.fingerprints[fingerprintID]
	if !ok {
		return store.MarkSeenResult{}, errNotFound
	}

	result := store.MarkSeenResult{
		PreviousCount: fp.OccurrenceCount,
		WasResolved:   fp.ResolvedAt != nil,
	}

	fp.OccurrenceCount++
	fp.LastSeenAt = seenAt
	fp.ResolvedAt = nil
	f.fingerprints[fingerprintID] = fp

	return result, nil
}

func (f *fakeStore) UpdateFingerprint(ctx context.Context, fingerprintID string, update store.FingerprintUpdate) error {
	if f.updateErr != nil {
		return f.updateErr
	}

	fp, ok := f.fingerprints[fingerprintID]
	if !ok {
		return errNotFound
	}

	switch {
	case update.ResolvedAt != nil:
		resolved := *update.ResolvedAt
		fp.ResolvedAt = &resolved
	case update.ClearResolved:
		fp.ResolvedAt = nil
	}
	if update.UserAcknowledged != nil {
		fp.UserAcknowledged = *update.UserAcknowledged
	}

	f.fingerprints[fingerprintID] = fp
	return nil
}

func (f *fakeStore) CreateOccurrence(ctx context.Context, occ domain.Occurrence) error {
	if f.occErr != nil {
		return f.occErr
	}
	f.occurrences = append(f.occurrences, occ)
	return nil
}

func (f *fakeStore) GetOccurrencesByFingerprint(ctx context.Context, fingerprintID string) ([]domain.Occurrence, error) {
	var result []domain.Occurrence
	for _, occ := range f.occurrences {
		if occ.FingerprintID == fingerprintID {
			result = append(result, occ)
		}
	}
	return result, nil
}

func (f *fakeStore) Close() error { return nil }
