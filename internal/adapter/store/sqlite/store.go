package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bkyoung/comment-dedup/internal/canonical"
	"github.com/bkyoung/comment-dedup/internal/domain"
	"github.com/bkyoung/comment-dedup/internal/similarity"
	"github.com/bkyoung/comment-dedup/internal/store"
)

// Store implements the store.Store interface using SQLite.
//
// The broad lookup scores every fingerprint of the repository in process
// with the injected scorer; the narrow lookup hits the
// (repository_id, canonical_hash) index.
type Store struct {
	db     *sql.DB
	scorer similarity.Scorer
}

// NewStore creates a new SQLite store at the given path.
// Use ":memory:" for in-memory database (useful for testing).
func NewStore(dbPath string, scorer similarity.Scorer) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db, scorer: scorer}

	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return s, nil
}

// createSchema creates all tables and indexes if they don't exist.
func (s *Store) createSchema() error {
	schema := `
	-- One row per distinct issue type ever seen in a repository
	CREATE TABLE IF NOT EXISTS fingerprints (
		fingerprint_id TEXT PRIMARY KEY,
		repository_id TEXT NOT NULL,
		canonical_text TEXT NOT NULL,
		canonical_hash TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		pattern_type TEXT NOT NULL DEFAULT '',
		occurrence_count INTEGER NOT NULL DEFAULT 1,
		first_seen_at INTEGER NOT NULL,
		last_seen_at INTEGER NOT NULL,
		resolved_at INTEGER,
		user_acknowledged INTEGER NOT NULL DEFAULT 0
	);

	-- Append-only sightings of each fingerprint
	CREATE TABLE IF NOT EXISTS occurrences (
		occurrence_id TEXT PRIMARY KEY,
		fingerprint_id TEXT NOT NULL,
		review_id TEXT NOT NULL,
		pull_request_id TEXT NOT NULL DEFAULT '',
		file_path TEXT NOT NULL,
		line_number INTEGER NOT NULL,
		comment_body TEXT NOT NULL,
		severity TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		FOREIGN KEY (fingerprint_id) REFERENCES fingerprints(fingerprint_id) ON DELETE CASCADE
	);

	-- Indexes for performance
	CREATE INDEX IF NOT EXISTS idx_fingerprints_repo_hash ON fingerprints(repository_id, canonical_hash);
	CREATE INDEX IF NOT EXISTS idx_fingerprints_repo ON fingerprints(repository_id);
	CREATE INDEX IF NOT EXISTS idx_fingerprints_last_seen ON fingerprints(last_seen_at DESC);
	CREATE INDEX IF NOT EXISTS idx_occurrences_fingerprint ON occurrences(fingerprint_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

const fingerprintColumns = `fingerprint_id, repository_id, canonical_text, category, pattern_type,
		occurrence_count, first_seen_at, last_seen_at, resolved_at, user_acknowledged`

// FindNarrowMatch returns the fingerprint with an identical canonical text,
// or nil when none exists. Duplicate canonical texts (possible under
// non-transactional writes) resolve to the most recently seen row.
func (s *Store) FindNarrowMatch(ctx context.Context, repositoryID, canonicalText string) (*domain.Fingerprint, error) {
	query := `
		SELECT ` + fingerprintColumns + `
		FROM fingerprints
		WHERE repository_id = ? AND canonical_hash = ?
		ORDER BY last_seen_at DESC, fingerprint_id ASC
		LIMIT 1
	`

	row := s.db.QueryRowContext(ctx, query, repositoryID, canonical.Hash(canonicalText))

	fp, err := scanFingerprint(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find narrow match: %w", err)
	}

	return &fp, nil
}

// FindBroadMatches returns all fingerprints in the repository scoring at
// least minScore against the canonical text, best first. Resolved,
// acknowledged and recency state are ignored; filtering is the engine's
// concern.
func (s *Store) FindBroadMatches(ctx context.Context, repositoryID, canonicalText string, minScore float64) ([]store.Match, error) {
	query := `
		SELECT ` + fingerprintColumns + `
		FROM fingerprints
		WHERE repository_id = ?
	`

	rows, err := s.db.QueryContext(ctx, query, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find broad matches: %w", err)
	}
	defer rows.Close()

	var matches []store.Match
	for rows.Next() {
		fp, err := scanFingerprint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fingerprint: %w", err)
		}

		score := s.scorer.Score(canonicalText, fp.CanonicalText)
		if score >= minScore {
			matches = append(matches, store.Match{Fingerprint: fp, Score: score})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fingerprints: %w", err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Fingerprint.LastSeenAt.After(matches[j].Fingerprint.LastSeenAt)
	})

	return matches, nil
}

// CreateFingerprint stores a first-sighting fingerprint.
func (s *Store) CreateFingerprint(ctx context.Context, fp domain.Fingerprint) error {
	if err := fp.Validate(); err != nil {
		return fmt.Errorf("invalid fingerprint: %w", err)
	}

	query := `
		INSERT INTO fingerprints (fingerprint_id, repository_id, canonical_text, canonical_hash,
			category, pattern_type, occurrence_count, first_seen_at, last_seen_at, resolved_at, user_acknowledged)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var resolvedAt interface{}
	if fp.ResolvedAt != nil {
		resolvedAt = fp.ResolvedAt.Unix()
	}

	acknowledged := 0
	if fp.UserAcknowledged {
		acknowledged = 1
	}

	_, err := s.db.ExecContext(ctx, query,
		fp.ID,
		fp.RepositoryID,
		fp.CanonicalText,
		canonical.Hash(fp.CanonicalText),
		fp.Category,
		fp.PatternType,
		fp.OccurrenceCount,
		fp.FirstSeenAt.Unix(),
		fp.LastSeenAt.Unix(),
		resolvedAt,
		acknowledged,
	)

	if err != nil {
		return fmt.Errorf("failed to create fingerprint: %w", err)
	}

	return nil
}

// MarkSeen increments the occurrence count, refreshes last_seen_at and
// clears any resolution in one relative UPDATE, so concurrent reviews never
// lose increments. The prior state is read in the same transaction.
func (s *Store) MarkSeen(ctx context.Context, fingerprintID string, seenAt time.Time) (store.MarkSeenResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.MarkSeenResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var prevCount int
	var resolvedAt sql.NullInt64

	err = tx.QueryRowContext(ctx,
		`SELECT occurrence_count, resolved_at FROM fingerprints WHERE fingerprint_id = ?`,
		fingerprintID,
	).Scan(&prevCount, &resolvedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return store.MarkSeenResult{}, fmt.Errorf("fingerprint not found: %s", fingerprintID)
		}
		return store.MarkSeenResult{}, fmt.Errorf("failed to read fingerprint: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE fingerprints
		SET occurrence_count = occurrence_count + 1,
			last_seen_at = ?,
			resolved_at = NULL
		WHERE fingerprint_id = ?
	`, seenAt.Unix(), fingerprintID)
	if err != nil {
		return store.MarkSeenResult{}, fmt.Errorf("failed to mark fingerprint seen: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return store.MarkSeenResult{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return store.MarkSeenResult{
		PreviousCount: prevCount,
		WasResolved:   resolvedAt.Valid,
	}, nil
}

// UpdateFingerprint applies resolution and acknowledgment signals.
func (s *Store) UpdateFingerprint(ctx context.Context, fingerprintID string, update store.FingerprintUpdate) error {
	if update.ResolvedAt != nil && update.ClearResolved {
		return fmt.Errorf("cannot set and clear resolution in one update")
	}

	setClauses := make([]string, 0, 2)
	args := make([]interface{}, 0, 3)

	switch {
	case update.ResolvedAt != nil:
		setClauses = append(setClauses, "resolved_at = ?")
		args = append(args, update.ResolvedAt.Unix())
	case update.ClearResolved:
		setClauses = append(setClauses, "resolved_at = NULL")
	}

	if update.UserAcknowledged != nil {
		acknowledged := 0
		if *update.UserAcknowledged {
			acknowledged = 1
		}
		setClauses = append(setClauses, "user_acknowledged = ?")
		args = append(args, acknowledged)
	}

	if len(setClauses) == 0 {
		return nil
	}

	query := "UPDATE fingerprints SET "
	for i, clause := range setClauses {
		if i > 0 {
			query += ", "
		}
		query += clause
	}
	query += " WHERE fingerprint_id = ?"
	args = append(args, fingerprintID)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update fingerprint: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("fingerprint not found: %s", fingerprintID)
	}

	return nil
}

// CreateOccurrence appends one sighting row.
func (s *Store) CreateOccurrence(ctx context.Context, occ domain.Occurrence) error {
	query := `
		INSERT INTO occurrences (occurrence_id, fingerprint_id, review_id, pull_request_id,
			file_path, line_number, comment_body, severity, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		occ.ID,
		occ.FingerprintID,
		occ.ReviewID,
		occ.PullRequestID,
		occ.FilePath,
		occ.LineNumber,
		occ.CommentBody,
		occ.Severity,
		occ.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to create occurrence: %w", err)
	}

	return nil
}

// GetOccurrencesByFingerprint retrieves all sightings of a fingerprint,
// newest first.
func (s *Store) GetOccurrencesByFingerprint(ctx context.Context, fingerprintID string) ([]domain.Occurrence, error) {
	query := `
		SELECT occurrence_id, fingerprint_id, review_id, pull_request_id,
			file_path, line_number, comment_body, severity, created_at
		FROM occurrences
		WHERE fingerprint_id = ?
		ORDER BY created_at DESC, occurrence_id DESC
	`

	rows, err := s.db.QueryContext(ctx, query, fingerprintID)
	if err != nil {
		return nil, fmt.Errorf("failed to get occurrences: %w", err)
	}
	defer rows.Close()

	var occurrences []domain.Occurrence
	for rows.Next() {
		var occ domain.Occurrence
		var createdAt int64

		if err := rows.Scan(
			&occ.ID,
			&occ.FingerprintID,
			&occ.ReviewID,
			&occ.PullRequestID,
			&occ.FilePath,
			&occ.LineNumber,
			&occ.CommentBody,
			&occ.Severity,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan occurrence: %w", err)
		}

		occ.CreatedAt = time.Unix(createdAt, 0)
		occurrences = append(occurrences, occ)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating occurrences: %w", err)
	}

	return occurrences, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// scanner abstracts *sql.Row and *sql.Rows for fingerprint scanning.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanFingerprint(row scanner) (domain.Fingerprint, error) {
	var fp domain.Fingerprint
	var firstSeen, lastSeen int64
	var resolvedAt sql.NullInt64
	var acknowledged int

	err := row.Scan(
		&fp.ID,
		&fp.RepositoryID,
		&fp.CanonicalText,
		&fp.Category,
		&fp.PatternType,
		&fp.OccurrenceCount,
		&firstSeen,
		&lastSeen,
		&resolvedAt,
		&acknowledged,
	)
	if err != nil {
		return domain.Fingerprint{}, err
	}

	fp.FirstSeenAt = time.Unix(firstSeen, 0)
	fp.LastSeenAt = time.Unix(lastSeen, 0)
	if resolvedAt.Valid {
		t := time.Unix(resolvedAt.Int64, 0)
		fp.ResolvedAt = &t
	}
	fp.UserAcknowledged = acknowledged == 1

	return fp, nil
}
