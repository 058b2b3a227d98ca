package domain

import "fmt"

// Comment is a candidate review comment entering deduplication.
// TempID identifies the comment within a single batch only; it has no
// meaning once the comment is persisted as an occurrence.
type Comment struct {
	TempID      string `json:"tempId"`
	Body        string `json:"body"`
	FilePath    string `json:"filePath"`
	LineNumber  int    `json:"lineNumber"`
	Severity    string `json:"severity,omitempty"`
	Category    string `json:"category,omitempty"`
	PatternType string `json:"patternType,omitempty"`
}

// Validate checks the fields required for deduplication. A comment that
// fails validation is excluded from the batch but does not abort it.
func (c Comment) Validate() error {
	if c.Body == "" {
		return fmt.Errorf("comment body is required")
	}
	if c.FilePath == "" {
		return fmt.Errorf("file path is required")
	}
	return nil
}

// DuplicateRecord describes one comment classified as a duplicate.
// DuplicateOfFingerprintID is nil when the duplicate is purely intra-batch
// and the earlier comment has no historical fingerprint yet.
type DuplicateRecord struct {
	TempID                   string  `json:"tempId"`
	DuplicateOfFingerprintID *string `json:"duplicateOfFingerprintId,omitempty"`
	SimilarityScore          float64 `json:"similarityScore"`
	Reason                   Reason  `json:"reason"`
}

// Stats summarizes one deduplication batch. ByReason always contains all
// six reasons, zero-filled.
type Stats struct {
	TotalInput     int            `json:"totalInput"`
	OriginalCount  int            `json:"originalCount"`
	DuplicateCount int            `json:"duplicateCount"`
	DuplicateRate  float64        `json:"duplicateRate"`
	ByReason       map[Reason]int `json:"byReason"`
}

// NewStats returns a Stats with every reason key present.
func NewStats() Stats {
	byReason := make(map[Reason]int, len(AllReasons()))
	for _, r := range AllReasons() {
		byReason[r] = 0
	}
	return Stats{ByReason: byReason}
}

// Finalize computes the derived duplicate rate from the counters.
func (s *Stats) Finalize() {
	if s.TotalInput == 0 {
		s.DuplicateRate = 0
		return
	}
	s.DuplicateRate = float64(s.DuplicateCount) / float64(s.TotalInput)
}
