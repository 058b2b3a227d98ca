// Package cli wires the deduplication engine into the cdd command tree.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bkyoung/comment-dedup/internal/domain"
	"github.com/bkyoung/comment-dedup/internal/usecase/dedup"
)

// ErrOriginalComment is returned by the check command when the comment is
// not a duplicate, so review pipelines can branch on the exit code.
var ErrOriginalComment = errors.New("original comment")

// Engine defines the deduplication operations the CLI depends on.
type Engine interface {
	Deduplicate(ctx context.Context, repositoryID string, comments []domain.Comment, opts dedup.Options) (dedup.Result, error)
	RecordOccurrence(ctx context.Context, req dedup.RecordRequest) (dedup.RecordResult, error)
	GetDuplicateInfo(ctx context.Context, repositoryID, commentBody string, minScore float64) (*domain.DuplicateRecord, error)
	Resolve(ctx context.Context, repositoryID, commentBody string) error
	Acknowledge(ctx context.Context, repositoryID, commentBody string) error
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Engine Engine

	// OutWriter and ErrWriter receive command output; defaults to
	// os.Stdout / os.Stderr.
	OutWriter io.Writer
	ErrWriter io.Writer

	// DefaultRepositoryID scopes lookups when --repo is not given,
	// typically derived from the local checkout's origin remote.
	DefaultRepositoryID string

	// DefaultOptions seeds per-call engine options from config.
	DefaultOptions dedup.Options

	// IsTerminal reports whether stdout is a TTY. On a terminal the
	// dedupe command prints the human summary, otherwise JSON.
	IsTerminal func() bool
}

// NewRootCommand builds the cdd command tree.
func NewRootCommand(deps Dependencies) *cobra.Command {
	if deps.OutWriter == nil {
		deps.OutWriter = os.Stdout
	}
	if deps.ErrWriter == nil {
		deps.ErrWriter = os.Stderr
	}
	if deps.IsTerminal == nil {
		deps.IsTerminal = func() bool { return false }
	}

	root := &cobra.Command{
		Use:           "cdd",
		Short:         "Review comment fingerprinting and deduplication",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(deps.OutWriter)
	root.SetErr(deps.ErrWriter)

	root.AddCommand(dedupeCommand(deps))
	root.AddCommand(recordCommand(deps))
	root.AddCommand(checkCommand(deps))
	root.AddCommand(resolveCommand(deps))
	root.AddCommand(ackCommand(deps))

	return root
}

// repositoryID resolves the --repo flag against the configured default.
func repositoryID(deps Dependencies, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if deps.DefaultRepositoryID != "" {
		return deps.DefaultRepositoryID, nil
	}
	return "", fmt.Errorf("no repository ID: pass --repo or run inside a git checkout")
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
