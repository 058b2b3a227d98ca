package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bkyoung/comment-dedup/internal/domain"
	"github.com/bkyoung/comment-dedup/internal/usecase/dedup"
)

// dedupeCommand creates the dedupe subcommand. It reads a JSON batch of
// candidate comments and partitions it into originals and duplicates.
func dedupeCommand(deps Dependencies) *cobra.Command {
	var repo string
	var input string
	var threshold float64
	var includeResolved bool
	var includeAcknowledged bool
	var recencyWindow time.Duration
	var summary bool

	cmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Partition a batch of review comments into originals and duplicates",
		Long: `Read a JSON array of candidate comments and classify each one as an
original or a duplicate of something already reported in the repository's
history.

Input format (read from --input, or stdin when --input is "-"):
  [{"tempId": "c1", "body": "...", "filePath": "main.go", "lineNumber": 10}]

On a terminal the human-readable summary is printed; otherwise the full
result is emitted as JSON for downstream tooling.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			repoID, err := repositoryID(deps, repo)
			if err != nil {
				return err
			}

			comments, err := readComments(input, cmd.InOrStdin())
			if err != nil {
				return err
			}

			opts := deps.DefaultOptions
			if cmd.Flags().Changed("threshold") {
				opts.SimilarityThreshold = threshold
			}
			if cmd.Flags().Changed("include-resolved") {
				opts.IncludeResolved = includeResolved
			}
			if cmd.Flags().Changed("include-acknowledged") {
				opts.IncludeAcknowledged = includeAcknowledged
			}
			if cmd.Flags().Changed("recency-window") {
				opts.RecencyWindow = recencyWindow
			}

			result, err := deps.Engine.Deduplicate(cmd.Context(), repoID, comments, opts)
			if err != nil {
				return err
			}

			if summary || deps.IsTerminal() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), dedup.FormatSummary(result))
				return nil
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", "Repository ID (defaults to the origin remote of the current checkout)")
	cmd.Flags().StringVar(&input, "input", "-", "Path to the JSON comment batch, or - for stdin")
	cmd.Flags().Float64Var(&threshold, "threshold", dedup.DefaultSimilarityThreshold, "Similarity threshold for duplicate classification")
	cmd.Flags().BoolVar(&includeResolved, "include-resolved", false, "Let comments matching resolved fingerprints through")
	cmd.Flags().BoolVar(&includeAcknowledged, "include-acknowledged", false, "Let comments matching acknowledged fingerprints through")
	cmd.Flags().DurationVar(&recencyWindow, "recency-window", dedup.DefaultRecencyWindow, "How recently a fingerprint must have been seen to count as still hot")
	cmd.Flags().BoolVar(&summary, "summary", false, "Print the human-readable summary even when not on a terminal")

	return cmd
}

func readComments(input string, stdin io.Reader) ([]domain.Comment, error) {
	var reader io.Reader
	if input == "-" || input == "" {
		reader = stdin
	} else {
		f, err := os.Open(input)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		reader = f
	}

	var comments []domain.Comment
	if err := json.NewDecoder(reader).Decode(&comments); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	return comments, nil
}
