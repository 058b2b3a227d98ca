package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bkyoung/comment-dedup/internal/usecase/dedup"
)

// recordCommand creates the record subcommand, persisting one accepted
// original as a fingerprint occurrence.
func recordCommand(deps Dependencies) *cobra.Command {
	var repo string
	var review string
	var pullRequest string
	var file string
	var line int
	var body string
	var severity string
	var category string
	var pattern string

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Persist an accepted comment as a fingerprint occurrence",
		RunE: func(cmd *cobra.Command, args []string) error {
			repoID, err := repositoryID(deps, repo)
			if err != nil {
				return err
			}

			result, err := deps.Engine.RecordOccurrence(cmd.Context(), dedup.RecordRequest{
				RepositoryID:  repoID,
				ReviewID:      review,
				PullRequestID: pullRequest,
				FilePath:      file,
				LineNumber:    line,
				CommentBody:   body,
				Severity:      severity,
				Category:      category,
				PatternType:   pattern,
			})
			if err != nil {
				return err
			}

			if result.WasReintroduced {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "warning: previously resolved issue reintroduced")
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", "Repository ID (defaults to the origin remote of the current checkout)")
	cmd.Flags().StringVar(&review, "review", "", "Review ID the comment belongs to")
	cmd.Flags().StringVar(&pullRequest, "pr", "", "Pull request ID (optional)")
	cmd.Flags().StringVar(&file, "file", "", "File path the comment refers to")
	cmd.Flags().IntVar(&line, "line", 0, "Line number the comment refers to")
	cmd.Flags().StringVar(&body, "body", "", "Raw comment body")
	cmd.Flags().StringVar(&severity, "severity", "", "Comment severity (optional)")
	cmd.Flags().StringVar(&category, "category", "", "Comment category (optional)")
	cmd.Flags().StringVar(&pattern, "pattern", "", "Pattern type (optional)")

	_ = cmd.MarkFlagRequired("review")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("body")

	return cmd
}
