package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// checkCommand creates the check subcommand.
//
// Exit codes:
//   - 0: The comment is a duplicate of a known issue
//   - 1: The comment is original
func checkCommand(deps Dependencies) *cobra.Command {
	var repo string
	var body string
	var minScore float64

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check whether a single comment restates a known issue",
		Long: `Check one comment body against the repository's fingerprint history.

Exit codes:
  0 - Duplicate of a known issue
  1 - Original comment

Example usage in a review pipeline:
  if ./cdd check --body "$COMMENT"; then
    echo "Skipping duplicate comment"
  fi`,
		RunE: func(cmd *cobra.Command, args []string) error {
			repoID, err := repositoryID(deps, repo)
			if err != nil {
				return err
			}

			info, err := deps.Engine.GetDuplicateInfo(cmd.Context(), repoID, body, minScore)
			if err != nil {
				return err
			}

			if info == nil {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "original: no matching fingerprint")
				return ErrOriginalComment // Exit 1
			}

			return writeJSON(cmd.OutOrStdout(), info) // Exit 0
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", "Repository ID (defaults to the origin remote of the current checkout)")
	cmd.Flags().StringVar(&body, "body", "", "Raw comment body to check")
	cmd.Flags().Float64Var(&minScore, "min-score", 0, "Override the similarity threshold (0 uses the default)")

	_ = cmd.MarkFlagRequired("body")

	return cmd
}
