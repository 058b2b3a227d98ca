package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// resolveCommand creates the resolve subcommand, the entry point for the
// external resolution-tracking signal.
func resolveCommand(deps Dependencies) *cobra.Command {
	var repo string
	var body string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Mark the issue matching a comment as fixed",
		RunE: func(cmd *cobra.Command, args []string) error {
			repoID, err := repositoryID(deps, repo)
			if err != nil {
				return err
			}

			if err := deps.Engine.Resolve(cmd.Context(), repoID, body); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "resolved")
			return nil
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", "Repository ID (defaults to the origin remote of the current checkout)")
	cmd.Flags().StringVar(&body, "body", "", "Raw comment body identifying the issue")
	_ = cmd.MarkFlagRequired("body")

	return cmd
}

// ackCommand creates the ack subcommand, marking an issue as known and
// intentionally not being fixed.
func ackCommand(deps Dependencies) *cobra.Command {
	var repo string
	var body string

	cmd := &cobra.Command{
		Use:   "ack",
		Short: "Acknowledge the issue matching a comment",
		RunE: func(cmd *cobra.Command, args []string) error {
			repoID, err := repositoryID(deps, repo)
			if err != nil {
				return err
			}

			if err := deps.Engine.Acknowledge(cmd.Context(), repoID, body); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "acknowledged")
			return nil
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", "Repository ID (defaults to the origin remote of the current checkout)")
	cmd.Flags().StringVar(&body, "body", "", "Raw comment body identifying the issue")
	_ = cmd.MarkFlagRequired("body")

	return cmd
}
