package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ppgtool/ppg/internal/style"
	"github.com/ppgtool/ppg/internal/worktree"
)

var (
	prTitle string
	prBody  string
	prDraft bool
)

var prCmd = &cobra.Command{
	Use:   "pr <worktree-id>",
	Short: "Push a worktree's branch and open (or reuse) its pull request",
	Args:  cobra.ExactArgs(1),
	RunE:  runPr,
}

func init() {
	prCmd.Flags().StringVar(&prTitle, "title", "", "pull request title")
	prCmd.Flags().StringVar(&prBody, "body", "", "pull request body (defaults to agent result files)")
	prCmd.Flags().BoolVar(&prDraft, "draft", false, "open as a draft pull request")
	rootCmd.AddCommand(prCmd)
}

func runPr(cmd *cobra.Command, args []string) error {
	k, err := resolveKernel()
	if err != nil {
		return err
	}
	result, err := k.PerformPr(context.Background(), args[0], worktree.PrOptions{
		Title: prTitle,
		Body:  prBody,
		Draft: prDraft,
	})
	if err != nil {
		return err
	}
	emit(result, func() {
		style.PrintSuccess("pull request: %s", result.URL)
	})
	return nil
}
