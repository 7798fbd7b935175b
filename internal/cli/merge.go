package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ppgtool/ppg/internal/style"
	"github.com/ppgtool/ppg/internal/worktree"
)

var (
	mergeStrategy string
	mergeCleanup  bool
	mergeForce    bool
)

var mergeCmd = &cobra.Command{
	Use:   "merge <worktree-id>",
	Short: "Fold a worktree's branch back into its base branch",
	Args:  cobra.ExactArgs(1),
	RunE:  runMerge,
}

func init() {
	mergeCmd.Flags().StringVar(&mergeStrategy, "strategy", "squash", "merge strategy: squash or no-ff")
	mergeCmd.Flags().BoolVar(&mergeCleanup, "cleanup", true, "clean up the worktree after a successful merge")
	mergeCmd.Flags().BoolVar(&mergeForce, "force", false, "merge even if agents are still running")
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	k, err := resolveKernel()
	if err != nil {
		return err
	}
	result, err := k.PerformMerge(context.Background(), args[0], worktree.MergeOptions{
		Strategy: worktree.MergeStrategy(mergeStrategy),
		Cleanup:  mergeCleanup,
		Force:    mergeForce,
	})
	if err != nil {
		return err
	}
	emit(result, func() {
		if result.SelfProtected {
			style.PrintWarning("merged %s (worktree cleanup skipped, self-protected)", result.WorktreeID)
		} else {
			style.PrintSuccess("merged %s", result.WorktreeID)
		}
	})
	return nil
}
