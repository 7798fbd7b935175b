package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ppgtool/ppg/internal/style"
	"github.com/ppgtool/ppg/internal/worktree"
)

var (
	cleanWorktree string
	cleanForce    bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Garbage-collect worktrees that are already merged, failed, or idle",
	RunE:  runClean,
}

func init() {
	cleanCmd.Flags().StringVar(&cleanWorktree, "worktree", "", "restrict cleanup to this worktree")
	cleanCmd.Flags().BoolVar(&cleanForce, "force", false, "clean up even worktrees with live agents")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	k, err := resolveKernel()
	if err != nil {
		return err
	}
	result, err := k.PerformClean(context.Background(), worktree.CleanOptions{
		WorktreeID: cleanWorktree,
		Force:      cleanForce,
	})
	if err != nil {
		return err
	}
	emit(result, func() {
		style.PrintSuccess("cleaned %d worktree(s)", len(result.Cleaned))
		for _, id := range result.Skipped {
			style.PrintWarning("skipped %s (still has live agents)", id)
		}
		for _, id := range result.SelfProtected {
			style.PrintWarning("skipped %s (self-protected)", id)
		}
	})
	return nil
}
