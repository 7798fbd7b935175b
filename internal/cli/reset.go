package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ppgtool/ppg/internal/style"
	"github.com/ppgtool/ppg/internal/worktree"
)

var (
	resetForce          bool
	resetPrune          bool
	resetIncludeOpenPRs bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Tear the project back down to an empty worktree set",
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetForce, "force", false, "proceed even if at-risk worktrees exist")
	resetCmd.Flags().BoolVar(&resetPrune, "prune", false, "also run git worktree prune")
	resetCmd.Flags().BoolVar(&resetIncludeOpenPRs, "include-open-prs", false, "also clean worktrees with an open PR")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	k, err := resolveKernel()
	if err != nil {
		return err
	}
	result, err := k.PerformReset(context.Background(), worktree.ResetOptions{
		Force:          resetForce,
		Prune:          resetPrune,
		IncludeOpenPRs: resetIncludeOpenPRs,
	})
	if err != nil {
		return err
	}
	emit(result, func() {
		style.PrintSuccess("reset: cleaned %d worktree(s)", len(result.Cleaned))
		for _, id := range result.Skipped {
			style.PrintWarning("skipped %s (open PR or self-protected)", id)
		}
	})
	return nil
}
