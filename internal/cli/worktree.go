package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ppgtool/ppg/internal/kernel"
	"github.com/ppgtool/ppg/internal/style"
)

var worktreeCmd = &cobra.Command{
	Use:     "worktree",
	Short:   "Worktree management",
	RunE:    requireSubcommand,
	Args:    cobra.ArbitraryArgs,
}

var (
	worktreeCreateBranch string
	worktreeCreateBase   string
	worktreeCreateAdopt  string
	worktreeCreateName   string
)

var worktreeCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create or adopt a bare worktree with no agent spawned",
	RunE:  runWorktreeCreate,
}

func init() {
	worktreeCreateCmd.Flags().StringVar(&worktreeCreateBranch, "branch", "", "create a new worktree on this branch")
	worktreeCreateCmd.Flags().StringVar(&worktreeCreateBase, "base", "", "base ref for a new branch (default HEAD)")
	worktreeCreateCmd.Flags().StringVar(&worktreeCreateAdopt, "adopt-branch", "", "attach a worktree to an existing branch")
	worktreeCreateCmd.Flags().StringVar(&worktreeCreateName, "name", "", "human-readable worktree name")
	worktreeCmd.AddCommand(worktreeCreateCmd)
	rootCmd.AddCommand(worktreeCmd)
}

func runWorktreeCreate(cmd *cobra.Command, args []string) error {
	k, err := resolveKernel()
	if err != nil {
		return err
	}
	result, err := k.CreateWorktree(context.Background(), kernel.CreateOptions{
		Branch:      worktreeCreateBranch,
		Base:        worktreeCreateBase,
		AdoptBranch: worktreeCreateAdopt,
		Name:        worktreeCreateName,
	})
	if err != nil {
		return err
	}
	emit(result, func() {
		style.PrintSuccess("created worktree %s at %s (%s)", result.WorktreeID, result.Path, result.Branch)
	})
	return nil
}
