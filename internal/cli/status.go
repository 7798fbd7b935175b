package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ppgtool/ppg/internal/style"
)

var statusCmd = &cobra.Command{
	Use:   "status <worktree-id>",
	Short: "Show one worktree's reconciled lifecycle",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	k, err := resolveKernel()
	if err != nil {
		return err
	}
	view, err := k.Status(context.Background(), args[0])
	if err != nil {
		return err
	}
	emit(view, func() {
		fmt.Printf("%s  %s  %s\n", view.Worktree.ID, view.Worktree.Branch, style.StatusStyle(string(view.Lifecycle)).Render(string(view.Lifecycle)))
		for _, a := range view.Worktree.Agents {
			fmt.Printf("  %s  %s  %s\n", a.ID, a.AgentType, style.StatusStyle(string(a.Status)).Render(string(a.Status)))
		}
	})
	return nil
}
