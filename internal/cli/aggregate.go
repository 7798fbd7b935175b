package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ppgtool/ppg/internal/style"
	"github.com/ppgtool/ppg/internal/tui"
)

var aggregateWatch bool

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Show every worktree and master agent's reconciled status",
	RunE:  runAggregate,
}

func init() {
	aggregateCmd.Flags().BoolVar(&aggregateWatch, "watch", false, "launch the live dashboard instead of printing once")
	rootCmd.AddCommand(aggregateCmd)
}

func runAggregate(cmd *cobra.Command, args []string) error {
	k, err := resolveKernel()
	if err != nil {
		return err
	}

	if aggregateWatch {
		if jsonOutput {
			return fmt.Errorf("--watch and --json are mutually exclusive")
		}
		return tui.Run(k)
	}

	agg, err := k.Aggregate(context.Background())
	if err != nil {
		return err
	}
	emit(agg, func() {
		for _, v := range agg.Worktrees {
			fmt.Printf("%s  %-24s %s\n", v.Worktree.ID, v.Worktree.Branch, style.StatusStyle(string(v.Lifecycle)).Render(string(v.Lifecycle)))
			for _, a := range v.Worktree.Agents {
				fmt.Printf("  %s  %-10s %s\n", a.ID, a.AgentType, style.StatusStyle(string(a.Status)).Render(string(a.Status)))
			}
		}
		for _, a := range agg.MasterAgents {
			fmt.Printf("master  %s  %-10s %s\n", a.ID, a.AgentType, style.StatusStyle(string(a.Status)).Render(string(a.Status)))
		}
	})
	return nil
}
