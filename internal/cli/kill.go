package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ppgtool/ppg/internal/style"
	"github.com/ppgtool/ppg/internal/worktree"
)

var (
	killAgent    string
	killWorktree string
	killAll      bool
	killRemove   bool
	killDelete   bool
	killForce    bool
)

var killCmd = &cobra.Command{
	Use:   "kill",
	Short: "Kill agents, optionally tearing down their worktrees",
	RunE:  runKill,
}

func init() {
	killCmd.Flags().StringVar(&killAgent, "agent", "", "kill this agent")
	killCmd.Flags().StringVar(&killWorktree, "worktree", "", "kill every agent in this worktree")
	killCmd.Flags().BoolVar(&killAll, "all", false, "kill every agent session-wide")
	killCmd.Flags().BoolVar(&killRemove, "remove", false, "also remove the owning worktree(s)")
	killCmd.Flags().BoolVar(&killDelete, "delete", false, "remove and delete the manifest entries outright")
	killCmd.Flags().BoolVar(&killForce, "force", false, "has no effect: self-protected agents are always skipped")
	rootCmd.AddCommand(killCmd)
}

func runKill(cmd *cobra.Command, args []string) error {
	k, err := resolveKernel()
	if err != nil {
		return err
	}
	result, err := k.PerformKill(context.Background(), worktree.KillOptions{
		AgentID:    killAgent,
		WorktreeID: killWorktree,
		All:        killAll,
		Remove:     killRemove,
		Delete:     killDelete,
		Force:      killForce,
	})
	if err != nil {
		return err
	}
	emit(result, func() {
		style.PrintSuccess("killed %d agent(s)", len(result.Killed))
		for _, id := range result.SelfProtected {
			style.PrintWarning("skipped %s (self-protected)", id)
		}
	})
	return nil
}
