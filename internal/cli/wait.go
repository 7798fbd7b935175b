package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ppgtool/ppg/internal/kernel"
	"github.com/ppgtool/ppg/internal/style"
)

var (
	waitWorktree string
	waitAgent    string
	waitTimeout  int
	waitInterval int
)

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Poll until a worktree or agent has no live work left",
	RunE:  runWait,
}

func init() {
	waitCmd.Flags().StringVar(&waitWorktree, "worktree", "", "wait on this worktree")
	waitCmd.Flags().StringVar(&waitAgent, "agent", "", "wait on this agent")
	waitCmd.Flags().IntVar(&waitTimeout, "timeout", 0, "seconds to wait before giving up (0 = no timeout)")
	waitCmd.Flags().IntVar(&waitInterval, "interval", 0, "seconds between polls (default 5)")
	rootCmd.AddCommand(waitCmd)
}

func runWait(cmd *cobra.Command, args []string) error {
	k, err := resolveKernel()
	if err != nil {
		return err
	}
	result, err := k.Wait(context.Background(), kernel.WaitOptions{
		WorktreeID:      waitWorktree,
		AgentID:         waitAgent,
		TimeoutSeconds:  waitTimeout,
		IntervalSeconds: waitInterval,
	})
	if err != nil {
		return err
	}
	emit(result, func() {
		style.PrintSuccess("done waiting")
	})
	return nil
}
