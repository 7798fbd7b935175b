package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ppgtool/ppg/internal/kernel"
	"github.com/ppgtool/ppg/internal/style"
)

var restartPrompt string

var restartCmd = &cobra.Command{
	Use:   "restart <agent-id>",
	Short: "Kill an agent and spawn a fresh one into the same worktree",
	Args:  cobra.ExactArgs(1),
	RunE:  runRestart,
}

func init() {
	restartCmd.Flags().StringVar(&restartPrompt, "prompt", "", "override the archived prompt instead of replaying it")
	rootCmd.AddCommand(restartCmd)
}

func runRestart(cmd *cobra.Command, args []string) error {
	k, err := resolveKernel()
	if err != nil {
		return err
	}
	result, err := k.Restart(context.Background(), kernel.RestartOptions{
		AgentID:    args[0],
		PromptText: restartPrompt,
	})
	if err != nil {
		return err
	}
	emit(result, func() {
		style.PrintSuccess("restarted %s as %s (%s)", result.OldAgentID, result.NewAgent.ID, result.NewAgent.TmuxTarget)
	})
	return nil
}
