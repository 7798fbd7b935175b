package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ppgtool/ppg/internal/kerrors"
	"github.com/ppgtool/ppg/internal/manifest"
	"github.com/ppgtool/ppg/internal/style"
)

var sendCmd = &cobra.Command{
	Use:   "send <agent-id> <text>",
	Short: "Send literal keystrokes to an agent's pane, followed by Enter",
	Args:  cobra.ExactArgs(2),
	RunE:  runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
}

func findAgentByID(m *manifest.Manifest, agentID string) *manifest.Agent {
	for _, wt := range m.Worktrees {
		if a, ok := wt.Agents[agentID]; ok {
			return a
		}
	}
	return m.Agents[agentID]
}

func runSend(cmd *cobra.Command, args []string) error {
	k, err := resolveKernel()
	if err != nil {
		return err
	}
	m, err := k.Store.Read()
	if err != nil {
		return err
	}
	a := findAgentByID(m, args[0])
	if a == nil {
		return kerrors.New(kerrors.AgentNotFound, fmt.Sprintf("agent %q not found", args[0]))
	}
	if err := k.Mux.SendKeys(context.Background(), a.TmuxTarget, args[1], "Enter"); err != nil {
		return err
	}
	emit(map[string]string{"sent": args[1]}, func() {
		style.PrintSuccess("sent to %s", a.TmuxTarget)
	})
	return nil
}
