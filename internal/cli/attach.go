package cli

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"github.com/ppgtool/ppg/internal/kerrors"
)

var attachCmd = &cobra.Command{
	Use:   "attach <agent-id>",
	Short: "Attach the current terminal to an agent's tmux pane",
	Args:  cobra.ExactArgs(1),
	RunE:  runAttach,
}

func init() {
	rootCmd.AddCommand(attachCmd)
}

func runAttach(cmd *cobra.Command, args []string) error {
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

	tmux := exec.Command("tmux", "attach-session", "-t", a.TmuxTarget)
	tmux.Stdin = os.Stdin
	tmux.Stdout = os.Stdout
	tmux.Stderr = os.Stderr
	if err := tmux.Run(); err != nil {
		return kerrors.Wrap(kerrors.PaneNotFound, fmt.Sprintf("attaching to %s", a.TmuxTarget), err)
	}
	return nil
}
