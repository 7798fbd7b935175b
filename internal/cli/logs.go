package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ppgtool/ppg/internal/kerrors"
)

var logsCmd = &cobra.Command{
	Use:   "logs <agent-id>",
	Short: "Capture an agent pane's currently visible output",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogs,
}

func init() {
	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, args []string) error {
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
	capture, err := k.Mux.CapturePane(context.Background(), a.TmuxTarget)
	if err != nil {
		return err
	}
	emit(map[string]string{"capture": capture}, func() {
		fmt.Println(capture)
	})
	return nil
}
