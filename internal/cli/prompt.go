package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ppgtool/ppg/internal/prompt"
)

var promptCmd = &cobra.Command{
	Use:   "prompt <name>",
	Short: "Print a named prompt template's raw body",
	Args:  cobra.ExactArgs(1),
	RunE:  runPrompt,
}

func init() {
	rootCmd.AddCommand(promptCmd)
}

func runPrompt(cmd *cobra.Command, args []string) error {
	k, err := resolveKernel()
	if err != nil {
		return err
	}
	body, err := prompt.Resolve(prompt.Source{Template: args[0]}, k.Paths)
	if err != nil {
		return err
	}
	emit(map[string]string{"body": body}, func() {
		fmt.Println(body)
	})
	return nil
}
