package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff <worktree-id>",
	Short: "Show per-file line-count summary between a worktree's branch and its base",
	Args:  cobra.ExactArgs(1),
	RunE:  runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	k, err := resolveKernel()
	if err != nil {
		return err
	}
	stats, err := k.Diff(args[0])
	if err != nil {
		return err
	}
	emit(stats, func() {
		var addTotal, delTotal int
		for _, s := range stats {
			fmt.Printf("%6d %6d  %s\n", s.Additions, s.Deletions, s.Path)
			addTotal += s.Additions
			delTotal += s.Deletions
		}
		fmt.Printf("%6d %6d  total\n", addTotal, delTotal)
	})
	return nil
}
