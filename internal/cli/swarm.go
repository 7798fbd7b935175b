package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ppgtool/ppg/internal/style"
	"github.com/ppgtool/ppg/internal/worktree"
)

var swarmVars []string

var swarmCmd = &cobra.Command{
	Use:   "swarm <name>",
	Short: "Spawn every member of a named swarm template",
	Args:  cobra.ExactArgs(1),
	RunE:  runSwarm,
}

func init() {
	swarmCmd.Flags().StringArrayVar(&swarmVars, "var", nil, "template variable key=value (repeatable)")
	rootCmd.AddCommand(swarmCmd)
}

func runSwarm(cmd *cobra.Command, args []string) error {
	vars, err := parseVars(swarmVars)
	if err != nil {
		return err
	}

	k, err := resolveKernel()
	if err != nil {
		return err
	}

	result, err := k.PerformSwarmSpawn(context.Background(), worktree.SwarmSpawnOptions{
		Name: args[0],
		Vars: vars,
	})
	if err != nil {
		return err
	}

	emit(result, func() {
		style.PrintSuccess("spawned %d swarm member(s)", len(result.Members))
		for _, m := range result.Members {
			fmt.Printf("  %s  %s  %d agent(s)\n", m.WorktreeID, m.Branch, len(m.Agents))
		}
	})
	return nil
}
