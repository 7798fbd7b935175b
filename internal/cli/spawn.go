package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ppgtool/ppg/internal/prompt"
	"github.com/ppgtool/ppg/internal/style"
	"github.com/ppgtool/ppg/internal/worktree"
)

var (
	spawnBranch      string
	spawnAdopt       string
	spawnAttach      string
	spawnBase        string
	spawnName        string
	spawnPreset      string
	spawnPromptText  string
	spawnPromptFile  string
	spawnTemplate    string
	spawnVars        []string
	spawnCount       int
	spawnSplit       bool
	spawnSkipResult  bool
)

var spawnCmd = &cobra.Command{
	Use:   "spawn",
	Short: "Create (or attach to) a worktree and spawn agents into it",
	RunE:  runSpawn,
}

func init() {
	spawnCmd.Flags().StringVar(&spawnBranch, "branch", "", "create a new worktree on this branch")
	spawnCmd.Flags().StringVar(&spawnAdopt, "adopt-branch", "", "attach a worktree to an existing branch")
	spawnCmd.Flags().StringVar(&spawnAttach, "attach", "", "attach more agents to this existing worktree id")
	spawnCmd.Flags().StringVar(&spawnBase, "base", "", "base ref for a new branch (default HEAD)")
	spawnCmd.Flags().StringVar(&spawnName, "name", "", "human-readable worktree name")
	spawnCmd.Flags().StringVar(&spawnPreset, "agent", "claude", "agent preset name")
	spawnCmd.Flags().StringVar(&spawnPromptText, "prompt", "", "inline prompt text")
	spawnCmd.Flags().StringVar(&spawnPromptFile, "prompt-file", "", "read prompt from this file")
	spawnCmd.Flags().StringVar(&spawnTemplate, "template", "", "named prompt template")
	spawnCmd.Flags().StringArrayVar(&spawnVars, "var", nil, "template variable key=value (repeatable)")
	spawnCmd.Flags().IntVar(&spawnCount, "count", 1, "number of agents to spawn")
	spawnCmd.Flags().BoolVar(&spawnSplit, "split", false, "split additional agents into panes instead of windows")
	spawnCmd.Flags().BoolVar(&spawnSkipResult, "no-result-instructions", false, "omit the result-file instructions block")
	rootCmd.AddCommand(spawnCmd)
}

func parseVars(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	vars := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("--var %q must be key=value", p)
		}
		vars[k] = v
	}
	return vars, nil
}

func runSpawn(cmd *cobra.Command, args []string) error {
	vars, err := parseVars(spawnVars)
	if err != nil {
		return err
	}

	k, err := resolveKernel()
	if err != nil {
		return err
	}

	result, err := k.PerformSpawn(context.Background(), worktree.SpawnOptions{
		Branch:                 spawnBranch,
		Base:                   spawnBase,
		AdoptBranch:            spawnAdopt,
		AttachWorktreeID:       spawnAttach,
		Name:                   spawnName,
		AgentPresetName:        spawnPreset,
		Prompt:                 prompt.Source{Prompt: spawnPromptText, File: spawnPromptFile, Template: spawnTemplate},
		Vars:                   vars,
		AgentCount:             spawnCount,
		Split:                  spawnSplit,
		SkipResultInstructions: spawnSkipResult,
	})
	if err != nil {
		return err
	}

	emit(result, func() {
		style.PrintSuccess("spawned worktree %s (%s) with %d agent(s)", result.WorktreeID, result.Branch, len(result.Agents))
		for _, a := range result.Agents {
			fmt.Printf("  %s  %s  %s\n", a.ID, a.AgentType, a.TmuxTarget)
		}
	})
	return nil
}
