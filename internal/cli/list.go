package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/ppgtool/ppg/internal/ids"
	"github.com/ppgtool/ppg/internal/prompt"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates, prompts, or swarms",
	RunE:  requireSubcommand,
}

var listTemplatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List named prompt templates available to --template",
	RunE:  runListTemplates,
}

var listPromptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "List archived per-agent rendered prompts",
	RunE:  runListPrompts,
}

var listSwarmsCmd = &cobra.Command{
	Use:   "swarms",
	Short: "List named swarm templates available to `ppg swarm`",
	RunE:  runListSwarms,
}

func init() {
	listCmd.AddCommand(listTemplatesCmd, listPromptsCmd, listSwarmsCmd)
	rootCmd.AddCommand(listCmd)
}

func runListTemplates(cmd *cobra.Command, args []string) error {
	k, err := resolveKernel()
	if err != nil {
		return err
	}
	names, err := prompt.ListNames(k.Paths)
	if err != nil {
		return err
	}
	emit(names, func() { printNames(names) })
	return nil
}

// listDir returns the base names (without the ext extension) of every
// regular file directly under dir; a missing dir yields an empty list.
func listDir(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ext {
			continue
		}
		names = append(names, e.Name()[:len(e.Name())-len(ext)])
	}
	return names, nil
}

func runListPrompts(cmd *cobra.Command, args []string) error {
	k, err := resolveKernel()
	if err != nil {
		return err
	}
	names, err := listDir(k.Paths.PromptArchiveDir(), ".md")
	if err != nil {
		return err
	}
	sort.Strings(names)
	emit(names, func() { printNames(names) })
	return nil
}

func runListSwarms(cmd *cobra.Command, args []string) error {
	k, err := resolveKernel()
	if err != nil {
		return err
	}
	seen := map[string]bool{}
	var names []string
	for _, dir := range []string{k.Paths.SwarmsDir(), ids.GlobalSwarmsDir()} {
		found, err := listDir(dir, ".yaml")
		if err != nil {
			return err
		}
		for _, n := range found {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	sort.Strings(names)
	emit(names, func() { printNames(names) })
	return nil
}

func printNames(names []string) {
	if len(names) == 0 {
		fmt.Println("(none)")
		return
	}
	for _, n := range names {
		fmt.Println(n)
	}
}
