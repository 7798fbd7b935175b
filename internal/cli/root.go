package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ppgtool/ppg/internal/kerrors"
	"github.com/ppgtool/ppg/internal/style"
)

var jsonOutput bool

var rootCmd = &cobra.Command{
	Use:     "ppg", // replaced in init() based on PPG_COMMAND
	Short:   "Orchestration kernel for multi-agent git worktrees",
	Version: Version,
	Long:    "",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cmdName := Name()
	rootCmd.Use = cmdName
	rootCmd.Long = fmt.Sprintf(`%s manages multi-agent orchestration over git worktrees.

It spawns AI coding agents into isolated worktrees and tmux panes, tracks
their lifecycle in a manifest, and merges their work back on request.`, cmdName)

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON")

	cobra.EnablePrefixMatching = true
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		if ke, ok := asKernelError(err); ok {
			if jsonOutput {
				printJSON(map[string]string{"error": string(ke.Code), "message": ke.Message})
			} else {
				style.PrintError("%s", ke.Error())
			}
			return kerrors.ExitCode(ke.Code)
		}
		if !jsonOutput {
			style.PrintError("%s", err.Error())
		} else {
			printJSON(map[string]string{"error": "INVALID_ARGS", "message": err.Error()})
		}
		return 1
	}
	return 0
}

func asKernelError(err error) (*kerrors.Error, bool) {
	for err != nil {
		if ke, ok := err.(*kerrors.Error); ok {
			return ke, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}

// printJSON marshals v as indented JSON to stdout. Marshal failures here
// would be a programmer error (v is always one of our own result types),
// so they're reported on stderr rather than silently swallowed.
func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "encode result: %v\n", err)
	}
}

// emit prints result either as JSON (if --json was passed) or via the
// supplied human-readable printer.
func emit(result interface{}, human func()) {
	if jsonOutput {
		printJSON(result)
		return
	}
	human()
}

// requireSubcommand is the RunE for parent commands that only host
// subcommands — without it cobra silently shows help and exits 0 for an
// unrecognized child command.
func requireSubcommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("requires a subcommand; run '%s --help'", cmd.CommandPath())
	}
	return fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath())
}
