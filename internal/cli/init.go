package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/ppgtool/ppg/internal/config"
	"github.com/ppgtool/ppg/internal/gitw"
	"github.com/ppgtool/ppg/internal/ids"
	"github.com/ppgtool/ppg/internal/kerrors"
	"github.com/ppgtool/ppg/internal/manifest"
	"github.com/ppgtool/ppg/internal/style"
)

var initSessionName string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the orchestration kernel in the current git repo",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().StringVar(&initSessionName, "session", "", "tmux session name (defaults to ppg-<dir>)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}
	if !gitw.New(dir).IsRepo() {
		return kerrors.New(kerrors.NotGitRepo, fmt.Sprintf("%s is not a git repository", dir))
	}

	sessionName := initSessionName
	if sessionName == "" {
		sessionName = "ppg-" + filepath.Base(dir)
	}

	paths := ids.NewPaths(dir)
	store := manifest.NewStore(dir)
	if _, err := store.Init(dir, sessionName); err != nil {
		return err
	}
	if err := config.Save(paths.ConfigPath(), config.Default(sessionName)); err != nil {
		return err
	}

	emit(map[string]string{"projectRoot": dir, "sessionName": sessionName}, func() {
		style.PrintSuccess("initialized %s (session %s)", dir, sessionName)
	})
	return nil
}
