package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"github.com/ppgtool/ppg/internal/config"
	"github.com/ppgtool/ppg/internal/scheduler"
	"github.com/ppgtool/ppg/internal/style"
)

var cronCmd = &cobra.Command{
	Use:   "cron",
	Short: "Manage the schedule daemon and its entries",
	RunE:  requireSubcommand,
}

var cronStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the schedule daemon in the background",
	RunE:  runCronStart,
}

var cronStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the schedule daemon",
	RunE:  runCronStop,
}

var cronStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether the schedule daemon is running",
	RunE:  runCronStatus,
}

var cronListCmd = &cobra.Command{
	Use:   "list",
	Short: "List schedule entries",
	RunE:  runCronList,
}

var (
	cronAddSwarm  string
	cronAddPrompt string
	cronAddVars   []string
)

var cronAddCmd = &cobra.Command{
	Use:   "add <name> <cron-expr>",
	Short: "Add or replace a schedule entry",
	Args:  cobra.ExactArgs(2),
	RunE:  runCronAdd,
}

var cronRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a schedule entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runCronRemove,
}

// cronDaemonCmd is the hidden entry point the detached background process
// re-execs itself into; it is never meant to be invoked directly by a user.
var cronDaemonCmd = &cobra.Command{
	Use:    "_daemon",
	Hidden: true,
	RunE:   runCronDaemon,
}

func init() {
	cronAddCmd.Flags().StringVar(&cronAddSwarm, "swarm", "", "fire this named swarm template")
	cronAddCmd.Flags().StringVar(&cronAddPrompt, "prompt", "", "fire a single agent with this inline prompt")
	cronAddCmd.Flags().StringArrayVar(&cronAddVars, "var", nil, "template variable key=value (repeatable)")

	cronCmd.AddCommand(cronStartCmd, cronStopCmd, cronStatusCmd, cronListCmd, cronAddCmd, cronRemoveCmd, cronDaemonCmd)
	rootCmd.AddCommand(cronCmd)
}

func runCronStart(cmd *cobra.Command, args []string) error {
	k, err := resolveKernel()
	if err != nil {
		return err
	}
	if running, pid := scheduler.Status(k.Paths); running {
		return fmt.Errorf("scheduler already running (pid %d)", pid)
	}

	exe, err := os.Executable()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(k.Paths.LogsDir(), 0755); err != nil {
		return err
	}
	logFile, err := os.OpenFile(k.Paths.SchedulerLogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer logFile.Close()

	daemon := exec.Command(exe, "cron", "_daemon")
	daemon.Dir = k.ProjectRoot
	daemon.Stdin = nil
	daemon.Stdout = logFile
	daemon.Stderr = logFile
	if err := daemon.Start(); err != nil {
		return fmt.Errorf("starting scheduler daemon: %w", err)
	}

	emit(map[string]int{"pid": daemon.Process.Pid}, func() {
		style.PrintSuccess("scheduler started (pid %d)", daemon.Process.Pid)
	})
	return nil
}

func runCronStop(cmd *cobra.Command, args []string) error {
	k, err := resolveKernel()
	if err != nil {
		return err
	}
	running, pid := scheduler.Status(k.Paths)
	if !running {
		return fmt.Errorf("scheduler is not running")
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if err := proc.Kill(); err != nil {
		return fmt.Errorf("stopping scheduler (pid %d): %w", pid, err)
	}
	emit(map[string]string{"status": "stopped"}, func() {
		style.PrintSuccess("scheduler stopped")
	})
	return nil
}

func runCronStatus(cmd *cobra.Command, args []string) error {
	k, err := resolveKernel()
	if err != nil {
		return err
	}
	running, pid := scheduler.Status(k.Paths)
	emit(map[string]interface{}{"running": running, "pid": pid}, func() {
		if running {
			fmt.Printf("running (pid %d)\n", pid)
		} else {
			fmt.Println("not running")
		}
	})
	return nil
}

func runCronList(cmd *cobra.Command, args []string) error {
	k, err := resolveKernel()
	if err != nil {
		return err
	}
	file, err := config.LoadScheduleFile(k.Paths.ScheduleFilePath())
	if err != nil {
		return err
	}
	emit(file.Schedules, func() {
		if len(file.Schedules) == 0 {
			fmt.Println("(none)")
			return
		}
		for _, e := range file.Schedules {
			target := e.Swarm
			if target == "" {
				target = "prompt"
			}
			fmt.Printf("%-20s %-15s %s\n", e.Name, e.Cron, target)
		}
	})
	return nil
}

func runCronAdd(cmd *cobra.Command, args []string) error {
	vars, err := parseVars(cronAddVars)
	if err != nil {
		return err
	}
	k, err := resolveKernel()
	if err != nil {
		return err
	}
	entry := config.ScheduleEntry{
		Name:   args[0],
		Cron:   args[1],
		Swarm:  cronAddSwarm,
		Prompt: cronAddPrompt,
		Vars:   vars,
	}
	file, err := config.LoadScheduleFile(k.Paths.ScheduleFilePath())
	if err != nil {
		return err
	}
	file = file.UpsertEntry(entry)
	if err := config.SaveScheduleFile(k.Paths.ScheduleFilePath(), file); err != nil {
		return err
	}
	emit(entry, func() {
		style.PrintSuccess("schedule %q saved", entry.Name)
	})
	return nil
}

func runCronRemove(cmd *cobra.Command, args []string) error {
	k, err := resolveKernel()
	if err != nil {
		return err
	}
	file, err := config.LoadScheduleFile(k.Paths.ScheduleFilePath())
	if err != nil {
		return err
	}
	file, removed := file.RemoveEntry(args[0])
	if !removed {
		return fmt.Errorf("no schedule entry named %q", args[0])
	}
	if err := config.SaveScheduleFile(k.Paths.ScheduleFilePath(), file); err != nil {
		return err
	}
	emit(map[string]string{"removed": args[0]}, func() {
		style.PrintSuccess("schedule %q removed", args[0])
	})
	return nil
}

func runCronDaemon(cmd *cobra.Command, args []string) error {
	k, err := resolveKernel()
	if err != nil {
		return err
	}
	d := scheduler.New(k.ProjectRoot, k.Paths, k.Worktree, k.Config.SessionName)
	return d.Run(context.Background())
}
