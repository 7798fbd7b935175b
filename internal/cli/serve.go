package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppgtool/ppg/internal/apiserver"
	"github.com/ppgtool/ppg/internal/style"
)

// defaultServeAddr is the HTTPS façade's default bind address. The façade
// itself speaks plain HTTP; TLS termination is left to a reverse proxy, in
// keeping with spec.md treating the transport as an excluded collaborator.
const defaultServeAddr = "127.0.0.1:4920"

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Manage the HTTPS operation façade",
	RunE:  requireSubcommand,
}

var serveStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the operation façade in the background",
	RunE:  runServeStart,
}

var serveStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the operation façade",
	RunE:  runServeStop,
}

var serveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether the operation façade is running",
	RunE:  runServeStatus,
}

var serveRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Mint (or print the existing) bearer token for this project",
	RunE:  runServeRegister,
}

var serveUnregisterCmd = &cobra.Command{
	Use:   "unregister",
	Short: "Revoke the current bearer token",
	RunE:  runServeUnregister,
}

// serveDaemonCmd is the hidden entry point the detached background process
// re-execs itself into.
var serveDaemonCmd = &cobra.Command{
	Use:    "_daemon",
	Hidden: true,
	RunE:   runServeDaemon,
}

func init() {
	serveCmd.PersistentFlags().StringVar(&serveAddr, "addr", defaultServeAddr, "bind address")
	serveCmd.AddCommand(serveStartCmd, serveStopCmd, serveStatusCmd, serveRegisterCmd, serveUnregisterCmd, serveDaemonCmd)
	rootCmd.AddCommand(serveCmd)
}

func runServeStart(cmd *cobra.Command, args []string) error {
	k, err := resolveKernel()
	if err != nil {
		return err
	}
	if running, pid := apiserver.Status(k.Paths.ServerPIDPath()); running {
		return fmt.Errorf("server already running (pid %d)", pid)
	}
	if _, err := apiserver.LoadOrCreateToken(k.Paths); err != nil {
		return fmt.Errorf("provisioning bearer token: %w", err)
	}

	exe, err := os.Executable()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(k.Paths.LogsDir(), 0755); err != nil {
		return err
	}
	logFile, err := os.OpenFile(k.Paths.ServerLogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer logFile.Close()

	daemon := exec.Command(exe, "serve", "_daemon", "--addr", serveAddr)
	daemon.Dir = k.ProjectRoot
	daemon.Stdin = nil
	daemon.Stdout = logFile
	daemon.Stderr = logFile
	if err := daemon.Start(); err != nil {
		return fmt.Errorf("starting server daemon: %w", err)
	}

	emit(map[string]interface{}{"pid": daemon.Process.Pid, "addr": serveAddr}, func() {
		style.PrintSuccess("server started (pid %d) on %s", daemon.Process.Pid, serveAddr)
	})
	return nil
}

func runServeStop(cmd *cobra.Command, args []string) error {
	k, err := resolveKernel()
	if err != nil {
		return err
	}
	running, pid := apiserver.Status(k.Paths.ServerPIDPath())
	if !running {
		return fmt.Errorf("server is not running")
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("stopping server (pid %d): %w", pid, err)
	}
	emit(map[string]string{"status": "stopped"}, func() {
		style.PrintSuccess("server stopped")
	})
	return nil
}

func runServeStatus(cmd *cobra.Command, args []string) error {
	k, err := resolveKernel()
	if err != nil {
		return err
	}
	running, pid := apiserver.Status(k.Paths.ServerPIDPath())
	emit(map[string]interface{}{"running": running, "pid": pid}, func() {
		if running {
			fmt.Printf("running (pid %d)\n", pid)
		} else {
			fmt.Println("not running")
		}
	})
	return nil
}

func runServeRegister(cmd *cobra.Command, args []string) error {
	k, err := resolveKernel()
	if err != nil {
		return err
	}
	token, err := apiserver.LoadOrCreateToken(k.Paths)
	if err != nil {
		return err
	}
	emit(map[string]string{"token": token}, func() {
		fmt.Println(token)
	})
	return nil
}

func runServeUnregister(cmd *cobra.Command, args []string) error {
	k, err := resolveKernel()
	if err != nil {
		return err
	}
	if err := apiserver.RevokeToken(k.Paths); err != nil {
		return err
	}
	emit(map[string]string{"status": "revoked"}, func() {
		style.PrintSuccess("bearer token revoked")
	})
	return nil
}

func runServeDaemon(cmd *cobra.Command, args []string) error {
	k, err := resolveKernel()
	if err != nil {
		return err
	}
	if err := apiserver.AcquireSingleton(k.Paths.ServerPIDPath()); err != nil {
		return err
	}
	defer apiserver.ReleaseSingleton(k.Paths.ServerPIDPath())

	token, err := apiserver.LoadOrCreateToken(k.Paths)
	if err != nil {
		return err
	}

	srv := apiserver.New(k, token)
	httpServer := &http.Server{Addr: serveAddr, Handler: srv.Handler()}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return httpServer.Shutdown(context.Background())
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}
