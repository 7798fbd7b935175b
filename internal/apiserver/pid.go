package apiserver

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/ppgtool/ppg/internal/kerrors"
)

func alive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// AcquireSingleton claims path for the current process, refusing with
// kerrors.ServerRunning if an existing PID file names a live process.
func AcquireSingleton(path string) error {
	if pid, err := readPID(path); err == nil && alive(pid) {
		return kerrors.New(kerrors.ServerRunning, fmt.Sprintf("server already running (pid %d)", pid))
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0644)
}

// ReleaseSingleton removes path, tolerating it already being gone.
func ReleaseSingleton(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Status reports whether the daemon named by the PID file at path is
// currently alive, and its PID if so.
func Status(path string) (bool, int) {
	pid, err := readPID(path)
	if err != nil {
		return false, 0
	}
	return alive(pid), pid
}
