package scheduler

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/ppgtool/ppg/internal/kerrors"
)

// alive reports whether pid names a live process (spec §4.8: "signal 0"
// check; any failure, including ESRCH, is treated as stale).
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

// acquireSingleton claims path for the current process. If an existing PID
// file names a live process it refuses with kerrors.SchedulerRunning;
// otherwise (missing, unreadable, or stale) it overwrites the file with the
// current PID.
func acquireSingleton(path string) error {
	if pid, err := readPID(path); err == nil && alive(pid) {
		return kerrors.New(kerrors.SchedulerRunning, fmt.Sprintf("scheduler already running (pid %d)", pid))
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0644)
}

// releaseSingleton removes path, tolerating it already being gone.
func releaseSingleton(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// running reports whether the daemon named by the PID file at path is
// currently alive, and its PID if so.
func running(path string) (bool, int) {
	pid, err := readPID(path)
	if err != nil {
		return false, 0
	}
	return alive(pid), pid
}
