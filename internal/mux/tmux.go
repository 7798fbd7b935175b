package mux

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Tmux is the real Mux implementation, shelling out to the tmux binary.
type Tmux struct{}

// NewTmux returns a Tmux adapter. Returns ErrTransportMissing if the tmux
// binary is not on PATH.
func NewTmux() (*Tmux, error) {
	if _, err := exec.LookPath("tmux"); err != nil {
		return nil, ErrTransportMissing
	}
	return &Tmux{}, nil
}

func (t *Tmux) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "tmux", args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		tErr := &Error{Args: args, Output: strings.TrimSpace(out.String()), Err: err}
		if isMissingTarget(tErr) {
			tErr.Err = ErrTargetNotFound
		}
		return "", tErr
	}
	return strings.TrimSpace(out.String()), nil
}

// EnsureSession creates session if it is not already running.
func (t *Tmux) EnsureSession(ctx context.Context, session string) error {
	if err := exec.CommandContext(ctx, "tmux", "has-session", "-t", session).Run(); err == nil {
		return nil
	}
	_, err := t.run(ctx, "new-session", "-d", "-s", session)
	return err
}

// CreateWindow opens a new window in session at dir running command, and
// sets remain-on-exit so a dead agent's output stays visible until the
// kernel observes and reaps it.
func (t *Tmux) CreateWindow(ctx context.Context, session, windowName, dir string, command []string) (string, error) {
	args := []string{
		"new-window",
		"-t", session + ":",
		"-n", windowName,
		"-c", dir,
		"-P", "-F", "#{pane_id}",
	}
	args = append(args, command...)

	target, err := t.run(ctx, args...)
	if err != nil {
		return "", err
	}
	if _, err := t.run(ctx, "set-option", "-t", target, "remain-on-exit", "on"); err != nil {
		fmt.Fprintf(os.Stderr, "mux: warning: failed to set remain-on-exit on %s: %v\n", target, err)
	}
	return target, nil
}

// KillWindow destroys a window. An already-gone window is not an error.
func (t *Tmux) KillWindow(ctx context.Context, target string) error {
	_, err := t.run(ctx, "kill-window", "-t", target)
	if err != nil && isMissingTarget(err) {
		return nil
	}
	return err
}

// SplitPane splits target and returns the new pane's target.
func (t *Tmux) SplitPane(ctx context.Context, target, dir string, horizontal bool, sizePercent int, command []string) (string, error) {
	args := []string{"split-window", "-t", target, "-c", dir, "-P", "-F", "#{pane_id}"}
	if horizontal {
		args = append(args, "-h")
	}
	if sizePercent > 0 {
		args = append(args, "-l", fmt.Sprintf("%d%%", sizePercent))
	}
	args = append(args, command...)
	return t.run(ctx, args...)
}

// SendKeys sends keystrokes to target.
func (t *Tmux) SendKeys(ctx context.Context, target string, keys ...string) error {
	args := append([]string{"send-keys", "-t", target}, keys...)
	_, err := t.run(ctx, args...)
	return err
}

// CapturePane returns target's currently rendered contents.
func (t *Tmux) CapturePane(ctx context.Context, target string) (string, error) {
	return t.run(ctx, "capture-pane", "-t", target, "-p")
}

// ListPanes probes every pane in session in a single tmux invocation,
// backing the status reconciler's batched refresh (spec §4.6).
func (t *Tmux) ListPanes(ctx context.Context, session string) (map[string]PaneInfo, error) {
	out, err := t.run(ctx, "list-panes", "-s", "-t", session, "-F",
		"#{pane_id}|#{window_id}|#{pane_dead}|#{pane_dead_status}")
	if err != nil {
		if isMissingTarget(err) {
			return map[string]PaneInfo{}, nil
		}
		return nil, err
	}

	result := make(map[string]PaneInfo)
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 4)
		if len(parts) < 2 {
			continue
		}
		info := PaneInfo{Target: parts[0], WindowID: parts[1]}
		if len(parts) >= 3 && parts[2] == "1" {
			info.Dead = true
			if len(parts) >= 4 && parts[3] != "" {
				code, _ := strconv.Atoi(parts[3])
				info.ExitCode = code
			}
		}
		result[parts[0]] = info
	}
	return result, nil
}

// IsInsideMux reports whether the calling process has a controlling tmux
// client, per the TMUX environment variable tmux itself sets.
func (t *Tmux) IsInsideMux() bool {
	return os.Getenv("TMUX") != ""
}

// CurrentTarget returns the calling process's own pane target.
func (t *Tmux) CurrentTarget() (string, bool) {
	if !t.IsInsideMux() {
		return "", false
	}
	out, err := t.run(context.Background(), "display-message", "-p", "#{pane_id}")
	if err != nil {
		return "", false
	}
	return out, true
}

func isMissingTarget(err error) bool {
	var tErr *Error
	if e, ok := err.(*Error); ok {
		tErr = e
	}
	if tErr == nil {
		return false
	}
	return strings.Contains(tErr.Output, "can't find") ||
		strings.Contains(tErr.Output, "no current session") ||
		strings.Contains(tErr.Output, "session not found")
}
