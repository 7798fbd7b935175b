// Package mux adapts the orchestration kernel to a terminal multiplexer.
// The kernel only ever talks to the narrow Mux interface; Tmux is the one
// real implementation, shelling out to the tmux binary. Targets are plain
// strings in tmux's own addressing syntax: "session:window" for a window,
// "session:window.pane" for a specific pane.
package mux

import "context"

// PaneInfo is what the kernel needs to know about one live pane.
type PaneInfo struct {
	Target   string
	WindowID string
	Dead     bool
	ExitCode int
}

// Mux is the interface the kernel drives; every method must be safe to
// call even when the underlying session/window/pane no longer exists —
// implementations return an error matching ErrTargetNotFound (errors.Is)
// rather than panicking.
type Mux interface {
	// EnsureSession creates the named session if it does not already exist.
	EnsureSession(ctx context.Context, session string) error
	// CreateWindow opens a new window in session running command, rooted at
	// dir, and returns its target.
	CreateWindow(ctx context.Context, session, windowName, dir string, command []string) (target string, err error)
	// KillWindow destroys a window. Killing an already-gone window is not
	// an error (best-effort per spec §7 propagation policy).
	KillWindow(ctx context.Context, target string) error
	// SplitPane splits target, returning the new pane's target.
	SplitPane(ctx context.Context, target, dir string, horizontal bool, sizePercent int, command []string) (string, error)
	// SendKeys sends literal keystrokes (and control sequences like Enter)
	// to target.
	SendKeys(ctx context.Context, target string, keys ...string) error
	// CapturePane returns the rendered text currently visible in target.
	CapturePane(ctx context.Context, target string) (string, error)
	// ListPanes enumerates every pane belonging to session in one probe.
	ListPanes(ctx context.Context, session string) (map[string]PaneInfo, error)
	// IsInsideMux reports whether the calling process is itself attached to
	// a multiplexer pane, for self-protection.
	IsInsideMux() bool
	// CurrentTarget returns the calling process's own pane target, if any.
	CurrentTarget() (string, bool)
}
