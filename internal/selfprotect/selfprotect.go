// Package selfprotect builds a per-operation view of the caller's own
// multiplexer pane so destructive kernel operations never tear down the
// process that invoked them (spec §4.4).
package selfprotect

import (
	"context"

	"github.com/ppgtool/ppg/internal/manifest"
	"github.com/ppgtool/ppg/internal/mux"
)

// Context is built once per destructive operation and passed by value to
// every helper that needs it, rather than reconstructed ad hoc.
type Context struct {
	// SelfTarget is the caller's own pane target, empty if the caller is
	// not attached to the multiplexer at all.
	SelfTarget string
	// Panes is the session's full pane map as of when Context was built.
	Panes map[string]mux.PaneInfo
}

// Build captures the caller's own pane id and loads the session's pane map
// in a single probe. Safe to call even when the caller is not inside the
// multiplexer (SelfTarget is then empty and nothing is ever excluded).
func Build(ctx context.Context, m mux.Mux, session string) (Context, error) {
	self, _ := m.CurrentTarget()

	panes, err := m.ListPanes(ctx, session)
	if err != nil {
		return Context{}, err
	}
	return Context{SelfTarget: self, Panes: panes}, nil
}

// paneIsSelfOrAncestor reports whether target is the caller's own pane or
// shares its window (tmux panes in the same window are treated as one
// process tree boundary — killing the window would kill the caller too).
func (c Context) paneIsSelfOrAncestor(target string) bool {
	if c.SelfTarget == "" {
		return false
	}
	if target == c.SelfTarget {
		return true
	}
	self, ok := c.Panes[c.SelfTarget]
	if !ok {
		return false
	}
	other, ok := c.Panes[target]
	if !ok {
		return false
	}
	return self.WindowID != "" && self.WindowID == other.WindowID
}

// WouldCleanupAffectSelf reports whether any pane belonging to worktree's
// own agent windows contains the caller's pane.
func (c Context) WouldCleanupAffectSelf(wt *manifest.Worktree) bool {
	if c.SelfTarget == "" {
		return false
	}
	if c.paneIsSelfOrAncestor(wt.TmuxWindow) {
		return true
	}
	for _, a := range wt.Agents {
		if c.paneIsSelfOrAncestor(a.TmuxTarget) {
			return true
		}
	}
	return false
}

// ExcludeSelf partitions agents into those safe to kill and those skipped
// because their pane is (or contains) the caller's own pane.
func (c Context) ExcludeSelf(agents []*manifest.Agent) (safe, skipped []*manifest.Agent) {
	for _, a := range agents {
		if c.paneIsSelfOrAncestor(a.TmuxTarget) {
			skipped = append(skipped, a)
		} else {
			safe = append(safe, a)
		}
	}
	return safe, skipped
}
