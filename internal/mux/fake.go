package mux

import (
	"context"
	"fmt"
	"sync"
)

// Fake is an in-memory Mux for tests that exercise the agent/worktree/
// status packages without a real tmux binary.
type Fake struct {
	mu       sync.Mutex
	sessions map[string]bool
	panes    map[string]PaneInfo
	sent     map[string][]string
	seq      int
	inside   bool
	self     string
}

// NewFake returns an empty Fake mux.
func NewFake() *Fake {
	return &Fake{
		sessions: map[string]bool{},
		panes:    map[string]PaneInfo{},
		sent:     map[string][]string{},
	}
}

// SetSelf marks target as the calling process's own pane, for
// self-protection tests.
func (f *Fake) SetSelf(target string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inside = true
	f.self = target
}

// Kill marks target as dead with the given exit code, simulating an agent
// process exiting.
func (f *Fake) Kill(target string, exitCode int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	info := f.panes[target]
	info.Dead = true
	info.ExitCode = exitCode
	f.panes[target] = info
}

// SentKeys returns the keys sent to target, for assertions.
func (f *Fake) SentKeys(target string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent[target]...)
}

func (f *Fake) EnsureSession(ctx context.Context, session string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[session] = true
	return nil
}

func (f *Fake) CreateWindow(ctx context.Context, session, windowName, dir string, command []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.sessions[session] {
		f.sessions[session] = true
	}
	f.seq++
	target := fmt.Sprintf("%s:%d.0", session, f.seq)
	f.panes[target] = PaneInfo{Target: target, WindowID: fmt.Sprintf("@%d", f.seq)}
	return target, nil
}

func (f *Fake) KillWindow(ctx context.Context, target string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.panes, target)
	return nil
}

func (f *Fake) SplitPane(ctx context.Context, target, dir string, horizontal bool, sizePercent int, command []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	newTarget := fmt.Sprintf("%s.%d", target, f.seq)
	f.panes[newTarget] = PaneInfo{Target: newTarget, WindowID: f.panes[target].WindowID}
	return newTarget, nil
}

func (f *Fake) SendKeys(ctx context.Context, target string, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.panes[target]; !ok {
		return ErrTargetNotFound
	}
	f.sent[target] = append(f.sent[target], keys...)
	return nil
}

func (f *Fake) CapturePane(ctx context.Context, target string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.panes[target]; !ok {
		return "", ErrTargetNotFound
	}
	out := ""
	for _, k := range f.sent[target] {
		out += k
	}
	return out, nil
}

func (f *Fake) ListPanes(ctx context.Context, session string) (map[string]PaneInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]PaneInfo, len(f.panes))
	for k, v := range f.panes {
		out[k] = v
	}
	return out, nil
}

func (f *Fake) IsInsideMux() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inside
}

func (f *Fake) CurrentTarget() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.self, f.inside && f.self != ""
}
