package kernel

import (
	"context"
	"fmt"
	"time"

	"github.com/ppgtool/ppg/internal/kerrors"
	"github.com/ppgtool/ppg/internal/manifest"
)

// defaultWaitInterval is the polling interval wait falls back to when the
// caller does not set one (spec §5 "polling interval (default 5 s)").
const defaultWaitInterval = 5 * time.Second

// WaitOptions configures Wait. Exactly one of WorktreeID or AgentID
// selects what to wait on.
type WaitOptions struct {
	WorktreeID      string
	AgentID         string
	TimeoutSeconds  int
	IntervalSeconds int
}

// WaitResult is what Wait returns once the awaited scope is no longer
// live.
type WaitResult struct {
	Worktree *manifest.Worktree
	Agent    *manifest.Agent
}

func findAgent(m *manifest.Manifest, agentID string) *manifest.Agent {
	for _, wt := range m.Worktrees {
		if a, ok := wt.Agents[agentID]; ok {
			return a
		}
	}
	return m.Agents[agentID]
}

// Wait polls reconciled status until the selected worktree has no live
// agents (or the selected agent itself goes non-live), or until timeout —
// at which point it fails with WAIT_TIMEOUT (spec §5).
func (k *Kernel) Wait(ctx context.Context, opts WaitOptions) (*WaitResult, error) {
	if (opts.WorktreeID == "") == (opts.AgentID == "") {
		return nil, kerrors.New(kerrors.InvalidArgs, "exactly one of worktree or agent is required")
	}

	interval := time.Duration(opts.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = defaultWaitInterval
	}
	var deadline time.Time
	if opts.TimeoutSeconds > 0 {
		deadline = time.Now().Add(time.Duration(opts.TimeoutSeconds) * time.Second)
	}

	for {
		m, err := k.reconcileAll(ctx)
		if err != nil {
			return nil, err
		}

		if opts.AgentID != "" {
			a := findAgent(m, opts.AgentID)
			if a == nil {
				return nil, kerrors.New(kerrors.AgentNotFound, fmt.Sprintf("agent %q not found", opts.AgentID))
			}
			if !a.Status.Live() {
				return &WaitResult{Agent: a}, nil
			}
		} else {
			wt, ok := m.Worktrees[opts.WorktreeID]
			if !ok {
				return nil, kerrors.New(kerrors.WorktreeNotFound, fmt.Sprintf("worktree %q not found", opts.WorktreeID))
			}
			if !wt.LiveAgents() {
				return &WaitResult{Worktree: wt}, nil
			}
		}

		if !deadline.IsZero() && time.Now().After(deadline) {
			return nil, kerrors.New(kerrors.WaitTimeout, "wait deadline exceeded")
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}

		if !deadline.IsZero() && time.Now().After(deadline) {
			return nil, kerrors.New(kerrors.WaitTimeout, "wait deadline exceeded")
		}
	}
}
