package worktree

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppgtool/ppg/internal/kerrors"
	"github.com/ppgtool/ppg/internal/manifest"
	"github.com/ppgtool/ppg/internal/selfprotect"
	"github.com/ppgtool/ppg/internal/status"
)

// MergeStrategy selects how a worktree's branch is folded back into its
// base branch (spec §4.6 performMerge).
type MergeStrategy string

const (
	MergeSquash MergeStrategy = "squash"
	MergeNoFF   MergeStrategy = "no-ff"
)

// MergeOptions configures PerformMerge.
type MergeOptions struct {
	ProjectRoot string
	Strategy    MergeStrategy
	Cleanup     bool
	Force       bool
}

// MergeResult is what PerformMerge returns on success.
type MergeResult struct {
	WorktreeID    string
	SelfProtected bool
}

// CleanupResult is what CleanupWorktree returns.
type CleanupResult struct {
	SelfProtected bool
}

func liveStatus(s manifest.AgentStatus) bool {
	return s == manifest.AgentRunning || s == manifest.AgentSpawning || s == manifest.AgentWaiting
}

// PerformMerge refreshes statuses, rejects when live agents are present
// unless force is set, checks out the base branch, runs the selected merge
// strategy, and on success marks the worktree merged — optionally
// cascading into CleanupWorktree (spec §4.6 performMerge).
func (e *Engine) PerformMerge(ctx context.Context, worktreeID string, opts MergeOptions) (*MergeResult, error) {
	sessionName := e.Config.SessionName

	m, err := e.Store.Read()
	if err != nil {
		return nil, err
	}
	wt, ok := m.Worktrees[worktreeID]
	if !ok {
		return nil, kerrors.New(kerrors.WorktreeNotFound, fmt.Sprintf("worktree %q not found", worktreeID))
	}

	refreshed, _, err := status.Reconcile(ctx, e.Mux, sessionName, m, nil, time.Now())
	if err != nil {
		return nil, err
	}
	wt = refreshed.Worktrees[worktreeID]

	if !opts.Force {
		for _, a := range wt.Agents {
			if liveStatus(a.Status) {
				return nil, kerrors.New(kerrors.AgentsRunning, "worktree has running agents; pass force to override")
			}
		}
	}

	if _, err := e.Store.Update(ctx, func(m *manifest.Manifest) (*manifest.Manifest, error) {
		w, ok := m.Worktrees[worktreeID]
		if !ok {
			return nil, kerrors.New(kerrors.WorktreeNotFound, fmt.Sprintf("worktree %q not found", worktreeID))
		}
		w.Status = manifest.WorktreeMerging
		return m, nil
	}); err != nil {
		return nil, err
	}

	projectGit := e.git(opts.ProjectRoot)
	if wt.BaseBranch != "" {
		current, branchErr := projectGit.CurrentBranch()
		if branchErr != nil || current != wt.BaseBranch {
			if err := projectGit.Checkout(wt.BaseBranch); err != nil {
				e.markFailed(ctx, worktreeID)
				return nil, kerrors.Wrap(kerrors.MergeFailed, "checking out base branch", err)
			}
		}
	}

	message := fmt.Sprintf("ppg: merge %s (%s)", wt.Name, wt.Branch)
	var mergeErr error
	if opts.Strategy == MergeSquash {
		mergeErr = projectGit.MergeSquash(wt.Branch, message)
	} else {
		mergeErr = projectGit.MergeNoFF(wt.Branch, message)
	}
	if mergeErr != nil {
		e.markFailed(ctx, worktreeID)
		return nil, kerrors.Wrap(kerrors.MergeFailed, "merge failed", mergeErr)
	}

	now := time.Now()
	if _, err := e.Store.Update(ctx, func(m *manifest.Manifest) (*manifest.Manifest, error) {
		w, ok := m.Worktrees[worktreeID]
		if !ok {
			return m, nil
		}
		w.Status = manifest.WorktreeMerged
		w.MergedAt = &now
		return m, nil
	}); err != nil {
		return nil, err
	}

	result := &MergeResult{WorktreeID: worktreeID}
	if !opts.Cleanup {
		return result, nil
	}

	selfCtx, err := selfprotect.Build(ctx, e.Mux, sessionName)
	if err != nil {
		return result, err
	}
	m2, err := e.Store.Read()
	if err != nil {
		return result, err
	}
	wt2, ok := m2.Worktrees[worktreeID]
	if !ok {
		return result, nil
	}
	if selfCtx.WouldCleanupAffectSelf(wt2) {
		result.SelfProtected = true
		return result, nil
	}
	_, err = e.CleanupWorktree(ctx, opts.ProjectRoot, wt2, selfCtx)
	return result, err
}

func (e *Engine) markFailed(ctx context.Context, worktreeID string) {
	_, _ = e.Store.Update(ctx, func(m *manifest.Manifest) (*manifest.Manifest, error) {
		w, ok := m.Worktrees[worktreeID]
		if !ok {
			return m, nil
		}
		w.Status = manifest.WorktreeFailed
		return m, nil
	})
}

// CleanupWorktree kills every mux window/pane the worktree owns (excluding
// panes selfCtx identifies as the caller's own), removes the worktree from
// git, and marks it cleaned. Tolerates the worktree directory already
// being gone (spec §4.6 cleanupWorktree).
func (e *Engine) CleanupWorktree(ctx context.Context, projectRoot string, wt *manifest.Worktree, selfCtx selfprotect.Context) (*CleanupResult, error) {
	agents := make([]*manifest.Agent, 0, len(wt.Agents))
	for _, a := range wt.Agents {
		agents = append(agents, a)
	}
	safe, skipped := selfCtx.ExcludeSelf(agents)

	if err := e.Agents.KillAgents(ctx, safe); err != nil {
		return nil, err
	}

	selfProtected := len(skipped) > 0
	if wt.TmuxWindow != "" && !selfCtx.WouldCleanupAffectSelf(wt) {
		_ = e.Mux.KillWindow(ctx, wt.TmuxWindow)
	}

	if err := e.git(projectRoot).WorktreeRemove(wt.Path, true); err != nil {
		if _, statErr := os.Stat(wt.Path); !os.IsNotExist(statErr) {
			return nil, err
		}
	}

	if _, err := e.Store.Update(ctx, func(m *manifest.Manifest) (*manifest.Manifest, error) {
		w, ok := m.Worktrees[wt.ID]
		if !ok {
			return m, nil
		}
		w.Status = manifest.WorktreeCleaned
		return m, nil
	}); err != nil {
		return nil, err
	}

	return &CleanupResult{SelfProtected: selfProtected}, nil
}
