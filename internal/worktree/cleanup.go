package worktree

import (
	"context"
	"time"

	"github.com/ppgtool/ppg/internal/manifest"
	"github.com/ppgtool/ppg/internal/selfprotect"
	"github.com/ppgtool/ppg/internal/status"
)

// CleanOptions configures PerformClean, the garbage-collection operation
// (spec §4.9 performCleanup): unlike performKill's Remove/Delete cascade,
// this op never targets live agents unless Force is set, and it sweeps
// every worktree already at rest rather than requiring an explicit scope.
type CleanOptions struct {
	ProjectRoot string
	// WorktreeID restricts cleanup to a single worktree; empty sweeps
	// every eligible worktree in the manifest.
	WorktreeID string
	Force      bool
}

// CleanResult is what PerformClean returns on success.
type CleanResult struct {
	Cleaned       []string
	SelfProtected []string
	Skipped       []string
}

// eligibleForClean reports whether wt is a candidate for garbage
// collection: already merged/failed, or simply has no live agents left.
func eligibleForClean(wt *manifest.Worktree) bool {
	switch wt.Status {
	case manifest.WorktreeMerged, manifest.WorktreeFailed:
		return true
	case manifest.WorktreeCleaned:
		return false
	default:
		return !wt.LiveAgents()
	}
}

// PerformClean refreshes statuses, then for every eligible worktree (or
// just WorktreeID, if set) kills any remaining agents and removes the git
// worktree, skipping ones still doing live work unless Force is set.
func (e *Engine) PerformClean(ctx context.Context, opts CleanOptions) (*CleanResult, error) {
	sessionName := e.Config.SessionName

	m, err := e.Store.Read()
	if err != nil {
		return nil, err
	}
	refreshed, _, err := status.Reconcile(ctx, e.Mux, sessionName, m, nil, time.Now())
	if err != nil {
		return nil, err
	}

	selfCtx, err := selfprotect.Build(ctx, e.Mux, sessionName)
	if err != nil {
		return nil, err
	}

	var targets []*manifest.Worktree
	if opts.WorktreeID != "" {
		wt, ok := refreshed.Worktrees[opts.WorktreeID]
		if ok {
			targets = append(targets, wt)
		}
	} else {
		for _, wt := range refreshed.Worktrees {
			targets = append(targets, wt)
		}
	}

	result := &CleanResult{}
	for _, wt := range targets {
		if wt.Status == manifest.WorktreeCleaned {
			continue
		}
		if !opts.Force && !eligibleForClean(wt) {
			result.Skipped = append(result.Skipped, wt.ID)
			continue
		}
		if selfCtx.WouldCleanupAffectSelf(wt) {
			result.SelfProtected = append(result.SelfProtected, wt.ID)
			continue
		}
		if _, err := e.CleanupWorktree(ctx, opts.ProjectRoot, wt, selfCtx); err != nil {
			return result, err
		}
		result.Cleaned = append(result.Cleaned, wt.ID)
	}
	return result, nil
}
