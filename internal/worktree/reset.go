package worktree

import (
	"context"
	"time"

	"github.com/ppgtool/ppg/internal/kerrors"
	"github.com/ppgtool/ppg/internal/manifest"
	"github.com/ppgtool/ppg/internal/selfprotect"
	"github.com/ppgtool/ppg/internal/status"
)

// ResetOptions configures PerformReset.
type ResetOptions struct {
	ProjectRoot    string
	Force          bool
	Prune          bool
	IncludeOpenPRs bool
}

// ResetResult is what PerformReset returns on success.
type ResetResult struct {
	Cleaned []string
	Skipped []string
}

func atRisk(wt *manifest.Worktree) bool {
	if wt.Status == manifest.WorktreeMerged || wt.Status == manifest.WorktreeCleaned {
		return false
	}
	if wt.PrURL != "" {
		return false
	}
	for _, a := range wt.Agents {
		if a.Status == manifest.AgentIdle || a.Status == manifest.AgentExited {
			return true
		}
	}
	return false
}

// PerformReset refreshes statuses, refuses to proceed when at-risk
// worktrees exist unless force is set, kills running agents session-wide,
// skips worktrees with an open PR unless includeOpenPrs, cleans up
// everything else, and removes cleaned entries from the manifest in a
// single update (spec §4.6 performReset).
func (e *Engine) PerformReset(ctx context.Context, opts ResetOptions) (*ResetResult, error) {
	sessionName := e.Config.SessionName

	m, err := e.Store.Read()
	if err != nil {
		return nil, err
	}
	refreshed, _, err := status.Reconcile(ctx, e.Mux, sessionName, m, nil, time.Now())
	if err != nil {
		return nil, err
	}
	m = refreshed

	if !opts.Force {
		for _, wt := range m.Worktrees {
			if atRisk(wt) {
				return nil, kerrors.New(kerrors.UnmergedWork, "at-risk worktrees have unmerged work; pass force to override")
			}
		}
	}

	selfCtx, err := selfprotect.Build(ctx, e.Mux, sessionName)
	if err != nil {
		return nil, err
	}

	var running []*manifest.Agent
	for _, wt := range m.Worktrees {
		for _, a := range wt.Agents {
			if liveStatus(a.Status) {
				running = append(running, a)
			}
		}
	}
	safe, _ := selfCtx.ExcludeSelf(running)
	if err := e.Agents.KillAgents(ctx, safe); err != nil {
		return nil, err
	}

	result := &ResetResult{}
	var cleanedIDs []string

	for id, wt := range m.Worktrees {
		if wt.Status == manifest.WorktreeCleaned {
			continue
		}
		if !opts.IncludeOpenPRs {
			open, err := e.worktreeHasOpenPR(wt)
			if err != nil {
				return result, err
			}
			if open {
				result.Skipped = append(result.Skipped, id)
				continue
			}
		}

		if selfCtx.WouldCleanupAffectSelf(wt) {
			result.Skipped = append(result.Skipped, id)
			continue
		}

		if _, err := e.CleanupWorktree(ctx, opts.ProjectRoot, wt, selfCtx); err != nil {
			return result, err
		}
		cleanedIDs = append(cleanedIDs, id)
		result.Cleaned = append(result.Cleaned, id)
	}

	if _, err := e.Store.Update(ctx, func(m *manifest.Manifest) (*manifest.Manifest, error) {
		for _, id := range cleanedIDs {
			delete(m.Worktrees, id)
		}
		return m, nil
	}); err != nil {
		return result, err
	}

	if err := e.killOrphanWindows(ctx, sessionName, selfCtx); err != nil {
		return result, err
	}

	if opts.Prune {
		if err := e.PruneWorktrees(opts.ProjectRoot); err != nil {
			return result, err
		}
	}

	return result, nil
}

func (e *Engine) worktreeHasOpenPR(wt *manifest.Worktree) (bool, error) {
	prStatus, err := e.gh(wt.Path).ViewPR()
	if err != nil {
		return false, nil
	}
	return prStatus != nil && prStatus.State == "OPEN", nil
}

// killOrphanWindows kills every mux window in session not owned by any
// current worktree or agent (spec §4.6 performReset "killOrphanWindows").
func (e *Engine) killOrphanWindows(ctx context.Context, session string, selfCtx selfprotect.Context) error {
	m, err := e.Store.Read()
	if err != nil {
		return err
	}
	owned := map[string]bool{}
	for _, wt := range m.Worktrees {
		if wt.TmuxWindow != "" {
			owned[wt.TmuxWindow] = true
		}
		for _, a := range wt.Agents {
			if a.TmuxTarget != "" {
				owned[a.TmuxTarget] = true
			}
		}
	}
	for _, a := range m.Agents {
		if a.TmuxTarget != "" {
			owned[a.TmuxTarget] = true
		}
	}

	panes, err := e.Mux.ListPanes(ctx, session)
	if err != nil {
		return err
	}
	for target := range panes {
		if owned[target] {
			continue
		}
		if selfCtx.SelfTarget == target {
			continue
		}
		_ = e.Mux.KillWindow(ctx, target)
	}
	return nil
}
