package worktree

import (
	"context"
	"fmt"
	"time"

	"github.com/ppgtool/ppg/internal/kerrors"
	"github.com/ppgtool/ppg/internal/manifest"
	"github.com/ppgtool/ppg/internal/selfprotect"
)

// KillOptions configures PerformKill. Exactly one of AgentID, WorktreeID,
// or All selects the scope (spec §4.6 performKill).
//
// Remove/Delete resolve an Open Question spec.md leaves implicit: Remove
// additionally tears down the scope's mux windows via CleanupWorktree
// (git worktree removed, worktree marked cleaned); Delete implies Remove
// and further deletes the worktree's manifest entries outright.
type KillOptions struct {
	ProjectRoot string
	AgentID     string
	WorktreeID  string
	All         bool
	Remove      bool
	Delete      bool
	Force       bool
}

// KillResult is what PerformKill returns on success.
type KillResult struct {
	Killed        []string
	SelfProtected []string
}

func (o KillOptions) scopeCount() int {
	n := 0
	if o.AgentID != "" {
		n++
	}
	if o.WorktreeID != "" {
		n++
	}
	if o.All {
		n++
	}
	return n
}

// PerformKill applies self-protection, kills every live agent in the
// selected scope, and under Remove/Delete tears down the owning worktrees
// (spec §4.6 performKill).
func (e *Engine) PerformKill(ctx context.Context, opts KillOptions) (*KillResult, error) {
	if opts.scopeCount() != 1 {
		return nil, kerrors.New(kerrors.InvalidArgs, "exactly one of agent, worktree, or all is required")
	}

	sessionName := e.Config.SessionName
	m, err := e.Store.Read()
	if err != nil {
		return nil, err
	}
	selfCtx, err := selfprotect.Build(ctx, e.Mux, sessionName)
	if err != nil {
		return nil, err
	}

	var targetWorktrees []*manifest.Worktree
	var targetAgents []*manifest.Agent

	switch {
	case opts.AgentID != "":
		found := false
		for _, wt := range m.Worktrees {
			if a, ok := wt.Agents[opts.AgentID]; ok {
				targetAgents = append(targetAgents, a)
				targetWorktrees = append(targetWorktrees, wt)
				found = true
			}
		}
		if !found {
			if a, ok := m.Agents[opts.AgentID]; ok {
				targetAgents = append(targetAgents, a)
				found = true
			}
		}
		if !found {
			return nil, kerrors.New(kerrors.AgentNotFound, fmt.Sprintf("agent %q not found", opts.AgentID))
		}
	case opts.WorktreeID != "":
		wt, ok := m.Worktrees[opts.WorktreeID]
		if !ok {
			return nil, kerrors.New(kerrors.WorktreeNotFound, fmt.Sprintf("worktree %q not found", opts.WorktreeID))
		}
		targetWorktrees = append(targetWorktrees, wt)
		for _, a := range wt.Agents {
			targetAgents = append(targetAgents, a)
		}
	default:
		for _, wt := range m.Worktrees {
			targetWorktrees = append(targetWorktrees, wt)
			for _, a := range wt.Agents {
				targetAgents = append(targetAgents, a)
			}
		}
		for _, a := range m.Agents {
			targetAgents = append(targetAgents, a)
		}
	}

	var live []*manifest.Agent
	for _, a := range targetAgents {
		if liveStatus(a.Status) {
			live = append(live, a)
		}
	}
	safe, skipped := selfCtx.ExcludeSelf(live)
	if err := e.Agents.KillAgents(ctx, safe); err != nil {
		return nil, err
	}

	result := &KillResult{}
	killedSet := map[string]bool{}
	for _, a := range safe {
		result.Killed = append(result.Killed, a.ID)
		killedSet[a.ID] = true
	}
	for _, a := range skipped {
		result.SelfProtected = append(result.SelfProtected, a.ID)
	}

	if len(killedSet) > 0 {
		now := time.Now()
		if _, err := e.Store.Update(ctx, func(m *manifest.Manifest) (*manifest.Manifest, error) {
			for _, wt := range m.Worktrees {
				for id, a := range wt.Agents {
					if killedSet[id] && !a.Status.Terminal() {
						a.Status = manifest.AgentKilled
						a.CompletedAt = &now
					}
				}
			}
			for id, a := range m.Agents {
				if killedSet[id] && !a.Status.Terminal() {
					a.Status = manifest.AgentKilled
					a.CompletedAt = &now
				}
			}
			return m, nil
		}); err != nil {
			return result, err
		}
	}

	if opts.Remove || opts.Delete {
		alreadySelfProtected := map[string]bool{}
		for _, id := range result.SelfProtected {
			alreadySelfProtected[id] = true
		}

		var deleteIDs []string
		for _, wt := range targetWorktrees {
			if selfCtx.WouldCleanupAffectSelf(wt) {
				if !alreadySelfProtected[wt.ID] {
					alreadySelfProtected[wt.ID] = true
					result.SelfProtected = append(result.SelfProtected, wt.ID)
				}
				continue
			}
			if _, err := e.CleanupWorktree(ctx, opts.ProjectRoot, wt, selfCtx); err != nil {
				return result, err
			}
			deleteIDs = append(deleteIDs, wt.ID)
		}
		if opts.Delete && len(deleteIDs) > 0 {
			if _, err := e.Store.Update(ctx, func(m *manifest.Manifest) (*manifest.Manifest, error) {
				for _, id := range deleteIDs {
					delete(m.Worktrees, id)
				}
				return m, nil
			}); err != nil {
				return result, err
			}
		}
	}

	return result, nil
}
