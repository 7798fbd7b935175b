package kernel

import (
	"context"
	"fmt"
	"time"

	"github.com/ppgtool/ppg/internal/agent"
	"github.com/ppgtool/ppg/internal/kerrors"
	"github.com/ppgtool/ppg/internal/manifest"
	"github.com/ppgtool/ppg/internal/prompt"
)

// RestartOptions configures Restart. PromptText overrides the archived
// prompt the original spawn used; left empty, the archive is replayed
// verbatim (spec §4.5 restartAgent, scenario 4 in spec.md §8).
type RestartOptions struct {
	AgentID    string
	PromptText string
}

// RestartResult is what Restart returns on success.
type RestartResult struct {
	OldAgentID string
	NewAgent   *manifest.Agent
}

// Restart kills (if live) the named agent and spawns a fresh one into the
// same worktree with a new id, rejecting master agents and agents with no
// worktree to recover a preset from.
func (k *Kernel) Restart(ctx context.Context, opts RestartOptions) (*RestartResult, error) {
	m, err := k.Store.Read()
	if err != nil {
		return nil, err
	}

	var old *manifest.Agent
	var wt *manifest.Worktree
	for _, candidate := range m.Worktrees {
		if a, ok := candidate.Agents[opts.AgentID]; ok {
			old = a
			wt = candidate
			break
		}
	}
	if old == nil {
		return nil, kerrors.New(kerrors.AgentNotFound, fmt.Sprintf("agent %q not found", opts.AgentID))
	}

	preset, ok := k.Config.Preset(old.AgentType)
	if !ok {
		return nil, kerrors.New(kerrors.InvalidArgs, fmt.Sprintf("unknown agent preset %q", old.AgentType))
	}

	body := opts.PromptText
	if body == "" {
		body, err = prompt.LoadArchive(k.Paths, old.ID)
		if err != nil {
			return nil, kerrors.Wrap(kerrors.PromptNotFound, fmt.Sprintf("no archived prompt for agent %q", old.ID), err)
		}
	}

	result, err := k.Agents.RestartAgent(ctx, old, agent.RestartOptions{
		Worktree:       wt,
		SessionName:    k.sessionName(),
		Preset:         preset,
		RenderedPrompt: body,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	_, err = k.Store.Update(ctx, func(cur *manifest.Manifest) (*manifest.Manifest, error) {
		curWt, ok := cur.Worktrees[wt.ID]
		if !ok {
			return nil, kerrors.New(kerrors.WorktreeNotFound, fmt.Sprintf("worktree %q not found", wt.ID))
		}
		if curOld, ok := curWt.Agents[old.ID]; ok && !curOld.Status.Terminal() {
			curOld.Status = manifest.AgentKilled
			curOld.CompletedAt = &now
		}
		curWt.Agents[result.NewAgent.ID] = result.NewAgent
		return cur, nil
	})
	if err != nil {
		return nil, err
	}

	return &RestartResult{OldAgentID: result.OldAgentID, NewAgent: result.NewAgent}, nil
}
