// Package agent implements the Agent Lifecycle Engine (spec §4.5): spawning,
// killing, restarting, and probing the interactive agent processes that
// live inside multiplexer panes.
package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ppgtool/ppg/internal/config"
	"github.com/ppgtool/ppg/internal/ids"
	"github.com/ppgtool/ppg/internal/kerrors"
	"github.com/ppgtool/ppg/internal/manifest"
	"github.com/ppgtool/ppg/internal/mux"
	"github.com/ppgtool/ppg/internal/prompt"
)

// Engine drives agent processes through a multiplexer and prompt archive.
type Engine struct {
	Mux   mux.Mux
	Paths ids.Paths
}

// New returns an Engine bound to m and paths.
func New(m mux.Mux, paths ids.Paths) *Engine {
	return &Engine{Mux: m, Paths: paths}
}

// SpawnOptions configures one SpawnAgent call.
type SpawnOptions struct {
	AgentID                string
	Preset                 config.AgentPreset
	PromptBody             string
	Vars                   map[string]string
	WorktreePath           string
	TmuxTarget             string
	Branch                 string
	SkipResultInstructions bool
}

// SpawnAgent archives the rendered prompt, wires up the result file if
// configured, and starts the interactive command via sendKeys inside
// tmuxTarget — never by forking directly, since the multiplexer owns the
// child process (spec §4.5 spawnAgent).
func (e *Engine) SpawnAgent(ctx context.Context, opts SpawnOptions) (*manifest.Agent, error) {
	now := time.Now()
	a := &manifest.Agent{
		ID:         opts.AgentID,
		AgentType:  opts.Preset.Command,
		TmuxTarget: opts.TmuxTarget,
		Prompt:     opts.PromptBody,
		StartedAt:  now,
		SessionID:  uuid.NewString(),
	}

	resultInstructions := ""
	if !opts.SkipResultInstructions && opts.Preset.ResultInstructions != "" {
		a.ResultFile = e.Paths.ResultFile(opts.AgentID)
		resultInstructions = fmt.Sprintf(opts.Preset.ResultInstructions, a.ResultFile)
	}

	rendered, err := prompt.Render(opts.PromptBody, opts.Vars, resultInstructions)
	if err != nil {
		a.Status = manifest.AgentFailed
		a.Error = err.Error()
		return a, err
	}
	if err := prompt.Archive(e.Paths, opts.AgentID, rendered); err != nil {
		a.Status = manifest.AgentFailed
		a.Error = err.Error()
		return a, err
	}

	if err := e.startCommand(ctx, opts, rendered); err != nil {
		a.Status = manifest.AgentFailed
		a.Error = err.Error()
		return a, err
	}

	a.Status = manifest.AgentRunning
	return a, nil
}

// startCommand sends the interactive agent's launch command and rendered
// prompt into the owning pane.
func (e *Engine) startCommand(ctx context.Context, opts SpawnOptions, rendered string) error {
	launch := opts.Preset.Command
	if opts.Preset.PromptFlag != "" {
		launch += " " + opts.Preset.PromptFlag
	}
	if err := e.Mux.SendKeys(ctx, opts.TmuxTarget, launch, "Enter"); err != nil {
		return fmt.Errorf("starting agent command: %w", err)
	}
	if opts.Preset.Interactive {
		if err := e.Mux.SendKeys(ctx, opts.TmuxTarget, rendered, "Enter"); err != nil {
			return fmt.Errorf("sending prompt: %w", err)
		}
	}
	return nil
}

// KillAgent best-effort kills a's owning window/pane, tolerating an
// already-dead target. Does not mutate the manifest — the caller commits
// the resulting status via manifest.Store.Update.
func (e *Engine) KillAgent(ctx context.Context, a *manifest.Agent) error {
	if a.TmuxTarget == "" {
		return nil
	}
	if err := e.Mux.KillWindow(ctx, a.TmuxTarget); err != nil {
		return fmt.Errorf("killing agent %s: %w", a.ID, err)
	}
	return nil
}

// KillAgents best-effort kills every agent in the list, collecting (not
// short-circuiting on) individual failures.
func (e *Engine) KillAgents(ctx context.Context, agents []*manifest.Agent) error {
	var firstErr error
	for _, a := range agents {
		if err := e.KillAgent(ctx, a); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// RestartOptions configures RestartAgent.
type RestartOptions struct {
	Worktree       *manifest.Worktree
	SessionName    string
	Preset         config.AgentPreset
	RenderedPrompt string
}

// RestartResult carries both the retired and freshly spawned agent ids.
type RestartResult struct {
	OldAgentID string
	NewAgent   *manifest.Agent
}

// RestartAgent kills old if live, opens a fresh window in worktree, and
// spawns a new agent with promptText. Masters (agents not owned by a
// worktree) are rejected — spec §4.5 requires opts.Worktree to be set.
func (e *Engine) RestartAgent(ctx context.Context, old *manifest.Agent, opts RestartOptions) (*RestartResult, error) {
	if opts.Worktree == nil {
		return nil, kerrors.New(kerrors.InvalidArgs, "restart is not supported for master agents")
	}
	if old.Status.Live() {
		if err := e.KillAgent(ctx, old); err != nil {
			return nil, err
		}
	}

	newID := ids.NewAgentID()
	target, err := e.Mux.CreateWindow(ctx, opts.SessionName, newID, opts.Worktree.Path, nil)
	if err != nil {
		return nil, fmt.Errorf("creating window for restarted agent: %w", err)
	}

	newAgent, err := e.SpawnAgent(ctx, SpawnOptions{
		AgentID:      newID,
		Preset:       opts.Preset,
		PromptBody:   opts.RenderedPrompt,
		WorktreePath: opts.Worktree.Path,
		TmuxTarget:   target,
		Branch:       opts.Worktree.Branch,
	})
	if err != nil {
		return nil, err
	}

	return &RestartResult{OldAgentID: old.ID, NewAgent: newAgent}, nil
}

// SpawnMasterAgent spawns an agent not tied to any worktree (it conducts
// other agents); the record belongs under manifest.agents, not a
// worktree's agent map (spec §4.5 spawnMasterAgent).
func (e *Engine) SpawnMasterAgent(ctx context.Context, opts SpawnOptions) (*manifest.Agent, error) {
	return e.SpawnAgent(ctx, opts)
}
