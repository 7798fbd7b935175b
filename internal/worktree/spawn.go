package worktree

import (
	"context"
	"fmt"

	"github.com/ppgtool/ppg/internal/agent"
	"github.com/ppgtool/ppg/internal/ids"
	"github.com/ppgtool/ppg/internal/kerrors"
	"github.com/ppgtool/ppg/internal/manifest"
	"github.com/ppgtool/ppg/internal/prompt"
)

// SpawnOptions configures PerformSpawn. Exactly one of Branch, AdoptBranch,
// or AttachWorktreeID selects the mode (spec §4.6 performSpawn step 3).
type SpawnOptions struct {
	ProjectRoot string
	SessionName string

	// New-worktree mode: create Branch from Base (default "HEAD").
	Branch string
	Base   string

	// Adopt-branch mode: attach a new worktree to an existing branch.
	AdoptBranch string

	// Attach-to-existing-worktree mode: spawn more agents into a worktree
	// that already exists in the manifest.
	AttachWorktreeID string

	Name string

	AgentPresetName        string
	Prompt                 prompt.Source
	Vars                   map[string]string
	AgentCount             int
	Split                  bool
	SkipResultInstructions bool

	// OpenTerminal, if set, is invoked with the initial agent's tmux
	// target after a successful spawn; its error is ignored (spec §4.6
	// step 8, "fire-and-forget").
	OpenTerminal func(target string) error
}

// SpawnResult is what PerformSpawn returns on success.
type SpawnResult struct {
	WorktreeID string
	Path       string
	Branch     string
	Agents     []*manifest.Agent
}

func (o SpawnOptions) modeCount() int {
	n := 0
	if o.Branch != "" {
		n++
	}
	if o.AdoptBranch != "" {
		n++
	}
	if o.AttachWorktreeID != "" {
		n++
	}
	return n
}

// PerformSpawn is the canonical create-and-spawn orchestration (spec §4.6
// performSpawn), with the exact step ordering required for crash safety:
// validate before any side effect, persist a skeleton worktree record
// before spawning any agent, and commit each agent immediately after it
// spawns rather than batching commits at the end.
func (e *Engine) PerformSpawn(ctx context.Context, opts SpawnOptions) (*SpawnResult, error) {
	if err := opts.Prompt.Validate(); err != nil {
		return nil, kerrors.Wrap(kerrors.InvalidArgs, "invalid prompt source", err)
	}
	if opts.modeCount() != 1 {
		return nil, kerrors.New(kerrors.InvalidArgs, "exactly one of branch, adoptBranch, or attachWorktreeId is required")
	}

	promptBody, err := prompt.Resolve(opts.Prompt, e.Paths)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.InvalidArgs, "resolving prompt", err)
	}

	presetName := opts.AgentPresetName
	if presetName == "" {
		presetName = e.Config.DefaultAgent
	}
	preset, ok := e.Config.Preset(presetName)
	if !ok {
		return nil, kerrors.New(kerrors.InvalidArgs, fmt.Sprintf("unknown agent preset %q", presetName))
	}

	agentCount := opts.AgentCount
	if agentCount <= 0 {
		agentCount = 1
	}

	sessionName := opts.SessionName
	if sessionName == "" {
		sessionName = e.Config.SessionName
	}

	var (
		worktreeID   string
		path, branch string
		baseBranch   string
		attaching    bool
	)

	switch {
	case opts.Branch != "":
		worktreeID = ids.NewWorktreeID()
		branch = opts.Branch
		baseBranch = opts.Base
		if baseBranch == "" {
			baseBranch, err = e.git(opts.ProjectRoot).CurrentBranch()
			if err != nil {
				return nil, fmt.Errorf("resolving current branch as base: %w", err)
			}
		}
		path, err = e.CreateWorktree(opts.ProjectRoot, worktreeID, branch, baseBranch)
	case opts.AdoptBranch != "":
		worktreeID = ids.NewWorktreeID()
		branch = opts.AdoptBranch
		path, err = e.AdoptWorktree(opts.ProjectRoot, worktreeID, branch)
	default:
		attaching = true
		worktreeID = opts.AttachWorktreeID
	}
	if err != nil {
		return nil, err
	}

	var initialTarget string

	if attaching {
		m, readErr := e.Store.Read()
		if readErr != nil {
			return nil, readErr
		}
		wt, found := m.Worktrees[worktreeID]
		if !found {
			return nil, kerrors.New(kerrors.WorktreeNotFound, fmt.Sprintf("worktree %q not found", worktreeID))
		}
		path = wt.Path
		branch = wt.Branch
		initialTarget = wt.TmuxWindow
	} else {
		if err := e.SetupWorktreeEnv(opts.ProjectRoot, path, e.Config); err != nil {
			return nil, fmt.Errorf("setting up worktree env: %w", err)
		}
		if err := e.Mux.EnsureSession(ctx, sessionName); err != nil {
			return nil, err
		}
		initialTarget, err = e.Mux.CreateWindow(ctx, sessionName, worktreeID, path, nil)
		if err != nil {
			return nil, err
		}

		name := opts.Name
		if name == "" {
			name = worktreeID
		}
		skeleton := &manifest.Worktree{
			ID:         worktreeID,
			Name:       name,
			Path:       path,
			Branch:     branch,
			BaseBranch: baseBranch,
			Status:     manifest.WorktreeActive,
			TmuxWindow: initialTarget,
			Agents:     map[string]*manifest.Agent{},
		}
		if _, err := e.Store.Update(ctx, func(m *manifest.Manifest) (*manifest.Manifest, error) {
			m.Worktrees[worktreeID] = skeleton
			return m, nil
		}); err != nil {
			return nil, err
		}
	}

	result := &SpawnResult{WorktreeID: worktreeID, Path: path, Branch: branch}

	for i := 0; i < agentCount; i++ {
		agentID := ids.NewAgentID()

		var target string
		if i == 0 {
			target = initialTarget
		} else if opts.Split {
			target, err = e.Mux.SplitPane(ctx, initialTarget, path, true, 50, nil)
		} else {
			windowName := fmt.Sprintf("%s-%d", worktreeID, i)
			target, err = e.Mux.CreateWindow(ctx, sessionName, windowName, path, nil)
		}
		if err != nil {
			return result, err
		}

		spawned, spawnErr := e.Agents.SpawnAgent(ctx, agent.SpawnOptions{
			AgentID:                agentID,
			Preset:                 preset,
			PromptBody:             promptBody,
			Vars:                   opts.Vars,
			WorktreePath:           path,
			TmuxTarget:             target,
			Branch:                 branch,
			SkipResultInstructions: opts.SkipResultInstructions,
		})

		if _, updErr := e.Store.Update(ctx, func(m *manifest.Manifest) (*manifest.Manifest, error) {
			wt, found := m.Worktrees[worktreeID]
			if !found {
				return m, nil
			}
			wt.Agents[agentID] = spawned
			return m, nil
		}); updErr != nil {
			return result, updErr
		}

		result.Agents = append(result.Agents, spawned)
		if spawnErr != nil {
			return result, spawnErr
		}
	}

	if opts.OpenTerminal != nil {
		_ = opts.OpenTerminal(initialTarget)
	}

	return result, nil
}
