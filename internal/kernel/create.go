package kernel

import (
	"context"
	"fmt"

	"github.com/ppgtool/ppg/internal/ids"
	"github.com/ppgtool/ppg/internal/kerrors"
	"github.com/ppgtool/ppg/internal/manifest"
)

// CreateOptions configures CreateWorktree, the "worktree create" leaf
// (SPEC_FULL.md's supplemented feature): a bare worktree with
// no agent spawned into it, for workflows that want to decide what to
// spawn afterward. Exactly one of Branch or AdoptBranch selects the mode,
// the same way PerformSpawn's own create/adopt modes do.
type CreateOptions struct {
	Branch      string
	Base        string
	AdoptBranch string
	Name        string
}

// CreateResult is what CreateWorktree returns on success.
type CreateResult struct {
	WorktreeID string
	Path       string
	Branch     string
}

// CreateWorktree creates or adopts a worktree and commits its manifest
// skeleton, without touching the mux or spawning any agent.
func (k *Kernel) CreateWorktree(ctx context.Context, opts CreateOptions) (*CreateResult, error) {
	if (opts.Branch == "") == (opts.AdoptBranch == "") {
		return nil, kerrors.New(kerrors.InvalidArgs, "exactly one of branch or adoptBranch is required")
	}

	worktreeID := ids.NewWorktreeID()
	var (
		path, branch, base string
		err                error
	)
	switch {
	case opts.Branch != "":
		branch = opts.Branch
		base = opts.Base
		if base == "" {
			base, err = k.Worktree.Git(k.ProjectRoot).CurrentBranch()
			if err != nil {
				return nil, fmt.Errorf("resolving current branch as base: %w", err)
			}
		}
		path, err = k.Worktree.CreateWorktree(k.ProjectRoot, worktreeID, branch, base)
	default:
		branch = opts.AdoptBranch
		path, err = k.Worktree.AdoptWorktree(k.ProjectRoot, worktreeID, branch)
	}
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
		BaseBranch: base,
		Status:     manifest.WorktreeActive,
		Agents:     map[string]*manifest.Agent{},
	}
	if _, err := k.Store.Update(ctx, func(m *manifest.Manifest) (*manifest.Manifest, error) {
		m.Worktrees[worktreeID] = skeleton
		return m, nil
	}); err != nil {
		return nil, err
	}

	return &CreateResult{WorktreeID: worktreeID, Path: path, Branch: branch}, nil
}
