package kernel

import (
	"context"

	"github.com/ppgtool/ppg/internal/worktree"
)

// PerformSpawn creates (or attaches to) a worktree and spawns its agents.
func (k *Kernel) PerformSpawn(ctx context.Context, opts worktree.SpawnOptions) (*worktree.SpawnResult, error) {
	opts.ProjectRoot = k.ProjectRoot
	if opts.SessionName == "" {
		opts.SessionName = k.sessionName()
	}
	return k.Worktree.PerformSpawn(ctx, opts)
}

// PerformSwarmSpawn fires every member of a named swarm template.
func (k *Kernel) PerformSwarmSpawn(ctx context.Context, opts worktree.SwarmSpawnOptions) (*worktree.SwarmSpawnResult, error) {
	opts.ProjectRoot = k.ProjectRoot
	if opts.SessionName == "" {
		opts.SessionName = k.sessionName()
	}
	return k.Worktree.PerformSwarmSpawn(ctx, opts)
}

// PerformMerge folds a worktree's branch back into its base branch.
func (k *Kernel) PerformMerge(ctx context.Context, worktreeID string, opts worktree.MergeOptions) (*worktree.MergeResult, error) {
	opts.ProjectRoot = k.ProjectRoot
	return k.Worktree.PerformMerge(ctx, worktreeID, opts)
}

// PerformKill kills the agents in opts's scope, optionally removing or
// deleting their owning worktrees.
func (k *Kernel) PerformKill(ctx context.Context, opts worktree.KillOptions) (*worktree.KillResult, error) {
	opts.ProjectRoot = k.ProjectRoot
	return k.Worktree.PerformKill(ctx, opts)
}

// PerformPr pushes a worktree's branch and opens (or reuses) its PR.
func (k *Kernel) PerformPr(ctx context.Context, worktreeID string, opts worktree.PrOptions) (*worktree.PrResult, error) {
	opts.ProjectRoot = k.ProjectRoot
	return k.Worktree.PerformPr(ctx, worktreeID, opts)
}

// PerformReset tears the project back down to a clean slate.
func (k *Kernel) PerformReset(ctx context.Context, opts worktree.ResetOptions) (*worktree.ResetResult, error) {
	opts.ProjectRoot = k.ProjectRoot
	return k.Worktree.PerformReset(ctx, opts)
}

// PerformClean garbage-collects worktrees already at rest.
func (k *Kernel) PerformClean(ctx context.Context, opts worktree.CleanOptions) (*worktree.CleanResult, error) {
	opts.ProjectRoot = k.ProjectRoot
	return k.Worktree.PerformClean(ctx, opts)
}
