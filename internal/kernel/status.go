package kernel

import (
	"context"
	"fmt"
	"time"

	"github.com/ppgtool/ppg/internal/kerrors"
	"github.com/ppgtool/ppg/internal/manifest"
	"github.com/ppgtool/ppg/internal/status"
)

// WorktreeView is one worktree's reconciled, user-facing view.
type WorktreeView struct {
	Worktree  *manifest.Worktree
	Lifecycle status.Lifecycle
}

// AggregateResult is the full reconciled read model (spec §4.9 "status"
// and "aggregate" share one reconcile-then-derive path; aggregate simply
// returns every worktree instead of one).
type AggregateResult struct {
	Worktrees   []WorktreeView
	MasterAgents []*manifest.Agent
}

// reconcileAll probes the session once and writes the refreshed statuses
// back to the manifest, returning the refreshed snapshot.
func (k *Kernel) reconcileAll(ctx context.Context) (*manifest.Manifest, error) {
	m, err := k.Store.Read()
	if err != nil {
		return nil, err
	}
	refreshed, _, err := status.Reconcile(ctx, k.Mux, k.sessionName(), m, nil, time.Now())
	if err != nil {
		return nil, err
	}
	if err := k.Store.Write(refreshed); err != nil {
		return nil, err
	}
	return refreshed, nil
}

// Status reconciles and returns a single worktree's view.
func (k *Kernel) Status(ctx context.Context, worktreeID string) (*WorktreeView, error) {
	m, err := k.reconcileAll(ctx)
	if err != nil {
		return nil, err
	}
	wt, ok := m.Worktrees[worktreeID]
	if !ok {
		return nil, kerrors.New(kerrors.WorktreeNotFound, fmt.Sprintf("worktree %q not found", worktreeID))
	}
	return &WorktreeView{Worktree: wt, Lifecycle: status.DeriveLifecycle(wt)}, nil
}

// Aggregate reconciles and returns every worktree's view plus any master
// agents, for the full dashboard read (spec §4.9 "aggregate").
func (k *Kernel) Aggregate(ctx context.Context) (*AggregateResult, error) {
	m, err := k.reconcileAll(ctx)
	if err != nil {
		return nil, err
	}
	result := &AggregateResult{}
	for _, wt := range m.Worktrees {
		result.Worktrees = append(result.Worktrees, WorktreeView{Worktree: wt, Lifecycle: status.DeriveLifecycle(wt)})
	}
	for _, a := range m.Agents {
		result.MasterAgents = append(result.MasterAgents, a)
	}
	return result, nil
}
