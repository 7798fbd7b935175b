package worktree

import (
	"context"
	"testing"
	"time"

	"github.com/ppgtool/ppg/internal/kerrors"
	"github.com/ppgtool/ppg/internal/manifest"
	"github.com/ppgtool/ppg/internal/prompt"
)

func markAgentIdle(t *testing.T, e *Engine, worktreeID, agentID string) {
	t.Helper()
	now := time.Now()
	if _, err := e.Store.Update(context.Background(), func(m *manifest.Manifest) (*manifest.Manifest, error) {
		a := m.Worktrees[worktreeID].Agents[agentID]
		a.Status = manifest.AgentIdle
		a.CompletedAt = &now
		return m, nil
	}); err != nil {
		t.Fatalf("markAgentIdle: %v", err)
	}
}

func spawnAtRiskWorktree(t *testing.T, e *Engine, dir, branch string) *SpawnResult {
	t.Helper()
	result, err := e.PerformSpawn(context.Background(), SpawnOptions{
		ProjectRoot:     dir,
		Branch:          branch,
		AgentPresetName: "claude",
		Prompt:          prompt.Source{Prompt: "x"},
	})
	if err != nil {
		t.Fatalf("PerformSpawn: %v", err)
	}
	markAgentIdle(t, e, result.WorktreeID, result.Agents[0].ID)
	return result
}

func TestPerformResetRejectsAtRiskWithoutForce(t *testing.T) {
	dir := initTestRepo(t)
	e, _ := newTestEngine(t, dir)
	spawnAtRiskWorktree(t, e, dir, "feature/at-risk")

	_, err := e.PerformReset(context.Background(), ResetOptions{ProjectRoot: dir})
	if !kerrors.Is(err, kerrors.UnmergedWork) {
		t.Fatalf("PerformReset error = %v, want UNMERGED_WORK", err)
	}

	m, err := e.Store.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(m.Worktrees) != 1 {
		t.Fatalf("Worktrees = %v, want the at-risk worktree left in place", m.Worktrees)
	}
}

func TestPerformResetForceOverridesAtRisk(t *testing.T) {
	dir := initTestRepo(t)
	e, _ := newTestEngine(t, dir)
	spawned := spawnAtRiskWorktree(t, e, dir, "feature/at-risk")

	result, err := e.PerformReset(context.Background(), ResetOptions{ProjectRoot: dir, Force: true})
	if err != nil {
		t.Fatalf("PerformReset: %v", err)
	}
	if len(result.Cleaned) != 1 || result.Cleaned[0] != spawned.WorktreeID {
		t.Fatalf("Cleaned = %v, want [%s]", result.Cleaned, spawned.WorktreeID)
	}

	m, err := e.Store.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(m.Worktrees) != 0 {
		t.Fatalf("Worktrees = %v, want empty after reset", m.Worktrees)
	}
}

func TestPerformResetIsIdempotent(t *testing.T) {
	dir := initTestRepo(t)
	e, _ := newTestEngine(t, dir)
	spawnAtRiskWorktree(t, e, dir, "feature/at-risk")

	if _, err := e.PerformReset(context.Background(), ResetOptions{ProjectRoot: dir, Force: true}); err != nil {
		t.Fatalf("first PerformReset: %v", err)
	}

	result, err := e.PerformReset(context.Background(), ResetOptions{ProjectRoot: dir, Force: true})
	if err != nil {
		t.Fatalf("second PerformReset: %v", err)
	}
	if len(result.Cleaned) != 0 {
		t.Fatalf("Cleaned = %v, want none on an already-empty manifest", result.Cleaned)
	}

	m, err := e.Store.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(m.Worktrees) != 0 {
		t.Fatalf("Worktrees = %v, want still empty", m.Worktrees)
	}
}

func TestPerformResetSelfProtectsOwnPane(t *testing.T) {
	dir := initTestRepo(t)
	e, f := newTestEngine(t, dir)
	spawned := spawnAtRiskWorktree(t, e, dir, "feature/self")
	f.SetSelf(spawned.Agents[0].TmuxTarget)

	result, err := e.PerformReset(context.Background(), ResetOptions{ProjectRoot: dir, Force: true})
	if err != nil {
		t.Fatalf("PerformReset: %v", err)
	}
	if len(result.Cleaned) != 0 {
		t.Fatalf("Cleaned = %v, want none", result.Cleaned)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != spawned.WorktreeID {
		t.Fatalf("Skipped = %v, want [%s]", result.Skipped, spawned.WorktreeID)
	}

	m, err := e.Store.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	wt, ok := m.Worktrees[spawned.WorktreeID]
	if !ok {
		t.Fatal("expected self-protected worktree to remain in the manifest")
	}
	if wt.Status == manifest.WorktreeCleaned {
		t.Fatal("expected self-protected worktree not to be marked cleaned")
	}
}
