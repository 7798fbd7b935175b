package worktree

import (
	"context"
	"testing"

	"github.com/ppgtool/ppg/internal/manifest"
	"github.com/ppgtool/ppg/internal/prompt"
)

func TestPerformCleanSkipsWorktreeWithLiveAgents(t *testing.T) {
	dir := initTestRepo(t)
	e, _ := newTestEngine(t, dir)

	spawnResult, err := e.PerformSpawn(context.Background(), SpawnOptions{
		ProjectRoot:     dir,
		Branch:          "feature/busy",
		AgentPresetName: "claude",
		Prompt:          prompt.Source{Prompt: "x"},
	})
	if err != nil {
		t.Fatalf("PerformSpawn: %v", err)
	}

	result, err := e.PerformClean(context.Background(), CleanOptions{ProjectRoot: dir})
	if err != nil {
		t.Fatalf("PerformClean: %v", err)
	}
	if len(result.Cleaned) != 0 {
		t.Fatalf("Cleaned = %v, want none", result.Cleaned)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != spawnResult.WorktreeID {
		t.Fatalf("Skipped = %v, want [%s]", result.Skipped, spawnResult.WorktreeID)
	}
}

func TestPerformCleanRemovesFinishedWorktree(t *testing.T) {
	dir := initTestRepo(t)
	e, f := newTestEngine(t, dir)

	spawnResult, err := e.PerformSpawn(context.Background(), SpawnOptions{
		ProjectRoot:     dir,
		Branch:          "feature/done",
		AgentPresetName: "claude",
		Prompt:          prompt.Source{Prompt: "x"},
	})
	if err != nil {
		t.Fatalf("PerformSpawn: %v", err)
	}

	m, err := e.Store.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	wt := m.Worktrees[spawnResult.WorktreeID]
	for _, a := range wt.Agents {
		f.Kill(a.TmuxTarget, 0)
	}

	result, err := e.PerformClean(context.Background(), CleanOptions{ProjectRoot: dir})
	if err != nil {
		t.Fatalf("PerformClean: %v", err)
	}
	if len(result.Cleaned) != 1 || result.Cleaned[0] != spawnResult.WorktreeID {
		t.Fatalf("Cleaned = %v, want [%s]", result.Cleaned, spawnResult.WorktreeID)
	}

	m, err = e.Store.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if m.Worktrees[spawnResult.WorktreeID].Status != manifest.WorktreeCleaned {
		t.Fatalf("Status = %v, want cleaned", m.Worktrees[spawnResult.WorktreeID].Status)
	}
}

func TestPerformCleanScopedToSingleWorktree(t *testing.T) {
	dir := initTestRepo(t)
	e, f := newTestEngine(t, dir)

	spawnA, err := e.PerformSpawn(context.Background(), SpawnOptions{
		ProjectRoot:     dir,
		Branch:          "feature/a",
		AgentPresetName: "claude",
		Prompt:          prompt.Source{Prompt: "x"},
	})
	if err != nil {
		t.Fatalf("PerformSpawn a: %v", err)
	}
	spawnB, err := e.PerformSpawn(context.Background(), SpawnOptions{
		ProjectRoot:     dir,
		Branch:          "feature/b",
		AgentPresetName: "claude",
		Prompt:          prompt.Source{Prompt: "x"},
	})
	if err != nil {
		t.Fatalf("PerformSpawn b: %v", err)
	}

	m, err := e.Store.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	for _, wtID := range []string{spawnA.WorktreeID, spawnB.WorktreeID} {
		for _, a := range m.Worktrees[wtID].Agents {
			f.Kill(a.TmuxTarget, 0)
		}
	}

	result, err := e.PerformClean(context.Background(), CleanOptions{ProjectRoot: dir, WorktreeID: spawnA.WorktreeID})
	if err != nil {
		t.Fatalf("PerformClean: %v", err)
	}
	if len(result.Cleaned) != 1 || result.Cleaned[0] != spawnA.WorktreeID {
		t.Fatalf("Cleaned = %v, want [%s]", result.Cleaned, spawnA.WorktreeID)
	}

	m, err = e.Store.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if m.Worktrees[spawnB.WorktreeID].Status == manifest.WorktreeCleaned {
		t.Fatal("expected worktree b to be left untouched")
	}
}
