package kernel

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/ppgtool/ppg/internal/agent"
	"github.com/ppgtool/ppg/internal/config"
	"github.com/ppgtool/ppg/internal/ids"
	"github.com/ppgtool/ppg/internal/kerrors"
	"github.com/ppgtool/ppg/internal/manifest"
	"github.com/ppgtool/ppg/internal/mux"
	"github.com/ppgtool/ppg/internal/prompt"
	"github.com/ppgtool/ppg/internal/worktree"
)

func initTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v: %s", args, err, out)
		}
	}
	run("init")
	run("config", "user.email", "test@test.com")
	run("config", "user.name", "Test User")
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Test\n"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	run("add", ".")
	run("commit", "-m", "initial")
	return dir
}

func newTestKernel(t *testing.T, dir string) (*Kernel, *mux.Fake) {
	t.Helper()
	paths := ids.NewPaths(dir)
	store := manifest.NewStore(dir)
	if _, err := store.Init(dir, "ppg-test"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	f := mux.NewFake()
	agents := agent.New(f, paths)
	cfg := config.Default("ppg-test")
	wt := worktree.New(store, paths, f, agents, cfg)

	return &Kernel{
		ProjectRoot: dir,
		Paths:       paths,
		Config:      cfg,
		Store:       store,
		Mux:         f,
		Agents:      agents,
		Worktree:    wt,
	}, f
}

func TestPerformSpawnInjectsProjectRootAndSession(t *testing.T) {
	dir := initTestRepo(t)
	k, _ := newTestKernel(t, dir)

	result, err := k.PerformSpawn(context.Background(), worktree.SpawnOptions{
		Branch:          "feature/kernel",
		AgentPresetName: "claude",
		Prompt:          prompt.Source{Prompt: "x"},
	})
	if err != nil {
		t.Fatalf("PerformSpawn: %v", err)
	}
	if result.WorktreeID == "" {
		t.Fatal("expected a worktree id")
	}
}

func TestAggregateReflectsSpawnedWorktree(t *testing.T) {
	dir := initTestRepo(t)
	k, _ := newTestKernel(t, dir)

	spawnResult, err := k.PerformSpawn(context.Background(), worktree.SpawnOptions{
		Branch:          "feature/agg",
		AgentPresetName: "claude",
		Prompt:          prompt.Source{Prompt: "x"},
	})
	if err != nil {
		t.Fatalf("PerformSpawn: %v", err)
	}

	agg, err := k.Aggregate(context.Background())
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	found := false
	for _, v := range agg.Worktrees {
		if v.Worktree.ID == spawnResult.WorktreeID {
			found = true
		}
	}
	if !found {
		t.Fatal("expected spawned worktree in aggregate result")
	}
}

func TestStatusUnknownWorktreeNotFound(t *testing.T) {
	dir := initTestRepo(t)
	k, _ := newTestKernel(t, dir)

	_, err := k.Status(context.Background(), "wt-missing")
	if !kerrors.Is(err, kerrors.WorktreeNotFound) {
		t.Fatalf("err = %v, want WorktreeNotFound", err)
	}
}

func TestWaitReturnsImmediatelyWhenAlreadyIdle(t *testing.T) {
	dir := initTestRepo(t)
	k, f := newTestKernel(t, dir)

	spawnResult, err := k.PerformSpawn(context.Background(), worktree.SpawnOptions{
		Branch:          "feature/wait",
		AgentPresetName: "claude",
		Prompt:          prompt.Source{Prompt: "x"},
	})
	if err != nil {
		t.Fatalf("PerformSpawn: %v", err)
	}
	for _, a := range spawnResult.Agents {
		f.Kill(a.TmuxTarget, 0)
	}

	result, err := k.Wait(context.Background(), WaitOptions{WorktreeID: spawnResult.WorktreeID, TimeoutSeconds: 2})
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if result.Worktree.ID != spawnResult.WorktreeID {
		t.Fatalf("Worktree.ID = %q", result.Worktree.ID)
	}
}

func TestWaitTimesOutWhileAgentStillRunning(t *testing.T) {
	dir := initTestRepo(t)
	k, _ := newTestKernel(t, dir)

	spawnResult, err := k.PerformSpawn(context.Background(), worktree.SpawnOptions{
		Branch:          "feature/wait-timeout",
		AgentPresetName: "claude",
		Prompt:          prompt.Source{Prompt: "x"},
	})
	if err != nil {
		t.Fatalf("PerformSpawn: %v", err)
	}

	_, err = k.Wait(context.Background(), WaitOptions{
		WorktreeID:      spawnResult.WorktreeID,
		TimeoutSeconds:  1,
		IntervalSeconds: 1,
	})
	if !kerrors.Is(err, kerrors.WaitTimeout) {
		t.Fatalf("err = %v, want WaitTimeout", err)
	}
}

func TestWaitRejectsAmbiguousScope(t *testing.T) {
	dir := initTestRepo(t)
	k, _ := newTestKernel(t, dir)

	_, err := k.Wait(context.Background(), WaitOptions{WorktreeID: "wt-1", AgentID: "ag-1"})
	if !kerrors.Is(err, kerrors.InvalidArgs) {
		t.Fatalf("err = %v, want InvalidArgs", err)
	}
}

func TestDiffUnknownWorktreeNotFound(t *testing.T) {
	dir := initTestRepo(t)
	k, _ := newTestKernel(t, dir)

	_, err := k.Diff("wt-missing")
	if !kerrors.Is(err, kerrors.WorktreeNotFound) {
		t.Fatalf("err = %v, want WorktreeNotFound", err)
	}
}
