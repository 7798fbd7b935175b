package worktree

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ppgtool/ppg/internal/kerrors"
)

func writeSwarmFile(t *testing.T, e *Engine, name, contents string) {
	t.Helper()
	if err := os.MkdirAll(e.Paths.SwarmsDir(), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	path := filepath.Join(e.Paths.SwarmsDir(), name+".yaml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestPerformSwarmSpawnIsolatedMembersGetOwnWorktrees(t *testing.T) {
	dir := initTestRepo(t)
	e, _ := newTestEngine(t, dir)

	writeSwarmFile(t, e, "review", `
name: review
members:
  - name: frontend
    branch: feature/frontend
    prompt: review the frontend
  - name: backend
    branch: feature/backend
    prompt: review the backend
`)

	result, err := e.PerformSwarmSpawn(context.Background(), SwarmSpawnOptions{
		ProjectRoot: dir,
		Name:        "review",
	})
	if err != nil {
		t.Fatalf("PerformSwarmSpawn: %v", err)
	}
	if len(result.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(result.Members))
	}
	if result.Members[0].WorktreeID == result.Members[1].WorktreeID {
		t.Fatal("expected distinct worktrees for isolated members")
	}
}

func TestPerformSwarmSpawnSharedMemberJoinsFirstWorktree(t *testing.T) {
	dir := initTestRepo(t)
	e, _ := newTestEngine(t, dir)

	writeSwarmFile(t, e, "pair", `
name: pair
members:
  - name: lead
    branch: feature/pair
    prompt: lead the work
  - name: helper
    shared: true
    prompt: help out
`)

	result, err := e.PerformSwarmSpawn(context.Background(), SwarmSpawnOptions{
		ProjectRoot: dir,
		Name:        "pair",
	})
	if err != nil {
		t.Fatalf("PerformSwarmSpawn: %v", err)
	}
	if len(result.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(result.Members))
	}
	if result.Members[1].WorktreeID != result.Members[0].WorktreeID {
		t.Fatalf("expected shared member to join worktree %q, got %q",
			result.Members[0].WorktreeID, result.Members[1].WorktreeID)
	}

	m, err := e.Store.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	wt := m.Worktrees[result.Members[0].WorktreeID]
	if len(wt.Agents) != 2 {
		t.Fatalf("expected 2 agents sharing the worktree, got %d", len(wt.Agents))
	}
}

func TestPerformSwarmSpawnRejectsSharedMemberFirst(t *testing.T) {
	dir := initTestRepo(t)
	e, _ := newTestEngine(t, dir)

	writeSwarmFile(t, e, "bad", `
name: bad
members:
  - name: helper
    shared: true
    prompt: help out
`)

	_, err := e.PerformSwarmSpawn(context.Background(), SwarmSpawnOptions{
		ProjectRoot: dir,
		Name:        "bad",
	})
	if !kerrors.Is(err, kerrors.InvalidArgs) {
		t.Fatalf("err = %v, want InvalidArgs", err)
	}
}

func TestPerformSwarmSpawnMissingTemplateNotFound(t *testing.T) {
	dir := initTestRepo(t)
	e, _ := newTestEngine(t, dir)

	_, err := e.PerformSwarmSpawn(context.Background(), SwarmSpawnOptions{
		ProjectRoot: dir,
		Name:        "does-not-exist",
	})
	if !kerrors.Is(err, kerrors.PromptNotFound) {
		t.Fatalf("err = %v, want PromptNotFound", err)
	}
}

func TestPerformSwarmSpawnMergesVars(t *testing.T) {
	dir := initTestRepo(t)
	e, _ := newTestEngine(t, dir)

	writeSwarmFile(t, e, "vars", `
name: vars
members:
  - name: solo
    branch: feature/vars
    prompt: "hello {{.scope}} {{.task}}"
    vars:
      task: refactor
`)

	result, err := e.PerformSwarmSpawn(context.Background(), SwarmSpawnOptions{
		ProjectRoot: dir,
		Name:        "vars",
		Vars:        map[string]string{"scope": "global"},
	})
	if err != nil {
		t.Fatalf("PerformSwarmSpawn: %v", err)
	}
	if len(result.Members) != 1 || len(result.Members[0].Agents) != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	rendered := result.Members[0].Agents[0].Prompt
	if rendered == "" {
		t.Fatal("expected rendered prompt text")
	}
}
