package gitw

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func initTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if err := cmd.Run(); err != nil {
			t.Fatalf("git %v: %v", args, err)
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

func TestIsRepo(t *testing.T) {
	dir := t.TempDir()
	g := New(dir)
	if g.IsRepo() {
		t.Fatal("expected IsRepo false for empty dir")
	}

	if err := exec.Command("git", "-C", dir, "init").Run(); err != nil {
		t.Fatalf("git init: %v", err)
	}
	if !g.IsRepo() {
		t.Fatal("expected IsRepo true after git init")
	}
}

func TestWorktreeAddFromRefAndList(t *testing.T) {
	dir := initTestRepo(t)
	g := New(dir)

	wtPath := filepath.Join(t.TempDir(), "wt1")
	if err := g.WorktreeAddFromRef(wtPath, "feature/one", "HEAD"); err != nil {
		t.Fatalf("WorktreeAddFromRef: %v", err)
	}

	worktrees, err := g.WorktreeList()
	if err != nil {
		t.Fatalf("WorktreeList: %v", err)
	}
	found := false
	for _, wt := range worktrees {
		if wt.Branch == "feature/one" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected feature/one in worktree list: %+v", worktrees)
	}

	if err := g.WorktreeRemove(wtPath, false); err != nil {
		t.Fatalf("WorktreeRemove: %v", err)
	}
}

func TestHasUncommittedChanges(t *testing.T) {
	dir := initTestRepo(t)
	g := New(dir)

	dirty, err := g.HasUncommittedChanges()
	if err != nil {
		t.Fatalf("HasUncommittedChanges: %v", err)
	}
	if dirty {
		t.Fatal("expected clean tree right after commit")
	}

	if err := os.WriteFile(filepath.Join(dir, "new.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	dirty, err = g.HasUncommittedChanges()
	if err != nil {
		t.Fatalf("HasUncommittedChanges: %v", err)
	}
	if !dirty {
		t.Fatal("expected dirty tree after adding untracked file")
	}
}

func TestMergeSquash(t *testing.T) {
	dir := initTestRepo(t)
	g := New(dir)

	base, err := g.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if err := g.CreateBranchFrom("feature", "HEAD"); err != nil {
		t.Fatalf("CreateBranchFrom: %v", err)
	}
	wtPath := filepath.Join(t.TempDir(), "wt-feature")
	if err := g.WorktreeAddExisting(wtPath, "feature"); err != nil {
		t.Fatalf("WorktreeAddExisting: %v", err)
	}
	if err := os.WriteFile(filepath.Join(wtPath, "feature.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	featureGit := New(wtPath)
	if _, err := featureGit.run("add", "."); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := featureGit.run("commit", "-m", "feat: add feature"); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if err := g.MergeSquash("feature", "feat: add feature"); err != nil {
		t.Fatalf("MergeSquash: %v", err)
	}

	branch, err := g.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if branch != base {
		t.Fatalf("CurrentBranch = %q, want %q", branch, base)
	}
	if _, err := os.Stat(filepath.Join(dir, "feature.txt")); err != nil {
		t.Fatalf("expected feature.txt after squash merge: %v", err)
	}
}

func TestCheckConflictsDetectsConflict(t *testing.T) {
	dir := initTestRepo(t)
	g := New(dir)

	if err := g.CreateBranchFrom("feature", "HEAD"); err != nil {
		t.Fatalf("CreateBranchFrom: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("main change\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := g.run("commit", "-am", "change on main"); err != nil {
		t.Fatalf("commit main: %v", err)
	}

	wtPath := filepath.Join(t.TempDir(), "wt-feature")
	if err := g.WorktreeAddExisting(wtPath, "feature"); err != nil {
		t.Fatalf("WorktreeAddExisting: %v", err)
	}
	if err := os.WriteFile(filepath.Join(wtPath, "README.md"), []byte("feature change\n"), 0644); err != nil {
		t.Fatal(err)
	}
	featureGit := New(wtPath)
	if _, err := featureGit.run("commit", "-am", "change on feature"); err != nil {
		t.Fatalf("commit feature: %v", err)
	}

	conflicts, err := g.CheckConflicts("feature")
	if err != nil {
		t.Fatalf("CheckConflicts: %v", err)
	}
	if len(conflicts) != 1 || conflicts[0] != "README.md" {
		t.Fatalf("conflicts = %+v, want [README.md]", conflicts)
	}

	dirty, err := g.HasUncommittedChanges()
	if err != nil {
		t.Fatalf("HasUncommittedChanges: %v", err)
	}
	if dirty {
		t.Fatal("CheckConflicts should restore a clean working tree")
	}
}

func TestDiffNumstat(t *testing.T) {
	dir := initTestRepo(t)
	g := New(dir)

	base, err := g.Rev("HEAD")
	if err != nil {
		t.Fatalf("Rev: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Test\nmore\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := g.run("commit", "-am", "add a line"); err != nil {
		t.Fatalf("commit: %v", err)
	}
	head, err := g.Rev("HEAD")
	if err != nil {
		t.Fatalf("Rev: %v", err)
	}

	stats, err := g.DiffNumstat(base, head)
	if err != nil {
		t.Fatalf("DiffNumstat: %v", err)
	}
	if len(stats) != 1 || stats[0].Path != "README.md" || stats[0].Additions != 1 {
		t.Fatalf("stats = %+v, want one entry adding 1 line to README.md", stats)
	}
}
