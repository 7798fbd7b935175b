package selfprotect

import (
	"context"
	"testing"

	"github.com/ppgtool/ppg/internal/manifest"
	"github.com/ppgtool/ppg/internal/mux"
)

func TestBuildWithoutMuxLeavesSelfTargetEmpty(t *testing.T) {
	f := mux.NewFake()
	sc, err := Build(context.Background(), f, "ppg-demo")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if sc.SelfTarget != "" {
		t.Fatalf("SelfTarget = %q, want empty", sc.SelfTarget)
	}
}

func TestExcludeSelfSkipsOwnPane(t *testing.T) {
	f := mux.NewFake()
	ctx := context.Background()
	selfTarget, err := f.CreateWindow(ctx, "ppg-demo", "wt-self", "/tmp", nil)
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	otherTarget, err := f.CreateWindow(ctx, "ppg-demo", "wt-other", "/tmp", nil)
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	f.SetSelf(selfTarget)

	sc, err := Build(ctx, f, "ppg-demo")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	agents := []*manifest.Agent{
		{ID: "ag-self", TmuxTarget: selfTarget},
		{ID: "ag-other", TmuxTarget: otherTarget},
	}
	safe, skipped := sc.ExcludeSelf(agents)
	if len(safe) != 1 || safe[0].ID != "ag-other" {
		t.Fatalf("safe = %+v, want [ag-other]", safe)
	}
	if len(skipped) != 1 || skipped[0].ID != "ag-self" {
		t.Fatalf("skipped = %+v, want [ag-self]", skipped)
	}
}

func TestWouldCleanupAffectSelf(t *testing.T) {
	f := mux.NewFake()
	ctx := context.Background()
	selfTarget, err := f.CreateWindow(ctx, "ppg-demo", "wt-A", "/tmp", nil)
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	f.SetSelf(selfTarget)

	sc, err := Build(ctx, f, "ppg-demo")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	wtA := &manifest.Worktree{
		ID:     "wt-A",
		Agents: map[string]*manifest.Agent{"ag-1": {ID: "ag-1", TmuxTarget: selfTarget}},
	}
	if !sc.WouldCleanupAffectSelf(wtA) {
		t.Fatal("expected wt-A cleanup to affect self")
	}

	wtB := &manifest.Worktree{
		ID:     "wt-B",
		Agents: map[string]*manifest.Agent{"ag-2": {ID: "ag-2", TmuxTarget: "ppg-demo:9.0"}},
	}
	if sc.WouldCleanupAffectSelf(wtB) {
		t.Fatal("expected wt-B cleanup not to affect self")
	}
}
