package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/ppgtool/ppg/internal/config"
	"github.com/ppgtool/ppg/internal/ids"
	"github.com/ppgtool/ppg/internal/kerrors"
	"github.com/ppgtool/ppg/internal/manifest"
	"github.com/ppgtool/ppg/internal/mux"
)

func claudePreset() config.AgentPreset {
	return config.AgentPreset{
		Command:            "claude",
		Interactive:        true,
		ResultInstructions: "When you are done, write your final output to %s and stop.",
	}
}

func TestSpawnAgentSendsLaunchAndPrompt(t *testing.T) {
	f := mux.NewFake()
	ctx := context.Background()
	target, err := f.CreateWindow(ctx, "ppg-demo", "wt-a", "/tmp/wt-a", nil)
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}

	e := New(f, ids.NewPaths(t.TempDir()))
	a, err := e.SpawnAgent(ctx, SpawnOptions{
		AgentID:     "ag-12345678",
		Preset:      claudePreset(),
		PromptBody:  "review the diff",
		TmuxTarget:  target,
		Branch:      "feature/x",
	})
	if err != nil {
		t.Fatalf("SpawnAgent: %v", err)
	}
	if a.Status != manifest.AgentRunning {
		t.Fatalf("Status = %v, want running", a.Status)
	}
	if a.ResultFile == "" {
		t.Fatal("expected result file to be set for a preset with result instructions")
	}

	sent := f.SentKeys(target)
	if len(sent) == 0 {
		t.Fatal("expected keys sent to the pane")
	}
	joined := strings.Join(sent, " ")
	if !strings.Contains(joined, "claude") {
		t.Fatalf("expected launch command sent, got %q", joined)
	}
	if !strings.Contains(joined, "review the diff") {
		t.Fatalf("expected rendered prompt sent, got %q", joined)
	}
}

func TestSpawnAgentSkipResultInstructionsOmitsResultFile(t *testing.T) {
	f := mux.NewFake()
	ctx := context.Background()
	target, _ := f.CreateWindow(ctx, "ppg-demo", "wt-a", "/tmp/wt-a", nil)

	e := New(f, ids.NewPaths(t.TempDir()))
	a, err := e.SpawnAgent(ctx, SpawnOptions{
		AgentID:                "ag-12345678",
		Preset:                 claudePreset(),
		PromptBody:             "do the thing",
		TmuxTarget:             target,
		SkipResultInstructions: true,
	})
	if err != nil {
		t.Fatalf("SpawnAgent: %v", err)
	}
	if a.ResultFile != "" {
		t.Fatalf("expected no result file, got %q", a.ResultFile)
	}
}

func TestSpawnAgentFailsWhenTargetMissing(t *testing.T) {
	f := mux.NewFake()
	e := New(f, ids.NewPaths(t.TempDir()))
	a, err := e.SpawnAgent(context.Background(), SpawnOptions{
		AgentID:    "ag-12345678",
		Preset:     claudePreset(),
		PromptBody: "do the thing",
		TmuxTarget: "ppg-demo:9.0",
	})
	if err == nil {
		t.Fatal("expected error for missing pane target")
	}
	if a.Status != manifest.AgentFailed {
		t.Fatalf("Status = %v, want failed", a.Status)
	}
	if a.Error == "" {
		t.Fatal("expected Error to be recorded on the agent")
	}
}

func TestKillAgentToleratesAlreadyGoneTarget(t *testing.T) {
	f := mux.NewFake()
	e := New(f, ids.NewPaths(t.TempDir()))
	a := &manifest.Agent{ID: "ag-1", TmuxTarget: "ppg-demo:1.0"}
	if err := e.KillAgent(context.Background(), a); err != nil {
		t.Fatalf("KillAgent: %v", err)
	}
	if err := e.KillAgent(context.Background(), a); err != nil {
		t.Fatalf("KillAgent on already-gone target: %v", err)
	}
}

func TestKillAgentNoTargetIsNoop(t *testing.T) {
	f := mux.NewFake()
	e := New(f, ids.NewPaths(t.TempDir()))
	a := &manifest.Agent{ID: "ag-master"}
	if err := e.KillAgent(context.Background(), a); err != nil {
		t.Fatalf("KillAgent: %v", err)
	}
}

func TestKillAgentsToleratesMissingTargets(t *testing.T) {
	f := mux.NewFake()
	e := New(f, ids.NewPaths(t.TempDir()))
	agents := []*manifest.Agent{
		{ID: "ag-1", TmuxTarget: "ppg-demo:1.0"},
		{ID: "ag-2", TmuxTarget: "ppg-demo:2.0"},
	}
	if err := e.KillAgents(context.Background(), agents); err != nil {
		t.Fatalf("KillAgents: %v", err)
	}
}

func TestRestartAgentRejectsMasterAgent(t *testing.T) {
	f := mux.NewFake()
	e := New(f, ids.NewPaths(t.TempDir()))
	old := &manifest.Agent{ID: "ag-old", Status: manifest.AgentRunning}

	_, err := e.RestartAgent(context.Background(), old, RestartOptions{
		Worktree: nil,
		Preset:   claudePreset(),
	})
	if !kerrors.Is(err, kerrors.InvalidArgs) {
		t.Fatalf("RestartAgent() err = %v, want InvalidArgs", err)
	}
}

func TestRestartAgentKillsOldAndSpawnsNew(t *testing.T) {
	f := mux.NewFake()
	ctx := context.Background()
	oldTarget, _ := f.CreateWindow(ctx, "ppg-demo", "wt-a-old", "/tmp/wt-a", nil)

	e := New(f, ids.NewPaths(t.TempDir()))
	old := &manifest.Agent{ID: "ag-old", Status: manifest.AgentRunning, TmuxTarget: oldTarget}

	wt := &manifest.Worktree{ID: "wt-a", Path: "/tmp/wt-a", Branch: "feature/x"}
	result, err := e.RestartAgent(ctx, old, RestartOptions{
		Worktree:       wt,
		SessionName:    "ppg-demo",
		Preset:         claudePreset(),
		RenderedPrompt: "continue the review",
	})
	if err != nil {
		t.Fatalf("RestartAgent: %v", err)
	}
	if result.OldAgentID != "ag-old" {
		t.Fatalf("OldAgentID = %q", result.OldAgentID)
	}
	if result.NewAgent.Status != manifest.AgentRunning {
		t.Fatalf("NewAgent.Status = %v, want running", result.NewAgent.Status)
	}
	if result.NewAgent.TmuxTarget == oldTarget {
		t.Fatal("expected restarted agent to live in a new window")
	}

	if err := f.SendKeys(ctx, oldTarget, "noop"); err == nil {
		t.Fatal("expected old window to have been killed")
	}
}

func TestSpawnMasterAgentHasNoWorktree(t *testing.T) {
	f := mux.NewFake()
	ctx := context.Background()
	target, _ := f.CreateWindow(ctx, "ppg-demo", "master", "/tmp/proj", nil)

	e := New(f, ids.NewPaths(t.TempDir()))
	a, err := e.SpawnMasterAgent(ctx, SpawnOptions{
		AgentID:    "ag-master1",
		Preset:     claudePreset(),
		PromptBody: "coordinate the swarm",
		TmuxTarget: target,
	})
	if err != nil {
		t.Fatalf("SpawnMasterAgent: %v", err)
	}
	if a.Status != manifest.AgentRunning {
		t.Fatalf("Status = %v, want running", a.Status)
	}
}
