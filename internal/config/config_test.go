package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "config.toml"), "demo")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SessionName != "demo" {
		t.Fatalf("SessionName = %q, want demo", cfg.SessionName)
	}
	if cfg.DefaultAgent != "claude" {
		t.Fatalf("DefaultAgent = %q, want claude", cfg.DefaultAgent)
	}
	if !cfg.SymlinkNodeModules {
		t.Fatal("SymlinkNodeModules should default true")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
session_name = "custom"
default_agent = "gemini"
symlink_node_modules = false

[agents.claude]
command = "claude"
interactive = true
`
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, "demo")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SessionName != "custom" {
		t.Fatalf("SessionName = %q, want custom", cfg.SessionName)
	}
	if cfg.DefaultAgent != "gemini" {
		t.Fatalf("DefaultAgent = %q, want gemini", cfg.DefaultAgent)
	}
	if cfg.SymlinkNodeModules {
		t.Fatal("SymlinkNodeModules should be false when explicitly set")
	}
	if _, ok := cfg.Preset("gemini"); !ok {
		t.Fatal("gemini preset should still fall back to built-in default")
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	cfg := Default("roundtrip")
	cfg.DefaultAgent = "codex"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path, "ignored")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.SessionName != "roundtrip" || loaded.DefaultAgent != "codex" {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
}

func TestPresetFallsBackToBuiltin(t *testing.T) {
	cfg := &Config{}
	p, ok := cfg.Preset("claude")
	if !ok {
		t.Fatal("expected built-in claude preset")
	}
	if p.Command != "claude" {
		t.Fatalf("Command = %q, want claude", p.Command)
	}
}

func TestScheduleFileValidateRejectsBothTargets(t *testing.T) {
	f := &ScheduleFile{Schedules: []ScheduleEntry{
		{Name: "nightly", Cron: "*/1 * * * *", Swarm: "s", Prompt: "p"},
	}}
	if err := f.Validate(); err == nil {
		t.Fatal("expected error for mutually exclusive swarm+prompt")
	}
}

func TestScheduleFileValidateRejectsNeitherTarget(t *testing.T) {
	f := &ScheduleFile{Schedules: []ScheduleEntry{
		{Name: "nightly", Cron: "*/1 * * * *"},
	}}
	if err := f.Validate(); err == nil {
		t.Fatal("expected error when neither swarm nor prompt is set")
	}
}

func TestScheduleFileValidateRejectsDuplicateNames(t *testing.T) {
	f := &ScheduleFile{Schedules: []ScheduleEntry{
		{Name: "nightly", Cron: "*/1 * * * *", Prompt: "p"},
		{Name: "nightly", Cron: "*/2 * * * *", Prompt: "q"},
	}}
	if err := f.Validate(); err == nil {
		t.Fatal("expected error for duplicate entry name")
	}
}

func TestScheduleFileRoundTripPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schedules.yaml")
	f := &ScheduleFile{Schedules: []ScheduleEntry{
		{Name: "b", Cron: "0 9 * * *", Prompt: "p1"},
		{Name: "a", Cron: "0 10 * * *", Swarm: "s1"},
	}}
	if err := SaveScheduleFile(path, f); err != nil {
		t.Fatalf("SaveScheduleFile: %v", err)
	}

	loaded, err := LoadScheduleFile(path)
	if err != nil {
		t.Fatalf("LoadScheduleFile: %v", err)
	}
	if len(loaded.Schedules) != 2 || loaded.Schedules[0].Name != "b" || loaded.Schedules[1].Name != "a" {
		t.Fatalf("order not preserved: %+v", loaded.Schedules)
	}
}

func TestScheduleFileUpsertAndRemove(t *testing.T) {
	f := &ScheduleFile{Schedules: []ScheduleEntry{
		{Name: "a", Cron: "0 9 * * *", Prompt: "p"},
	}}
	f2 := f.UpsertEntry(ScheduleEntry{Name: "b", Cron: "0 10 * * *", Prompt: "q"})
	if len(f2.Schedules) != 2 {
		t.Fatalf("len = %d, want 2", len(f2.Schedules))
	}

	f3, removed := f2.RemoveEntry("a")
	if !removed {
		t.Fatal("expected entry a to be removed")
	}
	if len(f3.Schedules) != 1 || f3.Schedules[0].Name != "b" {
		t.Fatalf("unexpected entries after remove: %+v", f3.Schedules)
	}
}

func TestLoadMissingScheduleFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	f, err := LoadScheduleFile(filepath.Join(dir, "schedules.yaml"))
	if err != nil {
		t.Fatalf("LoadScheduleFile: %v", err)
	}
	if len(f.Schedules) != 0 {
		t.Fatalf("expected empty schedule file, got %+v", f.Schedules)
	}
}

func TestSwarmFileValidateRejectsMissingPromptSource(t *testing.T) {
	f := &SwarmFile{Members: []SwarmMember{{Name: "a", Branch: "feature/a"}}}
	if err := f.Validate(); err == nil {
		t.Fatal("expected error for missing prompt source")
	}
}

func TestSwarmFileValidateRejectsNonSharedWithoutBranch(t *testing.T) {
	f := &SwarmFile{Members: []SwarmMember{{Name: "a", Prompt: "x"}}}
	if err := f.Validate(); err == nil {
		t.Fatal("expected error for member with no branch mode")
	}
}

func TestSwarmFileValidateAllowsSharedWithoutBranch(t *testing.T) {
	f := &SwarmFile{Members: []SwarmMember{
		{Name: "lead", Branch: "feature/swarm", Prompt: "lead work"},
		{Name: "helper", Shared: true, Prompt: "helper work"},
	}}
	if err := f.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadSwarmFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "review.yaml")
	data := "name: review\nmembers:\n  - name: lead\n    branch: feature/review\n    prompt: do the review\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	f, err := LoadSwarmFile(path)
	if err != nil {
		t.Fatalf("LoadSwarmFile: %v", err)
	}
	if f.Name != "review" || len(f.Members) != 1 || f.Members[0].Branch != "feature/review" {
		t.Fatalf("unexpected swarm file: %+v", f)
	}
}
