// Package kernel implements the Operation API (spec §4.9): the single
// entry point every external caller — CLI, HTTPS façade, scheduler —
// drives the orchestration kernel through. Each method takes an options
// struct and returns (Result, error). Classified failures carry a
// *kerrors.Error in the error chain, possibly wrapped; some config, I/O and
// subprocess failures are returned without one.
package kernel

import (
	"fmt"
	"path/filepath"

	"github.com/ppgtool/ppg/internal/agent"
	"github.com/ppgtool/ppg/internal/config"
	"github.com/ppgtool/ppg/internal/gitw"
	"github.com/ppgtool/ppg/internal/ids"
	"github.com/ppgtool/ppg/internal/kerrors"
	"github.com/ppgtool/ppg/internal/manifest"
	"github.com/ppgtool/ppg/internal/mux"
	"github.com/ppgtool/ppg/internal/worktree"
)

// Kernel holds every resolved dependency an operation needs, bound to one
// project root.
type Kernel struct {
	ProjectRoot string
	Paths       ids.Paths
	Config      *config.Config
	Store       *manifest.Store
	Mux         mux.Mux
	Agents      *agent.Engine
	Worktree    *worktree.Engine
}

// New bootstraps a Kernel against the real tmux binary and the project's
// on-disk config, failing with NOT_GIT_REPO when projectRoot is not a git
// repository and TMUX_NOT_FOUND when tmux is not on PATH, before any side
// effect. It does not check that the project is initialized; the manifest
// store reports NOT_INITIALIZED on its first read.
func New(projectRoot string) (*Kernel, error) {
	if !gitw.New(projectRoot).IsRepo() {
		return nil, kerrors.New(kerrors.NotGitRepo, fmt.Sprintf("%s is not a git repository", projectRoot))
	}

	paths := ids.NewPaths(projectRoot)
	cfg, err := config.Load(paths.ConfigPath(), "ppg-"+filepath.Base(projectRoot))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	tm, err := mux.NewTmux()
	if err != nil {
		return nil, kerrors.Wrap(kerrors.TmuxNotFound, "tmux is required", err)
	}

	store := manifest.NewStore(projectRoot)
	agents := agent.New(tm, paths)
	wt := worktree.New(store, paths, tm, agents, cfg)

	return &Kernel{
		ProjectRoot: projectRoot,
		Paths:       paths,
		Config:      cfg,
		Store:       store,
		Mux:         tm,
		Agents:      agents,
		Worktree:    wt,
	}, nil
}

// sessionName returns the mux session every reconciliation and
// self-protection check probes.
func (k *Kernel) sessionName() string {
	if k.Config != nil && k.Config.SessionName != "" {
		return k.Config.SessionName
	}
	return "ppg"
}
