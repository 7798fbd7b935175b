// Package worktree implements the Worktree Lifecycle Engine (spec §4.6):
// creating and adopting git worktrees, provisioning their environment, and
// the plan-then-apply orchestrations (spawn, merge, cleanup, reset, kill,
// pr) built on top of internal/gitw, internal/mux, and internal/agent.
package worktree

import (
	"github.com/ppgtool/ppg/internal/agent"
	"github.com/ppgtool/ppg/internal/config"
	"github.com/ppgtool/ppg/internal/ghcli"
	"github.com/ppgtool/ppg/internal/gitw"
	"github.com/ppgtool/ppg/internal/ids"
	"github.com/ppgtool/ppg/internal/manifest"
	"github.com/ppgtool/ppg/internal/mux"
)

// Engine drives worktree orchestration for a single project.
type Engine struct {
	Store  *manifest.Store
	Paths  ids.Paths
	Mux    mux.Mux
	Agents *agent.Engine
	Config *config.Config

	// Git and GH are factories so tests can substitute fakes; production
	// callers leave them nil and New fills in the real subprocess wrappers.
	Git func(workDir string) *gitw.Git
	GH  func(workDir string) *ghcli.Client
}

// New returns an Engine wired to the real git and gh subprocess wrappers.
func New(store *manifest.Store, paths ids.Paths, m mux.Mux, agents *agent.Engine, cfg *config.Config) *Engine {
	return &Engine{
		Store:  store,
		Paths:  paths,
		Mux:    m,
		Agents: agents,
		Config: cfg,
		Git:    gitw.New,
		GH:     ghcli.New,
	}
}

func (e *Engine) git(workDir string) *gitw.Git {
	if e.Git != nil {
		return e.Git(workDir)
	}
	return gitw.New(workDir)
}

func (e *Engine) gh(workDir string) *ghcli.Client {
	if e.GH != nil {
		return e.GH(workDir)
	}
	return ghcli.New(workDir)
}
