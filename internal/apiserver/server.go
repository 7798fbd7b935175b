// Package apiserver is the thin HTTPS operation façade (SPEC_FULL.md
// "HTTPS façade"): it deserializes JSON request bodies into the same
// options structs internal/cli builds, calls the matching internal/kernel
// method, and serializes the result. No third-party HTTP framework is
// wired here — spec.md treats the transport and token-pairing flow as an
// excluded collaborator, so stdlib net/http carries the whole surface, and
// the retrieval pack never surfaces a router dependency either.
package apiserver

import (
	"net/http"

	"github.com/ppgtool/ppg/internal/kernel"
)

// Server wires a Kernel behind a bearer-token-checked HTTP mux.
type Server struct {
	Kernel *kernel.Kernel
	Token  string

	httpServer *http.Server
}

// New builds a Server for k, authenticating requests against token.
func New(k *kernel.Kernel, token string) *Server {
	return &Server{Kernel: k, Token: token}
}

// Handler returns the fully routed, token-checked HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/spawn", s.handleSpawn)
	mux.HandleFunc("POST /v1/swarm", s.handleSwarmSpawn)
	mux.HandleFunc("POST /v1/merge/{worktreeId}", s.handleMerge)
	mux.HandleFunc("POST /v1/kill", s.handleKill)
	mux.HandleFunc("POST /v1/pr/{worktreeId}", s.handlePr)
	mux.HandleFunc("POST /v1/reset", s.handleReset)
	mux.HandleFunc("POST /v1/clean", s.handleClean)
	mux.HandleFunc("POST /v1/restart/{agentId}", s.handleRestart)
	mux.HandleFunc("POST /v1/worktrees", s.handleCreateWorktree)
	mux.HandleFunc("GET /v1/status/{worktreeId}", s.handleStatus)
	mux.HandleFunc("GET /v1/aggregate", s.handleAggregate)
	mux.HandleFunc("GET /v1/diff/{worktreeId}", s.handleDiff)
	mux.HandleFunc("POST /v1/wait", s.handleWait)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	return s.withAuth(mux)
}

// ListenAndServe blocks serving Handler on addr until the server is
// shut down or a fatal error occurs.
func (s *Server) ListenAndServe(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.Handler()}
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
