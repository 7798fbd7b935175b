package apiserver

import (
	"encoding/json"
	"net/http"

	"github.com/ppgtool/ppg/internal/kerrors"
	"github.com/ppgtool/ppg/internal/kernel"
	"github.com/ppgtool/ppg/internal/worktree"
)

// decode unmarshals the request body into v, reporting a JSON error on the
// response and false if it fails.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGS", "decoding request body: "+err.Error())
		return false
	}
	return true
}

// writeResult maps err to the right HTTP status (via the kernel error
// taxonomy when present) or 200s with result.
func writeResult(w http.ResponseWriter, result interface{}, err error) {
	if err != nil {
		writeKernelError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeKernelError(w http.ResponseWriter, err error) {
	var ke *kerrors.Error
	cur := err
	for cur != nil {
		if e, ok := cur.(*kerrors.Error); ok {
			ke = e
			break
		}
		u, ok := cur.(interface{ Unwrap() error })
		if !ok {
			break
		}
		cur = u.Unwrap()
	}
	if ke == nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	status := http.StatusInternalServerError
	switch ke.Code {
	case kerrors.InvalidArgs:
		status = http.StatusBadRequest
	case kerrors.WorktreeNotFound, kerrors.AgentNotFound, kerrors.PromptNotFound, kerrors.PaneNotFound:
		status = http.StatusNotFound
	case kerrors.WaitTimeout:
		status = http.StatusGatewayTimeout
	case kerrors.ManifestLock, kerrors.SchedulerRunning, kerrors.ServerRunning, kerrors.AgentsRunning:
		status = http.StatusConflict
	}
	writeError(w, status, string(ke.Code), ke.Message)
}

func (s *Server) handleSpawn(w http.ResponseWriter, r *http.Request) {
	var opts worktree.SpawnOptions
	if !decode(w, r, &opts) {
		return
	}
	result, err := s.Kernel.PerformSpawn(r.Context(), opts)
	writeResult(w, result, err)
}

func (s *Server) handleSwarmSpawn(w http.ResponseWriter, r *http.Request) {
	var opts worktree.SwarmSpawnOptions
	if !decode(w, r, &opts) {
		return
	}
	result, err := s.Kernel.PerformSwarmSpawn(r.Context(), opts)
	writeResult(w, result, err)
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	var opts worktree.MergeOptions
	if !decode(w, r, &opts) {
		return
	}
	result, err := s.Kernel.PerformMerge(r.Context(), r.PathValue("worktreeId"), opts)
	writeResult(w, result, err)
}

func (s *Server) handleKill(w http.ResponseWriter, r *http.Request) {
	var opts worktree.KillOptions
	if !decode(w, r, &opts) {
		return
	}
	result, err := s.Kernel.PerformKill(r.Context(), opts)
	writeResult(w, result, err)
}

func (s *Server) handlePr(w http.ResponseWriter, r *http.Request) {
	var opts worktree.PrOptions
	if !decode(w, r, &opts) {
		return
	}
	result, err := s.Kernel.PerformPr(r.Context(), r.PathValue("worktreeId"), opts)
	writeResult(w, result, err)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var opts worktree.ResetOptions
	if !decode(w, r, &opts) {
		return
	}
	result, err := s.Kernel.PerformReset(r.Context(), opts)
	writeResult(w, result, err)
}

func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	var opts worktree.CleanOptions
	if !decode(w, r, &opts) {
		return
	}
	result, err := s.Kernel.PerformClean(r.Context(), opts)
	writeResult(w, result, err)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PromptText string `json:"promptText"`
	}
	if !decode(w, r, &body) {
		return
	}
	result, err := s.Kernel.Restart(r.Context(), kernel.RestartOptions{
		AgentID:    r.PathValue("agentId"),
		PromptText: body.PromptText,
	})
	writeResult(w, result, err)
}

func (s *Server) handleCreateWorktree(w http.ResponseWriter, r *http.Request) {
	var opts kernel.CreateOptions
	if !decode(w, r, &opts) {
		return
	}
	result, err := s.Kernel.CreateWorktree(r.Context(), opts)
	writeResult(w, result, err)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	result, err := s.Kernel.Status(r.Context(), r.PathValue("worktreeId"))
	writeResult(w, result, err)
}

func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	result, err := s.Kernel.Aggregate(r.Context())
	writeResult(w, result, err)
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	result, err := s.Kernel.Diff(r.PathValue("worktreeId"))
	writeResult(w, result, err)
}

func (s *Server) handleWait(w http.ResponseWriter, r *http.Request) {
	var opts kernel.WaitOptions
	if !decode(w, r, &opts) {
		return
	}
	result, err := s.Kernel.Wait(r.Context(), opts)
	writeResult(w, result, err)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
