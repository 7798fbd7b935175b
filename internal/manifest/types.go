// Package manifest implements the durable data model (spec §3) and its
// sole mutation primitive, Store.Update, guarded by a cross-process
// advisory lock.
package manifest

import "time"

// CurrentVersion is the manifest schema version this build writes.
const CurrentVersion = 1

// WorktreeStatus is the persisted worktree lifecycle status.
type WorktreeStatus string

const (
	WorktreeActive   WorktreeStatus = "active"
	WorktreeMerging  WorktreeStatus = "merging"
	WorktreeMerged   WorktreeStatus = "merged"
	WorktreeFailed   WorktreeStatus = "failed"
	WorktreeCleaned  WorktreeStatus = "cleaned"
)

// AgentStatus is the canonical agent status set (spec §9: the newer set —
// idle/exited/gone replacing the legacy completed/failed split — is the one
// this implementation persists; Store.Update migrates legacy records on
// read, see migrate.go).
type AgentStatus string

const (
	AgentSpawning  AgentStatus = "spawning"
	AgentRunning   AgentStatus = "running"
	AgentWaiting   AgentStatus = "waiting"
	AgentIdle      AgentStatus = "idle"
	AgentExited    AgentStatus = "exited"
	AgentGone      AgentStatus = "gone"
	AgentCompleted AgentStatus = "completed"
	AgentFailed    AgentStatus = "failed"
	AgentKilled    AgentStatus = "killed"
	AgentLost      AgentStatus = "lost"
)

// Terminal reports whether a status is one of the monotone terminal states
// (spec invariant A3 / §8 agent monotonicity).
func (s AgentStatus) Terminal() bool {
	switch s {
	case AgentExited, AgentGone, AgentCompleted, AgentFailed, AgentKilled, AgentLost:
		return true
	default:
		return false
	}
}

// Live reports whether a status is one the self-protection and
// "AGENTS_RUNNING" checks treat as an active, not-yet-terminal agent.
func (s AgentStatus) Live() bool {
	switch s {
	case AgentSpawning, AgentRunning, AgentWaiting:
		return true
	default:
		return false
	}
}

// Manifest is the singleton per-project durable record (spec §3, §6).
type Manifest struct {
	Version     int                  `json:"version"`
	ProjectRoot string               `json:"projectRoot"`
	SessionName string               `json:"sessionName"`
	Worktrees   map[string]*Worktree `json:"worktrees"`
	// Agents holds master agents: agents owned directly by the manifest,
	// not tied to any worktree (spec §3 invariant A2, §4.5 spawnMasterAgent).
	Agents    map[string]*Agent `json:"agents,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// New returns a freshly initialized Manifest for projectRoot, as produced by
// the "init" operation.
func New(projectRoot, sessionName string) *Manifest {
	now := time.Now()
	return &Manifest{
		Version:     CurrentVersion,
		ProjectRoot: projectRoot,
		SessionName: sessionName,
		Worktrees:   map[string]*Worktree{},
		Agents:      map[string]*Agent{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Clone returns a deep copy, suitable as the value passed to an Update
// callback so the callback may mutate in place without aliasing the
// store's last-read snapshot.
func (m *Manifest) Clone() *Manifest {
	if m == nil {
		return nil
	}
	c := *m
	c.Worktrees = make(map[string]*Worktree, len(m.Worktrees))
	for id, wt := range m.Worktrees {
		c.Worktrees[id] = wt.clone()
	}
	c.Agents = make(map[string]*Agent, len(m.Agents))
	for id, a := range m.Agents {
		cp := *a
		c.Agents[id] = &cp
	}
	return &c
}

// Worktree is a secondary working directory on an isolated branch (spec §3).
type Worktree struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Path       string         `json:"path"`
	Branch     string         `json:"branch"`
	BaseBranch string         `json:"baseBranch"`
	Status     WorktreeStatus `json:"status"`
	TmuxWindow string         `json:"tmuxWindow,omitempty"`
	Agents     map[string]*Agent `json:"agents"`
	CreatedAt  time.Time      `json:"createdAt"`
	MergedAt   *time.Time     `json:"mergedAt,omitempty"`
	PrURL      string         `json:"prUrl,omitempty"`
}

func (w *Worktree) clone() *Worktree {
	if w == nil {
		return nil
	}
	c := *w
	c.Agents = make(map[string]*Agent, len(w.Agents))
	for id, a := range w.Agents {
		cp := *a
		c.Agents[id] = &cp
	}
	if w.MergedAt != nil {
		t := *w.MergedAt
		c.MergedAt = &t
	}
	return &c
}

// LiveAgents reports whether any agent in the worktree is in a live status.
func (w *Worktree) LiveAgents() bool {
	for _, a := range w.Agents {
		if a.Status.Live() {
			return true
		}
	}
	return false
}

// Agent is a long-lived interactive program started inside a mux pane
// (spec §3).
type Agent struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	AgentType    string      `json:"agentType"`
	Status       AgentStatus `json:"status"`
	TmuxTarget   string      `json:"tmuxTarget"`
	Prompt       string      `json:"prompt"`
	ResultFile   string      `json:"resultFile,omitempty"`
	StartedAt    time.Time   `json:"startedAt"`
	CompletedAt  *time.Time  `json:"completedAt,omitempty"`
	ExitCode     *int        `json:"exitCode,omitempty"`
	Error        string      `json:"error,omitempty"`
	SessionID    string      `json:"sessionId,omitempty"`
	// VoluntaryExit is display-only metadata recovered by the legacy
	// status migration (spec §9 Open Question); no invariant depends on it.
	VoluntaryExit bool `json:"voluntaryExit,omitempty"`
}
