// Package status derives live agent state from multiplexer probes and the
// per-worktree lifecycle that flows from it (spec §4.7). DeriveLifecycle,
// Classify and RefreshAllAgentStatuses are pure functions; Reconcile is the
// one entry point that probes the multiplexer and feeds them the results.
package status

import (
	"context"
	"time"

	"github.com/ppgtool/ppg/internal/manifest"
	"github.com/ppgtool/ppg/internal/mux"
)

// Lifecycle is a worktree's derived, user-facing state.
type Lifecycle string

const (
	LifecycleBusy      Lifecycle = "busy"
	LifecycleReady     Lifecycle = "ready"
	LifecycleAttention Lifecycle = "attention"
	LifecycleEmpty     Lifecycle = "empty"
	LifecycleIdle      Lifecycle = "idle"
	LifecycleMerging   Lifecycle = "merging"
	LifecycleMerged    Lifecycle = "merged"
	LifecycleCleaned   Lifecycle = "cleaned"
)

// DeriveLifecycle applies spec §4.7's first-match-wins rule table. Pure
// function of the worktree's stored status and its agents' statuses.
func DeriveLifecycle(wt *manifest.Worktree) Lifecycle {
	switch wt.Status {
	case manifest.WorktreeMerged:
		return LifecycleMerged
	case manifest.WorktreeCleaned:
		return LifecycleCleaned
	case manifest.WorktreeMerging:
		return LifecycleMerging
	}

	if len(wt.Agents) == 0 {
		return LifecycleEmpty
	}

	anyLive := false
	anyGoodTerminal := false
	anyBad := false
	for _, a := range wt.Agents {
		switch {
		case a.Status.Live():
			anyLive = true
		case a.Status == manifest.AgentFailed || a.Status == manifest.AgentLost:
			anyBad = true
		case a.Status == manifest.AgentIdle || a.Status == manifest.AgentExited || a.Status == manifest.AgentCompleted:
			anyGoodTerminal = true
		}
	}

	switch {
	case anyLive:
		return LifecycleBusy
	case anyGoodTerminal && !anyBad:
		return LifecycleReady
	case anyBad:
		return LifecycleAttention
	default:
		return LifecycleIdle
	}
}

// QuiescenceWindow is how long a pane's captured output must go unchanged
// before checkAgentStatus classifies it as idle rather than running.
const QuiescenceWindow = 5 * time.Second

// Probe is one pane's live state as observed by the multiplexer, keyed by
// agent id.
type Probe struct {
	Target       string
	Dead         bool
	Capture      string
	CapturedAt   time.Time
	PriorCapture string
	PriorAt      time.Time
}

// Classify applies the idle/running heuristic from spec §4.5
// checkAgentStatus: gone if the pane is absent or dead, otherwise idle if
// the captured output hasn't changed within QuiescenceWindow, else
// running. Deterministic given the two capture snapshots and their
// timestamps — never consults wall-clock "now".
func Classify(p Probe, present bool) manifest.AgentStatus {
	if !present || p.Dead {
		return manifest.AgentGone
	}
	if p.Capture == p.PriorCapture && !p.PriorAt.IsZero() && p.CapturedAt.Sub(p.PriorAt) >= QuiescenceWindow {
		return manifest.AgentIdle
	}
	return manifest.AgentRunning
}

// RefreshAllAgentStatuses applies the monotone status rules over m given
// probe results keyed by agent id (spec §4.5 refreshAllAgentStatuses):
// once terminal, an agent's status never regresses; once a probe reports
// gone, the agent never regresses back to running.
func RefreshAllAgentStatuses(m *manifest.Manifest, probed map[string]manifest.AgentStatus) *manifest.Manifest {
	apply := func(a *manifest.Agent) {
		next, ok := probed[a.ID]
		if !ok {
			return
		}
		if a.Status.Terminal() {
			return
		}
		if a.Status == manifest.AgentGone && next != manifest.AgentGone {
			return
		}
		a.Status = next
	}

	for _, wt := range m.Worktrees {
		for _, a := range wt.Agents {
			apply(a)
		}
	}
	for _, a := range m.Agents {
		apply(a)
	}
	return m
}

// Reconcile lists every pane in session with a single ListPanes call,
// captures each live agent pane with CapturePane, classifies each agent,
// and folds the result into m using the monotone rules. prior holds each
// agent's previously captured pane text and capture time so Classify can
// detect quiescence; an agent with no prior entry and a live pane keeps
// its stored status for this round.
func Reconcile(ctx context.Context, m mux.Mux, session string, manifestIn *manifest.Manifest, prior map[string]Probe, now time.Time) (*manifest.Manifest, map[string]Probe, error) {
	panes, err := m.ListPanes(ctx, session)
	if err != nil {
		return nil, nil, err
	}

	probed := make(map[string]manifest.AgentStatus)
	nextPrior := make(map[string]Probe, len(prior))

	classifyOne := func(agentID, target string) {
		if target == "" {
			return
		}
		info, present := panes[target]
		capture := ""
		if present && !info.Dead {
			out, err := m.CapturePane(ctx, target)
			if err == nil {
				capture = out
			}
		}
		p, hadPrior := prior[agentID]
		p.Target = target
		p.Dead = present && info.Dead
		p.PriorCapture = p.Capture
		p.PriorAt = p.CapturedAt
		p.Capture = capture
		p.CapturedAt = now
		nextPrior[agentID] = p
		// With no earlier capture there is nothing to compare against.
		if !hadPrior && present && !info.Dead {
			return
		}
		probed[agentID] = Classify(p, present)
	}

	for _, wt := range manifestIn.Worktrees {
		for id, a := range wt.Agents {
			classifyOne(id, a.TmuxTarget)
		}
	}
	for id, a := range manifestIn.Agents {
		classifyOne(id, a.TmuxTarget)
	}

	return RefreshAllAgentStatuses(manifestIn, probed), nextPrior, nil
}
