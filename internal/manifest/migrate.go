package manifest

import (
	"encoding/json"
	"fmt"
)

// migrate decodes a raw manifest JSON object, upgrading legacy on-disk
// shapes before returning the canonical Manifest. Today's on-disk version
// is always CurrentVersion once this returns.
//
// The one legacy shape handled is the older completed/failed status pair
// (spec §9's Open Question): a legacy agent whose status is "completed" is
// normalized to AgentIdle with VoluntaryExit set, so lifecycle derivation
// (which only knows the canonical set) sees a consistent terminal-but-good
// status while display code can still distinguish "finished cleanly" from
// "was stopped".  Legacy "failed" already matches the canonical name and
// needs no rewrite.
func migrate(raw map[string]json.RawMessage) (*Manifest, error) {
	var m Manifest
	full, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(full, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	if m.Worktrees == nil {
		m.Worktrees = map[string]*Worktree{}
	}
	if m.Agents == nil {
		m.Agents = map[string]*Agent{}
	}

	for _, wt := range m.Worktrees {
		if wt.Agents == nil {
			wt.Agents = map[string]*Agent{}
		}
		for _, a := range wt.Agents {
			migrateAgentStatus(a)
		}
	}
	for _, a := range m.Agents {
		migrateAgentStatus(a)
	}

	m.Version = CurrentVersion
	return &m, nil
}

func migrateAgentStatus(a *Agent) {
	if a.Status == AgentCompleted {
		a.Status = AgentIdle
		a.VoluntaryExit = true
	}
}
