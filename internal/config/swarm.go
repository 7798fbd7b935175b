package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SwarmMember is one agent spawn within a swarm template. Exactly one of
// Branch or AdoptBranch selects how its worktree is obtained, unless
// Shared is set, in which case it joins the worktree of the first member
// spawned instead of creating its own (spec.md glossary:
// "Swarm: a template describing one or more agent spawns with shared or
// isolated worktrees").
type SwarmMember struct {
	Name        string            `yaml:"name"`
	Branch      string            `yaml:"branch,omitempty"`
	AdoptBranch string            `yaml:"adoptBranch,omitempty"`
	Shared      bool              `yaml:"shared,omitempty"`
	AgentPreset string            `yaml:"agentPreset,omitempty"`
	Prompt      string            `yaml:"prompt,omitempty"`
	PromptFile  string            `yaml:"promptFile,omitempty"`
	Template    string            `yaml:"template,omitempty"`
	Vars        map[string]string `yaml:"vars,omitempty"`
}

// SwarmFile is a named template of agent spawns, loaded from
// <name>.yaml under a project's or the global swarms directory.
type SwarmFile struct {
	Name    string        `yaml:"name"`
	Members []SwarmMember `yaml:"members"`
}

func (m SwarmMember) promptCount() int {
	n := 0
	if m.Prompt != "" {
		n++
	}
	if m.PromptFile != "" {
		n++
	}
	if m.Template != "" {
		n++
	}
	return n
}

// Validate checks the invariants a swarm template must hold before any
// member is spawned: unique member names, exactly one prompt source per
// member, non-shared members must pick a branch mode, and no member sets
// both branch and adoptBranch.
func (f *SwarmFile) Validate() error {
	seen := make(map[string]bool, len(f.Members))
	for _, mem := range f.Members {
		if mem.Name == "" {
			return fmt.Errorf("swarm member missing a name")
		}
		if seen[mem.Name] {
			return fmt.Errorf("duplicate swarm member name %q", mem.Name)
		}
		seen[mem.Name] = true
		if mem.promptCount() != 1 {
			return fmt.Errorf("swarm member %q must set exactly one of prompt, promptFile, or template", mem.Name)
		}
		if !mem.Shared && mem.Branch == "" && mem.AdoptBranch == "" {
			return fmt.Errorf("swarm member %q must set branch or adoptBranch unless shared", mem.Name)
		}
		if mem.Branch != "" && mem.AdoptBranch != "" {
			return fmt.Errorf("swarm member %q must set only one of branch or adoptBranch", mem.Name)
		}
	}
	return nil
}

// LoadSwarmFile reads and validates a swarm template from path.
func LoadSwarmFile(path string) (*SwarmFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading swarm file %s: %w", path, err)
	}
	var f SwarmFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing swarm file %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}
