package worktree

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppgtool/ppg/internal/config"
	"github.com/ppgtool/ppg/internal/ids"
	"github.com/ppgtool/ppg/internal/kerrors"
	"github.com/ppgtool/ppg/internal/prompt"
)

// SwarmSpawnOptions configures PerformSwarmSpawn.
type SwarmSpawnOptions struct {
	ProjectRoot string
	SessionName string
	Name        string
	Vars        map[string]string
}

// SwarmSpawnResult collects one SpawnResult per member, in template order.
type SwarmSpawnResult struct {
	Members []*SpawnResult
}

// resolveSwarmFile looks up name.yaml project-scope first, then
// user-global, mirroring prompt.resolveNamedTemplate's search order.
func (e *Engine) resolveSwarmFile(name string) (*config.SwarmFile, error) {
	candidates := []string{
		filepath.Join(e.Paths.SwarmsDir(), name+".yaml"),
		filepath.Join(ids.GlobalSwarmsDir(), name+".yaml"),
	}
	for _, path := range candidates {
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		return config.LoadSwarmFile(path)
	}
	return nil, kerrors.New(kerrors.PromptNotFound, fmt.Sprintf("swarm template %q not found in project or global swarms dir", name))
}

// PerformSwarmSpawn spawns every member of a named swarm template. Members
// marked Shared join the first non-shared member's worktree as additional
// agents; all others each get their own isolated worktree (spec.md
// glossary: "Swarm ... shared or isolated worktrees").
func (e *Engine) PerformSwarmSpawn(ctx context.Context, opts SwarmSpawnOptions) (*SwarmSpawnResult, error) {
	swarm, err := e.resolveSwarmFile(opts.Name)
	if err != nil {
		return nil, err
	}

	result := &SwarmSpawnResult{}
	var sharedWorktreeID string

	for _, member := range swarm.Members {
		vars := mergeVars(opts.Vars, member.Vars)

		spawnOpts := SpawnOptions{
			ProjectRoot:     opts.ProjectRoot,
			SessionName:     opts.SessionName,
			Name:            member.Name,
			AgentPresetName: member.AgentPreset,
			Vars:            vars,
			Prompt: prompt.Source{
				Prompt:   member.Prompt,
				File:     member.PromptFile,
				Template: member.Template,
			},
		}

		if member.Shared {
			if sharedWorktreeID == "" {
				return nil, kerrors.New(kerrors.InvalidArgs, fmt.Sprintf("swarm member %q is shared but no worktree has been created yet", member.Name))
			}
			spawnOpts.AttachWorktreeID = sharedWorktreeID
		} else {
			spawnOpts.Branch = member.Branch
			spawnOpts.AdoptBranch = member.AdoptBranch
		}

		spawned, err := e.PerformSpawn(ctx, spawnOpts)
		if spawned != nil {
			result.Members = append(result.Members, spawned)
			if sharedWorktreeID == "" {
				sharedWorktreeID = spawned.WorktreeID
			}
		}
		if err != nil {
			return result, err
		}
	}

	return result, nil
}

func mergeVars(base, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	merged := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}
