package ids

import (
	"os"
	"path/filepath"
)

// stateDirName is the directory, relative to a project root, that holds all
// ppg-owned state for that project.
const stateDirName = ".ppg"

// Paths resolves the canonical location of every file or directory the
// kernel reads or writes for a single project. It is a pure function of
// projectRoot — the global-scope directories under $HOME are package
// functions rather than methods — and it never
// creates directories or touches the filesystem itself; callers that need a
// directory to exist call os.MkdirAll on the returned path.
type Paths struct {
	projectRoot string
}

// NewPaths returns a Paths rooted at the given absolute project root.
func NewPaths(projectRoot string) Paths {
	return Paths{projectRoot: projectRoot}
}

// ProjectRoot returns the root this Paths was built from.
func (p Paths) ProjectRoot() string { return p.projectRoot }

func (p Paths) stateDir() string {
	return filepath.Join(p.projectRoot, stateDirName)
}

// ManifestPath is the location of the single JSON manifest.
func (p Paths) ManifestPath() string {
	return filepath.Join(p.stateDir(), "manifest.json")
}

// LockPath is the advisory lock file adjacent to the manifest.
func (p Paths) LockPath() string {
	return p.ManifestPath() + ".lock"
}

// ConfigPath is the project's TOML configuration file.
func (p Paths) ConfigPath() string {
	return filepath.Join(p.stateDir(), "config.toml")
}

// ScheduleFilePath is the YAML schedule file.
func (p Paths) ScheduleFilePath() string {
	return filepath.Join(p.stateDir(), "schedules.yaml")
}

// LogsDir is the directory holding scheduler and other operational logs.
func (p Paths) LogsDir() string {
	return filepath.Join(p.stateDir(), "logs")
}

// SchedulerLogPath is the scheduler daemon's append-only log file.
func (p Paths) SchedulerLogPath() string {
	return filepath.Join(p.LogsDir(), "cron.log")
}

// SchedulerPIDPath holds the scheduler daemon's PID for singleton enforcement.
func (p Paths) SchedulerPIDPath() string {
	return filepath.Join(p.stateDir(), "cron.pid")
}

// ResultsDir is the directory holding per-agent result files.
func (p Paths) ResultsDir() string {
	return filepath.Join(p.stateDir(), "results")
}

// ResultFile is the result file path for a specific agent.
func (p Paths) ResultFile(agentID string) string {
	return filepath.Join(p.ResultsDir(), agentID+".md")
}

// PromptArchiveDir is the directory holding archived rendered prompts.
func (p Paths) PromptArchiveDir() string {
	return filepath.Join(p.stateDir(), "agent-prompts")
}

// PromptArchive is the archived rendered-prompt path for a specific agent.
// restartAgent reads this back to recover the original prompt.
func (p Paths) PromptArchive(agentID string) string {
	return filepath.Join(p.PromptArchiveDir(), agentID+".md")
}

// WorktreesParentDir is the default parent directory for created worktrees.
func (p Paths) WorktreesParentDir() string {
	return filepath.Join(p.projectRoot, ".worktrees")
}

// ProjectPromptsDir is the project-scoped prompt template directory.
func (p Paths) ProjectPromptsDir() string {
	return filepath.Join(p.stateDir(), "prompts")
}

// SwarmsDir is the project-scoped swarm template directory.
func (p Paths) SwarmsDir() string {
	return filepath.Join(p.stateDir(), "swarms")
}

// APITokenPath is the static bearer token file for the HTTPS façade.
func (p Paths) APITokenPath() string {
	return filepath.Join(p.stateDir(), "api-token")
}

// ServerLogPath is the HTTPS façade daemon's append-only log file.
func (p Paths) ServerLogPath() string {
	return filepath.Join(p.LogsDir(), "server.log")
}

// ServerPIDPath holds the HTTPS façade daemon's PID for singleton enforcement.
func (p Paths) ServerPIDPath() string {
	return filepath.Join(p.stateDir(), "server.pid")
}

// GlobalPromptsDir is the user-wide fallback prompt template directory,
// consulted when a name is not found under ProjectPromptsDir.
func GlobalPromptsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".ppg", "prompts")
	}
	return filepath.Join(home, ".ppg", "prompts")
}

// GlobalSwarmsDir is the user-wide fallback swarm template directory.
func GlobalSwarmsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".ppg", "swarms")
	}
	return filepath.Join(home, ".ppg", "swarms")
}
