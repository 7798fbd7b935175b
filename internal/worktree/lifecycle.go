package worktree

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppgtool/ppg/internal/config"
)

// CreateWorktree runs `git worktree add -b branch path base` rooted at
// projectRoot and returns the absolute worktree path (spec §4.6
// createWorktree).
func (e *Engine) CreateWorktree(projectRoot, id, branch, base string) (string, error) {
	path := filepath.Join(e.Paths.WorktreesParentDir(), id)
	if err := os.MkdirAll(e.Paths.WorktreesParentDir(), 0755); err != nil {
		return "", fmt.Errorf("creating worktrees parent dir: %w", err)
	}
	if err := e.git(projectRoot).WorktreeAddFromRef(path, branch, base); err != nil {
		return "", err
	}
	return path, nil
}

// AdoptWorktree attaches a worktree at a fresh path to an already-existing
// branch (spec §4.6 adoptWorktree).
func (e *Engine) AdoptWorktree(projectRoot, id, branch string) (string, error) {
	path := filepath.Join(e.Paths.WorktreesParentDir(), id)
	if err := os.MkdirAll(e.Paths.WorktreesParentDir(), 0755); err != nil {
		return "", fmt.Errorf("creating worktrees parent dir: %w", err)
	}
	if err := e.git(projectRoot).WorktreeAddExisting(path, branch); err != nil {
		return "", err
	}
	return path, nil
}

// SetupWorktreeEnv copies each configured env file from projectRoot into
// wtPath if present (missing files are not fatal), and symlinks
// node_modules when cfg.SymlinkNodeModules is set (spec §4.6
// setupWorktreeEnv).
func (e *Engine) SetupWorktreeEnv(projectRoot, wtPath string, cfg *config.Config) error {
	for _, name := range cfg.EnvFiles {
		src := filepath.Join(projectRoot, name)
		data, err := os.ReadFile(src)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("reading env file %s: %w", name, err)
		}
		dst := filepath.Join(wtPath, name)
		if err := os.WriteFile(dst, data, 0644); err != nil {
			return fmt.Errorf("writing env file %s into worktree: %w", name, err)
		}
	}

	if cfg.SymlinkNodeModules {
		src := filepath.Join(projectRoot, "node_modules")
		if info, err := os.Stat(src); err == nil && info.IsDir() {
			dst := filepath.Join(wtPath, "node_modules")
			if _, err := os.Lstat(dst); os.IsNotExist(err) {
				if err := os.Symlink(src, dst); err != nil {
					return fmt.Errorf("symlinking node_modules into worktree: %w", err)
				}
			}
		}
	}
	return nil
}

// PruneWorktrees calls `git worktree prune` rooted at projectRoot (spec
// §4.6 pruneWorktrees).
func (e *Engine) PruneWorktrees(projectRoot string) error {
	return e.git(projectRoot).WorktreePrune()
}
