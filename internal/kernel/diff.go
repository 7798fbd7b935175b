package kernel

import (
	"fmt"

	"github.com/ppgtool/ppg/internal/gitw"
	"github.com/ppgtool/ppg/internal/kerrors"
)

// Diff returns the per-file line-count summary between a worktree's base
// branch and its own branch, run from the main project checkout since both
// branches share one set of refs (spec §4.9's supplemented `diff`
// operation; see SPEC_FULL.md).
func (k *Kernel) Diff(worktreeID string) ([]gitw.DiffStat, error) {
	m, err := k.Store.Read()
	if err != nil {
		return nil, err
	}
	wt, ok := m.Worktrees[worktreeID]
	if !ok {
		return nil, kerrors.New(kerrors.WorktreeNotFound, fmt.Sprintf("worktree %q not found", worktreeID))
	}
	return gitw.New(k.ProjectRoot).DiffNumstat(wt.BaseBranch, wt.Branch)
}
