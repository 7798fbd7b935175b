package worktree

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppgtool/ppg/internal/ghcli"
	"github.com/ppgtool/ppg/internal/kerrors"
	"github.com/ppgtool/ppg/internal/manifest"
)

// prBodyMaxLen is the body size gh pr create tolerates before this
// implementation truncates and appends a marker (spec §4.6 performPr).
const prBodyMaxLen = 60000

const prTruncationMarker = "\n\n...(truncated)"

// PrOptions configures PerformPr.
type PrOptions struct {
	ProjectRoot string
	Title       string
	Body        string
	Draft       bool
}

// PrResult is what PerformPr returns on success.
type PrResult struct {
	URL string
}

// PerformPr pushes the worktree's branch and opens (or recovers an
// already-open) pull request against its base branch, assembling a
// default body from each agent's result file when Body is empty (spec
// §4.6 performPr).
func (e *Engine) PerformPr(ctx context.Context, worktreeID string, opts PrOptions) (*PrResult, error) {
	if !ghcli.Available() {
		return nil, kerrors.New(kerrors.GHNotFound, "gh is not installed or not on PATH")
	}

	m, err := e.Store.Read()
	if err != nil {
		return nil, err
	}
	wt, ok := m.Worktrees[worktreeID]
	if !ok {
		return nil, kerrors.New(kerrors.WorktreeNotFound, fmt.Sprintf("worktree %q not found", worktreeID))
	}

	wtGit := e.git(wt.Path)
	if err := wtGit.Push("origin", wt.Branch, false); err != nil {
		return nil, fmt.Errorf("pushing branch %s: %w", wt.Branch, err)
	}

	title := opts.Title
	if title == "" {
		title = wt.Name
	}
	body := opts.Body
	if body == "" {
		body = e.assembleDefaultBody(wt)
	}

	url, err := e.gh(wt.Path).CreatePR(ghcli.CreatePROptions{
		Head:  wt.Branch,
		Base:  wt.BaseBranch,
		Title: title,
		Body:  body,
		Draft: opts.Draft,
	})
	if err != nil {
		return nil, err
	}

	if _, err := e.Store.Update(ctx, func(m *manifest.Manifest) (*manifest.Manifest, error) {
		w, ok := m.Worktrees[worktreeID]
		if !ok {
			return m, nil
		}
		w.PrURL = url
		return m, nil
	}); err != nil {
		return nil, err
	}

	return &PrResult{URL: url}, nil
}

func (e *Engine) assembleDefaultBody(wt *manifest.Worktree) string {
	var parts []string
	for _, a := range wt.Agents {
		if a.ResultFile == "" {
			continue
		}
		data, err := os.ReadFile(a.ResultFile)
		if err != nil {
			continue
		}
		parts = append(parts, strings.TrimSpace(string(data)))
	}
	body := strings.Join(parts, "\n\n---\n\n")
	if len(body) > prBodyMaxLen {
		body = body[:prBodyMaxLen] + prTruncationMarker
	}
	return body
}
