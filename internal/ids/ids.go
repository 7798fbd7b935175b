// Package ids generates opaque worktree/agent/session identifiers and
// resolves the canonical on-disk layout under a project root. Nothing here
// performs I/O beyond crypto/rand; path resolution is a pure function of
// projectRoot and (for global paths) $HOME.
package ids

import (
	"crypto/rand"

	"github.com/google/uuid"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// randomAlnum returns n lowercase alphanumeric characters drawn from a
// cryptographically strong source. Collision probability across a single
// machine's lifetime is negligible at the lengths callers use (6, 8).
func randomAlnum(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand.Read on a supported platform does not fail; a
		// failure here indicates a broken OS entropy source, which no
		// caller can usefully recover from.
		panic("ids: crypto/rand unavailable: " + err.Error())
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(out)
}

// NewWorktreeID returns an opaque worktree id of the form "wt-xxxxxx".
func NewWorktreeID() string {
	return "wt-" + randomAlnum(6)
}

// NewAgentID returns an opaque agent id of the form "ag-xxxxxxxx".
func NewAgentID() string {
	return "ag-" + randomAlnum(8)
}

// NewSessionID returns an opaque RFC 4122 v4 UUID used only to let a later
// resume find an existing agent's conversation state.
func NewSessionID() string {
	return uuid.NewString()
}
