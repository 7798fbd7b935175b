// Package cli provides the cobra command tree that drives internal/kernel.
package cli

import (
	"os"
	"sync"
)

var (
	name     string
	nameOnce sync.Once
)

// Name returns the ppg CLI command name. Defaults to "ppg", but can be
// overridden with PPG_COMMAND so the binary can be invoked under an alias.
func Name() string {
	nameOnce.Do(func() {
		name = os.Getenv("PPG_COMMAND")
		if name == "" {
			name = "ppg"
		}
	})
	return name
}
