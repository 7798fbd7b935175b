package scheduler

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// appendLog writes one ISO-8601-prefixed line to path, creating its parent
// directory if needed (spec §4.8: "record an ISO-timestamped one-line
// entry in the scheduler log").
func appendLog(path, format string, args ...interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	line := fmt.Sprintf("%s %s\n", time.Now().UTC().Format(time.RFC3339), fmt.Sprintf(format, args...))
	_, err = f.WriteString(line)
	return err
}
