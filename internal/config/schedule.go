package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// ScheduleEntry is one declarative job in schedules.yaml (spec §3
// "Schedule Entry"). Exactly one of Swarm or Prompt must be set.
type ScheduleEntry struct {
	Name   string            `yaml:"name"`
	Cron   string            `yaml:"cron"`
	Swarm  string            `yaml:"swarm,omitempty"`
	Prompt string            `yaml:"prompt,omitempty"`
	Vars   map[string]string `yaml:"vars,omitempty"`
}

// ScheduleFile is the top-level document at schedules.yaml: a single key,
// schedules, holding an edit-order-preserving list of entries.
type ScheduleFile struct {
	Schedules []ScheduleEntry `yaml:"schedules"`
}

var entryNameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Validate checks every invariant spec §3 places on a Schedule Entry:
// name shape and uniqueness, and swarm/prompt mutual exclusivity.
func (f *ScheduleFile) Validate() error {
	seen := make(map[string]bool, len(f.Schedules))
	for _, e := range f.Schedules {
		if !entryNameRe.MatchString(e.Name) {
			return fmt.Errorf("schedule entry name %q is not [A-Za-z0-9_-]+", e.Name)
		}
		if seen[e.Name] {
			return fmt.Errorf("duplicate schedule entry name %q", e.Name)
		}
		seen[e.Name] = true
		if (e.Swarm == "") == (e.Prompt == "") {
			return fmt.Errorf("schedule entry %q must set exactly one of swarm or prompt", e.Name)
		}
		if e.Cron == "" {
			return fmt.Errorf("schedule entry %q missing cron expression", e.Name)
		}
	}
	return nil
}

// LoadScheduleFile reads schedules.yaml at path. A missing file yields an
// empty ScheduleFile rather than an error, since a project may never have
// scheduled anything.
func LoadScheduleFile(path string) (*ScheduleFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ScheduleFile{}, nil
		}
		return nil, fmt.Errorf("reading schedule file: %w", err)
	}
	var f ScheduleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing schedule file %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schedule file %s: %w", path, err)
	}
	return &f, nil
}

// SaveScheduleFile writes f to path as YAML, preserving list order.
func SaveScheduleFile(path string, f *ScheduleFile) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating schedule dir: %w", err)
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding schedule file: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// RemoveEntry returns a copy of f's list with the named entry removed, and
// whether an entry was actually found and removed.
func (f *ScheduleFile) RemoveEntry(name string) (*ScheduleFile, bool) {
	out := make([]ScheduleEntry, 0, len(f.Schedules))
	removed := false
	for _, e := range f.Schedules {
		if e.Name == name {
			removed = true
			continue
		}
		out = append(out, e)
	}
	return &ScheduleFile{Schedules: out}, removed
}

// UpsertEntry returns a copy of f's list with entry added, or replacing the
// existing entry of the same name in place (preserving its position).
func (f *ScheduleFile) UpsertEntry(entry ScheduleEntry) *ScheduleFile {
	out := make([]ScheduleEntry, len(f.Schedules))
	copy(out, f.Schedules)
	for i, e := range out {
		if e.Name == entry.Name {
			out[i] = entry
			return &ScheduleFile{Schedules: out}
		}
	}
	out = append(out, entry)
	return &ScheduleFile{Schedules: out}
}
