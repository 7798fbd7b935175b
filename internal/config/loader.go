package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// onDiskConfig mirrors Config but uses a *bool for SymlinkNodeModules so
// Load can tell "absent from the file" apart from "explicitly false".
type onDiskConfig struct {
	SessionName        string                 `toml:"session_name"`
	DefaultAgent       string                 `toml:"default_agent"`
	Agents             map[string]AgentPreset `toml:"agents"`
	EnvFiles           []string               `toml:"env_files"`
	SymlinkNodeModules *bool                  `toml:"symlink_node_modules"`
}

// Load reads config.toml at path, merging whatever fields are present on
// top of Default(sessionName). A missing file is not an error: Load then
// returns Default(sessionName) unchanged.
func Load(path, sessionName string) (*Config, error) {
	cfg := Default(sessionName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var onDisk onDiskConfig
	if _, err := toml.Decode(string(data), &onDisk); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if onDisk.SessionName != "" {
		cfg.SessionName = onDisk.SessionName
	}
	if onDisk.DefaultAgent != "" {
		cfg.DefaultAgent = onDisk.DefaultAgent
	}
	for name, preset := range onDisk.Agents {
		cfg.Agents[name] = preset
	}
	if len(onDisk.EnvFiles) > 0 {
		cfg.EnvFiles = onDisk.EnvFiles
	}
	if onDisk.SymlinkNodeModules != nil {
		cfg.SymlinkNodeModules = *onDisk.SymlinkNodeModules
	}

	return cfg, nil
}

// Save writes cfg to path as TOML, creating parent directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()
	enc := toml.NewEncoder(f)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}
