// Package config defines the kernel's read-only configuration record and
// the declarative schedule file, and loads both from disk.
package config

import "fmt"

// AgentPreset describes how to launch one named interactive agent program
// (spec §3 Configuration: "agents (mapping agent-name -> {command,
// promptFlag?, promptFileFlag?, interactive, resultInstructions?})").
type AgentPreset struct {
	Command            string `toml:"command"`
	PromptFlag         string `toml:"prompt_flag,omitempty"`
	PromptFileFlag     string `toml:"prompt_file_flag,omitempty"`
	Interactive        bool   `toml:"interactive"`
	ResultInstructions string `toml:"result_instructions,omitempty"`
}

// Config is the project's structured, read-only configuration.
type Config struct {
	SessionName        string                 `toml:"session_name"`
	DefaultAgent       string                 `toml:"default_agent"`
	Agents             map[string]AgentPreset `toml:"agents"`
	EnvFiles           []string               `toml:"env_files"`
	SymlinkNodeModules bool                   `toml:"symlink_node_modules"`
}

// defaultResultInstructions is a printf template taking the result file path.
const defaultResultInstructions = "When you are done, write your final output to %s and stop."

func defaultAgentPresets() map[string]AgentPreset {
	return map[string]AgentPreset{
		"claude": {
			Command:            "claude",
			Interactive:        true,
			ResultInstructions: defaultResultInstructions,
		},
		"gemini": {
			Command:            "gemini",
			PromptFlag:         "-p",
			Interactive:        true,
			ResultInstructions: defaultResultInstructions,
		},
		"codex": {
			Command:            "codex",
			Interactive:        true,
			ResultInstructions: defaultResultInstructions,
		},
	}
}

// Default returns the built-in configuration used when no config.toml
// exists yet.
func Default(sessionName string) *Config {
	return &Config{
		SessionName:        sessionName,
		DefaultAgent:       "claude",
		Agents:             defaultAgentPresets(),
		EnvFiles:           []string{".env", ".env.local"},
		SymlinkNodeModules: true,
	}
}

// Preset looks up an agent preset by name, falling back to the built-in
// defaults for well-known names even if the loaded config's [agents] table
// doesn't mention them.
func (c *Config) Preset(name string) (AgentPreset, bool) {
	if c.Agents != nil {
		if p, ok := c.Agents[name]; ok {
			return p, true
		}
	}
	p, ok := defaultAgentPresets()[name]
	return p, ok
}

// ResultInstructionsBlock renders the canonical block appended to a
// rendered prompt when resultInstructions are configured and not
// suppressed (spec §4.5 spawnAgent).
func (p AgentPreset) ResultInstructionsBlock(resultFile string) string {
	if p.ResultInstructions == "" {
		return ""
	}
	return "\n\n---\n" + fmt.Sprintf(p.ResultInstructions, resultFile) + "\n"
}
