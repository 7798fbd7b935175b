// Package prompt renders agent prompts from inline text, a named prompt
// template, or a file, and archives the rendered result so a later restart
// can recover exactly what an agent was given (spec §4.5).
package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/ppgtool/ppg/internal/ids"
)

//go:embed templates/*.md.tmpl
var builtinFS embed.FS

// agentData is the data handed to the agent.md.tmpl wrapper template.
type agentData struct {
	Body               string
	ResultInstructions string
}

// Source selects exactly one prompt origin, matching spec §4.6
// performSpawn step 2's "prompt | promptFile | template" mutual exclusion.
type Source struct {
	Prompt   string
	File     string
	Template string
}

// count reports how many of Prompt/File/Template are set.
func (s Source) count() int {
	n := 0
	if s.Prompt != "" {
		n++
	}
	if s.File != "" {
		n++
	}
	if s.Template != "" {
		n++
	}
	return n
}

// Validate enforces the mutual exclusion and presence invariants before
// any side effect runs (spec §4.6 step 2).
func (s Source) Validate() error {
	switch s.count() {
	case 0:
		return fmt.Errorf("one of prompt, promptFile, or template is required")
	case 1:
		return nil
	default:
		return fmt.Errorf("prompt, promptFile, and template are mutually exclusive")
	}
}

// Resolve loads the raw prompt body from whichever source field is set.
// Template names are looked up project-scope first, then user-global.
func Resolve(s Source, paths ids.Paths) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	switch {
	case s.Prompt != "":
		return s.Prompt, nil
	case s.File != "":
		data, err := os.ReadFile(s.File)
		if err != nil {
			return "", fmt.Errorf("reading prompt file %s: %w", s.File, err)
		}
		return string(data), nil
	default:
		return resolveNamedTemplate(s.Template, paths)
	}
}

func resolveNamedTemplate(name string, paths ids.Paths) (string, error) {
	candidates := []string{
		filepath.Join(paths.ProjectPromptsDir(), name+".md"),
		filepath.Join(ids.GlobalPromptsDir(), name+".md"),
	}
	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err == nil {
			return string(data), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("reading prompt template %s: %w", path, err)
		}
	}
	return "", fmt.Errorf("prompt template %q not found in project or global prompts dir", name)
}

// Render substitutes vars into body ({{.key}} placeholders, stdlib
// text/template) and appends resultInstructions (already
// printf-substituted with the result file path) as a trailing block.
func Render(body string, vars map[string]string, resultInstructions string) (string, error) {
	tmpl, err := template.New("prompt").Option("missingkey=zero").Parse(body)
	if err != nil {
		return "", fmt.Errorf("parsing prompt template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	out, err := renderWrapper(agentData{Body: buf.String(), ResultInstructions: resultInstructions})
	if err != nil {
		return "", err
	}
	return out, nil
}

func renderWrapper(data agentData) (string, error) {
	tmpl, err := template.ParseFS(builtinFS, "templates/agent.md.tmpl")
	if err != nil {
		return "", fmt.Errorf("parsing agent template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering agent template: %w", err)
	}
	return buf.String(), nil
}

// Archive writes the fully rendered prompt to this agent's prompt archive
// path, so restartAgent can recover it later without re-rendering.
func Archive(paths ids.Paths, agentID, rendered string) error {
	dir := paths.PromptArchiveDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating prompt archive dir: %w", err)
	}
	return os.WriteFile(paths.PromptArchive(agentID), []byte(rendered), 0644)
}

// LoadArchive reads back a previously archived rendered prompt.
func LoadArchive(paths ids.Paths, agentID string) (string, error) {
	data, err := os.ReadFile(paths.PromptArchive(agentID))
	if err != nil {
		return "", fmt.Errorf("reading prompt archive for %s: %w", agentID, err)
	}
	return string(data), nil
}

// ListNames returns the available named prompt templates, project-scope
// entries first, deduplicated against the global directory.
func ListNames(paths ids.Paths) ([]string, error) {
	seen := map[string]bool{}
	var names []string
	for _, dir := range []string{paths.ProjectPromptsDir(), ids.GlobalPromptsDir()} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("reading prompts dir %s: %w", dir, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			name := filepath.Base(e.Name())
			ext := filepath.Ext(name)
			if ext != ".md" {
				continue
			}
			name = name[:len(name)-len(ext)]
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names, nil
}
