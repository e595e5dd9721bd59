// Package templates loads project templates and instantiates them into
// projects with a ready-made task tree.
package templates

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/taxilian/dayplan/internal/model"
)

const (
	dataDirName      = ".dayplan"
	templatesDirName = "templates"
)

// ErrTemplateNotFound is returned when no location has a template with the
// requested id.
var ErrTemplateNotFound = errors.New("template not found")

// Template describes a project and the tasks it starts with.
type Template struct {
	ID         string              `yaml:"-" toml:"-"`
	Title      string              `yaml:"title" toml:"title"`
	Notes      string              `yaml:"notes" toml:"notes"`
	Color      string              `yaml:"color" toml:"color"`
	Variables  map[string]Variable `yaml:"variables" toml:"variables"`
	Tasks      []TaskStep          `yaml:"tasks" toml:"tasks"`
	SourcePath string              `yaml:"-" toml:"-"`
	Hash       string              `yaml:"-" toml:"-"`
	Source     string              `yaml:"-" toml:"-"` // "project" or "user"
}

// Variable defines a template variable.
// Variables are required by default. Set optional: true to make them optional.
type Variable struct {
	Description string `yaml:"description" toml:"description"`
	Optional    bool   `yaml:"optional" toml:"optional"`
	Default     string `yaml:"default" toml:"default"`
}

// TaskStep is one task of the template, with its own subtasks.
type TaskStep struct {
	Title    string     `yaml:"title" toml:"title"`
	Links    []LinkSpec `yaml:"links" toml:"links"`
	Subtasks []TaskStep `yaml:"subtasks" toml:"subtasks"`
}

// LinkSpec is a link attached to a task step.
type LinkSpec struct {
	Title string `yaml:"title" toml:"title"`
	URL   string `yaml:"url" toml:"url"`
}

// Location is a directory that may contain templates.
type Location struct {
	Path   string
	Source string
}

// Locations returns the template directories in priority order: the nearest
// .dayplan/templates searching upward, then ~/.config/dayplan/templates.
func Locations() []Location {
	var locations []Location

	if dir, err := findProjectTemplatesDir(); err == nil {
		locations = append(locations, Location{Path: dir, Source: "project"})
	}

	if home, err := os.UserHomeDir(); err == nil {
		userDir := filepath.Join(home, ".config", "dayplan", templatesDirName)
		if info, err := os.Stat(userDir); err == nil && info.IsDir() {
			locations = append(locations, Location{Path: userDir, Source: "user"})
		}
	}
	return locations
}

func findProjectTemplatesDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, dataDirName, templatesDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no templates directory found")
		}
		dir = parent
	}
}

func isTemplateFile(name string) (id string, ok bool) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext != ".yaml" && ext != ".yml" && ext != ".toml" {
		return "", false
	}
	return strings.TrimSuffix(name, filepath.Ext(name)), true
}

// List returns every loadable template. A template in a higher-priority
// location hides one with the same id further down. Invalid files are
// skipped.
func List() ([]*Template, error) {
	seen := make(map[string]*Template)
	for _, loc := range Locations() {
		_ = filepath.WalkDir(loc.Path, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			id, ok := isTemplateFile(d.Name())
			if !ok {
				return nil
			}
			if _, exists := seen[id]; exists {
				return nil
			}
			tmpl, err := loadFile(path, id, loc.Source)
			if err != nil {
				return nil
			}
			seen[id] = tmpl
			return nil
		})
	}

	result := make([]*Template, 0, len(seen))
	for _, tmpl := range seen {
		result = append(result, tmpl)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Load finds a template by id across all locations.
func Load(id string) (*Template, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("template id is required")
	}
	for _, loc := range Locations() {
		path, err := findInDir(loc.Path, id)
		if err != nil {
			continue
		}
		return loadFile(path, id, loc.Source)
	}
	return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
}

func findInDir(dir, id string) (string, error) {
	for _, ext := range []string{".yaml", ".yml", ".toml"} {
		candidate := filepath.Join(dir, id+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	var found string
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if fileID, ok := isTemplateFile(d.Name()); ok && fileID == id {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	if found == "" {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return found, nil
}

// Parse decodes template data. format is "yaml" or "toml".
func Parse(data []byte, format string) (*Template, error) {
	var tmpl Template
	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &tmpl); err != nil {
			return nil, fmt.Errorf("failed to parse yaml template: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(data, &tmpl); err != nil {
			return nil, fmt.Errorf("failed to parse toml template: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported template format: %s", format)
	}

	if strings.TrimSpace(tmpl.Title) == "" {
		return nil, fmt.Errorf("template has no title")
	}
	if len(tmpl.Tasks) == 0 {
		return nil, fmt.Errorf("template has no tasks")
	}
	if err := checkSteps(tmpl.Tasks, "tasks"); err != nil {
		return nil, err
	}

	hash := sha256.Sum256(data)
	tmpl.Hash = hex.EncodeToString(hash[:])
	if tmpl.Variables == nil {
		tmpl.Variables = map[string]Variable{}
	}
	return &tmpl, nil
}

func checkSteps(steps []TaskStep, path string) error {
	for i, step := range steps {
		at := fmt.Sprintf("%s[%d]", path, i)
		if strings.TrimSpace(step.Title) == "" {
			return fmt.Errorf("%s has no title", at)
		}
		for j, link := range step.Links {
			if strings.TrimSpace(link.URL) == "" {
				return fmt.Errorf("%s.links[%d] has no url", at, j)
			}
		}
		if err := checkSteps(step.Subtasks, at+".subtasks"); err != nil {
			return err
		}
	}
	return nil
}

func loadFile(path, id, source string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}
	tmpl, err := Parse(data, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	tmpl.ID = id
	tmpl.SourcePath = path
	tmpl.Source = source
	return tmpl, nil
}

// StepCount returns the number of tasks the template creates, subtasks
// included.
func (t *Template) StepCount() int {
	return countSteps(t.Tasks)
}

func countSteps(steps []TaskStep) int {
	n := len(steps)
	for _, s := range steps {
		n += countSteps(s.Subtasks)
	}
	return n
}

// ResolveVars merges given values with defaults. It fails on unknown
// variables and on required variables left empty.
func (t *Template) ResolveVars(given map[string]string) (map[string]string, error) {
	for name := range given {
		if _, ok := t.Variables[name]; !ok {
			return nil, fmt.Errorf("unknown template variable: %s", name)
		}
	}

	vars := make(map[string]string, len(t.Variables))
	var missing []string
	for name, v := range t.Variables {
		value, ok := given[name]
		if !ok || value == "" {
			value = v.Default
		}
		if value == "" && !v.Optional {
			missing = append(missing, name)
		}
		vars[name] = value
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("missing required template variables: %s", strings.Join(missing, ", "))
	}
	return vars, nil
}

// InstantiateOptions controls how a template becomes a project.
type InstantiateOptions struct {
	NewID        func(model.Kind) string // nil means model.GenerateID
	DefaultColor string                  // used when the template has no color
	Now          time.Time
}

// Instantiate renders the template with vars and builds a project with fresh
// ids. Every task carries the project id and its parent's id.
func (t *Template) Instantiate(vars map[string]string, opts InstantiateOptions) (model.Project, error) {
	resolved, err := t.ResolveVars(vars)
	if err != nil {
		return model.Project{}, err
	}
	newID := opts.NewID
	if newID == nil {
		newID = model.GenerateID
	}

	color := t.Color
	if color == "" {
		color = opts.DefaultColor
	}
	project := model.Project{
		ID:        newID(model.KindProject),
		Title:     RenderText(t.Title, resolved),
		Color:     color,
		Notes:     RenderText(t.Notes, resolved),
		Links:     []model.Link{},
		CreatedAt: opts.Now,
	}
	project.Tasks = buildTasks(t.Tasks, project.ID, nil, resolved, newID)
	return project, nil
}

func buildTasks(steps []TaskStep, projectID string, parentID *string, vars map[string]string, newID func(model.Kind) string) []model.Task {
	tasks := make([]model.Task, 0, len(steps))
	for _, step := range steps {
		task := model.Task{
			ID:             newID(model.KindTask),
			ProjectID:      projectID,
			ParentID:       parentID,
			Title:          RenderText(step.Title, vars),
			ScheduledDates: []string{},
			CompletedDates: []string{},
			Links:          make([]model.Link, 0, len(step.Links)),
		}
		for _, l := range step.Links {
			url := RenderText(l.URL, vars)
			title := RenderText(l.Title, vars)
			if title == "" {
				title = url
			}
			task.Links = append(task.Links, model.Link{ID: newID(model.KindLink), Title: title, URL: url})
		}
		id := task.ID
		task.Subtasks = buildTasks(step.Subtasks, projectID, &id, vars, newID)
		tasks = append(tasks, task)
	}
	return tasks
}

// templateFuncs provides helper functions for templates.
var templateFuncs = template.FuncMap{
	"hasValue": func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	// default returns val if non-empty, otherwise defaultVal
	"default": func(defaultVal, val string) string {
		if strings.TrimSpace(val) != "" {
			return val
		}
		return defaultVal
	},
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
}

// RenderText interpolates variables using Go's text/template.
// Supports conditionals: {{if .var}}...{{end}}
// Supports defaults: {{default "fallback" .var}}
// Input that fails to parse or execute is returned unchanged.
func RenderText(input string, vars map[string]string) string {
	if !strings.Contains(input, "{{") {
		return input
	}
	if vars == nil {
		vars = map[string]string{}
	}

	tmpl, err := template.New("").Funcs(templateFuncs).Parse(input)
	if err != nil {
		return input
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return input
	}
	return buf.String()
}
