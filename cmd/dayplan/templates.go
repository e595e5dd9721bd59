package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/taxilian/dayplan/internal/model"
	"github.com/taxilian/dayplan/internal/templates"
)

// parseTemplateVars parses name=json-string pairs.
func parseTemplateVars(pairs []string) (map[string]string, error) {
	vars := map[string]string{}
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid variable format: %s (expected name=json-string)", pair)
		}
		name := strings.TrimSpace(parts[0])
		if name == "" {
			return nil, fmt.Errorf("variable name cannot be empty")
		}
		var value string
		if err := json.Unmarshal([]byte(parts[1]), &value); err != nil {
			return nil, fmt.Errorf("invalid JSON string for %s", name)
		}
		vars[name] = value
	}
	return vars, nil
}

// parseTemplateVarsYAML reads a YAML mapping of variable values. Non-string
// scalars are kept in their JSON form.
func parseTemplateVarsYAML(data []byte) (map[string]string, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	vars := make(map[string]string, len(raw))
	for name, value := range raw {
		switch v := value.(type) {
		case string:
			vars[name] = v
		case nil:
			vars[name] = ""
		default:
			b, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("failed to convert %s value: %w", name, err)
			}
			vars[name] = string(b)
		}
	}
	return vars, nil
}

// instantiateTemplate loads the template and builds a project from the
// --var flags, plus stdin YAML when --vars-yaml is set.
func instantiateTemplate(s *session, id string, stdin io.Reader) (model.Project, error) {
	tmpl, err := templates.Load(id)
	if err != nil {
		return model.Project{}, err
	}

	vars := map[string]string{}
	if flagVarsYAML {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return model.Project{}, fmt.Errorf("failed to read stdin: %w", err)
		}
		fromYAML, err := parseTemplateVarsYAML(data)
		if err != nil {
			return model.Project{}, err
		}
		for k, v := range fromYAML {
			vars[k] = v
		}
	}
	fromFlags, err := parseTemplateVars(flagTemplateVars)
	if err != nil {
		return model.Project{}, err
	}
	for k, v := range fromFlags {
		vars[k] = v
	}

	return tmpl.Instantiate(vars, templates.InstantiateOptions{
		NewID:        s.newID,
		DefaultColor: s.config.DefaultColor,
		Now:          s.now,
	})
}

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Inspect project templates",
	Long: `Templates are YAML or TOML files in .dayplan/templates (this project)
or ~/.config/dayplan/templates (all projects). Project templates win over user
templates with the same id.`,
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := templates.List()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(list) == 0 {
			fmt.Fprintln(out, "No templates found")
			return nil
		}
		for _, t := range list {
			fmt.Fprintf(out, "%-20s %s (%s, %d tasks)\n", t.ID, t.Title, t.Source, t.StepCount())
		}
		return nil
	},
}

var templateShowCmd = &cobra.Command{
	Use:   "show <template-id>",
	Short: "Show a template's variables and tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tmpl, err := templates.Load(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %s\n", tmpl.ID, tmpl.Title)
		fmt.Fprintf(out, "Source: %s (%s)\n", tmpl.SourcePath, tmpl.Source)
		if tmpl.Notes != "" {
			fmt.Fprintf(out, "Notes: %s\n", tmpl.Notes)
		}

		if len(tmpl.Variables) > 0 {
			fmt.Fprintln(out, "\nVariables:")
			names := make([]string, 0, len(tmpl.Variables))
			for name := range tmpl.Variables {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				v := tmpl.Variables[name]
				req := "required"
				if v.Optional {
					req = "optional"
				}
				if v.Default != "" {
					req = fmt.Sprintf("default %q", v.Default)
				}
				fmt.Fprintf(out, "  %s (%s) %s\n", name, req, v.Description)
			}
		}

		fmt.Fprintln(out, "\nTasks:")
		var walk func(steps []templates.TaskStep, depth int)
		walk = func(steps []templates.TaskStep, depth int) {
			for _, st := range steps {
				fmt.Fprintf(out, "%s- %s\n", strings.Repeat("  ", depth+1), st.Title)
				walk(st.Subtasks, depth+1)
			}
		}
		walk(tmpl.Tasks, 0)
		return nil
	},
}

func init() {
	templateCmd.AddCommand(templateListCmd, templateShowCmd)
	rootCmd.AddCommand(templateCmd)
}
