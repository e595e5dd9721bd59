package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taxilian/dayplan/internal/model"
	"github.com/taxilian/dayplan/internal/state"
	"github.com/taxilian/dayplan/internal/tree"
)

var (
	flagProjectColor    string
	flagProjectNotes    string
	flagProjectArchived bool
	flagLinkTitle       string
	flagTemplateID      string
	flagTemplateVars    []string
	flagVarsYAML        bool
)

// findProject returns the active or archived project with id.
func findProject(s model.AppState, id string) (model.Project, error) {
	for _, list := range [][]model.Project{s.Projects, s.ArchivedProjects} {
		for _, p := range list {
			if p.ID == id {
				return p, nil
			}
		}
	}
	return model.Project{}, fmt.Errorf("project not found: %s", id)
}

// findTask locates a task at any depth in any project.
func findTask(s model.AppState, id string) (model.Project, model.Task, error) {
	for _, list := range [][]model.Project{s.Projects, s.ArchivedProjects} {
		for _, p := range list {
			if t, ok := tree.Find(p.Tasks, id); ok {
				return p, t, nil
			}
		}
	}
	return model.Project{}, model.Task{}, fmt.Errorf("task not found: %s", id)
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a project",
	Long: `Create a project and print its id.

With --template the project and its task tree come from a template
(see 'dayplan template list'); the title argument is then optional and
overrides the template's title.

Examples:
  dayplan project add "Garden" --color "#10b981"
  dayplan project add --template trip --var city='"Oslo"'
  dayplan project add --template trip --vars-yaml <<EOF
  city: Oslo
  month: May
  EOF`,
	RunE: func(cmd *cobra.Command, args []string) error {
		title := strings.TrimSpace(strings.Join(args, " "))
		return withSession(func(s *session) error {
			if flagTemplateID != "" {
				p, err := instantiateTemplate(s, flagTemplateID, cmd.InOrStdin())
				if err != nil {
					return err
				}
				if title != "" {
					p.Title = title
				}
				if flagProjectColor != "" {
					p.Color = flagProjectColor
				}
				if err := s.dispatch(state.InsertProject{Project: p}); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), p.ID)
				return nil
			}

			if title == "" {
				return fmt.Errorf("title is required")
			}
			color := flagProjectColor
			if color == "" {
				color = s.config.DefaultColor
			}
			id := s.newID(model.KindProject)
			if err := s.dispatch(state.AddProject{ID: id, Title: title, Color: color, Notes: flagProjectNotes}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		})
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			out := cmd.OutOrStdout()
			projects := s.state().Projects
			if flagProjectArchived {
				projects = s.state().ArchivedProjects
			}
			if len(projects) == 0 {
				fmt.Fprintln(out, "No projects")
				return nil
			}
			p := s.printer(out)
			for _, pj := range projects {
				fmt.Fprintln(out, p.Project(pj))
			}
			return nil
		})
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show <project-id>",
	Short: "Show a project with its task tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			pj, err := findProject(s.state(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			p := s.printer(out)
			fmt.Fprintln(out, p.Heading(pj.Title))
			fmt.Fprintln(out, p.Project(pj))
			if pj.Notes != "" {
				fmt.Fprintf(out, "\n%s\n", pj.Notes)
			}
			if len(pj.Links) > 0 {
				fmt.Fprintln(out, "\nLinks:")
				for _, l := range pj.Links {
					fmt.Fprintf(out, "  %s %s  %s\n", l.Title, l.URL, p.Muted(l.ID))
				}
			}
			if len(pj.Tasks) > 0 {
				fmt.Fprintln(out, "\nTasks:")
				for _, line := range p.TaskTree(pj.Tasks, "") {
					fmt.Fprintln(out, "  "+line)
				}
			}
			return nil
		})
	},
}

var projectRenameCmd = &cobra.Command{
	Use:   "rename <project-id> <title>",
	Short: "Rename a project",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := strings.Join(args[1:], " ")
		return projectAction(cmd, args[0], "Renamed", func(id string) state.Action {
			a := state.UpdateProject{ProjectID: id, Title: &title}
			if flagProjectColor != "" {
				a.Color = &flagProjectColor
			}
			if cmd.Flags().Changed("notes") {
				a.Notes = &flagProjectNotes
			}
			return a
		})
	},
}

var projectArchiveCmd = &cobra.Command{
	Use:   "archive <project-id>",
	Short: "Archive a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectAction(cmd, args[0], "Archived", func(id string) state.Action {
			return state.ArchiveProject{ProjectID: id}
		})
	},
}

var projectUnarchiveCmd = &cobra.Command{
	Use:   "unarchive <project-id>",
	Short: "Restore an archived project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectAction(cmd, args[0], "Unarchived", func(id string) state.Action {
			return state.UnarchiveProject{ProjectID: id}
		})
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <project-id>",
	Short: "Delete a project and all of its tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectAction(cmd, args[0], "Deleted", func(id string) state.Action {
			return state.DeleteProject{ProjectID: id}
		})
	},
}

var projectLinkCmd = &cobra.Command{
	Use:   "link <project-id> <url>",
	Short: "Attach a link to a project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			if _, err := findProject(s.state(), args[0]); err != nil {
				return err
			}
			link := newLink(s, args[1])
			if err := s.dispatch(state.AddProjectLink{ProjectID: args[0], Link: link}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), link.ID)
			return nil
		})
	},
}

var projectUnlinkCmd = &cobra.Command{
	Use:   "unlink <project-id> <link-id>",
	Short: "Remove a link from a project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectAction(cmd, args[0], "Updated", func(id string) state.Action {
			return state.RemoveProjectLink{ProjectID: id, LinkID: args[1]}
		})
	},
}

// projectAction checks that the project exists, dispatches the action built
// by build and reports verb.
func projectAction(cmd *cobra.Command, id, verb string, build func(id string) state.Action) error {
	return withSession(func(s *session) error {
		pj, err := findProject(s.state(), id)
		if err != nil {
			return err
		}
		if err := s.dispatch(build(id)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", verb, pj.ID, pj.Title)
		return nil
	})
}

func newLink(s *session, url string) model.Link {
	title := flagLinkTitle
	if title == "" {
		title = url
	}
	return model.Link{ID: s.newID(model.KindLink), Title: title, URL: url}
}

// Tasks

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage project tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add <project-id> <title>",
	Short: "Add a task to a project",
	Long: `Add a root task to a project and print its id.

Examples:
  dayplan task add pj-abc123 "Buy seeds"
  dayplan task add pj-abc123 "Plant" --date tomorrow`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			if _, err := findProject(s.state(), args[0]); err != nil {
				return err
			}
			var date string
			if flagDate != "" {
				d, err := s.date()
				if err != nil {
					return err
				}
				date = d
			}
			id := s.newID(model.KindTask)
			a := state.AddTask{ProjectID: args[0], ID: id, Title: strings.Join(args[1:], " "), Date: date}
			if err := s.dispatch(a); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		})
	},
}

var taskSubCmd = &cobra.Command{
	Use:   "sub <parent-task-id> <title>",
	Short: "Add a subtask under a task",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			pj, _, err := findTask(s.state(), args[0])
			if err != nil {
				return err
			}
			id := s.newID(model.KindTask)
			a := state.AddSubtask{ProjectID: pj.ID, ParentID: args[0], ID: id, Title: strings.Join(args[1:], " ")}
			if err := s.dispatch(a); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		})
	},
}

func taskCompletionCmd(use, short string, done bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <task-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return taskAction(cmd, args[0], func(s *session, projectID string) (state.Action, string, error) {
				date, err := s.date()
				if err != nil {
					return nil, "", err
				}
				msg := "Completed"
				if !done {
					msg = "Reopened"
				}
				return state.SetTaskCompletion{ProjectID: projectID, TaskID: args[0], Date: date, Done: done},
					fmt.Sprintf("%s %s for %s", msg, args[0], date), nil
			})
		},
	}
}

var (
	taskDoneCmd = taskCompletionCmd("done", "Mark a task done for a date", true)
	taskUndoCmd = taskCompletionCmd("undo", "Mark a task not done for a date", false)
)

var taskScheduleCmd = &cobra.Command{
	Use:   "schedule <task-id> <date>",
	Short: "Place a task on a day",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskAction(cmd, args[0], func(s *session, projectID string) (state.Action, string, error) {
			date, err := resolveDate(s, args[1])
			if err != nil {
				return nil, "", err
			}
			return state.ScheduleTask{ProjectID: projectID, TaskID: args[0], Date: date},
				fmt.Sprintf("Scheduled %s on %s", args[0], date), nil
		})
	},
}

var taskUnscheduleCmd = &cobra.Command{
	Use:   "unschedule <task-id> <date>",
	Short: "Remove a task from a day",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskAction(cmd, args[0], func(s *session, projectID string) (state.Action, string, error) {
			date, err := resolveDate(s, args[1])
			if err != nil {
				return nil, "", err
			}
			return state.UnscheduleTask{ProjectID: projectID, TaskID: args[0], Date: date},
				fmt.Sprintf("Unscheduled %s from %s", args[0], date), nil
		})
	},
}

var taskRenameCmd = &cobra.Command{
	Use:   "rename <task-id> <title>",
	Short: "Rename a task",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := strings.Join(args[1:], " ")
		return taskAction(cmd, args[0], func(s *session, projectID string) (state.Action, string, error) {
			return state.UpdateTask{ProjectID: projectID, TaskID: args[0], Patch: tree.Patch{Title: &title}},
				fmt.Sprintf("Renamed %s", args[0]), nil
		})
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <task-id>",
	Short: "Delete a task and its subtasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskAction(cmd, args[0], func(s *session, projectID string) (state.Action, string, error) {
			return state.DeleteTask{ProjectID: projectID, TaskID: args[0]}, fmt.Sprintf("Deleted %s", args[0]), nil
		})
	},
}

var taskLinkCmd = &cobra.Command{
	Use:   "link <task-id> <url>",
	Short: "Attach a link to a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskAction(cmd, args[0], func(s *session, projectID string) (state.Action, string, error) {
			link := newLink(s, args[1])
			return state.AddTaskLink{ProjectID: projectID, TaskID: args[0], Link: link}, link.ID, nil
		})
	},
}

var taskUnlinkCmd = &cobra.Command{
	Use:   "unlink <task-id> <link-id>",
	Short: "Remove a link from a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskAction(cmd, args[0], func(s *session, projectID string) (state.Action, string, error) {
			return state.RemoveTaskLink{ProjectID: projectID, TaskID: args[0], LinkID: args[1]},
				fmt.Sprintf("Removed link %s", args[1]), nil
		})
	},
}

// taskAction resolves the task's project, dispatches the action from build
// and prints the message build returned.
func taskAction(cmd *cobra.Command, taskID string, build func(s *session, projectID string) (state.Action, string, error)) error {
	return withSession(func(s *session) error {
		pj, _, err := findTask(s.state(), taskID)
		if err != nil {
			return err
		}
		a, msg, err := build(s, pj.ID)
		if err != nil {
			return err
		}
		if err := s.dispatch(a); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	})
}

func init() {
	projectAddCmd.Flags().StringVar(&flagProjectColor, "color", "", "Project color (hex, e.g. #ff0000)")
	projectAddCmd.Flags().StringVar(&flagProjectNotes, "notes", "", "Project notes")
	projectAddCmd.Flags().StringVar(&flagTemplateID, "template", "", "Template ID to instantiate")
	projectAddCmd.Flags().StringArrayVar(&flagTemplateVars, "var", nil, "Template variable value (name=json-string)")
	projectAddCmd.Flags().BoolVar(&flagVarsYAML, "vars-yaml", false, "Read template variables from stdin as YAML")
	projectListCmd.Flags().BoolVar(&flagProjectArchived, "archived", false, "List archived projects")
	projectRenameCmd.Flags().StringVar(&flagProjectColor, "color", "", "New color")
	projectRenameCmd.Flags().StringVar(&flagProjectNotes, "notes", "", "New notes")
	projectLinkCmd.Flags().StringVar(&flagLinkTitle, "title", "", "Link title (default: the URL)")

	projectCmd.AddCommand(projectAddCmd, projectListCmd, projectShowCmd, projectRenameCmd,
		projectArchiveCmd, projectUnarchiveCmd, projectDeleteCmd, projectLinkCmd, projectUnlinkCmd)

	taskAddCmd.Flags().StringVar(&flagDate, "date", "", "Schedule the task on this date")
	taskDoneCmd.Flags().StringVar(&flagDate, "date", "", "Date (default: today)")
	taskUndoCmd.Flags().StringVar(&flagDate, "date", "", "Date (default: today)")
	taskLinkCmd.Flags().StringVar(&flagLinkTitle, "title", "", "Link title (default: the URL)")

	taskCmd.AddCommand(taskAddCmd, taskSubCmd, taskDoneCmd, taskUndoCmd, taskScheduleCmd,
		taskUnscheduleCmd, taskRenameCmd, taskDeleteCmd, taskLinkCmd, taskUnlinkCmd)

	rootCmd.AddCommand(projectCmd, taskCmd)
}
