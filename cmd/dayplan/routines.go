package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taxilian/dayplan/internal/model"
	"github.com/taxilian/dayplan/internal/recur"
	"github.com/taxilian/dayplan/internal/state"
)

var (
	flagScheduleType  string
	flagDays          []string
	flagInterval      int
	flagMonthDay      int
	flagMonthWeek     int
	flagMonthWeekday  string
	flagStart         string
	flagTarget        int
	flagQuickLink     string
	flagColor         string
	flagSubtasks      []string
	flagDue           string
	flagCompleteUndo  bool
	flagCountBy       int
	flagHabitWeekly   int
	flagReadingURL    string
	flagRecurringDue  bool
	flagOneOffPending bool
)

// findByID returns the entity in items whose id matches.
func findByID[T any](items []T, id string, idOf func(T) string, kind string) (T, error) {
	for _, it := range items {
		if idOf(it) == id {
			return it, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%s not found: %s", kind, id)
}

func recurringID(r model.RecurringTask) string { return r.ID }
func oneOffID(o model.OneOffTask) string       { return o.ID }
func habitID(h model.Habit) string             { return h.ID }
func readingID(r model.ReadingItem) string     { return r.ID }

// parseWeekday accepts 0-6 (Sunday first) or an English day name or prefix.
func parseWeekday(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 6 {
			return 0, fmt.Errorf("weekday out of range: %d", n)
		}
		return n, nil
	}
	names := []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}
	if len(s) >= 2 {
		for i, name := range names {
			if strings.HasPrefix(name, s) {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("invalid weekday: %q", s)
}

func parseWeekdays(values []string) ([]int, error) {
	var days []int
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			d, err := parseWeekday(part)
			if err != nil {
				return nil, err
			}
			days = append(days, d)
		}
	}
	return days, nil
}

// scheduleFromFlags builds the schedule described by the recurring add flags.
func scheduleFromFlags(s *session) (model.Schedule, error) {
	sched := model.Schedule{Type: model.ScheduleType(flagScheduleType)}
	switch sched.Type {
	case model.ScheduleDaily, model.ScheduleWeekdays, model.ScheduleWeekends:
	case model.ScheduleWeekly:
		days, err := parseWeekdays(flagDays)
		if err != nil {
			return sched, err
		}
		if len(days) == 0 {
			return sched, fmt.Errorf("weekly schedules need --days")
		}
		sched.Days = days
	case model.ScheduleInterval:
		if flagInterval < 1 {
			return sched, fmt.Errorf("interval schedules need --interval of at least 1")
		}
		sched.Interval = flagInterval
	case model.ScheduleMonthly:
		switch {
		case flagMonthDay > 0:
			sched.MonthDay = flagMonthDay
		case flagMonthWeekday != "":
			wd, err := parseWeekday(flagMonthWeekday)
			if err != nil {
				return sched, err
			}
			if flagMonthWeek == 0 {
				return sched, fmt.Errorf("--month-weekday needs --month-week (1-5, or -1 for last)")
			}
			sched.MonthWeek = flagMonthWeek
			sched.MonthWeekday = &wd
		default:
			return sched, fmt.Errorf("monthly schedules need --month-day or --month-weekday")
		}
	default:
		return sched, fmt.Errorf("invalid schedule type: %q (use daily, weekdays, weekends, weekly, monthly or interval)", flagScheduleType)
	}

	if flagStart != "" {
		start, err := resolveDate(s, flagStart)
		if err != nil {
			return sched, err
		}
		sched.StartDate = start
	}
	return sched, nil
}

func buildSubtasks(s *session, titles []string) []model.Subtask {
	var subs []model.Subtask
	for _, t := range titles {
		if t = strings.TrimSpace(t); t != "" {
			subs = append(subs, model.Subtask{ID: s.newID(model.KindSubtask), Title: t})
		}
	}
	return subs
}

func targetPtr() *int {
	if flagTarget > 0 {
		return model.IntPtr(flagTarget)
	}
	return nil
}

// printDone reports an id-based action on date.
func printDone(cmd *cobra.Command, verb, id, date string) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s for %s\n", verb, id, date)
}

// Recurring tasks

var recurringCmd = &cobra.Command{
	Use:     "recurring",
	Aliases: []string{"rec"},
	Short:   "Manage recurring tasks",
}

var recurringAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a recurring task",
	Long: `Add a recurring task and print its id.

Weekdays are given as names (mon, tuesday) or numbers 0-6 with 0 = Sunday.

Examples:
  dayplan recurring add "Water plants" --type interval --interval 3
  dayplan recurring add "Gym" --type weekly --days mon,wed,fri
  dayplan recurring add "Pay rent" --type monthly --month-day 1
  dayplan recurring add "Review" --type monthly --month-week -1 --month-weekday fri
  dayplan recurring add "Push-ups" --type daily --target 50`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			sched, err := scheduleFromFlags(s)
			if err != nil {
				return err
			}
			id := s.newID(model.KindRecurring)
			a := state.AddRecurring{
				ID:          id,
				Title:       strings.Join(args, " "),
				Color:       flagColor,
				Schedule:    sched,
				TargetCount: targetPtr(),
				QuickLink:   flagQuickLink,
				Subtasks:    buildSubtasks(s, flagSubtasks),
			}
			if err := s.dispatch(a); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		})
	},
}

var recurringListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recurring tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			date, err := s.date()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			tasks := s.state().RecurringTasks
			if flagRecurringDue {
				tasks = recur.DueTasks(tasks, date)
			}
			if len(tasks) == 0 {
				fmt.Fprintln(out, "No recurring tasks")
				return nil
			}
			p := s.printer(out)
			for _, r := range tasks {
				fmt.Fprintln(out, p.Recurring(r, date))
			}
			return nil
		})
	},
}

// recurringAction checks that the recurring task exists and dispatches the
// action built for the --date day.
func recurringAction(cmd *cobra.Command, id, verb string, build func(date string) state.Action) error {
	return withSession(func(s *session) error {
		if _, err := findByID(s.state().RecurringTasks, id, recurringID, "recurring task"); err != nil {
			return err
		}
		date, err := s.date()
		if err != nil {
			return err
		}
		if err := s.dispatch(build(date)); err != nil {
			return err
		}
		printDone(cmd, verb, id, date)
		return nil
	})
}

var recurringDoneCmd = &cobra.Command{
	Use:   "done <recurring-id>",
	Short: "Mark a recurring task done for a date",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		verb := "Completed"
		if flagCompleteUndo {
			verb = "Reopened"
		}
		return recurringAction(cmd, args[0], verb, func(date string) state.Action {
			return state.SetRecurringCompletion{ID: args[0], Date: date, Done: !flagCompleteUndo}
		})
	},
}

var recurringSkipCmd = &cobra.Command{
	Use:   "skip <recurring-id>",
	Short: "Skip a recurring task on a date",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return recurringAction(cmd, args[0], "Skipped", func(date string) state.Action {
			return state.SkipRecurring{ID: args[0], Date: date}
		})
	},
}

var recurringUnskipCmd = &cobra.Command{
	Use:   "unskip <recurring-id>",
	Short: "Undo a skip",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return recurringAction(cmd, args[0], "Unskipped", func(date string) state.Action {
			return state.UnskipRecurring{ID: args[0], Date: date}
		})
	},
}

var recurringCountCmd = &cobra.Command{
	Use:   "count <recurring-id>",
	Short: "Move a recurring task's counter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return recurringAction(cmd, args[0], "Counted", func(date string) state.Action {
			return state.IncrementRecurringCounter{ID: args[0], Date: date, Delta: flagCountBy}
		})
	},
}

var recurringCheckCmd = &cobra.Command{
	Use:   "check <recurring-id> <subtask-id>",
	Short: "Toggle a recurring task's subtask",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return recurringAction(cmd, args[0], "Toggled "+args[1]+" on", func(date string) state.Action {
			return state.ToggleRecurringSubtask{ID: args[0], SubtaskID: args[1], Date: date}
		})
	},
}

var recurringDeleteCmd = &cobra.Command{
	Use:   "delete <recurring-id>",
	Short: "Delete a recurring task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			r, err := findByID(s.state().RecurringTasks, args[0], recurringID, "recurring task")
			if err != nil {
				return err
			}
			if err := s.dispatch(state.DeleteRecurring{ID: r.ID}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%s)\n", r.ID, r.Title)
			return nil
		})
	},
}

// One-off tasks

var oneoffCmd = &cobra.Command{
	Use:   "oneoff",
	Short: "Manage one-off tasks",
}

var oneoffAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a one-off task",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			var due string
			if flagDue != "" {
				d, err := resolveDate(s, flagDue)
				if err != nil {
					return err
				}
				due = d
			}
			id := s.newID(model.KindOneOff)
			a := state.AddOneOff{
				ID:          id,
				Title:       strings.Join(args, " "),
				DueDate:     due,
				TargetCount: targetPtr(),
				Subtasks:    buildSubtasks(s, flagSubtasks),
			}
			if err := s.dispatch(a); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		})
	},
}

var oneoffListCmd = &cobra.Command{
	Use:   "list",
	Short: "List one-off tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			out := cmd.OutOrStdout()
			today := s.today()
			tasks := s.state().OneOffTasks
			if flagOneOffPending {
				tasks = recur.OneOffsForDate(tasks, today)
			}
			if len(tasks) == 0 {
				fmt.Fprintln(out, "No one-off tasks")
				return nil
			}
			p := s.printer(out)
			for _, o := range tasks {
				fmt.Fprintln(out, p.OneOff(o, today))
			}
			return nil
		})
	},
}

func oneoffAction(cmd *cobra.Command, id, verb string, build func(date string) state.Action) error {
	return withSession(func(s *session) error {
		if _, err := findByID(s.state().OneOffTasks, id, oneOffID, "one-off task"); err != nil {
			return err
		}
		date, err := s.date()
		if err != nil {
			return err
		}
		if err := s.dispatch(build(date)); err != nil {
			return err
		}
		printDone(cmd, verb, id, date)
		return nil
	})
}

var oneoffDoneCmd = &cobra.Command{
	Use:   "done <oneoff-id>",
	Short: "Complete a one-off task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		verb := "Completed"
		if flagCompleteUndo {
			verb = "Reopened"
		}
		return oneoffAction(cmd, args[0], verb, func(date string) state.Action {
			return state.SetOneOffCompletion{ID: args[0], Date: date, Done: !flagCompleteUndo}
		})
	},
}

var oneoffCountCmd = &cobra.Command{
	Use:   "count <oneoff-id>",
	Short: "Move a one-off task's counter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return oneoffAction(cmd, args[0], "Counted", func(date string) state.Action {
			return state.IncrementOneOffCounter{ID: args[0], Date: date, Delta: flagCountBy}
		})
	},
}

var oneoffCheckCmd = &cobra.Command{
	Use:   "check <oneoff-id> <subtask-id>",
	Short: "Toggle a one-off task's subtask",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return oneoffAction(cmd, args[0], "Toggled "+args[1]+" on", func(date string) state.Action {
			return state.ToggleOneOffSubtask{ID: args[0], SubtaskID: args[1], Date: date}
		})
	},
}

var oneoffDeleteCmd = &cobra.Command{
	Use:   "delete <oneoff-id>",
	Short: "Delete a one-off task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			o, err := findByID(s.state().OneOffTasks, args[0], oneOffID, "one-off task")
			if err != nil {
				return err
			}
			if err := s.dispatch(state.DeleteOneOff{ID: o.ID}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%s)\n", o.ID, o.Title)
			return nil
		})
	},
}

// Habits

var habitCmd = &cobra.Command{
	Use:   "habit",
	Short: "Manage habits",
}

var habitAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a habit",
	Long: `Add a daily habit, or a weekly one with --weekly <times per week>.

Examples:
  dayplan habit add "Meditate"
  dayplan habit add "Swim" --weekly 2`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			freq := model.FrequencyDaily
			if flagHabitWeekly > 0 {
				freq = model.FrequencyWeekly
			}
			id := s.newID(model.KindHabit)
			a := state.AddHabit{
				ID:           id,
				Title:        strings.Join(args, " "),
				Color:        flagColor,
				Frequency:    freq,
				WeeklyTarget: flagHabitWeekly,
			}
			if err := s.dispatch(a); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		})
	},
}

var habitListCmd = &cobra.Command{
	Use:   "list",
	Short: "List habits with their streaks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			date, err := s.date()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			habits := s.state().Habits
			if len(habits) == 0 {
				fmt.Fprintln(out, "No habits")
				return nil
			}
			p := s.printer(out)
			for _, h := range habits {
				fmt.Fprintln(out, p.Habit(h, date, s.config.WeekStartDay()))
			}
			return nil
		})
	},
}

func habitCompletionCmd(use, short string, done bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <habit-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(s *session) error {
				if _, err := findByID(s.state().Habits, args[0], habitID, "habit"); err != nil {
					return err
				}
				date, err := s.date()
				if err != nil {
					return err
				}
				if err := s.dispatch(state.SetHabitCompletion{ID: args[0], Date: date, Done: done}); err != nil {
					return err
				}
				h, _ := findByID(s.state().Habits, args[0], habitID, "habit")
				fmt.Fprintln(cmd.OutOrStdout(), s.printer(cmd.OutOrStdout()).Habit(h, date, s.config.WeekStartDay()))
				return nil
			})
		},
	}
}

var (
	habitCheckCmd   = habitCompletionCmd("check", "Check a habit for a date", true)
	habitUncheckCmd = habitCompletionCmd("uncheck", "Uncheck a habit for a date", false)
)

var habitDeleteCmd = &cobra.Command{
	Use:   "delete <habit-id>",
	Short: "Delete a habit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			h, err := findByID(s.state().Habits, args[0], habitID, "habit")
			if err != nil {
				return err
			}
			if err := s.dispatch(state.DeleteHabit{ID: h.ID}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%s)\n", h.ID, h.Title)
			return nil
		})
	},
}

// Reading list

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Manage the reading list",
}

var readAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add an item to the reading list",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			id := s.newID(model.KindReading)
			a := state.AddReadingItem{ID: id, Title: strings.Join(args, " "), URL: flagReadingURL}
			if err := s.dispatch(a); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		})
	},
}

var readListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the reading list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			out := cmd.OutOrStdout()
			items := s.state().ReadingList
			if len(items) == 0 {
				fmt.Fprintln(out, "Reading list is empty")
				return nil
			}
			p := s.printer(out)
			for _, it := range items {
				fmt.Fprintln(out, p.Reading(it))
			}
			return nil
		})
	},
}

var readDoneCmd = &cobra.Command{
	Use:   "done <item-id>",
	Short: "Toggle an item's read state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			if _, err := findByID(s.state().ReadingList, args[0], readingID, "reading item"); err != nil {
				return err
			}
			date, err := s.date()
			if err != nil {
				return err
			}
			if err := s.dispatch(state.ToggleReadingItem{ID: args[0], Date: date}); err != nil {
				return err
			}
			it, _ := findByID(s.state().ReadingList, args[0], readingID, "reading item")
			fmt.Fprintln(cmd.OutOrStdout(), s.printer(cmd.OutOrStdout()).Reading(it))
			return nil
		})
	},
}

var readDeleteCmd = &cobra.Command{
	Use:   "delete <item-id>",
	Short: "Remove an item from the reading list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			it, err := findByID(s.state().ReadingList, args[0], readingID, "reading item")
			if err != nil {
				return err
			}
			if err := s.dispatch(state.DeleteReadingItem{ID: it.ID}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%s)\n", it.ID, it.Title)
			return nil
		})
	},
}

func addDateFlag(cmds ...*cobra.Command) {
	for _, c := range cmds {
		c.Flags().StringVar(&flagDate, "date", "", "Date (default: today)")
	}
}

func init() {
	recurringAddCmd.Flags().StringVar(&flagScheduleType, "type", "daily", "Schedule type (daily, weekdays, weekends, weekly, monthly, interval)")
	recurringAddCmd.Flags().StringSliceVar(&flagDays, "days", nil, "Weekdays for weekly schedules (e.g. mon,wed)")
	recurringAddCmd.Flags().IntVar(&flagInterval, "interval", 0, "Days between occurrences for interval schedules")
	recurringAddCmd.Flags().IntVar(&flagMonthDay, "month-day", 0, "Day of month for monthly schedules")
	recurringAddCmd.Flags().IntVar(&flagMonthWeek, "month-week", 0, "Week of month (1-5, -1 for last) for monthly schedules")
	recurringAddCmd.Flags().StringVar(&flagMonthWeekday, "month-weekday", "", "Weekday for --month-week")
	recurringAddCmd.Flags().StringVar(&flagStart, "start", "", "First day of the schedule (default: today)")
	recurringAddCmd.Flags().IntVar(&flagTarget, "target", 0, "Counter target per occurrence")
	recurringAddCmd.Flags().StringVar(&flagQuickLink, "link", "", "Quick link URL")
	recurringAddCmd.Flags().StringVar(&flagColor, "color", "", "Color (hex)")
	recurringAddCmd.Flags().StringArrayVar(&flagSubtasks, "subtask", nil, "Subtask title (repeatable)")
	recurringListCmd.Flags().BoolVar(&flagRecurringDue, "due", false, "Only tasks due on the date")
	recurringDoneCmd.Flags().BoolVar(&flagCompleteUndo, "undo", false, "Mark not done instead")
	recurringCountCmd.Flags().IntVar(&flagCountBy, "by", 1, "Amount to add (negative to subtract)")
	addDateFlag(recurringListCmd, recurringDoneCmd, recurringSkipCmd, recurringUnskipCmd, recurringCountCmd, recurringCheckCmd)
	recurringCmd.AddCommand(recurringAddCmd, recurringListCmd, recurringDoneCmd, recurringSkipCmd,
		recurringUnskipCmd, recurringCountCmd, recurringCheckCmd, recurringDeleteCmd)

	oneoffAddCmd.Flags().StringVar(&flagDue, "due", "", "Due date")
	oneoffAddCmd.Flags().IntVar(&flagTarget, "target", 0, "Counter target")
	oneoffAddCmd.Flags().StringArrayVar(&flagSubtasks, "subtask", nil, "Subtask title (repeatable)")
	oneoffListCmd.Flags().BoolVar(&flagOneOffPending, "pending", false, "Only open tasks due by today")
	oneoffDoneCmd.Flags().BoolVar(&flagCompleteUndo, "undo", false, "Reopen instead")
	oneoffCountCmd.Flags().IntVar(&flagCountBy, "by", 1, "Amount to add (negative to subtract)")
	addDateFlag(oneoffDoneCmd, oneoffCountCmd, oneoffCheckCmd)
	oneoffCmd.AddCommand(oneoffAddCmd, oneoffListCmd, oneoffDoneCmd, oneoffCountCmd, oneoffCheckCmd, oneoffDeleteCmd)

	habitAddCmd.Flags().IntVar(&flagHabitWeekly, "weekly", 0, "Make a weekly habit with this many completions per week")
	habitAddCmd.Flags().StringVar(&flagColor, "color", "", "Color (hex)")
	addDateFlag(habitListCmd, habitCheckCmd, habitUncheckCmd)
	habitCmd.AddCommand(habitAddCmd, habitListCmd, habitCheckCmd, habitUncheckCmd, habitDeleteCmd)

	readAddCmd.Flags().StringVar(&flagReadingURL, "url", "", "Item URL")
	addDateFlag(readDoneCmd)
	readCmd.AddCommand(readAddCmd, readListCmd, readDoneCmd, readDeleteCmd)

	rootCmd.AddCommand(recurringCmd, oneoffCmd, habitCmd, readCmd)
}
