package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/taxilian/dayplan/internal/dates"
	"github.com/taxilian/dayplan/internal/format"
	"github.com/taxilian/dayplan/internal/model"
	"github.com/taxilian/dayplan/internal/recur"
	"github.com/taxilian/dayplan/internal/state"
	"github.com/taxilian/dayplan/internal/stats"
)

// renderDay prints the agenda for date: scheduled project tasks, tasks
// carried over from earlier days, due recurring tasks, open one-offs and
// habits.
func renderDay(out io.Writer, p *format.Printer, s model.AppState, date, today string, weekStart time.Weekday) {
	day := stats.ForDate(s.Projects, date)
	header := fmt.Sprintf("%s %s", dates.DayName(date), date)
	if day.HasTasks() {
		header += fmt.Sprintf("  %s %s", format.Bar(day.Percent, 10), format.Percent(day.Percent))
	}
	fmt.Fprintln(out, p.Heading(header))

	scheduled := recur.ScheduledTasksForDate(s.Projects, date)
	carry := recur.CarryoverTasksForDate(s.Projects, date)
	if len(scheduled)+len(carry) > 0 {
		fmt.Fprintln(out, "\nTasks")
		for _, st := range scheduled {
			fmt.Fprintln(out, "  "+p.Scheduled(st, date))
		}
		for _, c := range carry {
			fmt.Fprintln(out, "  "+p.Carryover(c))
		}
	}

	if due := recur.DueTasks(s.RecurringTasks, date); len(due) > 0 {
		fmt.Fprintln(out, "\nRecurring")
		for _, r := range due {
			fmt.Fprintln(out, "  "+p.Recurring(r, date))
		}
	}

	if oneoffs := recur.OneOffsForDate(s.OneOffTasks, date); len(oneoffs) > 0 {
		fmt.Fprintln(out, "\nOne-off")
		for _, o := range oneoffs {
			fmt.Fprintln(out, "  "+p.OneOff(o, today))
		}
	}

	if len(s.Habits) > 0 {
		fmt.Fprintln(out, "\nHabits")
		for _, h := range s.Habits {
			fmt.Fprintln(out, "  "+p.Habit(h, date, weekStart))
		}
	}
}

// renderWeek prints each day of the week containing date with what is
// scheduled and due on it.
func renderWeek(out io.Writer, p *format.Printer, s model.AppState, date string, weekStart time.Weekday) {
	first, last := dates.WeekBounds(date, weekStart)
	fmt.Fprintln(out, p.Heading(fmt.Sprintf("Week of %s", first)))
	for _, day := range dates.Range(first, last) {
		fmt.Fprintln(out, p.Day(stats.ForDate(s.Projects, day)))
		for _, st := range recur.ScheduledTasksForDate(s.Projects, day) {
			fmt.Fprintln(out, "    "+p.Scheduled(st, day))
		}
		for _, r := range recur.DueTasks(s.RecurringTasks, day) {
			fmt.Fprintln(out, "    "+p.Muted("↻ ")+r.Title+"  "+p.Muted(format.Checkbox(r.CompletedOn(day))))
		}
	}
}

// calendarMark marks a day "✓" when everything scheduled was done and "•"
// when something was scheduled.
func calendarMark(s model.AppState) func(day string) string {
	return func(day string) string {
		d := stats.ForDate(s.Projects, day)
		switch {
		case !d.HasTasks():
			return ""
		case d.Done == d.Total:
			return "✓"
		default:
			return "•"
		}
	}
}

func renderMonth(out io.Writer, p *format.Printer, s model.AppState, date string, weekStart time.Weekday) {
	t, err := dates.Parse(date)
	if err != nil {
		return
	}
	fmt.Fprintln(out, p.Heading(t.Format("January 2006")))
	for _, line := range p.MonthGrid(date, weekStart, calendarMark(s)) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "\nMonthly average: %s\n", format.Percent(stats.MonthlyAverage(s.Projects, date)))

	if len(s.RecurringTasks) > 0 {
		first, last := dates.MonthBounds(date)
		fmt.Fprintln(out, "\nRecurring")
		for _, r := range s.RecurringTasks {
			due := recur.Occurrences(r, first, last)
			fmt.Fprintf(out, "  %s %d/%d\n", r.Title, stats.Completed(r, due), len(due))
		}
	}
}

func renderStats(out io.Writer, p *format.Printer, s model.AppState, date string, weekStart time.Weekday) {
	first, last := dates.WeekBounds(date, weekStart)
	fmt.Fprintln(out, p.Heading(fmt.Sprintf("Week %s to %s", first, last)))
	for _, d := range stats.Days(s.Projects, first, last) {
		fmt.Fprintln(out, p.Day(d))
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Weekly average:  %s\n", format.Percent(stats.WeeklyAverage(s.Projects, date, weekStart)))
	fmt.Fprintf(out, "Monthly average: %s\n", format.Percent(stats.MonthlyAverage(s.Projects, date)))
	if best, ok := stats.BestDayOfWeek(s.Projects, first, last); ok {
		fmt.Fprintf(out, "Best day:        %s (%s)\n", best.Name, format.Percent(best.Percent))
	} else {
		fmt.Fprintln(out, "Best day:        "+p.Muted("none"))
	}
	fmt.Fprintf(out, "Vs last week:    %s\n", p.Comparison(stats.WeekOverWeek(s.Projects, date, weekStart)))

	if len(s.Habits) > 0 {
		fmt.Fprintln(out, "\nHabits")
		for _, h := range s.Habits {
			fmt.Fprintln(out, "  "+p.Habit(h, date, weekStart))
		}
	}
}

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show the agenda for a day",
	Long: `Show everything planned for today, or for --date: tasks scheduled on the
day, unfinished tasks carried over from earlier days, recurring tasks that are
due, open one-off tasks and habits.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			date, err := s.date()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			renderDay(out, s.printer(out), s.state(), date, s.today(), s.config.WeekStartDay())
			return nil
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show completion statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			date, err := s.date()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			renderStats(out, s.printer(out), s.state(), date, s.config.WeekStartDay())
			return nil
		})
	},
}

var calendarCmd = &cobra.Command{
	Use:     "calendar",
	Aliases: []string{"cal"},
	Short:   "Show a month calendar",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			date, err := s.date()
			if err != nil {
				return err
			}
			if flagMonth != "" {
				first := flagMonth + "-01"
				if !dates.Valid(first) {
					return fmt.Errorf("invalid month: %q (expected YYYY-MM)", flagMonth)
				}
				date = first
			}
			out := cmd.OutOrStdout()
			renderMonth(out, s.printer(out), s.state(), date, s.config.WeekStartDay())
			return nil
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Render the current view for the selected date",
	Long: `Render the dashboard the way it was left: the view chosen with 'dayplan view'
for the date chosen with 'dayplan select'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			st := s.state()
			out := cmd.OutOrStdout()
			p := s.printer(out)
			date := st.SelectedDate
			if !dates.Valid(date) {
				date = s.today()
			}
			weekStart := s.config.WeekStartDay()
			switch st.ViewMode {
			case model.ViewWeek:
				renderWeek(out, p, st, date, weekStart)
			case model.ViewMonth:
				renderMonth(out, p, st, date, weekStart)
			case model.ViewStats:
				renderStats(out, p, st, date, weekStart)
			default:
				renderDay(out, p, st, date, s.today(), s.config.WeekStartDay())
			}
			return nil
		})
	},
}

var viewCmd = &cobra.Command{
	Use:       "view <day|week|month|stats>",
	Short:     "Choose the view 'dayplan show' renders",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"day", "week", "month", "stats"},
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := model.ViewMode(args[0])
		if !mode.IsValid() {
			return fmt.Errorf("invalid view: %q (use day, week, month or stats)", args[0])
		}
		return withSession(func(s *session) error {
			if err := s.dispatch(state.SetViewMode{Mode: mode}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "View set to %s\n", mode)
			return nil
		})
	},
}

var themeCmd = &cobra.Command{
	Use:       "theme <dark|light>",
	Short:     "Choose the color theme",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"dark", "light"},
	RunE: func(cmd *cobra.Command, args []string) error {
		theme := model.Theme(args[0])
		if !theme.IsValid() {
			return fmt.Errorf("invalid theme: %q (use dark or light)", args[0])
		}
		return withSession(func(s *session) error {
			if err := s.dispatch(state.SetTheme{Theme: theme}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Theme set to %s\n", theme)
			return nil
		})
	},
}

var selectCmd = &cobra.Command{
	Use:   "select <date>",
	Short: "Select the date 'dayplan show' renders",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			date, err := resolveDate(s, args[0])
			if err != nil {
				return err
			}
			if err := s.dispatch(state.SelectDate{Date: date}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Selected %s\n", date)
			return nil
		})
	},
}

var flagMonth string

func init() {
	calendarCmd.Flags().StringVar(&flagMonth, "month", "", "Month to show (YYYY-MM)")
	addDateFlag(todayCmd, statsCmd, calendarCmd)
	rootCmd.AddCommand(todayCmd, statsCmd, calendarCmd, showCmd, viewCmd, themeCmd, selectCmd)
}
