// Package format renders dashboard entities as terminal lines.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/taxilian/dayplan/internal/dates"
	"github.com/taxilian/dayplan/internal/model"
	"github.com/taxilian/dayplan/internal/recur"
	"github.com/taxilian/dayplan/internal/stats"
	"github.com/taxilian/dayplan/internal/tree"
)

// Printer formats entities with a theme's styles. A plain Printer emits no
// escape sequences.
type Printer struct {
	plain   bool
	heading lipgloss.Style
	done    lipgloss.Style
	overdue lipgloss.Style
	muted   lipgloss.Style
	accent  lipgloss.Style
}

// New returns a printer for theme. With plain set, all styling is dropped.
func New(theme model.Theme, plain bool) *Printer {
	if plain {
		return &Printer{plain: true}
	}
	muted, accent := lipgloss.Color("241"), lipgloss.Color("39")
	if theme == model.ThemeLight {
		muted, accent = lipgloss.Color("245"), lipgloss.Color("26")
	}
	return &Printer{
		heading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		done:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		overdue: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		muted:   lipgloss.NewStyle().Foreground(muted),
		accent:  lipgloss.NewStyle().Foreground(accent),
	}
}

func (p *Printer) render(style lipgloss.Style, s string) string {
	if p.plain {
		return s
	}
	return style.Render(s)
}

// swatch renders a block in an entity's hex color.
func (p *Printer) swatch(color string) string {
	if p.plain || color == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("■") + " "
}

// Heading renders a section title.
func (p *Printer) Heading(s string) string { return p.render(p.heading, s) }

// Muted renders secondary text such as ids.
func (p *Printer) Muted(s string) string { return p.render(p.muted, s) }

// Checkbox returns "[x]" or "[ ]".
func Checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// Percent formats a whole percentage.
func Percent(n int) string { return fmt.Sprintf("%d%%", n) }

// Bar draws a width-cell progress bar for a percentage.
func Bar(percent, width int) string {
	if width <= 0 {
		return ""
	}
	percent = max(0, min(percent, 100))
	filled := percent * width / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Counter returns "current/target", or "" when the entity has no target.
func Counter(current, target *int) string {
	if target == nil {
		return ""
	}
	n := 0
	if current != nil {
		n = *current
	}
	return fmt.Sprintf("%d/%d", n, *target)
}

func (p *Printer) check(done bool) string {
	if done {
		return p.render(p.done, Checkbox(true))
	}
	return Checkbox(false)
}

// Project renders a project summary: title, completion count and id.
func (p *Printer) Project(pj model.Project) string {
	line := fmt.Sprintf("%s%s  %d/%d done  %s", p.swatch(pj.Color), pj.Title,
		tree.CountCompleted(pj.Tasks), tree.CountAll(pj.Tasks), p.Muted(pj.ID))
	if pj.Archived && pj.ArchivedAt != nil {
		line += p.Muted("  archived " + pj.ArchivedAt.Format("2006-01-02"))
	}
	return line
}

// Task renders one task for date at the given nesting depth.
func (p *Printer) Task(t model.Task, date string, depth int) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(p.check(t.CompletedOn(date) || (date == "" && t.Completed)))
	b.WriteString(" ")
	b.WriteString(t.Title)
	if c := Counter(t.CurrentCount, t.TargetCount); c != "" {
		b.WriteString(" (" + c + ")")
	}
	if len(t.ScheduledDates) > 0 && date == "" {
		b.WriteString(p.Muted("  @" + strings.Join(t.ScheduledDates, ",")))
	}
	b.WriteString("  " + p.Muted(t.ID))
	return b.String()
}

// TaskTree renders a task forest, one line per task, children indented
// under their parents. An empty date shows each task's overall state.
func (p *Printer) TaskTree(tasks []model.Task, date string) []string {
	var lines []string
	tree.Walk(tasks, func(t model.Task, depth int) {
		lines = append(lines, p.Task(t, date, depth))
		for _, l := range t.Links {
			lines = append(lines, strings.Repeat("  ", depth+2)+p.render(p.accent, l.Title)+" "+p.Muted(l.URL))
		}
	})
	return lines
}

// Scheduled renders a task placed on date, prefixed with its project.
func (p *Printer) Scheduled(st recur.ScheduledTask, date string) string {
	return p.swatch(st.Project.Color) + p.Muted(st.Project.Title+":") + " " + p.Task(st.Task, date, 0)
}

// Carryover renders a task carried over from an earlier day.
func (p *Printer) Carryover(c recur.CarryoverTask) string {
	return fmt.Sprintf("%s%s %s %s %s  %s", p.swatch(c.Project.Color), Checkbox(false), p.Muted(c.Project.Title+":"),
		c.Task.Title, p.render(p.overdue, "(from "+c.OriginalDate+")"), p.Muted(c.Task.ID))
}

// Recurring renders a recurring task's occurrence on date.
func (p *Printer) Recurring(r model.RecurringTask, date string) string {
	var b strings.Builder
	b.WriteString(p.swatch(r.Color))
	b.WriteString(p.check(r.CompletedOn(date)))
	b.WriteString(" " + r.Title)
	if c := Counter(r.CurrentCount, r.TargetCount); c != "" {
		b.WriteString(" (" + c + ")")
	}
	if r.SkippedOn(date) {
		b.WriteString(p.Muted(" skipped"))
	}
	b.WriteString(p.Muted("  " + ScheduleString(r.Schedule) + "  " + r.ID))
	for _, st := range r.Subtasks {
		b.WriteString("\n    " + p.check(st.Completed && st.CompletedDate == date) + " " + st.Title + "  " + p.Muted(st.ID))
	}
	return b.String()
}

// OneOff renders a one-off task, marking it overdue relative to today.
func (p *Printer) OneOff(o model.OneOffTask, today string) string {
	var b strings.Builder
	b.WriteString(p.check(o.Completed))
	b.WriteString(" " + o.Title)
	if c := Counter(o.CurrentCount, o.TargetCount); c != "" {
		b.WriteString(" (" + c + ")")
	}
	switch {
	case o.DueDate == "":
	case !o.Completed && o.DueDate < today:
		b.WriteString(" " + p.render(p.overdue, "overdue "+o.DueDate))
	default:
		b.WriteString(p.Muted(" due " + o.DueDate))
	}
	b.WriteString("  " + p.Muted(o.ID))
	for _, st := range o.Subtasks {
		b.WriteString("\n    " + p.check(st.Completed) + " " + st.Title + "  " + p.Muted(st.ID))
	}
	return b.String()
}

// Habit renders a habit's state on date with its streaks as of that date.
func (p *Printer) Habit(h model.Habit, date string, weekStart time.Weekday) string {
	unit := "day"
	if h.Frequency == model.FrequencyWeekly {
		unit = "week"
	}
	line := fmt.Sprintf("%s%s %s  %s (best %d)", p.swatch(h.Color), p.check(h.CompletedOn(date)), h.Title,
		Plural(recur.Streak(h, date, weekStart), unit), recur.BestStreak(h, date, weekStart))
	if h.Frequency == model.FrequencyWeekly && h.WeeklyTarget > 0 {
		line += p.Muted(fmt.Sprintf("  %dx/week", h.WeeklyTarget))
	}
	return line + "  " + p.Muted(h.ID)
}

// Reading renders a reading list entry.
func (p *Printer) Reading(r model.ReadingItem) string {
	line := p.check(r.Completed) + " " + r.Title
	if r.URL != "" {
		line += " " + p.render(p.accent, r.URL)
	}
	if r.Completed && r.CompletedDate != "" {
		line += p.Muted(" read " + r.CompletedDate)
	}
	return line + "  " + p.Muted(r.ID)
}

// Day renders a day's completion with a bar.
func (p *Printer) Day(d stats.Day) string {
	if !d.HasTasks() {
		return fmt.Sprintf("%s %-9s %s", d.Date, dates.DayName(d.Date), p.Muted("no tasks"))
	}
	return fmt.Sprintf("%s %-9s %s %4s  %d/%d", d.Date, dates.DayName(d.Date), Bar(d.Percent, 10), Percent(d.Percent), d.Done, d.Total)
}

// Comparison renders a week-over-week change, e.g. "▲ 6 (56% vs 50%)".
func (p *Printer) Comparison(c stats.Comparison) string {
	var arrow string
	switch c.Direction {
	case stats.Up:
		arrow = p.render(p.done, "▲ "+fmt.Sprint(c.Magnitude))
	case stats.Down:
		arrow = p.render(p.overdue, "▼ "+fmt.Sprint(c.Magnitude))
	default:
		arrow = "= 0"
	}
	return fmt.Sprintf("%s (%s vs %s)", arrow, Percent(c.Current), Percent(c.Previous))
}

// ScheduleString describes a schedule in words, e.g. "weekly Mon,Wed".
func ScheduleString(s model.Schedule) string {
	switch s.Type {
	case model.ScheduleWeekly:
		names := make([]string, 0, len(s.Days))
		for _, d := range s.Days {
			names = append(names, time.Weekday(d).String()[:3])
		}
		return "weekly " + strings.Join(names, ",")
	case model.ScheduleInterval:
		n := max(s.Interval, 1)
		return fmt.Sprintf("every %s from %s", Plural(n, "day"), s.StartDate)
	case model.ScheduleMonthly:
		if s.MonthDay > 0 {
			return fmt.Sprintf("monthly on day %d", s.MonthDay)
		}
		if s.MonthWeekday != nil {
			nth := fmt.Sprintf("#%d", s.MonthWeek)
			if s.MonthWeek == -1 {
				nth = "last"
			}
			return fmt.Sprintf("monthly %s %s", nth, time.Weekday(*s.MonthWeekday).String()[:3])
		}
		return "monthly"
	default:
		return string(s.Type)
	}
}

// Plural formats n with unit, adding "s" when n != 1.
func Plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// MonthGrid lays out the month containing date as calendar rows starting on
// weekStart. mark returns a one-character marker for each day. The first
// line is the weekday header.
func (p *Printer) MonthGrid(date string, weekStart time.Weekday, mark func(day string) string) []string {
	first, last := dates.MonthBounds(date)
	if first == "" {
		return nil
	}

	var header strings.Builder
	for i := 0; i < 7; i++ {
		header.WriteString(fmt.Sprintf("%-4s", time.Weekday((int(weekStart)+i)%7).String()[:2]))
	}
	lines := []string{p.Heading(strings.TrimRight(header.String(), " "))}

	gridStart, _ := dates.WeekBounds(first, weekStart)
	for weekFirst := gridStart; weekFirst <= last; weekFirst = dates.AddDays(weekFirst, 7) {
		var row strings.Builder
		for _, day := range dates.Range(weekFirst, dates.AddDays(weekFirst, 6)) {
			if day < first || day > last {
				row.WriteString("    ")
				continue
			}
			m := mark(day)
			if m == "" {
				m = " "
			}
			cell := fmt.Sprintf("%2s%s", strings.TrimLeft(day[8:], "0"), m)
			if day == date {
				cell = p.render(p.accent, cell)
			}
			row.WriteString(cell + " ")
		}
		lines = append(lines, strings.TrimRight(row.String(), " "))
	}
	return lines
}
