// Package stats derives completion percentages from scheduled project tasks.
package stats

import (
	"math"
	"time"

	"github.com/taxilian/dayplan/internal/dates"
	"github.com/taxilian/dayplan/internal/model"
	"github.com/taxilian/dayplan/internal/recur"
)

// Direction of a week-over-week change.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
	Same Direction = "same"
)

// Day is the completion summary of one calendar day.
type Day struct {
	Date    string
	Done    int
	Total   int
	Percent int
}

// HasTasks reports whether anything was scheduled on the day.
func (d Day) HasTasks() bool { return d.Total > 0 }

// ForDate counts the tasks scheduled on date and how many of them were
// completed on that date.
func ForDate(projects []model.Project, date string) Day {
	scheduled := recur.ScheduledTasksForDate(projects, date)
	tasks := make([]model.Task, len(scheduled))
	for i, st := range scheduled {
		tasks[i] = st.Task
	}
	day := Day{Date: date, Done: DoneOn(tasks, date), Total: len(tasks)}
	day.Percent = percent(day.Done, day.Total)
	return day
}

// DoneOn counts the items completed on date.
func DoneOn[T model.Completable](items []T, date string) int {
	n := 0
	for _, it := range items {
		if it.CompletedOn(date) {
			n++
		}
	}
	return n
}

// Completed counts the days on which c was completed.
func Completed(c model.Completable, days []string) int {
	n := 0
	for _, d := range days {
		if c.CompletedOn(d) {
			n++
		}
	}
	return n
}

// CompletionForDate returns the rounded percentage of scheduled tasks
// completed on date, or 0 when nothing was scheduled.
func CompletionForDate(projects []model.Project, date string) int {
	return ForDate(projects, date).Percent
}

// Days summarizes every day from first to last inclusive.
func Days(projects []model.Project, first, last string) []Day {
	var out []Day
	for _, d := range dates.Range(first, last) {
		out = append(out, ForDate(projects, d))
	}
	return out
}

// Average returns the mean completion over days in [first, last] that have
// at least one scheduled task. Empty days are left out of the denominator.
func Average(projects []model.Project, first, last string) int {
	sum, n := 0, 0
	for _, day := range Days(projects, first, last) {
		if !day.HasTasks() {
			continue
		}
		sum += day.Percent
		n++
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n)))
}

// WeeklyAverage averages completion over the week containing date.
func WeeklyAverage(projects []model.Project, date string, weekStart time.Weekday) int {
	first, last := dates.WeekBounds(date, weekStart)
	return Average(projects, first, last)
}

// MonthlyAverage averages completion over the month containing date.
func MonthlyAverage(projects []model.Project, date string) int {
	first, last := dates.MonthBounds(date)
	return Average(projects, first, last)
}

// BestDay is the strongest day of a week.
type BestDay struct {
	Date    string
	Name    string
	Percent int
}

// BestDayOfWeek returns the day in [first, last] with the highest completion
// among days that have tasks. The earliest day wins a tie. ok is false when
// no day in the range had anything scheduled.
func BestDayOfWeek(projects []model.Project, first, last string) (best BestDay, ok bool) {
	for _, day := range Days(projects, first, last) {
		if !day.HasTasks() {
			continue
		}
		if !ok || day.Percent > best.Percent {
			best = BestDay{Date: day.Date, Name: dates.DayName(day.Date), Percent: day.Percent}
			ok = true
		}
	}
	return best, ok
}

// Comparison is the change between two consecutive weekly averages.
type Comparison struct {
	Current   int
	Previous  int
	Direction Direction
	Magnitude int
}

// WeekOverWeek compares the weekly average of the week containing date with
// the week immediately before it.
func WeekOverWeek(projects []model.Project, date string, weekStart time.Weekday) Comparison {
	first, last := dates.WeekBounds(date, weekStart)
	c := Comparison{
		Current:  Average(projects, first, last),
		Previous: Average(projects, dates.AddDays(first, -7), dates.AddDays(last, -7)),
	}
	diff := c.Current - c.Previous
	switch {
	case diff > 0:
		c.Direction = Up
	case diff < 0:
		c.Direction = Down
		diff = -diff
	default:
		c.Direction = Same
	}
	c.Magnitude = diff
	return c
}

func percent(done, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}
