// Package recur decides which tasks belong to a given day: recurring
// schedules, explicitly scheduled project tasks, carried-over tasks, and
// habit streaks.
//
// All functions are total. Malformed dates and unknown schedule types are
// treated as "not due" rather than reported as errors.
package recur

import (
	"time"

	"github.com/taxilian/dayplan/internal/dates"
	"github.com/taxilian/dayplan/internal/model"
)

// IsDue reports whether a schedule has an occurrence on date.
// Dates before the schedule's start date and dates in skipped never match.
func IsDue(s model.Schedule, skipped []string, date string) bool {
	wd, ok := dates.Weekday(date)
	if !ok {
		return false
	}
	if s.StartDate != "" {
		if !dates.Valid(s.StartDate) || date < s.StartDate {
			return false
		}
	}
	if model.ContainsDate(skipped, date) {
		return false
	}

	switch s.Type {
	case model.ScheduleDaily:
		return true
	case model.ScheduleWeekdays:
		return wd >= time.Monday && wd <= time.Friday
	case model.ScheduleWeekends:
		return wd == time.Saturday || wd == time.Sunday
	case model.ScheduleWeekly:
		for _, d := range s.Days {
			if d == int(wd) {
				return true
			}
		}
		return false
	case model.ScheduleInterval:
		return intervalMatches(s, date)
	case model.ScheduleMonthly:
		return monthlyMatches(s, date, wd)
	default:
		return false
	}
}

// IsTaskDue reports whether a recurring task has an occurrence on date.
func IsTaskDue(t model.RecurringTask, date string) bool {
	return IsDue(t.Schedule, t.SkippedDates, date)
}

func intervalMatches(s model.Schedule, date string) bool {
	if s.StartDate == "" {
		return false
	}
	n, ok := dates.DaysBetween(s.StartDate, date)
	if !ok || n < 0 {
		return false
	}
	every := s.Interval
	if every < 1 {
		every = 1
	}
	return n%every == 0
}

func monthlyMatches(s model.Schedule, date string, wd time.Weekday) bool {
	t, err := dates.Parse(date)
	if err != nil {
		return false
	}
	day := t.Day()
	if s.MonthDay > 0 {
		return day == s.MonthDay
	}
	if s.MonthWeekday == nil || s.MonthWeek == 0 {
		return false
	}
	if int(wd) != *s.MonthWeekday {
		return false
	}
	if s.MonthWeek == -1 {
		// Last occurrence: another one would fall past the end of the month.
		return day+7 > dates.DaysInMonth(date)
	}
	if s.MonthWeek < 0 {
		return false
	}
	return (day-1)/7+1 == s.MonthWeek
}

// DueTasks returns the recurring tasks due on date, keeping input order.
func DueTasks(tasks []model.RecurringTask, date string) []model.RecurringTask {
	var due []model.RecurringTask
	for _, t := range tasks {
		if IsTaskDue(t, date) {
			due = append(due, t)
		}
	}
	return due
}

// Occurrences returns the dates in [from, to] on which the task is due.
func Occurrences(t model.RecurringTask, from, to string) []string {
	var out []string
	for _, d := range dates.Range(from, to) {
		if IsTaskDue(t, d) {
			out = append(out, d)
		}
	}
	return out
}
