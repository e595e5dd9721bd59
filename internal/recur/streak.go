package recur

import (
	"time"

	"github.com/taxilian/dayplan/internal/dates"
	"github.com/taxilian/dayplan/internal/model"
)

// HabitStreak counts consecutive completed days ending at ref, or at the day
// before ref when ref itself is not completed yet. A streak with neither day
// completed is broken and counts 0.
func HabitStreak(completed []string, ref string) int {
	if len(completed) == 0 || !dates.Valid(ref) {
		return 0
	}
	set := make(map[string]struct{}, len(completed))
	for _, d := range completed {
		set[d] = struct{}{}
	}

	day := ref
	if _, ok := set[day]; !ok {
		day = dates.AddDays(ref, -1)
		if _, ok := set[day]; !ok {
			return 0
		}
	}

	streak := 0
	for {
		if _, ok := set[day]; !ok {
			return streak
		}
		streak++
		day = dates.AddDays(day, -1)
	}
}

// WeeklyStreak counts consecutive weeks, ending at the week containing ref,
// with at least target completions. The current week may still be in
// progress, so an unmet current week does not break the streak.
func WeeklyStreak(completed []string, ref string, target int, weekStart time.Weekday) int {
	if len(completed) == 0 || !dates.Valid(ref) {
		return 0
	}
	if target < 1 {
		target = 1
	}
	perWeek := map[string]int{}
	for _, d := range model.UniqueDates(completed) {
		if d > ref {
			continue
		}
		first, _ := dates.WeekBounds(d, weekStart)
		if first != "" {
			perWeek[first]++
		}
	}

	week, _ := dates.WeekBounds(ref, weekStart)
	if perWeek[week] < target {
		week = dates.AddDays(week, -7)
	}
	streak := 0
	for perWeek[week] >= target {
		streak++
		week = dates.AddDays(week, -7)
	}
	return streak
}

// Streak returns the current streak of a habit according to its frequency.
// Habits without a frequency count as daily; unknown frequencies count 0.
func Streak(h model.Habit, ref string, weekStart time.Weekday) int {
	switch h.Frequency {
	case model.FrequencyDaily, "":
		return HabitStreak(h.CompletedDates, ref)
	case model.FrequencyWeekly:
		return WeeklyStreak(h.CompletedDates, ref, h.WeeklyTarget, weekStart)
	default:
		return 0
	}
}

// BestStreak returns the larger of the habit's stored best streak and its
// current streak. It never decreases the stored value.
func BestStreak(h model.Habit, ref string, weekStart time.Weekday) int {
	current := Streak(h, ref, weekStart)
	if h.BestStreak > current {
		return h.BestStreak
	}
	return current
}

// RefreshHabit recomputes the cached streak fields of h.
func RefreshHabit(h model.Habit, ref string, weekStart time.Weekday) model.Habit {
	h.BestStreak = BestStreak(h, ref, weekStart)
	h.CurrentStreak = Streak(h, ref, weekStart)
	return h
}

// RefreshHabits returns habits with streak caches recomputed.
func RefreshHabits(habits []model.Habit, ref string, weekStart time.Weekday) []model.Habit {
	out := make([]model.Habit, len(habits))
	for i, h := range habits {
		out[i] = RefreshHabit(h, ref, weekStart)
	}
	return out
}
