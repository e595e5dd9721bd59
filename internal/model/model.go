// Package model defines the dashboard entities and their persisted JSON shape.
package model

import "time"

// Link is a titled URL attached to a task or project.
type Link struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url" validate:"required"`
}

// Project owns an ordered forest of tasks.
type Project struct {
	ID         string     `json:"id" validate:"required"`
	Title      string     `json:"title" validate:"required"`
	Color      string     `json:"color"`
	Tasks      []Task     `json:"tasks"`
	Notes      string     `json:"notes,omitempty"`
	Links      []Link     `json:"links,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	Archived   bool       `json:"archived,omitempty"`
	ArchivedAt *time.Time `json:"archivedAt,omitempty"`
}

// Task is a node in a project's task forest. Subtasks nest without limit.
type Task struct {
	ID             string   `json:"id"`
	ProjectID      string   `json:"projectId"`
	ParentID       *string  `json:"parentId"`
	Title          string   `json:"title"`
	Completed      bool     `json:"completed"`
	ScheduledDates []string `json:"scheduledDates"`
	CompletedDates []string `json:"completedDates"`
	Links          []Link   `json:"links"`
	Subtasks       []Task   `json:"subtasks"`
	CurrentCount   *int     `json:"currentCount,omitempty"`
	TargetCount    *int     `json:"targetCount,omitempty"`
}

// CompletedOn reports whether the task was marked done on date.
func (t Task) CompletedOn(date string) bool { return ContainsDate(t.CompletedDates, date) }

// ScheduledOn reports whether the task is placed on date.
func (t Task) ScheduledOn(date string) bool { return ContainsDate(t.ScheduledDates, date) }

// ScheduleType selects the recurrence rule of a Schedule.
type ScheduleType string

const (
	ScheduleDaily    ScheduleType = "daily"
	ScheduleWeekdays ScheduleType = "weekdays"
	ScheduleWeekends ScheduleType = "weekends"
	ScheduleWeekly   ScheduleType = "weekly"
	ScheduleMonthly  ScheduleType = "monthly"
	ScheduleInterval ScheduleType = "interval"
)

// Schedule describes when a recurring task is due.
//
// Weekdays are numbered 0=Sunday..6=Saturday. For monthly schedules MonthDay
// takes precedence; otherwise MonthWeek/MonthWeekday select the nth weekday
// of the month, with MonthWeek -1 meaning the last one.
type Schedule struct {
	Type         ScheduleType `json:"type" validate:"required,oneof=daily weekdays weekends weekly monthly interval"`
	Days         []int        `json:"days,omitempty" validate:"omitempty,dive,min=0,max=6"`
	Interval     int          `json:"interval,omitempty" validate:"min=0"`
	MonthDay     int          `json:"monthDay,omitempty" validate:"min=0,max=31"`
	MonthWeek    int          `json:"monthWeek,omitempty" validate:"min=-1,max=5"`
	MonthWeekday *int         `json:"monthWeekday,omitempty" validate:"omitempty,min=0,max=6"`
	StartDate    string       `json:"startDate" validate:"omitempty,isodate"`
}

// Subtask is a flat checklist entry on recurring and one-off tasks.
type Subtask struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Completed     bool   `json:"completed"`
	CompletedDate string `json:"completedDate,omitempty"`
}

// RecurringTask recurs on a computed schedule instead of explicit dates.
type RecurringTask struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Color          string    `json:"color"`
	Schedule       Schedule  `json:"schedule"`
	CompletedDates []string  `json:"completedDates"`
	SkippedDates   []string  `json:"skippedDates"`
	CurrentCount   *int      `json:"currentCount,omitempty"`
	TargetCount    *int      `json:"targetCount,omitempty"`
	QuickLink      string    `json:"quickLink,omitempty"`
	Subtasks       []Subtask `json:"subtasks,omitempty"`
}

// CompletedOn reports whether this occurrence was done on date.
func (r RecurringTask) CompletedOn(date string) bool { return ContainsDate(r.CompletedDates, date) }

// SkippedOn reports whether the occurrence on date was skipped.
func (r RecurringTask) SkippedOn(date string) bool { return ContainsDate(r.SkippedDates, date) }

// OneOffTask is a standalone task with an optional due date.
type OneOffTask struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	DueDate       string    `json:"dueDate,omitempty"`
	Completed     bool      `json:"completed"`
	CompletedDate string    `json:"completedDate,omitempty"`
	CurrentCount  *int      `json:"currentCount,omitempty"`
	TargetCount   *int      `json:"targetCount,omitempty"`
	Subtasks      []Subtask `json:"subtasks,omitempty"`
}

// CompletedOn reports whether the task was completed on date.
func (o OneOffTask) CompletedOn(date string) bool {
	return o.Completed && o.CompletedDate == date
}

// Frequency is how often a habit is meant to be performed.
type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

// Habit tracks a repeated behavior. CurrentStreak and BestStreak are caches
// derived from CompletedDates.
type Habit struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Color          string    `json:"color"`
	Frequency      Frequency `json:"frequency"`
	WeeklyTarget   int       `json:"weeklyTarget,omitempty"`
	CompletedDates []string  `json:"completedDates"`
	CurrentStreak  int       `json:"currentStreak"`
	BestStreak     int       `json:"bestStreak"`
}

// CompletedOn reports whether the habit was done on date.
func (h Habit) CompletedOn(date string) bool { return ContainsDate(h.CompletedDates, date) }

// ReadingItem is an entry on the reading list.
type ReadingItem struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	URL           string    `json:"url,omitempty"`
	Completed     bool      `json:"completed"`
	CompletedDate string    `json:"completedDate,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ViewMode is the active dashboard view.
type ViewMode string

const (
	ViewDay   ViewMode = "day"
	ViewWeek  ViewMode = "week"
	ViewMonth ViewMode = "month"
	ViewStats ViewMode = "stats"
)

// IsValid reports whether v is one of the known views.
func (v ViewMode) IsValid() bool {
	return v == ViewDay || v == ViewWeek || v == ViewMonth || v == ViewStats
}

// Theme is the color theme.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// IsValid reports whether t is one of the known themes.
func (t Theme) IsValid() bool {
	return t == ThemeDark || t == ThemeLight
}

// AppState is the aggregate root persisted as one JSON document.
type AppState struct {
	Projects         []Project       `json:"projects"`
	ArchivedProjects []Project       `json:"archivedProjects"`
	RecurringTasks   []RecurringTask `json:"recurringTasks"`
	OneOffTasks      []OneOffTask    `json:"oneOffTasks"`
	Habits           []Habit         `json:"habits"`
	ReadingList      []ReadingItem   `json:"readingList"`
	SelectedDate     string          `json:"selectedDate"`
	ViewMode         ViewMode        `json:"viewMode"`
	Theme            Theme           `json:"theme"`
}

// NewAppState returns an empty state with selectedDate set to today.
func NewAppState(today string) AppState {
	return AppState{
		Projects:         []Project{},
		ArchivedProjects: []Project{},
		RecurringTasks:   []RecurringTask{},
		OneOffTasks:      []OneOffTask{},
		Habits:           []Habit{},
		ReadingList:      []ReadingItem{},
		SelectedDate:     today,
		ViewMode:         ViewDay,
		Theme:            ThemeDark,
	}
}
