package state

import (
	"reflect"

	"github.com/taxilian/dayplan/internal/model"
	"github.com/taxilian/dayplan/internal/tree"
)

// Action is a state transition request. The set of actions is closed: only
// the types declared in this file implement it.
type Action interface {
	// Target is the id of the entity the action is about, or "" for
	// actions on the whole state.
	Target() string
	action()
}

// Name returns the action's type name, e.g. "AddProject".
func Name(a Action) string {
	if a == nil {
		return ""
	}
	t := reflect.TypeOf(a)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// Projects

type AddProject struct {
	ID    string `validate:"required"`
	Title string `validate:"required"`
	Color string `validate:"omitempty,hexcolor"`
	Notes string
}

// InsertProject adds a fully built project, such as one instantiated from a
// template. It is a no-op when a project with the same id exists.
type InsertProject struct {
	Project model.Project
}

type UpdateProject struct {
	ProjectID string  `validate:"required"`
	Title     *string `validate:"omitempty,min=1"`
	Color     *string `validate:"omitempty,hexcolor"`
	Notes     *string
}

type DeleteProject struct {
	ProjectID string `validate:"required"`
}

type ArchiveProject struct {
	ProjectID string `validate:"required"`
}

type UnarchiveProject struct {
	ProjectID string `validate:"required"`
}

type AddProjectLink struct {
	ProjectID string `validate:"required"`
	Link      model.Link
}

type RemoveProjectLink struct {
	ProjectID string `validate:"required"`
	LinkID    string `validate:"required"`
}

// Project tasks

// AddTask appends a root task to a project, optionally scheduled on Date.
type AddTask struct {
	ProjectID string `validate:"required"`
	ID        string `validate:"required"`
	Title     string `validate:"required"`
	Date      string `validate:"omitempty,isodate"`
}

// AddSubtask appends a child under ParentID.
type AddSubtask struct {
	ProjectID string `validate:"required"`
	ParentID  string `validate:"required"`
	ID        string `validate:"required"`
	Title     string `validate:"required"`
}

type UpdateTask struct {
	ProjectID string `validate:"required"`
	TaskID    string `validate:"required"`
	Patch     tree.Patch
}

type DeleteTask struct {
	ProjectID string `validate:"required"`
	TaskID    string `validate:"required"`
}

type ScheduleTask struct {
	ProjectID string `validate:"required"`
	TaskID    string `validate:"required"`
	Date      string `validate:"required,isodate"`
}

type UnscheduleTask struct {
	ProjectID string `validate:"required"`
	TaskID    string `validate:"required"`
	Date      string `validate:"required,isodate"`
}

// SetTaskCompletion marks a task done or not done for one date.
type SetTaskCompletion struct {
	ProjectID string `validate:"required"`
	TaskID    string `validate:"required"`
	Date      string `validate:"required,isodate"`
	Done      bool
}

type AddTaskLink struct {
	ProjectID string `validate:"required"`
	TaskID    string `validate:"required"`
	Link      model.Link
}

type RemoveTaskLink struct {
	ProjectID string `validate:"required"`
	TaskID    string `validate:"required"`
	LinkID    string `validate:"required"`
}

// Recurring tasks

type AddRecurring struct {
	ID          string `validate:"required"`
	Title       string `validate:"required"`
	Color       string `validate:"omitempty,hexcolor"`
	Schedule    model.Schedule
	TargetCount *int   `validate:"omitempty,min=1"`
	QuickLink   string `validate:"omitempty,url"`
	Subtasks    []model.Subtask
}

type UpdateRecurring struct {
	ID        string          `validate:"required"`
	Title     *string         `validate:"omitempty,min=1"`
	Color     *string         `validate:"omitempty,hexcolor"`
	Schedule  *model.Schedule
	QuickLink *string `validate:"omitempty,url"`
}

type DeleteRecurring struct {
	ID string `validate:"required"`
}

type SetRecurringCompletion struct {
	ID   string `validate:"required"`
	Date string `validate:"required,isodate"`
	Done bool
}

type SkipRecurring struct {
	ID   string `validate:"required"`
	Date string `validate:"required,isodate"`
}

type UnskipRecurring struct {
	ID   string `validate:"required"`
	Date string `validate:"required,isodate"`
}

// IncrementRecurringCounter moves the progress counter by Delta. Reaching
// the target completes the occurrence on Date; dropping below it reopens it.
type IncrementRecurringCounter struct {
	ID    string `validate:"required"`
	Date  string `validate:"required,isodate"`
	Delta int
}

type ToggleRecurringSubtask struct {
	ID        string `validate:"required"`
	SubtaskID string `validate:"required"`
	Date      string `validate:"required,isodate"`
}

// One-off tasks

type AddOneOff struct {
	ID          string `validate:"required"`
	Title       string `validate:"required"`
	DueDate     string `validate:"omitempty,isodate"`
	TargetCount *int   `validate:"omitempty,min=1"`
	Subtasks    []model.Subtask
}

type UpdateOneOff struct {
	ID      string  `validate:"required"`
	Title   *string `validate:"omitempty,min=1"`
	DueDate *string `validate:"omitempty,isodate"`
}

type DeleteOneOff struct {
	ID string `validate:"required"`
}

type SetOneOffCompletion struct {
	ID   string `validate:"required"`
	Date string `validate:"required,isodate"`
	Done bool
}

type IncrementOneOffCounter struct {
	ID    string `validate:"required"`
	Date  string `validate:"required,isodate"`
	Delta int
}

type ToggleOneOffSubtask struct {
	ID        string `validate:"required"`
	SubtaskID string `validate:"required"`
	Date      string `validate:"required,isodate"`
}

// Habits

type AddHabit struct {
	ID           string          `validate:"required"`
	Title        string          `validate:"required"`
	Color        string          `validate:"omitempty,hexcolor"`
	Frequency    model.Frequency `validate:"required,oneof=daily weekly"`
	WeeklyTarget int             `validate:"min=0,max=7"`
}

type DeleteHabit struct {
	ID string `validate:"required"`
}

// SetHabitCompletion checks or unchecks a habit for Date and refreshes its
// streaks.
type SetHabitCompletion struct {
	ID   string `validate:"required"`
	Date string `validate:"required,isodate"`
	Done bool
}

// Reading list

type AddReadingItem struct {
	ID    string `validate:"required"`
	Title string `validate:"required"`
	URL   string `validate:"omitempty,url"`
}

type ToggleReadingItem struct {
	ID   string `validate:"required"`
	Date string `validate:"required,isodate"`
}

type DeleteReadingItem struct {
	ID string `validate:"required"`
}

// View state

type SelectDate struct {
	Date string `validate:"required,isodate"`
}

type SetViewMode struct {
	Mode model.ViewMode `validate:"required,oneof=day week month stats"`
}

type SetTheme struct {
	Theme model.Theme `validate:"required,oneof=dark light"`
}

func (a AddProject) Target() string                { return a.ID }
func (a InsertProject) Target() string             { return a.Project.ID }
func (a UpdateProject) Target() string             { return a.ProjectID }
func (a DeleteProject) Target() string             { return a.ProjectID }
func (a ArchiveProject) Target() string            { return a.ProjectID }
func (a UnarchiveProject) Target() string          { return a.ProjectID }
func (a AddProjectLink) Target() string            { return a.ProjectID }
func (a RemoveProjectLink) Target() string         { return a.ProjectID }
func (a AddTask) Target() string                   { return a.ID }
func (a AddSubtask) Target() string                { return a.ID }
func (a UpdateTask) Target() string                { return a.TaskID }
func (a DeleteTask) Target() string                { return a.TaskID }
func (a ScheduleTask) Target() string              { return a.TaskID }
func (a UnscheduleTask) Target() string            { return a.TaskID }
func (a SetTaskCompletion) Target() string         { return a.TaskID }
func (a AddTaskLink) Target() string               { return a.TaskID }
func (a RemoveTaskLink) Target() string            { return a.TaskID }
func (a AddRecurring) Target() string              { return a.ID }
func (a UpdateRecurring) Target() string           { return a.ID }
func (a DeleteRecurring) Target() string           { return a.ID }
func (a SetRecurringCompletion) Target() string    { return a.ID }
func (a SkipRecurring) Target() string             { return a.ID }
func (a UnskipRecurring) Target() string           { return a.ID }
func (a IncrementRecurringCounter) Target() string { return a.ID }
func (a ToggleRecurringSubtask) Target() string    { return a.ID }
func (a AddOneOff) Target() string                 { return a.ID }
func (a UpdateOneOff) Target() string              { return a.ID }
func (a DeleteOneOff) Target() string              { return a.ID }
func (a SetOneOffCompletion) Target() string       { return a.ID }
func (a IncrementOneOffCounter) Target() string    { return a.ID }
func (a ToggleOneOffSubtask) Target() string       { return a.ID }
func (a AddHabit) Target() string                  { return a.ID }
func (a DeleteHabit) Target() string               { return a.ID }
func (a SetHabitCompletion) Target() string        { return a.ID }
func (a AddReadingItem) Target() string            { return a.ID }
func (a ToggleReadingItem) Target() string         { return a.ID }
func (a DeleteReadingItem) Target() string         { return a.ID }
func (a SelectDate) Target() string                { return "" }
func (a SetViewMode) Target() string               { return "" }
func (a SetTheme) Target() string                  { return "" }

func (AddProject) action()                {}
func (InsertProject) action()             {}
func (UpdateProject) action()             {}
func (DeleteProject) action()             {}
func (ArchiveProject) action()            {}
func (UnarchiveProject) action()          {}
func (AddProjectLink) action()            {}
func (RemoveProjectLink) action()         {}
func (AddTask) action()                   {}
func (AddSubtask) action()                {}
func (UpdateTask) action()                {}
func (DeleteTask) action()                {}
func (ScheduleTask) action()              {}
func (UnscheduleTask) action()            {}
func (SetTaskCompletion) action()         {}
func (AddTaskLink) action()               {}
func (RemoveTaskLink) action()            {}
func (AddRecurring) action()              {}
func (UpdateRecurring) action()           {}
func (DeleteRecurring) action()           {}
func (SetRecurringCompletion) action()    {}
func (SkipRecurring) action()             {}
func (UnskipRecurring) action()           {}
func (IncrementRecurringCounter) action() {}
func (ToggleRecurringSubtask) action()    {}
func (AddOneOff) action()                 {}
func (UpdateOneOff) action()              {}
func (DeleteOneOff) action()              {}
func (SetOneOffCompletion) action()       {}
func (IncrementOneOffCounter) action()    {}
func (ToggleOneOffSubtask) action()       {}
func (AddHabit) action()                  {}
func (DeleteHabit) action()               {}
func (SetHabitCompletion) action()        {}
func (AddReadingItem) action()            {}
func (ToggleReadingItem) action()         {}
func (DeleteReadingItem) action()         {}
func (SelectDate) action()                {}
func (SetViewMode) action()               {}
func (SetTheme) action()                  {}
