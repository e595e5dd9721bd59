// Package state holds the dashboard reducer and the persisted state codec.
//
// Reduce never modifies its input and never fails: actions that name an
// unknown id return an equivalent state. Validation happens separately, in
// Validate, at the dispatch boundary.
package state

import (
	"time"

	"github.com/taxilian/dayplan/internal/dates"
	"github.com/taxilian/dayplan/internal/model"
	"github.com/taxilian/dayplan/internal/recur"
	"github.com/taxilian/dayplan/internal/tree"
)

// Reducer applies actions to a state. WeekStart is used when refreshing
// weekly habit streaks.
type Reducer struct {
	WeekStart time.Weekday
}

// Reduce applies a with a Sunday week start.
func Reduce(s model.AppState, a Action, now time.Time) model.AppState {
	return Reducer{WeekStart: time.Sunday}.Reduce(s, a, now)
}

// Reduce returns the state that results from applying a to s at time now.
func (r Reducer) Reduce(s model.AppState, a Action, now time.Time) model.AppState {
	today := dates.Today(now)

	switch a := a.(type) {
	// Projects
	case AddProject:
		if projectExists(s, a.ID) {
			break
		}
		s.Projects = appendNew(s.Projects, model.Project{
			ID:        a.ID,
			Title:     a.Title,
			Color:     a.Color,
			Notes:     a.Notes,
			Tasks:     []model.Task{},
			Links:     []model.Link{},
			CreatedAt: now,
		})
	case InsertProject:
		if projectExists(s, a.Project.ID) {
			break
		}
		p := a.Project
		p.Archived = false
		p.ArchivedAt = nil
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		s.Projects = appendNew(s.Projects, normalizeProjects([]model.Project{p})...)
	case UpdateProject:
		s = updateProjects(s, a.ProjectID, func(p model.Project) model.Project {
			if a.Title != nil {
				p.Title = *a.Title
			}
			if a.Color != nil {
				p.Color = *a.Color
			}
			if a.Notes != nil {
				p.Notes = *a.Notes
			}
			return p
		})
	case DeleteProject:
		s.Projects = removeByID(s.Projects, a.ProjectID, projectID)
		s.ArchivedProjects = removeByID(s.ArchivedProjects, a.ProjectID, projectID)
	case ArchiveProject:
		i := indexByID(s.Projects, a.ProjectID, projectID)
		if i < 0 {
			break
		}
		p := s.Projects[i]
		at := now
		p.Archived = true
		p.ArchivedAt = &at
		s.Projects = removeAt(s.Projects, i)
		s.ArchivedProjects = appendNew(s.ArchivedProjects, p)
	case UnarchiveProject:
		i := indexByID(s.ArchivedProjects, a.ProjectID, projectID)
		if i < 0 {
			break
		}
		p := s.ArchivedProjects[i]
		p.Archived = false
		p.ArchivedAt = nil
		s.ArchivedProjects = removeAt(s.ArchivedProjects, i)
		s.Projects = appendNew(s.Projects, p)
	case AddProjectLink:
		s = updateProjects(s, a.ProjectID, func(p model.Project) model.Project {
			p.Links = addUnique(p.Links, a.Link, linkID)
			return p
		})
	case RemoveProjectLink:
		s = updateProjects(s, a.ProjectID, func(p model.Project) model.Project {
			p.Links = removeByID(p.Links, a.LinkID, linkID)
			return p
		})

	// Project tasks
	case AddTask:
		if taskExists(s, a.ID) {
			break
		}
		task := newTask(a.ProjectID, nil, a.ID, a.Title)
		if a.Date != "" {
			task.ScheduledDates = []string{a.Date}
		}
		s = updateTasks(s, a.ProjectID, func(tasks []model.Task) []model.Task {
			return appendNew(tasks, task)
		})
	case AddSubtask:
		if taskExists(s, a.ID) {
			break
		}
		parent := a.ParentID
		task := newTask(a.ProjectID, &parent, a.ID, a.Title)
		s = updateTasks(s, a.ProjectID, func(tasks []model.Task) []model.Task {
			return tree.AddSubtask(tasks, a.ParentID, task)
		})
	case UpdateTask:
		s = updateTasks(s, a.ProjectID, func(tasks []model.Task) []model.Task {
			return tree.Update(tasks, a.TaskID, a.Patch)
		})
	case DeleteTask:
		s = updateTasks(s, a.ProjectID, func(tasks []model.Task) []model.Task {
			return tree.Delete(tasks, a.TaskID)
		})
	case ScheduleTask:
		s = updateTask(s, a.ProjectID, a.TaskID, func(t model.Task) model.Task {
			t.ScheduledDates = model.WithDate(t.ScheduledDates, a.Date)
			return t
		})
	case UnscheduleTask:
		s = updateTask(s, a.ProjectID, a.TaskID, func(t model.Task) model.Task {
			t.ScheduledDates = model.WithoutDate(t.ScheduledDates, a.Date)
			return t
		})
	case SetTaskCompletion:
		s = updateTask(s, a.ProjectID, a.TaskID, func(t model.Task) model.Task {
			t.CompletedDates = model.SetDate(t.CompletedDates, a.Date, a.Done)
			t.Completed = len(t.CompletedDates) > 0
			return t
		})
	case AddTaskLink:
		s = updateTask(s, a.ProjectID, a.TaskID, func(t model.Task) model.Task {
			t.Links = addUnique(t.Links, a.Link, linkID)
			return t
		})
	case RemoveTaskLink:
		s = updateTask(s, a.ProjectID, a.TaskID, func(t model.Task) model.Task {
			t.Links = removeByID(t.Links, a.LinkID, linkID)
			return t
		})

	// Recurring tasks
	case AddRecurring:
		sched := a.Schedule
		if sched.StartDate == "" {
			sched.StartDate = today
		}
		rt := model.RecurringTask{
			ID:             a.ID,
			Title:          a.Title,
			Color:          a.Color,
			Schedule:       sched,
			CompletedDates: []string{},
			SkippedDates:   []string{},
			TargetCount:    a.TargetCount,
			QuickLink:      a.QuickLink,
			Subtasks:       appendNew([]model.Subtask(nil), a.Subtasks...),
		}
		if a.TargetCount != nil {
			rt.CurrentCount = model.IntPtr(0)
		}
		s.RecurringTasks = addUnique(s.RecurringTasks, rt, recurringID)
	case UpdateRecurring:
		s.RecurringTasks = updateByID(s.RecurringTasks, a.ID, recurringID, func(rt model.RecurringTask) model.RecurringTask {
			if a.Title != nil {
				rt.Title = *a.Title
			}
			if a.Color != nil {
				rt.Color = *a.Color
			}
			if a.Schedule != nil {
				rt.Schedule = *a.Schedule
			}
			if a.QuickLink != nil {
				rt.QuickLink = *a.QuickLink
			}
			return rt
		})
	case DeleteRecurring:
		s.RecurringTasks = removeByID(s.RecurringTasks, a.ID, recurringID)
	case SetRecurringCompletion:
		s.RecurringTasks = updateByID(s.RecurringTasks, a.ID, recurringID, func(rt model.RecurringTask) model.RecurringTask {
			rt.CompletedDates = model.SetDate(rt.CompletedDates, a.Date, a.Done)
			return rt
		})
	case SkipRecurring:
		s.RecurringTasks = updateByID(s.RecurringTasks, a.ID, recurringID, func(rt model.RecurringTask) model.RecurringTask {
			rt.SkippedDates = model.WithDate(rt.SkippedDates, a.Date)
			return rt
		})
	case UnskipRecurring:
		s.RecurringTasks = updateByID(s.RecurringTasks, a.ID, recurringID, func(rt model.RecurringTask) model.RecurringTask {
			rt.SkippedDates = model.WithoutDate(rt.SkippedDates, a.Date)
			return rt
		})
	case IncrementRecurringCounter:
		s.RecurringTasks = updateByID(s.RecurringTasks, a.ID, recurringID, func(rt model.RecurringTask) model.RecurringTask {
			count, reached := step(rt.CurrentCount, rt.TargetCount, a.Delta)
			rt.CurrentCount = count
			if rt.TargetCount != nil {
				rt.CompletedDates = model.SetDate(rt.CompletedDates, a.Date, reached)
			}
			return rt
		})
	case ToggleRecurringSubtask:
		s.RecurringTasks = updateByID(s.RecurringTasks, a.ID, recurringID, func(rt model.RecurringTask) model.RecurringTask {
			rt.Subtasks = toggleSubtask(rt.Subtasks, a.SubtaskID, a.Date)
			return rt
		})

	// One-off tasks
	case AddOneOff:
		o := model.OneOffTask{
			ID:          a.ID,
			Title:       a.Title,
			DueDate:     a.DueDate,
			TargetCount: a.TargetCount,
			Subtasks:    appendNew([]model.Subtask(nil), a.Subtasks...),
		}
		if a.TargetCount != nil {
			o.CurrentCount = model.IntPtr(0)
		}
		s.OneOffTasks = addUnique(s.OneOffTasks, o, oneOffID)
	case UpdateOneOff:
		s.OneOffTasks = updateByID(s.OneOffTasks, a.ID, oneOffID, func(o model.OneOffTask) model.OneOffTask {
			if a.Title != nil {
				o.Title = *a.Title
			}
			if a.DueDate != nil {
				o.DueDate = *a.DueDate
			}
			return o
		})
	case DeleteOneOff:
		s.OneOffTasks = removeByID(s.OneOffTasks, a.ID, oneOffID)
	case SetOneOffCompletion:
		s.OneOffTasks = updateByID(s.OneOffTasks, a.ID, oneOffID, func(o model.OneOffTask) model.OneOffTask {
			return completeOneOff(o, a.Date, a.Done)
		})
	case IncrementOneOffCounter:
		s.OneOffTasks = updateByID(s.OneOffTasks, a.ID, oneOffID, func(o model.OneOffTask) model.OneOffTask {
			count, reached := step(o.CurrentCount, o.TargetCount, a.Delta)
			o.CurrentCount = count
			if o.TargetCount != nil {
				o = completeOneOff(o, a.Date, reached)
			}
			return o
		})
	case ToggleOneOffSubtask:
		s.OneOffTasks = updateByID(s.OneOffTasks, a.ID, oneOffID, func(o model.OneOffTask) model.OneOffTask {
			o.Subtasks = toggleSubtask(o.Subtasks, a.SubtaskID, a.Date)
			return o
		})

	// Habits
	case AddHabit:
		s.Habits = addUnique(s.Habits, model.Habit{
			ID:             a.ID,
			Title:          a.Title,
			Color:          a.Color,
			Frequency:      a.Frequency,
			WeeklyTarget:   a.WeeklyTarget,
			CompletedDates: []string{},
		}, habitID)
	case DeleteHabit:
		s.Habits = removeByID(s.Habits, a.ID, habitID)
	case SetHabitCompletion:
		s.Habits = updateByID(s.Habits, a.ID, habitID, func(h model.Habit) model.Habit {
			h.CompletedDates = model.SetDate(h.CompletedDates, a.Date, a.Done)
			return recur.RefreshHabit(h, today, r.WeekStart)
		})

	// Reading list
	case AddReadingItem:
		s.ReadingList = addUnique(s.ReadingList, model.ReadingItem{
			ID:        a.ID,
			Title:     a.Title,
			URL:       a.URL,
			CreatedAt: now,
		}, readingID)
	case ToggleReadingItem:
		s.ReadingList = updateByID(s.ReadingList, a.ID, readingID, func(it model.ReadingItem) model.ReadingItem {
			it.Completed = !it.Completed
			it.CompletedDate = ""
			if it.Completed {
				it.CompletedDate = a.Date
			}
			return it
		})
	case DeleteReadingItem:
		s.ReadingList = removeByID(s.ReadingList, a.ID, readingID)

	// View state
	case SelectDate:
		if dates.Valid(a.Date) {
			s.SelectedDate = a.Date
		}
	case SetViewMode:
		if a.Mode.IsValid() {
			s.ViewMode = a.Mode
		}
	case SetTheme:
		if a.Theme.IsValid() {
			s.Theme = a.Theme
		}
	}
	return s
}

// RefreshStreaks recomputes every habit's streak cache against today.
func (r Reducer) RefreshStreaks(s model.AppState, now time.Time) model.AppState {
	s.Habits = recur.RefreshHabits(s.Habits, dates.Today(now), r.WeekStart)
	return s
}

func newTask(projectID string, parentID *string, id, title string) model.Task {
	return model.Task{
		ID:             id,
		ProjectID:      projectID,
		ParentID:       parentID,
		Title:          title,
		ScheduledDates: []string{},
		CompletedDates: []string{},
		Links:          []model.Link{},
		Subtasks:       []model.Task{},
	}
}

// step moves a counter by delta, clamped to [0, target]. reached reports
// whether the target is met.
func step(current, target *int, delta int) (*int, bool) {
	n := delta
	if current != nil {
		n += *current
	}
	if n < 0 {
		n = 0
	}
	if target != nil && n > *target {
		n = *target
	}
	return model.IntPtr(n), target != nil && n >= *target
}

func completeOneOff(o model.OneOffTask, date string, done bool) model.OneOffTask {
	o.Completed = done
	o.CompletedDate = ""
	if done {
		o.CompletedDate = date
	}
	return o
}

func toggleSubtask(subs []model.Subtask, id, date string) []model.Subtask {
	return updateByID(subs, id, func(st model.Subtask) string { return st.ID }, func(st model.Subtask) model.Subtask {
		st.Completed = !st.Completed
		st.CompletedDate = ""
		if st.Completed {
			st.CompletedDate = date
		}
		return st
	})
}

// updateProjects applies fn to the project with id, active or archived.
func updateProjects(s model.AppState, id string, fn func(model.Project) model.Project) model.AppState {
	s.Projects = updateByID(s.Projects, id, projectID, fn)
	s.ArchivedProjects = updateByID(s.ArchivedProjects, id, projectID, fn)
	return s
}

func updateTasks(s model.AppState, projectID string, fn func([]model.Task) []model.Task) model.AppState {
	return updateProjects(s, projectID, func(p model.Project) model.Project {
		p.Tasks = fn(p.Tasks)
		return p
	})
}

func updateTask(s model.AppState, projectID, taskID string, fn func(model.Task) model.Task) model.AppState {
	return updateTasks(s, projectID, func(tasks []model.Task) []model.Task {
		return tree.UpdateFunc(tasks, taskID, fn)
	})
}

// projectExists reports whether id names an active or archived project.
func projectExists(s model.AppState, id string) bool {
	return indexByID(s.Projects, id, projectID) >= 0 || indexByID(s.ArchivedProjects, id, projectID) >= 0
}

// taskExists reports whether id names a task anywhere in any project tree.
func taskExists(s model.AppState, id string) bool {
	for _, group := range [][]model.Project{s.Projects, s.ArchivedProjects} {
		for _, p := range group {
			if _, ok := tree.Find(p.Tasks, id); ok {
				return true
			}
		}
	}
	return false
}

func projectID(p model.Project) string         { return p.ID }
func linkID(l model.Link) string               { return l.ID }
func recurringID(r model.RecurringTask) string { return r.ID }
func oneOffID(o model.OneOffTask) string       { return o.ID }
func habitID(h model.Habit) string             { return h.ID }
func readingID(r model.ReadingItem) string     { return r.ID }

// appendNew appends into a fresh backing array so the input slice is never
// written through.
func appendNew[T any](items []T, more ...T) []T {
	out := make([]T, 0, len(items)+len(more))
	out = append(out, items...)
	return append(out, more...)
}

func indexByID[T any](items []T, id string, idOf func(T) string) int {
	for i, it := range items {
		if idOf(it) == id {
			return i
		}
	}
	return -1
}

// updateByID returns items with fn applied to the first element matching
// id. The input is returned as-is when nothing matches.
func updateByID[T any](items []T, id string, idOf func(T) string, fn func(T) T) []T {
	i := indexByID(items, id, idOf)
	if i < 0 {
		return items
	}
	out := appendNew(items)
	out[i] = fn(out[i])
	return out
}

// addUnique appends item unless an element with the same id is present.
func addUnique[T any](items []T, item T, idOf func(T) string) []T {
	if indexByID(items, idOf(item), idOf) >= 0 {
		return items
	}
	return appendNew(items, item)
}

func removeAt[T any](items []T, i int) []T {
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}

func removeByID[T any](items []T, id string, idOf func(T) string) []T {
	if indexByID(items, id, idOf) < 0 {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if idOf(it) != id {
			out = append(out, it)
		}
	}
	return out
}
