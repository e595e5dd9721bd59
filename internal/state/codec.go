package state

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/taxilian/dayplan/internal/dates"
	"github.com/taxilian/dayplan/internal/model"
)

// Encode serializes s as the persisted JSON document.
func Encode(s model.AppState) ([]byte, error) {
	data, err := json.Marshal(normalize(s))
	if err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	return data, nil
}

// Decode parses a persisted state document, migrating older shapes:
// goals/archivedGoals become projects/archivedProjects, missing task lists
// become empty, and a task's legacy quickLink becomes its only link.
// Fields that are absent or invalid get defaults, with today as the
// selected date.
func Decode(data []byte, today string) (model.AppState, error) {
	var raw rawState
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.AppState{}, fmt.Errorf("failed to decode state: %w", err)
	}

	s := model.NewAppState(today)
	projects, archived := raw.Projects, raw.ArchivedProjects
	if projects == nil {
		projects = raw.Goals
	}
	if archived == nil {
		archived = raw.ArchivedGoals
	}
	s.Projects = migrateProjects(projects)
	s.ArchivedProjects = migrateProjects(archived)

	if raw.RecurringTasks != nil {
		s.RecurringTasks = raw.RecurringTasks
	}
	if raw.OneOffTasks != nil {
		s.OneOffTasks = raw.OneOffTasks
	}
	if raw.Habits != nil {
		s.Habits = raw.Habits
	}
	if raw.ReadingList != nil {
		s.ReadingList = raw.ReadingList
	}
	if dates.Valid(raw.SelectedDate) {
		s.SelectedDate = raw.SelectedDate
	}
	if raw.ViewMode.IsValid() {
		s.ViewMode = raw.ViewMode
	}
	if raw.Theme.IsValid() {
		s.Theme = raw.Theme
	}
	return normalize(s), nil
}

type rawState struct {
	Projects         []rawProject          `json:"projects"`
	ArchivedProjects []rawProject          `json:"archivedProjects"`
	Goals            []rawProject          `json:"goals"`
	ArchivedGoals    []rawProject          `json:"archivedGoals"`
	RecurringTasks   []model.RecurringTask `json:"recurringTasks"`
	OneOffTasks      []model.OneOffTask    `json:"oneOffTasks"`
	Habits           []model.Habit         `json:"habits"`
	ReadingList      []model.ReadingItem   `json:"readingList"`
	SelectedDate     string                `json:"selectedDate"`
	ViewMode         model.ViewMode        `json:"viewMode"`
	Theme            model.Theme           `json:"theme"`
}

type rawProject struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Color      string       `json:"color"`
	Tasks      []rawTask    `json:"tasks"`
	Notes      string       `json:"notes"`
	Links      []model.Link `json:"links"`
	CreatedAt  time.Time    `json:"createdAt"`
	Archived   bool         `json:"archived"`
	ArchivedAt *time.Time   `json:"archivedAt"`
}

type rawTask struct {
	ID             string       `json:"id"`
	ProjectID      string       `json:"projectId"`
	GoalID         string       `json:"goalId"`
	ParentID       *string      `json:"parentId"`
	Title          string       `json:"title"`
	Completed      bool         `json:"completed"`
	ScheduledDates []string     `json:"scheduledDates"`
	CompletedDates []string     `json:"completedDates"`
	Links          []model.Link `json:"links"`
	QuickLink      string       `json:"quickLink"`
	Subtasks       []rawTask    `json:"subtasks"`
	CurrentCount   *int         `json:"currentCount"`
	TargetCount    *int         `json:"targetCount"`
}

func migrateProjects(raw []rawProject) []model.Project {
	out := make([]model.Project, 0, len(raw))
	for _, rp := range raw {
		out = append(out, model.Project{
			ID:         rp.ID,
			Title:      rp.Title,
			Color:      rp.Color,
			Tasks:      migrateTasks(rp.Tasks, rp.ID),
			Notes:      rp.Notes,
			Links:      rp.Links,
			CreatedAt:  rp.CreatedAt,
			Archived:   rp.Archived,
			ArchivedAt: rp.ArchivedAt,
		})
	}
	return out
}

func migrateTasks(raw []rawTask, projectID string) []model.Task {
	out := make([]model.Task, 0, len(raw))
	for _, rt := range raw {
		t := model.Task{
			ID:             rt.ID,
			ProjectID:      rt.ProjectID,
			ParentID:       rt.ParentID,
			Title:          rt.Title,
			Completed:      rt.Completed,
			ScheduledDates: rt.ScheduledDates,
			CompletedDates: rt.CompletedDates,
			Links:          rt.Links,
			Subtasks:       migrateTasks(rt.Subtasks, projectID),
			CurrentCount:   rt.CurrentCount,
			TargetCount:    rt.TargetCount,
		}
		if t.ProjectID == "" {
			t.ProjectID = rt.GoalID
		}
		if t.ProjectID == "" {
			t.ProjectID = projectID
		}
		if len(t.Links) == 0 && rt.QuickLink != "" {
			t.Links = []model.Link{{
				ID:    model.DerivedID(model.KindLink, t.ID),
				Title: rt.QuickLink,
				URL:   rt.QuickLink,
			}}
		}
		out = append(out, t)
	}
	return out
}

// normalize replaces nil collections with empty ones so every list is
// present in the encoded document, and drops repeated dates.
func normalize(s model.AppState) model.AppState {
	s.Projects = normalizeProjects(s.Projects)
	s.ArchivedProjects = normalizeProjects(s.ArchivedProjects)
	s.RecurringTasks = appendNew([]model.RecurringTask{}, s.RecurringTasks...)
	for i := range s.RecurringTasks {
		s.RecurringTasks[i].CompletedDates = model.UniqueDates(s.RecurringTasks[i].CompletedDates)
		s.RecurringTasks[i].SkippedDates = model.UniqueDates(s.RecurringTasks[i].SkippedDates)
	}
	s.OneOffTasks = orEmpty(s.OneOffTasks)
	s.Habits = appendNew([]model.Habit{}, s.Habits...)
	for i := range s.Habits {
		s.Habits[i].CompletedDates = model.UniqueDates(s.Habits[i].CompletedDates)
	}
	s.ReadingList = orEmpty(s.ReadingList)
	return s
}

func normalizeProjects(ps []model.Project) []model.Project {
	out := make([]model.Project, len(ps))
	for i, p := range ps {
		p.Tasks = normalizeTasks(p.Tasks)
		p.Links = orEmpty(p.Links)
		out[i] = p
	}
	return out
}

func normalizeTasks(ts []model.Task) []model.Task {
	out := make([]model.Task, len(ts))
	for i, t := range ts {
		t.ScheduledDates = model.UniqueDates(t.ScheduledDates)
		t.CompletedDates = model.UniqueDates(t.CompletedDates)
		t.Links = orEmpty(t.Links)
		t.Subtasks = normalizeTasks(t.Subtasks)
		out[i] = t
	}
	return out
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
