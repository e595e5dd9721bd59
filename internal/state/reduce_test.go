package state

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/taxilian/dayplan/internal/model"
	"github.com/taxilian/dayplan/internal/tree"
)

var testNow = time.Date(2024, 1, 10, 9, 0, 0, 0, time.Local)

func apply(t *testing.T, s model.AppState, actions ...Action) model.AppState {
	t.Helper()
	for _, a := range actions {
		s = Reduce(s, a, testNow)
	}
	return s
}

func seeded(t *testing.T) model.AppState {
	t.Helper()
	return apply(t, model.NewAppState("2024-01-10"),
		AddProject{ID: "pj-1", Title: "Home", Color: "#ff0000"},
		AddTask{ProjectID: "pj-1", ID: "ts-1", Title: "Clean", Date: "2024-01-10"},
		AddSubtask{ProjectID: "pj-1", ParentID: "ts-1", ID: "ts-2", Title: "Kitchen"},
		AddSubtask{ProjectID: "pj-1", ParentID: "ts-2", ID: "ts-3", Title: "Sink"},
	)
}

// snapshot captures a state's JSON so tests can prove inputs are untouched.
func snapshot(t *testing.T, s model.AppState) string {
	t.Helper()
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

func TestReduce_ProjectLifecycle(t *testing.T) {
	s := seeded(t)
	if len(s.Projects) != 1 || s.Projects[0].Title != "Home" {
		t.Fatalf("projects = %+v", s.Projects)
	}
	if !s.Projects[0].CreatedAt.Equal(testNow) {
		t.Errorf("CreatedAt = %v", s.Projects[0].CreatedAt)
	}

	title := "House"
	s = apply(t, s, UpdateProject{ProjectID: "pj-1", Title: &title})
	if s.Projects[0].Title != "House" || s.Projects[0].Color != "#ff0000" {
		t.Errorf("update merged wrong: %+v", s.Projects[0])
	}

	s = apply(t, s, ArchiveProject{ProjectID: "pj-1"})
	if len(s.Projects) != 0 || len(s.ArchivedProjects) != 1 {
		t.Fatalf("archive moved wrong: %d active, %d archived", len(s.Projects), len(s.ArchivedProjects))
	}
	if !s.ArchivedProjects[0].Archived || s.ArchivedProjects[0].ArchivedAt == nil {
		t.Errorf("archive flags not set: %+v", s.ArchivedProjects[0])
	}

	s = apply(t, s, UnarchiveProject{ProjectID: "pj-1"})
	if len(s.Projects) != 1 || len(s.ArchivedProjects) != 0 {
		t.Fatalf("unarchive moved wrong")
	}
	if s.Projects[0].Archived || s.Projects[0].ArchivedAt != nil {
		t.Errorf("archive flags not cleared: %+v", s.Projects[0])
	}
	if len(s.Projects[0].Tasks) != 1 {
		t.Errorf("tasks lost across archive round trip")
	}

	s = apply(t, s, DeleteProject{ProjectID: "pj-1"})
	if len(s.Projects) != 0 {
		t.Errorf("project not deleted")
	}
}

func TestReduce_ProjectLinks(t *testing.T) {
	s := apply(t, seeded(t), AddProjectLink{ProjectID: "pj-1", Link: model.Link{ID: "ln-1", Title: "Docs", URL: "https://example.com"}})
	if len(s.Projects[0].Links) != 1 {
		t.Fatalf("links = %+v", s.Projects[0].Links)
	}
	s = apply(t, s, RemoveProjectLink{ProjectID: "pj-1", LinkID: "ln-1"})
	if len(s.Projects[0].Links) != 0 {
		t.Errorf("link not removed")
	}
}

func TestReduce_TaskTree(t *testing.T) {
	s := seeded(t)
	sink, ok := tree.Find(s.Projects[0].Tasks, "ts-3")
	if !ok {
		t.Fatal("nested subtask not found")
	}
	if sink.ParentID == nil || *sink.ParentID != "ts-2" || sink.ProjectID != "pj-1" {
		t.Errorf("subtask wiring = %+v", sink)
	}
	if sink.Links == nil || sink.Subtasks == nil {
		t.Error("new task should have empty, non-nil lists")
	}

	title := "Scrub sink"
	s = apply(t, s, UpdateTask{ProjectID: "pj-1", TaskID: "ts-3", Patch: tree.Patch{Title: &title}})
	if got, _ := tree.Find(s.Projects[0].Tasks, "ts-3"); got.Title != "Scrub sink" {
		t.Errorf("title = %q", got.Title)
	}

	s = apply(t, s, DeleteTask{ProjectID: "pj-1", TaskID: "ts-2"})
	if _, ok := tree.Find(s.Projects[0].Tasks, "ts-3"); ok {
		t.Error("delete did not cascade to descendants")
	}
	if tree.CountAll(s.Projects[0].Tasks) != 1 {
		t.Errorf("count = %d", tree.CountAll(s.Projects[0].Tasks))
	}
}

func TestReduce_ScheduleAndComplete(t *testing.T) {
	s := apply(t, seeded(t),
		ScheduleTask{ProjectID: "pj-1", TaskID: "ts-3", Date: "2024-01-11"},
		ScheduleTask{ProjectID: "pj-1", TaskID: "ts-3", Date: "2024-01-11"},
		SetTaskCompletion{ProjectID: "pj-1", TaskID: "ts-3", Date: "2024-01-11", Done: true},
	)
	task, _ := tree.Find(s.Projects[0].Tasks, "ts-3")
	if !reflect.DeepEqual(task.ScheduledDates, []string{"2024-01-11"}) {
		t.Errorf("scheduled = %v", task.ScheduledDates)
	}
	if !task.Completed || !task.CompletedOn("2024-01-11") {
		t.Errorf("completion not recorded: %+v", task)
	}

	s = apply(t, s,
		SetTaskCompletion{ProjectID: "pj-1", TaskID: "ts-3", Date: "2024-01-11", Done: false},
		UnscheduleTask{ProjectID: "pj-1", TaskID: "ts-3", Date: "2024-01-11"},
	)
	task, _ = tree.Find(s.Projects[0].Tasks, "ts-3")
	if task.Completed || len(task.CompletedDates) != 0 || len(task.ScheduledDates) != 0 {
		t.Errorf("undo completion/schedule failed: %+v", task)
	}
}

func TestReduce_TaskLinks(t *testing.T) {
	s := apply(t, seeded(t), AddTaskLink{ProjectID: "pj-1", TaskID: "ts-2", Link: model.Link{ID: "ln-1", URL: "https://x.test"}})
	task, _ := tree.Find(s.Projects[0].Tasks, "ts-2")
	if len(task.Links) != 1 {
		t.Fatalf("links = %+v", task.Links)
	}
	s = apply(t, s, RemoveTaskLink{ProjectID: "pj-1", TaskID: "ts-2", LinkID: "ln-1"})
	task, _ = tree.Find(s.Projects[0].Tasks, "ts-2")
	if len(task.Links) != 0 {
		t.Errorf("link not removed")
	}
}

func TestReduce_UnknownIDsAreNoOps(t *testing.T) {
	s := seeded(t)
	before := snapshot(t, s)
	title := "x"
	actions := []Action{
		UpdateProject{ProjectID: "nope", Title: &title},
		DeleteProject{ProjectID: "nope"},
		ArchiveProject{ProjectID: "nope"},
		UnarchiveProject{ProjectID: "pj-1"},
		DeleteTask{ProjectID: "pj-1", TaskID: "nope"},
		AddSubtask{ProjectID: "pj-1", ParentID: "nope", ID: "ts-9", Title: "orphan"},
		ScheduleTask{ProjectID: "nope", TaskID: "ts-1", Date: "2024-01-11"},
		SetTaskCompletion{ProjectID: "pj-1", TaskID: "nope", Date: "2024-01-11", Done: true},
		DeleteRecurring{ID: "nope"},
		SetHabitCompletion{ID: "nope", Date: "2024-01-10", Done: true},
		ToggleReadingItem{ID: "nope", Date: "2024-01-10"},
	}
	for _, a := range actions {
		if got := snapshot(t, Reduce(s, a, testNow)); got != before {
			t.Errorf("%s changed state", Name(a))
		}
	}
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	s := apply(t, seeded(t),
		AddRecurring{ID: "rc-1", Title: "Stretch", Schedule: model.Schedule{Type: model.ScheduleDaily}},
		AddHabit{ID: "hb-1", Title: "Read", Frequency: model.FrequencyDaily},
		AddOneOff{ID: "oo-1", Title: "Taxes"},
	)
	before := snapshot(t, s)

	actions := []Action{
		SetTaskCompletion{ProjectID: "pj-1", TaskID: "ts-3", Date: "2024-01-10", Done: true},
		DeleteTask{ProjectID: "pj-1", TaskID: "ts-2"},
		ArchiveProject{ProjectID: "pj-1"},
		SetRecurringCompletion{ID: "rc-1", Date: "2024-01-10", Done: true},
		SkipRecurring{ID: "rc-1", Date: "2024-01-11"},
		SetHabitCompletion{ID: "hb-1", Date: "2024-01-10", Done: true},
		SetOneOffCompletion{ID: "oo-1", Date: "2024-01-10", Done: true},
		AddProject{ID: "pj-2", Title: "Work"},
	}
	for _, a := range actions {
		Reduce(s, a, testNow)
		if got := snapshot(t, s); got != before {
			t.Fatalf("%s mutated its input", Name(a))
		}
	}
}

func TestReduce_Recurring(t *testing.T) {
	s := apply(t, model.NewAppState("2024-01-10"),
		AddRecurring{
			ID: "rc-1", Title: "Water plants",
			Schedule:    model.Schedule{Type: model.ScheduleInterval, Interval: 2},
			TargetCount: model.IntPtr(2),
			Subtasks:    []model.Subtask{{ID: "st-1", Title: "Ferns"}},
		},
	)
	rt := s.RecurringTasks[0]
	if rt.Schedule.StartDate != "2024-01-10" {
		t.Errorf("start date defaulted to %q", rt.Schedule.StartDate)
	}
	if rt.CurrentCount == nil || *rt.CurrentCount != 0 {
		t.Errorf("counter not initialized: %v", rt.CurrentCount)
	}

	s = apply(t, s, IncrementRecurringCounter{ID: "rc-1", Date: "2024-01-10", Delta: 1})
	if s.RecurringTasks[0].CompletedOn("2024-01-10") {
		t.Error("completed before reaching target")
	}
	s = apply(t, s, IncrementRecurringCounter{ID: "rc-1", Date: "2024-01-10", Delta: 5})
	rt = s.RecurringTasks[0]
	if *rt.CurrentCount != 2 || !rt.CompletedOn("2024-01-10") {
		t.Errorf("counter = %d, completed = %v", *rt.CurrentCount, rt.CompletedOn("2024-01-10"))
	}
	s = apply(t, s, IncrementRecurringCounter{ID: "rc-1", Date: "2024-01-10", Delta: -1})
	if s.RecurringTasks[0].CompletedOn("2024-01-10") {
		t.Error("dropping below target should reopen the occurrence")
	}

	s = apply(t, s,
		SkipRecurring{ID: "rc-1", Date: "2024-01-12"},
		ToggleRecurringSubtask{ID: "rc-1", SubtaskID: "st-1", Date: "2024-01-10"},
	)
	rt = s.RecurringTasks[0]
	if !rt.SkippedOn("2024-01-12") {
		t.Error("skip not recorded")
	}
	if !rt.Subtasks[0].Completed || rt.Subtasks[0].CompletedDate != "2024-01-10" {
		t.Errorf("subtask = %+v", rt.Subtasks[0])
	}

	sched := model.Schedule{Type: model.ScheduleWeekends}
	s = apply(t, s,
		UnskipRecurring{ID: "rc-1", Date: "2024-01-12"},
		UpdateRecurring{ID: "rc-1", Schedule: &sched},
	)
	if s.RecurringTasks[0].SkippedOn("2024-01-12") || s.RecurringTasks[0].Schedule.Type != model.ScheduleWeekends {
		t.Errorf("recurring = %+v", s.RecurringTasks[0])
	}

	s = apply(t, s, DeleteRecurring{ID: "rc-1"})
	if len(s.RecurringTasks) != 0 {
		t.Error("recurring not deleted")
	}
}

func TestReduce_OneOff(t *testing.T) {
	s := apply(t, model.NewAppState("2024-01-10"),
		AddOneOff{ID: "oo-1", Title: "Call bank", DueDate: "2024-01-12", TargetCount: model.IntPtr(3)},
		IncrementOneOffCounter{ID: "oo-1", Date: "2024-01-10", Delta: 3},
	)
	o := s.OneOffTasks[0]
	if !o.Completed || o.CompletedDate != "2024-01-10" {
		t.Errorf("counter did not complete: %+v", o)
	}

	due := "2024-01-20"
	s = apply(t, s,
		SetOneOffCompletion{ID: "oo-1", Date: "2024-01-10", Done: false},
		UpdateOneOff{ID: "oo-1", DueDate: &due},
	)
	o = s.OneOffTasks[0]
	if o.Completed || o.CompletedDate != "" || o.DueDate != "2024-01-20" {
		t.Errorf("one-off = %+v", o)
	}

	s = apply(t, s, DeleteOneOff{ID: "oo-1"})
	if len(s.OneOffTasks) != 0 {
		t.Error("one-off not deleted")
	}
}

func TestReduce_HabitStreakRecomputed(t *testing.T) {
	s := apply(t, model.NewAppState("2024-01-10"),
		AddHabit{ID: "hb-1", Title: "Run", Frequency: model.FrequencyDaily},
		SetHabitCompletion{ID: "hb-1", Date: "2024-01-08", Done: true},
		SetHabitCompletion{ID: "hb-1", Date: "2024-01-09", Done: true},
		SetHabitCompletion{ID: "hb-1", Date: "2024-01-10", Done: true},
	)
	h := s.Habits[0]
	if h.CurrentStreak != 3 || h.BestStreak != 3 {
		t.Fatalf("streaks = %d/%d, want 3/3", h.CurrentStreak, h.BestStreak)
	}

	s = apply(t, s, SetHabitCompletion{ID: "hb-1", Date: "2024-01-09", Done: false})
	h = s.Habits[0]
	if h.CurrentStreak != 1 || h.BestStreak != 3 {
		t.Errorf("after uncheck streaks = %d/%d, want 1/3", h.CurrentStreak, h.BestStreak)
	}

	s = apply(t, s, DeleteHabit{ID: "hb-1"})
	if len(s.Habits) != 0 {
		t.Error("habit not deleted")
	}
}

func TestReduce_ReadingList(t *testing.T) {
	s := apply(t, model.NewAppState("2024-01-10"),
		AddReadingItem{ID: "rd-1", Title: "Go memory model", URL: "https://go.dev/ref/mem"},
		ToggleReadingItem{ID: "rd-1", Date: "2024-01-10"},
	)
	if it := s.ReadingList[0]; !it.Completed || it.CompletedDate != "2024-01-10" {
		t.Errorf("item = %+v", it)
	}
	s = apply(t, s, ToggleReadingItem{ID: "rd-1", Date: "2024-01-11"})
	if it := s.ReadingList[0]; it.Completed || it.CompletedDate != "" {
		t.Errorf("item = %+v", it)
	}
	s = apply(t, s, DeleteReadingItem{ID: "rd-1"})
	if len(s.ReadingList) != 0 {
		t.Error("item not deleted")
	}
}

func TestReduce_ViewState(t *testing.T) {
	s := apply(t, model.NewAppState("2024-01-10"),
		SelectDate{Date: "2024-02-01"},
		SetViewMode{Mode: model.ViewMonth},
		SetTheme{Theme: model.ThemeLight},
	)
	if s.SelectedDate != "2024-02-01" || s.ViewMode != model.ViewMonth || s.Theme != model.ThemeLight {
		t.Errorf("view state = %q %q %q", s.SelectedDate, s.ViewMode, s.Theme)
	}

	s = apply(t, s, SelectDate{Date: "garbage"}, SetViewMode{Mode: "grid"}, SetTheme{Theme: "neon"})
	if s.SelectedDate != "2024-02-01" || s.ViewMode != model.ViewMonth || s.Theme != model.ThemeLight {
		t.Errorf("invalid view actions changed state")
	}
}

func TestName(t *testing.T) {
	if got := Name(AddProject{}); got != "AddProject" {
		t.Errorf("Name = %q", got)
	}
	if got := Name(nil); got != "" {
		t.Errorf("Name(nil) = %q", got)
	}
}

func TestReduce_InsertProject(t *testing.T) {
	s := seeded(t)
	built := model.Project{
		ID:    "pj-2",
		Title: "Trip",
		Tasks: []model.Task{{ID: "ts-9", ProjectID: "pj-2", Title: "Book"}},
	}
	s = apply(t, s, InsertProject{Project: built})
	if len(s.Projects) != 2 || s.Projects[1].ID != "pj-2" {
		t.Fatalf("projects = %+v", s.Projects)
	}
	p := s.Projects[1]
	if !p.CreatedAt.Equal(testNow) {
		t.Errorf("CreatedAt = %v", p.CreatedAt)
	}
	if p.Links == nil || p.Tasks[0].ScheduledDates == nil || p.Tasks[0].Subtasks == nil {
		t.Errorf("inserted project lists not normalized: %+v", p)
	}

	dup := apply(t, s, InsertProject{Project: model.Project{ID: "pj-1", Title: "Other"}})
	if len(dup.Projects) != 2 || dup.Projects[0].Title != "Home" {
		t.Errorf("duplicate id replaced or added a project: %+v", dup.Projects)
	}
}

func TestReduce_DuplicateIDsIgnored(t *testing.T) {
	s := apply(t, seeded(t),
		AddProject{ID: "pj-1", Title: "Impostor"},
		AddTask{ProjectID: "pj-1", ID: "ts-1", Title: "Again"},
		AddSubtask{ProjectID: "pj-1", ParentID: "ts-1", ID: "ts-3", Title: "Again"},
		AddProjectLink{ProjectID: "pj-1", Link: model.Link{ID: "ln-1", URL: "https://a.example"}},
		AddProjectLink{ProjectID: "pj-1", Link: model.Link{ID: "ln-1", URL: "https://b.example"}},
		AddHabit{ID: "hb-1", Title: "Run", Frequency: model.FrequencyDaily},
		AddHabit{ID: "hb-1", Title: "Walk", Frequency: model.FrequencyDaily},
		AddReadingItem{ID: "rd-1", Title: "One"},
		AddReadingItem{ID: "rd-1", Title: "Two"},
	)
	if len(s.Projects) != 1 || s.Projects[0].Title != "Home" {
		t.Fatalf("projects = %+v", s.Projects)
	}
	if got := tree.CountAll(s.Projects[0].Tasks); got != 3 {
		t.Errorf("CountAll = %d, want 3", got)
	}
	if len(s.Projects[0].Links) != 1 || s.Projects[0].Links[0].URL != "https://a.example" {
		t.Errorf("links = %+v", s.Projects[0].Links)
	}
	if len(s.Habits) != 1 || s.Habits[0].Title != "Run" {
		t.Errorf("habits = %+v", s.Habits)
	}
	if len(s.ReadingList) != 1 || s.ReadingList[0].Title != "One" {
		t.Errorf("reading list = %+v", s.ReadingList)
	}

	// An archived id is taken too.
	s = apply(t, s, ArchiveProject{ProjectID: "pj-1"}, AddProject{ID: "pj-1", Title: "Impostor"})
	if len(s.Projects) != 0 || len(s.ArchivedProjects) != 1 {
		t.Errorf("archived id reused: %d active, %d archived", len(s.Projects), len(s.ArchivedProjects))
	}
}

func TestReduce_ArchiveMovesOnlyOneProject(t *testing.T) {
	// Older documents may already carry a repeated project id.
	s := model.NewAppState("2024-01-10")
	s.Projects = []model.Project{{ID: "pj-a", Title: "First"}, {ID: "pj-a", Title: "Second"}}

	s = apply(t, s, ArchiveProject{ProjectID: "pj-a"})
	if len(s.Projects) != 1 || len(s.ArchivedProjects) != 1 {
		t.Fatalf("archive: %d active, %d archived", len(s.Projects), len(s.ArchivedProjects))
	}
	if s.ArchivedProjects[0].Title != "First" || s.Projects[0].Title != "Second" {
		t.Errorf("wrong project moved: active %q, archived %q", s.Projects[0].Title, s.ArchivedProjects[0].Title)
	}

	s = apply(t, s, UnarchiveProject{ProjectID: "pj-a"})
	if len(s.Projects) != 2 || len(s.ArchivedProjects) != 0 {
		t.Errorf("unarchive: %d active, %d archived", len(s.Projects), len(s.ArchivedProjects))
	}
}
