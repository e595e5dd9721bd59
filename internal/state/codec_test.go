package state

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/taxilian/dayplan/internal/model"
	"github.com/taxilian/dayplan/internal/recur"
	"github.com/taxilian/dayplan/internal/tree"
)

const legacyGoals = `{
  "goals": [{
    "id": "g1",
    "title": "Fitness",
    "color": "#22c55e",
    "tasks": [
      {"id": "t1", "goalId": "g1", "title": "Run 5k", "scheduledDates": ["2024-01-01"], "quickLink": "https://strava.com"},
      {"id": "t2", "title": "Stretch", "completed": true, "completedDates": ["2024-01-02"],
       "subtasks": [{"id": "t3", "parentId": "t2", "title": "Hamstrings"}]}
    ]
  }],
  "archivedGoals": [{"id": "g2", "title": "Old", "tasks": []}],
  "habits": [{"id": "h1", "title": "Floss", "frequency": "daily", "completedDates": ["2024-01-01"]}],
  "selectedDate": "2024-01-02",
  "viewMode": "week",
  "theme": "light"
}`

func TestDecode_MigratesGoals(t *testing.T) {
	s, err := Decode([]byte(legacyGoals), "2024-03-01")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(s.Projects) != 1 || s.Projects[0].Title != "Fitness" {
		t.Fatalf("projects = %+v", s.Projects)
	}
	if len(s.ArchivedProjects) != 1 || s.ArchivedProjects[0].ID != "g2" {
		t.Errorf("archived = %+v", s.ArchivedProjects)
	}
	if s.SelectedDate != "2024-01-02" || s.ViewMode != model.ViewWeek || s.Theme != model.ThemeLight {
		t.Errorf("view state = %q %q %q", s.SelectedDate, s.ViewMode, s.Theme)
	}

	tasks := s.Projects[0].Tasks
	tree.Walk(tasks, func(task model.Task, _ int) {
		if task.Links == nil || task.Subtasks == nil {
			t.Errorf("task %s missing links/subtasks lists", task.ID)
		}
		if task.ProjectID != "g1" {
			t.Errorf("task %s projectId = %q", task.ID, task.ProjectID)
		}
	})

	run, _ := tree.Find(tasks, "t1")
	if len(run.Links) != 1 || run.Links[0].URL != "https://strava.com" {
		t.Errorf("quickLink not migrated: %+v", run.Links)
	}
	sub, ok := tree.Find(tasks, "t3")
	if !ok || sub.ParentID == nil || *sub.ParentID != "t2" {
		t.Errorf("nested subtask = %+v", sub)
	}
}

func TestDecode_QuickLinkIgnoredWhenLinksPresent(t *testing.T) {
	doc := `{"projects":[{"id":"p","tasks":[{"id":"t","quickLink":"https://old.test","links":[{"id":"l","title":"new","url":"https://new.test"}]}]}]}`
	s, err := Decode([]byte(doc), "2024-01-01")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	links := s.Projects[0].Tasks[0].Links
	if len(links) != 1 || links[0].URL != "https://new.test" {
		t.Errorf("links = %+v", links)
	}
}

func TestDecode_Defaults(t *testing.T) {
	s, err := Decode([]byte(`{"viewMode":"grid","theme":"neon","selectedDate":"soon"}`), "2024-03-01")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if s.SelectedDate != "2024-03-01" || s.ViewMode != model.ViewDay || s.Theme != model.ThemeDark {
		t.Errorf("defaults = %q %q %q", s.SelectedDate, s.ViewMode, s.Theme)
	}
	if s.Projects == nil || s.RecurringTasks == nil || s.Habits == nil || s.ReadingList == nil {
		t.Error("collections should be empty, not nil")
	}
}

func TestDecode_Malformed(t *testing.T) {
	if _, err := Decode([]byte(`{"projects": 3}`), "2024-01-01"); err == nil {
		t.Error("expected an error for a malformed document")
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	original := apply(t, model.NewAppState("2024-01-10"),
		AddProject{ID: "pj-1", Title: "Home"},
		AddTask{ProjectID: "pj-1", ID: "ts-1", Title: "Clean", Date: "2024-01-10"},
		AddSubtask{ProjectID: "pj-1", ParentID: "ts-1", ID: "ts-2", Title: "Kitchen"},
		AddRecurring{ID: "rc-1", Title: "Stretch", Schedule: model.Schedule{Type: model.ScheduleWeekly, Days: []int{1, 3}}},
		AddHabit{ID: "hb-1", Title: "Read", Frequency: model.FrequencyWeekly, WeeklyTarget: 3},
		SetTheme{Theme: model.ThemeLight},
	)

	data, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(data, "2030-01-01")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	again, err := Encode(decoded)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(data) != string(again) {
		t.Errorf("round trip changed the document:\n%s\n%s", data, again)
	}
}

func TestEncode_AlwaysWritesLists(t *testing.T) {
	data, err := Encode(model.AppState{Projects: []model.Project{{ID: "p", Tasks: []model.Task{{ID: "t"}}}}})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for _, key := range []string{"scheduledDates", "completedDates", "links", "subtasks", "tasks"} {
		if strings.Contains(string(data), `"`+key+`":null`) {
			t.Errorf("encoded document has null %s: %s", key, data)
		}
	}

	var generic map[string]any
	if err := json.Unmarshal(data, &generic); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"projects", "archivedProjects", "recurringTasks", "oneOffTasks", "habits", "readingList"} {
		if _, ok := generic[key]; !ok {
			t.Errorf("missing key %s", key)
		}
	}
}

func TestDecode_DropsRepeatedDates(t *testing.T) {
	doc := `{
  "projects": [{"id": "p", "tasks": [{"id": "t", "scheduledDates": ["2024-01-01", "2024-01-01"], "completedDates": ["2024-01-01", "2024-01-01"]}]}],
  "recurringTasks": [{"id": "r", "title": "Water", "schedule": {"type": "daily"}, "completedDates": ["2024-01-08", "2024-01-08"], "skippedDates": ["2024-01-09", "2024-01-09"]}],
  "habits": [{"id": "h", "title": "Swim", "frequency": "weekly", "weeklyTarget": 2, "completedDates": ["2024-01-08", "2024-01-08"]}]
}`
	s, err := Decode([]byte(doc), "2024-01-10")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	task := s.Projects[0].Tasks[0]
	if len(task.ScheduledDates) != 1 || len(task.CompletedDates) != 1 {
		t.Errorf("task dates = %v / %v", task.ScheduledDates, task.CompletedDates)
	}
	rt := s.RecurringTasks[0]
	if len(rt.CompletedDates) != 1 || len(rt.SkippedDates) != 1 {
		t.Errorf("recurring dates = %v / %v", rt.CompletedDates, rt.SkippedDates)
	}
	h := s.Habits[0]
	if len(h.CompletedDates) != 1 {
		t.Errorf("habit dates = %v", h.CompletedDates)
	}
	// One distinct day does not meet a weekly target of two.
	if got := recur.Streak(h, "2024-01-10", time.Sunday); got != 0 {
		t.Errorf("Streak = %d, want 0", got)
	}
}

func TestDecode_QuickLinkIDStable(t *testing.T) {
	first, err := Decode([]byte(legacyGoals), "2024-03-01")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	second, err := Decode([]byte(legacyGoals), "2024-03-01")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	a, _ := tree.Find(first.Projects[0].Tasks, "t1")
	b, _ := tree.Find(second.Projects[0].Tasks, "t1")
	if len(a.Links) != 1 || len(b.Links) != 1 {
		t.Fatalf("links = %+v / %+v", a.Links, b.Links)
	}
	if a.Links[0].ID != b.Links[0].ID {
		t.Errorf("link id changed between decodes: %q then %q", a.Links[0].ID, b.Links[0].ID)
	}
	if a.Links[0].ID != "ln-t1" {
		t.Errorf("link id = %q, want ln-t1", a.Links[0].ID)
	}
}
