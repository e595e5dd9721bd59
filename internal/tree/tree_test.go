package tree

import (
	"strings"
	"testing"

	"github.com/taxilian/dayplan/internal/model"
)

// sampleForest builds:
//
//	a
//	├── a1
//	│   └── a1x (completed)
//	└── a2 (completed, links)
//	b (links)
func sampleForest() []model.Task {
	return []model.Task{
		{
			ID:    "a",
			Title: "A",
			Subtasks: []model.Task{
				{
					ID:    "a1",
					Title: "A1",
					Subtasks: []model.Task{
						{ID: "a1x", Title: "A1X", Completed: true},
					},
				},
				{ID: "a2", Title: "A2", Completed: true, Links: []model.Link{{ID: "l1", Title: "doc", URL: "https://example.com/doc"}}},
			},
		},
		{ID: "b", Title: "B", Links: []model.Link{{ID: "l2", Title: "site", URL: "https://example.com"}}},
	}
}

func TestFind(t *testing.T) {
	forest := sampleForest()
	for _, id := range []string{"a", "a1", "a1x", "a2", "b"} {
		got, ok := Find(forest, id)
		if !ok || got.ID != id {
			t.Errorf("Find(%q) = %q, %v", id, got.ID, ok)
		}
	}
	if _, ok := Find(forest, "missing"); ok {
		t.Error("expected not found for missing id")
	}
	if _, ok := Find(nil, "a"); ok {
		t.Error("expected not found on empty forest")
	}
}

func TestUpdate_MergesAndPreservesCount(t *testing.T) {
	forest := sampleForest()
	title := "Renamed"
	done := true

	updated := Update(forest, "a1x", Patch{Title: &title, Completed: &done})

	got, ok := Find(updated, "a1x")
	if !ok || got.Title != "Renamed" || !got.Completed {
		t.Fatalf("update not applied: %+v", got)
	}
	if CountAll(updated) != CountAll(forest) {
		t.Errorf("CountAll changed: %d -> %d", CountAll(forest), CountAll(updated))
	}

	// Input must be untouched.
	orig, _ := Find(forest, "a1x")
	if orig.Title != "A1X" {
		t.Errorf("input forest was modified: %+v", orig)
	}
}

func TestUpdate_LeavesOtherFields(t *testing.T) {
	forest := sampleForest()
	sched := []string{"2024-01-01"}
	updated := Update(forest, "a2", Patch{ScheduledDates: sched})

	got, _ := Find(updated, "a2")
	if got.Title != "A2" || !got.Completed || len(got.Links) != 1 {
		t.Errorf("unpatched fields changed: %+v", got)
	}
	if len(got.ScheduledDates) != 1 {
		t.Errorf("scheduled dates not set: %+v", got.ScheduledDates)
	}
}

func TestUpdate_UnknownIDIsNoop(t *testing.T) {
	forest := sampleForest()
	title := "x"
	updated := Update(forest, "nope", Patch{Title: &title})
	if strings.Join(taskIDs(updated), ",") != strings.Join(taskIDs(forest), ",") {
		t.Errorf("forest changed on unknown id")
	}
	if len(Update(nil, "a", Patch{Title: &title})) != 0 {
		t.Error("expected empty result for empty forest")
	}
}

func TestDelete_RemovesSubtree(t *testing.T) {
	forest := sampleForest()
	before := CountAll(forest)

	updated := Delete(forest, "a1")

	if got := CountAll(updated); got != before-2 {
		t.Errorf("CountAll after delete = %d, want %d", got, before-2)
	}
	for _, id := range []string{"a1", "a1x"} {
		if _, ok := Find(updated, id); ok {
			t.Errorf("%s still present after deleting its subtree", id)
		}
	}
	if _, ok := Find(forest, "a1x"); !ok {
		t.Error("input forest was modified")
	}
}

func TestDelete_Root(t *testing.T) {
	updated := Delete(sampleForest(), "a")
	if strings.Join(taskIDs(updated), ",") != "b" {
		t.Errorf("IDs after root delete = %v", taskIDs(updated))
	}
}

func TestDelete_UnknownID(t *testing.T) {
	forest := sampleForest()
	if CountAll(Delete(forest, "nope")) != CountAll(forest) {
		t.Error("delete of unknown id changed the forest")
	}
	if len(Delete(nil, "x")) != 0 {
		t.Error("expected empty forest")
	}
}

func TestAddSubtask(t *testing.T) {
	forest := sampleForest()
	sub := model.Task{ID: "new", Title: "New"}

	updated := AddSubtask(forest, "a1x", sub)

	got, ok := Find(updated, "new")
	if !ok || got.Title != "New" {
		t.Fatalf("added subtask not found")
	}
	parent, _ := Find(updated, "a1x")
	if len(parent.Subtasks) != 1 || parent.Subtasks[0].ID != "new" {
		t.Errorf("parent subtasks = %+v", parent.Subtasks)
	}
	if CountAll(updated) != CountAll(forest)+1 {
		t.Errorf("count did not grow by one")
	}
	orig, _ := Find(forest, "a1x")
	if len(orig.Subtasks) != 0 {
		t.Error("input forest was modified")
	}
}

func TestAddSubtask_AppendsInOrder(t *testing.T) {
	forest := sampleForest()
	forest = AddSubtask(forest, "a", model.Task{ID: "a3"})
	parent, _ := Find(forest, "a")
	var ids []string
	for _, s := range parent.Subtasks {
		ids = append(ids, s.ID)
	}
	if strings.Join(ids, ",") != "a1,a2,a3" {
		t.Errorf("subtask order = %v", ids)
	}
}

func TestAddSubtask_MissingParent(t *testing.T) {
	forest := sampleForest()
	updated := AddSubtask(forest, "nope", model.Task{ID: "new"})
	if _, ok := Find(updated, "new"); ok {
		t.Error("subtask added under a missing parent")
	}
	if CountAll(updated) != CountAll(forest) {
		t.Error("forest changed")
	}
}

func TestCounts(t *testing.T) {
	forest := sampleForest()
	if got := CountAll(forest); got != 5 {
		t.Errorf("CountAll = %d, want 5", got)
	}
	if got := CountCompleted(forest); got != 2 {
		t.Errorf("CountCompleted = %d, want 2", got)
	}
	if CountAll(nil) != 0 || CountCompleted(nil) != 0 {
		t.Error("expected zero counts for empty forest")
	}
}

func TestCollectLinks(t *testing.T) {
	groups := CollectLinks(sampleForest())
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].TaskTitle != "A2" || groups[1].TaskTitle != "B" {
		t.Errorf("order = %q, %q", groups[0].TaskTitle, groups[1].TaskTitle)
	}
	if len(CollectLinks(nil)) != 0 {
		t.Error("expected no links for empty forest")
	}
}

func TestWalk_Depth(t *testing.T) {
	depths := map[string]int{}
	Walk(sampleForest(), func(task model.Task, depth int) {
		depths[task.ID] = depth
	})
	want := map[string]int{"a": 0, "a1": 1, "a1x": 2, "a2": 1, "b": 0}
	for id, d := range want {
		if depths[id] != d {
			t.Errorf("depth(%s) = %d, want %d", id, depths[id], d)
		}
	}
}

// taskIDs lists every id in the forest in depth-first order.
func taskIDs(tasks []model.Task) []string {
	var ids []string
	Walk(tasks, func(t model.Task, _ int) {
		ids = append(ids, t.ID)
	})
	return ids
}
