// Package tree implements operations over a project's forest of nested tasks.
//
// Every function is pure: inputs are never modified. Functions that change
// the forest return a new forest in which the path from the root to the
// changed node is copied; untouched subtrees may be shared with the input.
// Unknown ids are never an error; the forest comes back unchanged.
package tree

import "github.com/taxilian/dayplan/internal/model"

// Patch holds fields to shallow-merge into a task. Nil fields are left alone;
// an empty non-nil slice clears the field.
type Patch struct {
	Title          *string
	Completed      *bool
	ScheduledDates []string
	CompletedDates []string
	Links          []model.Link
	CurrentCount   *int
	TargetCount    *int
}

// Apply returns task with the patch merged in.
func (p Patch) Apply(task model.Task) model.Task {
	if p.Title != nil {
		task.Title = *p.Title
	}
	if p.Completed != nil {
		task.Completed = *p.Completed
	}
	if p.ScheduledDates != nil {
		task.ScheduledDates = p.ScheduledDates
	}
	if p.CompletedDates != nil {
		task.CompletedDates = p.CompletedDates
	}
	if p.Links != nil {
		task.Links = p.Links
	}
	if p.CurrentCount != nil {
		task.CurrentCount = p.CurrentCount
	}
	if p.TargetCount != nil {
		task.TargetCount = p.TargetCount
	}
	return task
}

// Find returns the first task with the given id in depth-first order.
func Find(tasks []model.Task, id string) (model.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
		if found, ok := Find(t.Subtasks, id); ok {
			return found, true
		}
	}
	return model.Task{}, false
}

// Update merges patch into the task with the given id.
func Update(tasks []model.Task, id string, patch Patch) []model.Task {
	return UpdateFunc(tasks, id, patch.Apply)
}

// UpdateFunc replaces the task with the given id by fn(task).
func UpdateFunc(tasks []model.Task, id string, fn func(model.Task) model.Task) []model.Task {
	out, changed := updateFunc(tasks, id, fn)
	if !changed {
		return tasks
	}
	return out
}

func updateFunc(tasks []model.Task, id string, fn func(model.Task) model.Task) ([]model.Task, bool) {
	for i, t := range tasks {
		if t.ID == id {
			out := cloneSlice(tasks)
			out[i] = fn(t)
			return out, true
		}
		if subs, ok := updateFunc(t.Subtasks, id, fn); ok {
			out := cloneSlice(tasks)
			t.Subtasks = subs
			out[i] = t
			return out, true
		}
	}
	return tasks, false
}

// Delete removes the task with the given id together with its subtree.
// Every level is filtered, so a match at any depth is removed.
func Delete(tasks []model.Task, id string) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID == id {
			continue
		}
		if len(t.Subtasks) > 0 {
			t.Subtasks = Delete(t.Subtasks, id)
		}
		out = append(out, t)
	}
	return out
}

// AddSubtask appends sub to the subtasks of the task with id parentID.
func AddSubtask(tasks []model.Task, parentID string, sub model.Task) []model.Task {
	return UpdateFunc(tasks, parentID, func(parent model.Task) model.Task {
		subs := make([]model.Task, 0, len(parent.Subtasks)+1)
		subs = append(subs, parent.Subtasks...)
		parent.Subtasks = append(subs, sub)
		return parent
	})
}

// CountAll returns the number of tasks in the forest, nested ones included.
func CountAll(tasks []model.Task) int {
	n := 0
	for _, t := range tasks {
		n += 1 + CountAll(t.Subtasks)
	}
	return n
}

// CountCompleted returns the number of tasks whose Completed flag is set.
func CountCompleted(tasks []model.Task) int {
	n := 0
	for _, t := range tasks {
		if t.Completed {
			n++
		}
		n += CountCompleted(t.Subtasks)
	}
	return n
}

// LinkGroup is the link list of one task.
type LinkGroup struct {
	TaskID    string
	TaskTitle string
	Links     []model.Link
}

// CollectLinks returns every task that has links, in depth-first order.
func CollectLinks(tasks []model.Task) []LinkGroup {
	var groups []LinkGroup
	Walk(tasks, func(t model.Task, _ int) {
		if len(t.Links) > 0 {
			groups = append(groups, LinkGroup{TaskID: t.ID, TaskTitle: t.Title, Links: t.Links})
		}
	})
	return groups
}

// Walk visits every task depth-first, parents before children.
// Root tasks have depth 0.
func Walk(tasks []model.Task, fn func(t model.Task, depth int)) {
	walk(tasks, 0, fn)
}

func walk(tasks []model.Task, depth int, fn func(model.Task, int)) {
	for _, t := range tasks {
		fn(t, depth)
		walk(t.Subtasks, depth+1, fn)
	}
}

func cloneSlice(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	return out
}
