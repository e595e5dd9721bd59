package recur

import (
	"github.com/taxilian/dayplan/internal/dates"
	"github.com/taxilian/dayplan/internal/model"
	"github.com/taxilian/dayplan/internal/tree"
)

// ScheduledTask is a project task placed on a particular day.
type ScheduledTask struct {
	Task    model.Task
	Project model.Project
}

// CarryoverTask is a task left unfinished on an earlier scheduled day.
type CarryoverTask struct {
	Task         model.Task
	Project      model.Project
	OriginalDate string
}

// ScheduledTasksForDate returns every task, at any depth, that is scheduled
// on date. Projects and tasks are visited in order, parents first.
func ScheduledTasksForDate(projects []model.Project, date string) []ScheduledTask {
	var out []ScheduledTask
	for _, p := range projects {
		tree.Walk(p.Tasks, func(t model.Task, _ int) {
			if t.ScheduledOn(date) {
				out = append(out, ScheduledTask{Task: t, Project: p})
			}
		})
	}
	return out
}

// CarryoverTasksForDate returns tasks that have an unfinished scheduled date
// before ref and are not themselves scheduled on ref. Each task appears once,
// with its most recent unfinished date.
func CarryoverTasksForDate(projects []model.Project, ref string) []CarryoverTask {
	if !dates.Valid(ref) {
		return nil
	}
	var out []CarryoverTask
	index := map[string]int{}
	for _, p := range projects {
		tree.Walk(p.Tasks, func(t model.Task, _ int) {
			if t.ScheduledOn(ref) {
				return
			}
			latest := ""
			for _, d := range t.ScheduledDates {
				if d >= ref || !dates.Valid(d) || t.CompletedOn(d) {
					continue
				}
				if d > latest {
					latest = d
				}
			}
			if latest == "" {
				return
			}
			key := p.ID + "/" + t.ID
			if i, seen := index[key]; seen {
				if latest > out[i].OriginalDate {
					out[i].OriginalDate = latest
				}
				return
			}
			index[key] = len(out)
			out = append(out, CarryoverTask{Task: t, Project: p, OriginalDate: latest})
		})
	}
	return out
}

// OneOffsForDate returns incomplete one-off tasks due on or before date, and
// one-offs completed on date.
func OneOffsForDate(tasks []model.OneOffTask, date string) []model.OneOffTask {
	var out []model.OneOffTask
	for _, t := range tasks {
		switch {
		case t.Completed:
			if t.CompletedDate == date {
				out = append(out, t)
			}
		case t.DueDate == "" || t.DueDate <= date:
			out = append(out, t)
		}
	}
	return out
}
