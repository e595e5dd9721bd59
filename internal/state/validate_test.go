package state

import (
	"errors"
	"strings"
	"testing"

	"github.com/taxilian/dayplan/internal/model"
)

func TestValidate(t *testing.T) {
	weekday := 9
	tests := []struct {
		name    string
		action  Action
		wantErr string
	}{
		{"valid project", AddProject{ID: "pj-1", Title: "Home", Color: "#6366f1"}, ""},
		{"missing title", AddProject{ID: "pj-1"}, "Title is required"},
		{"bad color", AddProject{ID: "pj-1", Title: "Home", Color: "blue"}, "Color must be a hex color"},
		{"inserted project needs title", InsertProject{Project: model.Project{ID: "pj-2"}}, "Project.Title is required"},
		{"bad date", ScheduleTask{ProjectID: "p", TaskID: "t", Date: "01/02/2024"}, "Date must be a YYYY-MM-DD date"},
		{"valid date", ScheduleTask{ProjectID: "p", TaskID: "t", Date: "2024-02-29"}, ""},
		{"impossible date", SelectDate{Date: "2023-02-29"}, "Date must be"},
		{"optional date empty", AddTask{ProjectID: "p", ID: "t", Title: "x"}, ""},
		{"bad schedule type", AddRecurring{ID: "r", Title: "x", Schedule: model.Schedule{Type: "hourly"}}, "Schedule.Type must be one of"},
		{"bad weekday", AddRecurring{ID: "r", Title: "x", Schedule: model.Schedule{Type: model.ScheduleWeekly, Days: []int{1, 7}}}, "Schedule.Days[1]"},
		{"bad month weekday", AddRecurring{ID: "r", Title: "x", Schedule: model.Schedule{Type: model.ScheduleMonthly, MonthWeek: 2, MonthWeekday: &weekday}}, "Schedule.MonthWeekday"},
		{"bad start date", AddRecurring{ID: "r", Title: "x", Schedule: model.Schedule{Type: model.ScheduleDaily, StartDate: "tomorrow"}}, "Schedule.StartDate"},
		{"valid recurring", AddRecurring{ID: "r", Title: "x", Schedule: model.Schedule{Type: model.ScheduleInterval, Interval: 3, StartDate: "2024-01-01"}}, ""},
		{"bad frequency", AddHabit{ID: "h", Title: "x", Frequency: "hourly"}, "Frequency must be one of"},
		{"link needs url", AddTaskLink{ProjectID: "p", TaskID: "t", Link: model.Link{Title: "x"}}, "Link.URL is required"},
		{"bad url", AddReadingItem{ID: "rd", Title: "x", URL: "not a url"}, "URL must be a URL"},
		{"bad view", SetViewMode{Mode: "grid"}, "Mode must be one of"},
		{"zero counter target", AddOneOff{ID: "o", Title: "x", TargetCount: model.IntPtr(0)}, "TargetCount must be >= 1"},
		{"nil", nil, "nil action"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.action)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidAction) {
				t.Errorf("error does not wrap ErrInvalidAction: %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}
