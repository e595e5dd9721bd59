package model

// Completable is implemented by every entity that tracks completion per date.
type Completable interface {
	CompletedOn(date string) bool
}

var (
	_ Completable = Task{}
	_ Completable = RecurringTask{}
	_ Completable = OneOffTask{}
	_ Completable = Habit{}
)

// ContainsDate reports whether date is in dates.
func ContainsDate(dates []string, date string) bool {
	for _, d := range dates {
		if d == date {
			return true
		}
	}
	return false
}

// WithDate returns a new slice holding dates plus date, without duplicates.
// The input slice is never modified.
func WithDate(dates []string, date string) []string {
	out := make([]string, 0, len(dates)+1)
	for _, d := range dates {
		if d != date {
			out = append(out, d)
		}
	}
	return append(out, date)
}

// WithoutDate returns a new slice holding dates minus date.
func WithoutDate(dates []string, date string) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		if d != date {
			out = append(out, d)
		}
	}
	return out
}

// SetDate adds or removes date depending on present.
func SetDate(dates []string, date string, present bool) []string {
	if present {
		return WithDate(dates, date)
	}
	return WithoutDate(dates, date)
}

// UniqueDates drops duplicate entries, keeping first occurrences in order.
func UniqueDates(dates []string) []string {
	seen := make(map[string]struct{}, len(dates))
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }
