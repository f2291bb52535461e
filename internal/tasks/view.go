package tasks

import (
	"slices"
	"strings"
)

// Criteria selects tasks by state. AllTasks selects everything.
type Criteria string

const AllTasks Criteria = "All tasks"

// FilterOptions is the order the filter selector cycles through.
var FilterOptions = []Criteria{AllTasks, Criteria(StateDone), Criteria(StateNotDone), Criteria(StateDoing)}

// ParseCriteria accepts "all", "All tasks" or anything ParseState accepts.
func ParseCriteria(s string) (Criteria, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "all tasks":
		return AllTasks, true
	}
	st, ok := ParseState(s)
	if !ok {
		return "", false
	}
	return Criteria(st), true
}

// Next returns the criteria after c in FilterOptions, wrapping around.
func (c Criteria) Next() Criteria {
	i := slices.Index(FilterOptions, c)
	return FilterOptions[(i+1)%len(FilterOptions)]
}

func (c Criteria) Match(t Task) bool {
	return c == AllTasks || State(c) == t.State
}

// Filter returns the tasks matching c in their original order. The input is not modified.
func Filter(list []Task, c Criteria) []Task {
	out := make([]Task, 0, len(list))
	for _, t := range list {
		if c.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// PartitionByState returns a copy of list with every task in target first,
// keeping relative order inside both groups.
func PartitionByState(list []Task, target State) []Task {
	out := make([]Task, 0, len(list))
	for _, t := range list {
		if t.State == target {
			out = append(out, t)
		}
	}
	for _, t := range list {
		if t.State != target {
			out = append(out, t)
		}
	}
	return out
}

// SortByDeadline returns a copy of list ordered by ascending deadline. Tasks
// without a deadline go last; ties keep their relative order.
func SortByDeadline(list []Task) []Task {
	out := slices.Clone(list)
	slices.SortStableFunc(out, func(a, b Task) int {
		switch {
		case !a.Deadline.Valid && !b.Deadline.Valid:
			return 0
		case !a.Deadline.Valid:
			return 1
		case !b.Deadline.Valid:
			return -1
		}
		return a.Deadline.Time.Compare(b.Deadline.Time)
	})
	return out
}
