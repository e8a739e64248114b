package prioritize

import (
	"cmp"
	"slices"

	"github.com/poiesic/pocketgenie/core"
)

// Rank returns tasks sorted by (no due date last, due date ascending,
// priority descending). The sort is stable: tasks equal on all three keys
// keep their input order. The input slice is not modified.
func Rank(tasks []*core.Task) []*core.Task {
	ranked := slices.Clone(tasks)
	slices.SortStableFunc(ranked, compareUrgency)
	return ranked
}

func compareUrgency(a, b *core.Task) int {
	switch {
	case a.DueDate == nil && b.DueDate != nil:
		return 1
	case a.DueDate != nil && b.DueDate == nil:
		return -1
	case a.DueDate != nil && b.DueDate != nil:
		if c := a.DueDate.Compare(*b.DueDate); c != 0 {
			return c
		}
	}
	return cmp.Compare(b.Priority, a.Priority)
}
