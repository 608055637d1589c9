package thread

import (
	"fmt"
	"math"

	"github.com/nhle/taskboard/internal/model"
)

// Progress summarizes subtask completion for a task.
type Progress struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// SubtaskProgress counts completed subtasks.
func SubtaskProgress(subtasks []model.Subtask) Progress {
	p := Progress{Total: len(subtasks)}
	for _, s := range subtasks {
		if s.Completed {
			p.Done++
		}
	}
	return p
}

// Percent returns the rounded completion percentage, 0 when there are no
// subtasks.
func (p Progress) Percent() int {
	if p.Total == 0 {
		return 0
	}
	return int(math.Round(float64(p.Done) / float64(p.Total) * 100))
}

// Badge returns the "done/total" label shown next to a task.
func (p Progress) Badge() string {
	return fmt.Sprintf("%d/%d", p.Done, p.Total)
}

// Complete reports whether every subtask is done. A task without subtasks
// is not complete.
func (p Progress) Complete() bool {
	return p.Total > 0 && p.Done == p.Total
}
