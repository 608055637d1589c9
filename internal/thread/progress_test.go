package thread

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/taskboard/internal/model"
)

func subtasks(done ...bool) []model.Subtask {
	out := make([]model.Subtask, len(done))
	for i, d := range done {
		out[i] = model.Subtask{ID: string(rune('a' + i)), Completed: d}
	}
	return out
}

func TestSubtaskProgress(t *testing.T) {
	tests := []struct {
		name    string
		in      []model.Subtask
		percent int
		badge   string
	}{
		{name: "none", in: nil, percent: 0, badge: "0/0"},
		{name: "two of three", in: subtasks(true, true, false), percent: 67, badge: "2/3"},
		{name: "one of three", in: subtasks(true, false, false), percent: 33, badge: "1/3"},
		{name: "all", in: subtasks(true, true, true), percent: 100, badge: "3/3"},
		{name: "half", in: subtasks(false, true), percent: 50, badge: "1/2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := SubtaskProgress(tt.in)
			assert.Equal(t, tt.percent, p.Percent())
			assert.Equal(t, tt.badge, p.Badge())
		})
	}
}

func TestProgressComplete(t *testing.T) {
	assert.False(t, SubtaskProgress(nil).Complete())
	assert.False(t, SubtaskProgress(subtasks(true, false)).Complete())
	assert.True(t, SubtaskProgress(subtasks(true, true)).Complete())
}
