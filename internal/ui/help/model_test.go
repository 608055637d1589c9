package help

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/taskboard/internal/keys"
)

func TestViewListsSectionsAndCommands(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 120, 60)
	view := m.View()

	for _, want := range []string{"Task list", "Side panel", "Activity", "add subtask", "load more", ":sort MODE", ":list ID"} {
		assert.Contains(t, view, want)
	}
}

func TestDisabledBindingsAreHidden(t *testing.T) {
	k := keys.DefaultKeyMap()
	k.LoadMore.SetEnabled(false)
	m := New(k, 120, 60)

	assert.NotContains(t, m.View(), "load more")
}

func TestSectionsCoverEveryFullHelpBinding(t *testing.T) {
	k := keys.DefaultKeyMap()
	listed := map[string]bool{}
	for _, s := range sections(k) {
		for _, b := range s.bindings {
			listed[strings.Join(b.Keys(), ",")] = true
		}
	}
	for _, row := range k.FullHelp() {
		for _, b := range row {
			assert.True(t, listed[strings.Join(b.Keys(), ",")], "binding %q missing", b.Help().Key)
		}
	}
}

func TestSplitColumnsKeepsOrder(t *testing.T) {
	left, right := splitColumns([]string{"a\nb\nc", "d", "e\nf"})
	assert.Equal(t, []string{"a\nb\nc"}, left)
	assert.Equal(t, []string{"d", "e\nf"}, right)
}
