package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFriendshipTransition(t *testing.T) {
	pending := Friendship{ID: "f1", Status: FriendshipPending}
	assert.NoError(t, pending.Transition(FriendshipAccepted))
	assert.NoError(t, pending.Transition(FriendshipRejected))
	assert.Error(t, pending.Transition(FriendshipPending))

	accepted := Friendship{ID: "f1", Status: FriendshipAccepted}
	assert.Error(t, accepted.Transition(FriendshipRejected))
}

func TestPairKeyIsOrderIndependent(t *testing.T) {
	assert.Equal(t, PairKey("alice", "bob"), PairKey("bob", "alice"))
}

func TestPairKeyDoesNotCollideOnSeparator(t *testing.T) {
	assert.NotEqual(t, PairKey("a:b", "c"), PairKey("a", "b:c"))
	assert.NotEqual(t, PairKey("ab", "c"), PairKey("a", "bc"))
}

func TestSubtaskSetCompletedKeepsTimestampConsistent(t *testing.T) {
	var s Subtask
	now := timeFixture()

	s.SetCompleted(true, now)
	assert.True(t, s.Completed)
	if assert.NotNil(t, s.CompletedAt) {
		assert.Equal(t, now, *s.CompletedAt)
	}

	s.SetCompleted(false, now)
	assert.False(t, s.Completed)
	assert.Nil(t, s.CompletedAt)
}
