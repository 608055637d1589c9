package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/model"
)

func TestDSNAppendsPragmas(t *testing.T) {
	assert.Equal(t,
		"/tmp/tb.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)",
		dsn("/tmp/tb.db"))
	assert.Equal(t,
		"file:tb.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)",
		dsn("file:tb.db?mode=rwc"))
}

func TestEveryConnectionEnforcesForeignKeys(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "taskboard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	first, err := s.db.Connx(ctx)
	require.NoError(t, err)
	defer first.Close()
	second, err := s.db.Connx(ctx)
	require.NoError(t, err)
	defer second.Close()

	for i, conn := range []*sqlx.Conn{first, second} {
		var on int
		require.NoError(t, conn.GetContext(ctx, &on, "PRAGMA foreign_keys"))
		assert.Equal(t, 1, on, "connection %d", i)

		var mode string
		require.NoError(t, conn.GetContext(ctx, &mode, "PRAGMA journal_mode"))
		assert.Equal(t, "wal", mode, "connection %d", i)
	}
}

func TestFriendshipStatusUpdateRequiresPriorStatus(t *testing.T) {
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	f, err := s.RequestFriendship(ctx, "alice", "bob")
	require.NoError(t, err)

	require.NoError(t, s.setFriendshipStatus(ctx, f.ID, model.FriendshipPending, model.FriendshipAccepted))
	// A responder that read the row while it was still pending loses.
	err = s.setFriendshipStatus(ctx, f.ID, model.FriendshipPending, model.FriendshipRejected)
	assert.ErrorIs(t, err, ErrConflict)

	got, err := s.getFriendship(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, model.FriendshipAccepted, got.Status)
}
