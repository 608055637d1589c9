package testutil

import (
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/nhle/taskboard/internal/server"
	"github.com/nhle/taskboard/internal/store"
)

// NewTestServer serves the real REST router over s. The server is closed
// when the test completes.
func NewTestServer(t *testing.T, s store.Store) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(server.New(s, zap.NewNop(), TestUser).Handler())
	t.Cleanup(srv.Close)
	return srv
}
