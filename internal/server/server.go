// Package server is the reference REST backend. It serves /api/v1 over a
// store.Store and records the acting user from the X-User-ID header.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nhle/taskboard/internal/store"
)

// UserHeader names the header carrying the acting user.
const UserHeader = "X-User-ID"

// Server wires HTTP handlers to a store.
type Server struct {
	store       store.Store
	logger      *zap.Logger
	defaultUser string
}

// New creates a server. Requests without an X-User-ID header act as
// defaultUser.
func New(s store.Store, logger *zap.Logger, defaultUser string) *Server {
	return &Server{
		store:       s,
		logger:      logger,
		defaultUser: defaultUser,
	}
}

// Handler builds the gin router.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(s.recovery(), s.requestLogger(), s.actor())

	v1 := r.Group("/api/v1")
	{
		v1.GET("/workspaces", s.listWorkspaces)
		v1.POST("/workspaces", s.createWorkspace)
		v1.GET("/workspaces/:id", s.getWorkspace)
		v1.GET("/workspaces/:id/lists", s.listLists)
		v1.POST("/workspaces/:id/lists", s.createList)
		v1.GET("/workspaces/:id/tags", s.listWorkspaceTags)
		v1.POST("/workspaces/:id/tags", s.createWorkspaceTag)

		v1.GET("/tasks", s.listTasks)
		v1.POST("/tasks", s.createTask)
		v1.GET("/tasks/:id", s.getTask)
		v1.PATCH("/tasks/:id", s.updateTask)
		v1.DELETE("/tasks/:id", s.deleteTask)

		v1.GET("/tasks/:id/comments", s.listComments)
		v1.POST("/tasks/:id/comments", s.createComment)
		v1.PATCH("/comments/:id", s.updateComment)
		v1.DELETE("/comments/:id", s.deleteComment)

		v1.GET("/tasks/:id/subtasks", s.listSubtasks)
		v1.POST("/tasks/:id/subtasks", s.createSubtask)
		v1.PATCH("/subtasks/:id", s.updateSubtask)
		v1.DELETE("/subtasks/:id", s.deleteSubtask)

		v1.GET("/tasks/:id/collaborators", s.listCollaborators)
		v1.POST("/tasks/:id/collaborators", s.addCollaborator)
		v1.PATCH("/collaborators/:id", s.updateCollaborator)
		v1.DELETE("/collaborators/:id", s.removeCollaborator)

		v1.GET("/tasks/:id/tags", s.listTaskTags)
		v1.POST("/tasks/:id/tags", s.addTaskTag)
		v1.DELETE("/tasks/:id/tags/:tagID", s.removeTaskTag)

		v1.GET("/tasks/:id/activity", s.listActivity)

		v1.GET("/friendships", s.listFriendships)
		v1.POST("/friendships", s.requestFriendship)
		v1.PATCH("/friendships/:id", s.respondFriendship)
		v1.DELETE("/friendships/:id", s.removeFriendship)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving on %s: %w", addr, err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}
