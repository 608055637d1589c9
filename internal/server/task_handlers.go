package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
)

type createTaskRequest struct {
	ListID      string     `json:"list_id" binding:"required"`
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Status      string     `json:"status" binding:"omitempty,oneof=todo in_progress completed"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"due_date"`
	Assignee    *string    `json:"assignee"`
}

func (s *Server) listTasks(c *gin.Context) {
	var filter store.TaskFilter
	if v := c.Query("workspace_id"); v != "" {
		filter.WorkspaceID = &v
	}
	if v := c.Query("list_id"); v != "" {
		filter.ListID = &v
	}
	if v := c.Query("status"); v != "" {
		filter.Status = &v
	}
	if v := c.Query("q"); v != "" {
		filter.Query = &v
	}
	filter.SortBy = c.Query("sort")
	filter.SortDesc = c.Query("order") == "desc"

	tasks, err := s.store.GetTasks(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) createTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	task, err := s.store.CreateTask(c.Request.Context(), actorOf(c), model.Task{
		ListID:      req.ListID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Assignee:    req.Assignee,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *Server) getTask(c *gin.Context) {
	task, err := s.store.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) updateTask(c *gin.Context) {
	var patch model.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}

	task, err := s.store.UpdateTask(c.Request.Context(), actorOf(c), c.Param("id"), patch)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) deleteTask(c *gin.Context) {
	if err := s.store.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
