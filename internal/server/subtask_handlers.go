package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nhle/taskboard/internal/model"
)

func (s *Server) listSubtasks(c *gin.Context) {
	subtasks, err := s.store.GetSubtasks(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, subtasks)
}

func (s *Server) createSubtask(c *gin.Context) {
	var req struct {
		Title       string  `json:"title" binding:"required"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	subtask, err := s.store.CreateSubtask(c.Request.Context(), actorOf(c), model.Subtask{
		TaskID:      c.Param("id"),
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, subtask)
}

func (s *Server) updateSubtask(c *gin.Context) {
	var patch model.SubtaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}

	subtask, err := s.store.UpdateSubtask(c.Request.Context(), actorOf(c), c.Param("id"), patch)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, subtask)
}

func (s *Server) deleteSubtask(c *gin.Context) {
	if err := s.store.DeleteSubtask(c.Request.Context(), actorOf(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
