package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nhle/taskboard/internal/model"
)

func (s *Server) listWorkspaceTags(c *gin.Context) {
	tags, err := s.store.GetWorkspaceTags(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (s *Server) createWorkspaceTag(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Color string `json:"color" binding:"omitempty,hexcolor"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	tag, err := s.store.CreateTag(c.Request.Context(), model.Tag{
		Name:        req.Name,
		Color:       req.Color,
		WorkspaceID: c.Param("id"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

func (s *Server) listTaskTags(c *gin.Context) {
	tags, err := s.store.GetTaskTags(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (s *Server) addTaskTag(c *gin.Context) {
	var req struct {
		TagID string `json:"tag_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	tt, err := s.store.AddTaskTag(c.Request.Context(), actorOf(c), c.Param("id"), req.TagID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, tt)
}

func (s *Server) removeTaskTag(c *gin.Context) {
	err := s.store.RemoveTaskTag(c.Request.Context(), actorOf(c), c.Param("id"), c.Param("tagID"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
