package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nhle/taskboard/internal/model"
)

func (s *Server) listCollaborators(c *gin.Context) {
	collaborators, err := s.store.GetCollaborators(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, collaborators)
}

func (s *Server) addCollaborator(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id" binding:"required"`
		Role   string `json:"role" binding:"required,oneof=owner assignee reviewer observer"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	collaborator, err := s.store.AddCollaborator(c.Request.Context(), actorOf(c), model.Collaborator{
		TaskID: c.Param("id"),
		UserID: req.UserID,
		Role:   req.Role,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, collaborator)
}

func (s *Server) updateCollaborator(c *gin.Context) {
	var req struct {
		Role string `json:"role" binding:"required,oneof=owner assignee reviewer observer"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	collaborator, err := s.store.UpdateCollaboratorRole(c.Request.Context(), actorOf(c), c.Param("id"), req.Role)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, collaborator)
}

func (s *Server) removeCollaborator(c *gin.Context) {
	if err := s.store.RemoveCollaborator(c.Request.Context(), actorOf(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
