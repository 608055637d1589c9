package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nhle/taskboard/internal/model"
)

func (s *Server) listWorkspaces(c *gin.Context) {
	workspaces, err := s.store.GetWorkspaces(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, workspaces)
}

func (s *Server) createWorkspace(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ws, err := s.store.CreateWorkspace(c.Request.Context(), model.Workspace{
		Name:    req.Name,
		OwnerID: actorOf(c),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, ws)
}

func (s *Server) getWorkspace(c *gin.Context) {
	ws, err := s.store.GetWorkspace(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ws)
}

func (s *Server) listLists(c *gin.Context) {
	lists, err := s.store.GetLists(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, lists)
}

func (s *Server) createList(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	list, err := s.store.CreateList(c.Request.Context(), model.List{
		WorkspaceID: c.Param("id"),
		Name:        req.Name,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, list)
}
