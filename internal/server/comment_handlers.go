package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nhle/taskboard/internal/model"
)

func (s *Server) listComments(c *gin.Context) {
	comments, err := s.store.GetComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (s *Server) createComment(c *gin.Context) {
	var req struct {
		Content  string  `json:"content" binding:"required"`
		ParentID *string `json:"parent_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	comment, err := s.store.CreateComment(c.Request.Context(), actorOf(c), model.Comment{
		TaskID:   c.Param("id"),
		ParentID: req.ParentID,
		Content:  req.Content,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (s *Server) updateComment(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	comment, err := s.store.UpdateComment(c.Request.Context(), actorOf(c), c.Param("id"), req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// deleteComment answers 200 with the kept row for a logical delete and 204
// for a hard delete.
func (s *Server) deleteComment(c *gin.Context) {
	kept, err := s.store.DeleteComment(c.Request.Context(), actorOf(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if kept == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, kept)
}
