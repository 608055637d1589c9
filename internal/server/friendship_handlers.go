package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) listFriendships(c *gin.Context) {
	friendships, err := s.store.GetFriendships(c.Request.Context(), actorOf(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, friendships)
}

func (s *Server) requestFriendship(c *gin.Context) {
	var req struct {
		FriendID string `json:"friend_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	f, err := s.store.RequestFriendship(c.Request.Context(), actorOf(c), req.FriendID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (s *Server) respondFriendship(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required,oneof=accepted rejected"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	f, err := s.store.RespondFriendship(c.Request.Context(), actorOf(c), c.Param("id"), req.Status)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (s *Server) removeFriendship(c *gin.Context) {
	if err := s.store.RemoveFriendship(c.Request.Context(), actorOf(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
