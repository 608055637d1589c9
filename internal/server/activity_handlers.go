package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
)

type activityQuery struct {
	Limit  int    `form:"limit,default=20" binding:"gte=1,lte=100"`
	Offset int    `form:"offset,default=0" binding:"gte=0"`
	Type   string `form:"type"`
}

func (s *Server) listActivity(c *gin.Context) {
	var q activityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	filter := store.ActivityFilter{
		TaskID: c.Param("id"),
		Limit:  q.Limit,
		Offset: q.Offset,
	}
	if q.Type != "" {
		t := model.ActivityType(q.Type)
		filter.Type = &t
	}

	activity, err := s.store.GetActivity(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, activity)
}
