package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type chatRequest struct {
	Query string `json:"query"`
}

func (s *Server) ChatWithData(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		AbortWithError(c, newValidationError("query", "invalid_query", "query is required"))
		return
	}

	resp, err := s.chatSvc.Process(c.Request.Context(), req.Query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
