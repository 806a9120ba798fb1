package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const defaultTopVendorLimit = 10

func (s *Server) GetStats(c *gin.Context) {
	stats, err := s.store.GetStats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (s *Server) GetInvoiceTrends(c *gin.Context) {
	trends, err := s.store.GetInvoiceTrends(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, trends)
}

func (s *Server) GetTopVendors(c *gin.Context) {
	limit, err := parsePositiveInt(c.Query("limit"), defaultTopVendorLimit)
	if err != nil {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
		return
	}

	vendors, err := s.store.GetTopVendors(c.Request.Context(), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, vendors)
}

func (s *Server) GetCategorySpend(c *gin.Context) {
	categories, err := s.store.GetCategorySpend(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, categories)
}

func (s *Server) GetCashOutflow(c *gin.Context) {
	outflow, err := s.store.GetCashOutflow(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, outflow)
}
