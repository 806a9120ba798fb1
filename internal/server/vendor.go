package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	analyticsdomain "github.com/smallbiznis/spendlens/internal/analytics/domain"
)

type createVendorRequest struct {
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	ContactEmail *string `json:"contact_email"`
}

func (s *Server) CreateVendor(c *gin.Context) {
	var req createVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		AbortWithError(c, newValidationError("name", "invalid_name", "name is required"))
		return
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		AbortWithError(c, newValidationError("category", "invalid_category", "category is required"))
		return
	}

	vendor := &analyticsdomain.Vendor{
		ID:           s.genID.Generate(),
		Name:         name,
		Category:     category,
		ContactEmail: req.ContactEmail,
		CreatedAt:    nowUTC(),
	}
	if err := s.store.CreateVendor(c.Request.Context(), vendor); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, vendor)
}

func (s *Server) ListVendors(c *gin.Context) {
	vendors, err := s.store.ListVendors(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, vendors)
}
