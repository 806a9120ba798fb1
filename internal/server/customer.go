package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	analyticsdomain "github.com/smallbiznis/spendlens/internal/analytics/domain"
)

type createCustomerRequest struct {
	Name   string  `json:"name"`
	Region *string `json:"region"`
}

func (s *Server) CreateCustomer(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		AbortWithError(c, newValidationError("name", "invalid_name", "name is required"))
		return
	}

	customer := &analyticsdomain.Customer{
		ID:        s.genID.Generate(),
		Name:      name,
		Region:    req.Region,
		CreatedAt: nowUTC(),
	}
	if err := s.store.CreateCustomer(c.Request.Context(), customer); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, customer)
}

func (s *Server) ListCustomers(c *gin.Context) {
	customers, err := s.store.ListCustomers(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, customers)
}
