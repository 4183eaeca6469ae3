package api

import (
	"github.com/gin-gonic/gin"

	"github.com/ambry-data/ambryctl/internal/host"
)

// Status endpoint

// getStatus handles GET /api/v1/status
func (s *Server) getStatus(c *gin.Context) {
	s.successResponse(c, host.Status())
}
