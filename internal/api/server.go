package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ambry-data/ambryctl/internal/store"
)

// APIResponse is the envelope for all API responses
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Server serves the read-only run-history and host-status API
type Server struct {
	router     *gin.Engine
	history    store.Store
	corsOrigin string
}

// NewServer creates a new API server
func NewServer(history store.Store, corsOrigin string) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		router:     gin.New(),
		history:    history,
		corsOrigin: corsOrigin,
	}

	s.router.Use(gin.Recovery())
	s.router.Use(s.corsMiddleware())
	s.setupRoutes()

	return s
}

// Router exposes the underlying router, used by tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the HTTP server
func (s *Server) Start(host, port string) error {
	addr := fmt.Sprintf("%s:%s", host, port)
	return s.router.Run(addr)
}

// setupRoutes registers all API routes
func (s *Server) setupRoutes() {
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/health", s.health)
		v1.GET("/status", s.getStatus)
		v1.GET("/runs", s.listRuns)
		v1.GET("/runs/:id", s.getRun)
	}
}

// corsMiddleware sets CORS headers for the configured origin
func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := s.corsOrigin
		if origin == "" {
			origin = "*"
		}

		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// health handles GET /api/v1/health
func (s *Server) health(c *gin.Context) {
	s.successResponse(c, gin.H{
		"status": "ok",
		"time":   time.Now(),
	})
}

func (s *Server) successResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

func (s *Server) errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   message,
	})
}
