package server

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/spektr-org/erlens/config"
)

// ============================================================================
// HTTP SERVER — gin router over the analysis pipeline
// ============================================================================
// Routes:
//   GET  /health
//   POST /api/analyze              CSV body or multipart "file"
//   GET  /api/sample               embedded sample dataset
//   POST /api/chart/:type          chart data for an upload
//   GET  /api/sample/chart/:type   chart data for the sample
//   POST /api/export/:view         CSV download of a result table
// ============================================================================

const requestIDHeader = "X-Request-ID"

// Server serves the analysis API.
type Server struct {
	cfg    *config.Config
	router *gin.Engine
}

// New builds a server from cfg. A nil cfg uses config.Default().
func New(cfg *config.Config) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Server{cfg: cfg}
	s.router = s.setupRouter()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address until the server fails.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("🚀 [server] listening on %s", s.cfg.Server.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) setupRouter() *gin.Engine {
	r := gin.Default()
	r.Use(requestID())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(s.limitBody())
	api.POST("/analyze", s.analyze)
	api.GET("/sample", s.sample)
	api.POST("/chart/:type", s.chart)
	api.GET("/sample/chart/:type", s.sampleChart)
	api.POST("/export/:view", s.export)

	return r
}

// requestID tags every request and response with an id, keeping one the
// client already sent.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) limitBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.Server.MaxUploadBytes)
		c.Next()
	}
}

func respondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg, "requestId": c.GetString("requestID")})
}
