// Package http provides the JSON API adapter for the letter workflow.
// Handlers translate requests into application service calls and map the
// error taxonomy onto status codes.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/surat-menyurat/internal/application/service"
	"github.com/garyjia/surat-menyurat/internal/application/workflow"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// BypassAuth lets requests without a token through as a guest viewer.
	BypassAuth bool
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Services bundles the application layer the handlers delegate to
type Services struct {
	Auth        service.AuthService
	Users       service.UserService
	Periods     service.PeriodService
	Departments service.DepartmentService
	Members     service.MemberService
	Catalog     service.CatalogService
	Letters     service.LetterService
	Dashboard   service.DashboardService
	Archive     service.ArchiveService
	Workflow    workflow.WorkflowEngine

	// Setup creates missing sheets and header rows.
	Setup func(ctx context.Context) error
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	services   Services
	logger     Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(config ServerConfig, services Services, logger Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	server := &Server{
		config:   config,
		router:   router,
		services: services,
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		)
	}
}

func (s *Server) setupRoutes() {
	h := NewHandlers(s.services, s.logger)

	s.router.GET("/health", h.HealthCheck)

	public := s.router.Group("/api")
	{
		public.POST("/login", h.Login)
		public.POST("/register", h.Register)
		public.GET("/setup", h.Setup)
	}

	api := s.router.Group("/api")
	api.Use(authMiddleware(s.services.Auth, s.config.BypassAuth))
	{
		api.GET("/templates", h.ListTemplates)

		api.GET("/me", h.GetMe)
		api.PATCH("/me", h.UpdateMe)
		api.GET("/users", h.ListUsers)
		api.PATCH("/users/:id", h.UpdateUser)

		api.GET("/periods", h.ListPeriods)
		api.POST("/periods", h.CreatePeriod)
		api.PATCH("/periods/:id", h.UpdatePeriod)

		api.GET("/departments", h.ListDepartments)
		api.POST("/departments", h.CreateDepartment)
		api.PATCH("/departments/:id", h.UpdateDepartment)
		api.DELETE("/departments/:id", h.DeleteDepartment)

		api.GET("/members", h.ListMembers)
		api.POST("/members", h.CreateMember)
		api.PATCH("/members/:id", h.UpdateMember)

		api.GET("/awardees", h.ListAwardees)
		api.POST("/awardees", h.CreateAwardee)
		api.GET("/programs", h.ListPrograms)
		api.POST("/programs", h.CreateProgram)
		api.GET("/transactions", h.ListTransactions)
		api.POST("/transactions", h.CreateTransaction)

		api.GET("/dashboard/stats", h.DashboardStats)
		api.GET("/notifications", h.Notifications)

		letters := api.Group("/letters")
		{
			letters.GET("", h.ListLetters)
			letters.POST("", h.CreateLetter)
			letters.GET("/:id", h.GetLetter)
			letters.GET("/:id/actions", h.LetterActions)
			letters.PATCH("/:id", h.UpdateLetter)
			letters.POST("/:id/read", h.MarkLetterRead)
			letters.POST("/:id/submit", h.SubmitLetter)
			letters.POST("/:id/approve", h.ApproveLetter)
			letters.POST("/:id/return", h.ReturnLetter)
			letters.POST("/:id/reject", h.RejectLetter)
			letters.POST("/:id/sign", h.SignLetter)
			letters.POST("/:id/send", h.SendLetter)
			letters.POST("/:id/forward", h.ForwardLetter)
			letters.POST("/:id/archive", h.ArchiveLetter)
		}

		api.GET("/archive/export", h.ExportArchive)
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	addr := s.Address()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
