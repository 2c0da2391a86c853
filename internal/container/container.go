package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/garyjia/surat-menyurat/internal/application/dispatcher"
	"github.com/garyjia/surat-menyurat/internal/application/port"
	"github.com/garyjia/surat-menyurat/internal/application/service"
	"github.com/garyjia/surat-menyurat/internal/application/workflow"
	httpapi "github.com/garyjia/surat-menyurat/internal/interfaces/http"
	"github.com/garyjia/surat-menyurat/pkg/database"
)

// Container manages all application dependencies and lifecycle.
// Components start in dependency order and are torn down in reverse.
type Container struct {
	config *Config
	logger *zap.Logger

	// Infrastructure
	store        port.TabularStore
	db           *database.DB
	repositories *RepositoryBundle

	// Application
	services   *ServiceBundle
	dispatcher dispatcher.Dispatcher
	workflow   workflow.WorkflowEngine

	// Lifecycle
	mu     sync.RWMutex
	ready  atomic.Bool
	closed atomic.Bool
}

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	User        port.UserRepository
	Member      port.MemberRepository
	Period      port.PeriodRepository
	Department  port.DepartmentRepository
	Letter      port.LetterRepository
	LetterRead  port.LetterReadRepository
	Awardee     port.AwardeeRepository
	Program     port.ProgramRepository
	Transaction port.TransactionRepository
	Template    port.TemplateRepository
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Auth        service.AuthService
	Users       service.UserService
	Periods     service.PeriodService
	Departments service.DepartmentService
	Members     service.MemberService
	Catalog     service.CatalogService
	Letters     service.LetterService
	Dashboard   service.DashboardService
	Archive     service.ArchiveService
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components in dependency order:
// 1. Store and repositories
// 2. Application services
// 3. Event dispatcher and workflow engine
// 4. Schema bootstrap
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}

	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization", zap.String("store_driver", c.config.Store.Driver))

	// Step 1: Initialize store and repositories
	if err := c.initStore(ctx); err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	c.logger.Info("Store initialized")

	// Step 2: Initialize application services
	if err := c.initServices(); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	c.logger.Info("Application services initialized")

	// Step 3: Initialize dispatcher and workflow engine
	if err := c.initDispatcherAndWorkflow(); err != nil {
		return fmt.Errorf("failed to initialize dispatcher and workflow: %w", err)
	}
	c.logger.Info("Dispatcher and workflow engine initialized")

	// Step 4: Create missing sheets. A failure here leaves the server up;
	// GET /api/setup can retry it.
	if c.config.Store.Bootstrap {
		if err := c.store.EnsureSchema(ctx); err != nil {
			c.logger.Warn("Schema bootstrap failed", zap.Error(err))
		} else {
			c.logger.Info("Schema bootstrapped")
		}
	}

	c.ready.Store(true)
	c.logger.Info("Container started successfully")

	return nil
}

// Close gracefully shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	var errs []error

	// Step 1: Close dispatcher, waiting for in-flight handlers (reverse of step 3)
	if c.dispatcher != nil {
		if err := c.dispatcher.Close(); err != nil {
			c.logger.Error("Failed to close dispatcher", zap.Error(err))
			errs = append(errs, fmt.Errorf("close dispatcher: %w", err))
		} else {
			c.logger.Info("Dispatcher closed")
		}
	}

	// Step 2: Close the sqlite connection (reverse of step 1)
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			errs = append(errs, fmt.Errorf("close database: %w", err))
		} else {
			c.logger.Info("Database closed")
		}
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return fmt.Errorf("container closed with %d errors", len(errs))
	}

	c.logger.Info("Container closed successfully")
	return nil
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	set := func(name string, healthy bool, msg string) {
		status.Components[name] = ComponentHealth{Healthy: healthy, Message: msg}
		if !healthy {
			status.Overall = false
		}
	}

	if c.store == nil {
		set("store", false, "not initialized")
	} else {
		set("store", true, c.config.Store.Driver)
	}

	if c.db != nil {
		if err := c.db.PingContext(ctx); err != nil {
			set("database", false, fmt.Sprintf("ping failed: %v", err))
		} else {
			set("database", true, "")
		}
	}

	if c.dispatcher == nil {
		set("dispatcher", false, "not initialized")
	} else {
		set("dispatcher", true, "")
	}

	if c.workflow == nil {
		set("workflow", false, "not initialized")
	} else {
		set("workflow", true, "")
	}

	return status
}

func (c *Container) initStore(ctx context.Context) error {
	bundle, err := ProvideStore(ctx, &c.config.Store, c.logger)
	if err != nil {
		return err
	}
	c.store = bundle.Store
	c.db = bundle.DB

	repos, err := ProvideRepositories(c.store, c.logger)
	if err != nil {
		if c.db != nil {
			_ = c.db.Close()
		}
		return err
	}
	c.repositories = repos
	return nil
}

func (c *Container) initServices() error {
	services, err := ProvideServices(&ServiceDeps{
		Repos:  c.repositories,
		Auth:   &c.config.Auth,
		Logger: c.logger,
	})
	if err != nil {
		return err
	}
	c.services = services
	return nil
}

func (c *Container) initDispatcherAndWorkflow() error {
	disp, err := ProvideDispatcher(c.services.Members, c.logger)
	if err != nil {
		return err
	}
	c.dispatcher = disp

	engine, err := ProvideWorkflowEngine(&WorkflowDeps{
		Repos:      c.repositories,
		Directory:  c.services.Members,
		Dispatcher: c.dispatcher,
		Logger:     c.logger,
	})
	if err != nil {
		return err
	}
	c.workflow = engine
	return nil
}

// HTTPServices returns the application layer the HTTP handlers delegate to.
func (c *Container) HTTPServices() httpapi.Services {
	s := c.services
	return httpapi.Services{
		Auth:        s.Auth,
		Users:       s.Users,
		Periods:     s.Periods,
		Departments: s.Departments,
		Members:     s.Members,
		Catalog:     s.Catalog,
		Letters:     s.Letters,
		Dashboard:   s.Dashboard,
		Archive:     s.Archive,
		Workflow:    c.workflow,
		Setup:       c.store.EnsureSchema,
	}
}

// Getters for accessing container components

func (c *Container) Store() port.TabularStore {
	return c.store
}

// Repositories returns all repositories.
func (c *Container) Repositories() *RepositoryBundle {
	return c.repositories
}

// Services returns all application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Dispatcher returns the event dispatcher.
func (c *Container) Dispatcher() dispatcher.Dispatcher {
	return c.dispatcher
}

// WorkflowEngine returns the workflow engine.
func (c *Container) WorkflowEngine() workflow.WorkflowEngine {
	return c.workflow
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// LoggerAdapter returns the container's logger behind the key-value
// Logger interface the application layers accept.
func (c *Container) LoggerAdapter() httpapi.Logger {
	return &zapLoggerAdapter{logger: c.logger}
}

// Config returns the container's configuration.
func (c *Container) Config() *Config {
	return c.config
}

// zapLoggerAdapter adapts zap.Logger to the service.Logger interface.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	fields := convertToZapFields(keysAndValues...)
	a.logger.Info(msg, fields...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	fields := convertToZapFields(keysAndValues...)
	a.logger.Error(msg, fields...)
}

// dispatcherLoggerAdapter adapts zap.Logger to the dispatcher.Logger interface.
type dispatcherLoggerAdapter struct {
	logger *zap.Logger
}

func (a *dispatcherLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	fields := convertToZapFields(keysAndValues...)
	a.logger.Info(msg, fields...)
}

func (a *dispatcherLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	fields := convertToZapFields(keysAndValues...)
	a.logger.Error(msg, fields...)
}

// convertToZapFields converts key-value pairs to zap fields.
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
