package container

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/surat-menyurat/internal/application/dispatcher"
	"github.com/garyjia/surat-menyurat/internal/application/port"
	"github.com/garyjia/surat-menyurat/internal/application/service"
	"github.com/garyjia/surat-menyurat/internal/application/workflow"
	"github.com/garyjia/surat-menyurat/internal/domain/apperr"
	"github.com/garyjia/surat-menyurat/internal/domain/event"
	"github.com/garyjia/surat-menyurat/internal/infrastructure/export"
	"github.com/garyjia/surat-menyurat/internal/infrastructure/persistence/memory"
	"github.com/garyjia/surat-menyurat/internal/infrastructure/persistence/repository"
	"github.com/garyjia/surat-menyurat/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/surat-menyurat/internal/infrastructure/security"
	"github.com/garyjia/surat-menyurat/internal/infrastructure/sheets"
	"github.com/garyjia/surat-menyurat/pkg/database"
)

// StoreBundle holds the selected store and, for sqlite, its connection.
type StoreBundle struct {
	Store port.TabularStore
	DB    *database.DB
}

// ProvideStore opens the store named by cfg.Driver. An unconfigured
// spreadsheet yields a store that fails every call as unavailable, so the
// server still starts.
func ProvideStore(ctx context.Context, cfg *StoreConfig, logger *zap.Logger) (*StoreBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("store config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	switch cfg.Driver {
	case "sqlite":
		store, db, err := sqlite.Open(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return &StoreBundle{Store: store, DB: db}, nil

	case "memory":
		return &StoreBundle{Store: memory.NewStore()}, nil

	case "sheets":
		sheetsCfg := sheets.DefaultConfig()
		sheetsCfg.SpreadsheetID = cfg.SpreadsheetID
		sheetsCfg.CredentialsJSON = cfg.CredentialsJSON
		if cfg.Concurrency > 0 {
			sheetsCfg.Concurrency = cfg.Concurrency
		}
		if cfg.MetadataTTL > 0 {
			sheetsCfg.MetadataTTL = cfg.MetadataTTL
		}
		if cfg.ReadTTL > 0 {
			sheetsCfg.ReadTTL = cfg.ReadTTL
		}

		store, err := sheets.New(ctx, sheetsCfg, logger)
		if errors.Is(err, apperr.ErrStoreUnavailable) {
			logger.Warn("Spreadsheet not configured, store calls will fail", zap.Error(err))
			return &StoreBundle{Store: sheets.Unavailable()}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to connect sheets store: %w", err)
		}
		return &StoreBundle{Store: store}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// ProvideRepositories creates all repositories over one store.
func ProvideRepositories(store port.TabularStore, logger *zap.Logger) (*RepositoryBundle, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	users := repository.NewUserRepository(store, logger)
	members := repository.NewMemberRepository(store, logger)

	return &RepositoryBundle{
		User:        users,
		Member:      members,
		Period:      repository.NewPeriodRepository(store, logger),
		Department:  repository.NewDepartmentRepository(store, logger),
		Letter:      repository.NewLetterRepository(store, users, members, logger),
		LetterRead:  repository.NewLetterReadRepository(store, logger),
		Awardee:     repository.NewAwardeeRepository(store, logger),
		Program:     repository.NewProgramRepository(store, logger),
		Transaction: repository.NewTransactionRepository(store, logger),
		Template:    repository.NewTemplateRepository(store, logger),
	}, nil
}

// ServiceDeps holds dependencies required for creating services.
type ServiceDeps struct {
	Repos  *RepositoryBundle
	Auth   *AuthConfig
	Logger *zap.Logger
}

// ProvideServices creates all application services except the workflow
// engine, which needs the dispatcher.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil || deps.Repos == nil {
		return nil, fmt.Errorf("repositories are required")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("auth config is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	serviceLogger := &zapLoggerAdapter{logger: deps.Logger}
	repos := deps.Repos

	periods := service.NewPeriodService(repos.Period, serviceLogger)
	members := service.NewMemberService(repos.Member, repos.User, periods, serviceLogger)
	letters := service.NewLetterService(repos.Letter, repos.LetterRead, members, serviceLogger)

	var authOpts []service.AuthOption
	if deps.Auth.GoogleClientID != "" {
		authOpts = append(authOpts, service.WithIDTokenVerifier(security.NewGoogleIDTokenVerifier(deps.Auth.GoogleClientID)))
		deps.Logger.Info("Google ID tokens enabled")
	}

	return &ServiceBundle{
		Auth: service.NewAuthService(repos.User, security.NewBcryptHasher(deps.Auth.BcryptCost), service.AuthConfig{
			JWTSecret:     deps.Auth.JWTSecret,
			TokenTTL:      deps.Auth.TokenTTL,
			AdminEmail:    deps.Auth.AdminEmail,
			AdminPassword: deps.Auth.AdminPassword,
		}, serviceLogger, authOpts...),
		Users:       service.NewUserService(repos.User, serviceLogger),
		Periods:     periods,
		Departments: service.NewDepartmentService(repos.Department, periods, serviceLogger),
		Members:     members,
		Catalog:     service.NewCatalogService(repos.Awardee, repos.Program, repos.Transaction, repos.Template),
		Letters:     letters,
		Dashboard:   service.NewDashboardService(repos.Letter, repos.LetterRead, members, serviceLogger),
		Archive:     service.NewArchiveService(letters, export.NewXLSXWriter(deps.Logger), serviceLogger),
	}, nil
}

// ProvideDispatcher creates the event dispatcher and subscribes the audit
// log to every letter event and the cc notifier to approvals.
func ProvideDispatcher(members port.MemberDirectory, logger *zap.Logger) (dispatcher.Dispatcher, error) {
	if members == nil {
		return nil, fmt.Errorf("member directory is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	dispatcherLogger := &dispatcherLoggerAdapter{logger: logger}
	disp := dispatcher.NewDispatcher(dispatcher.WithLogger(dispatcherLogger))

	audit := dispatcher.NewAuditLogHandler(dispatcherLogger)
	for _, t := range []event.Type{
		event.TypeLetterCreated,
		event.TypeLetterSubmitted,
		event.TypeLetterStepApproved,
		event.TypeLetterApproved,
		event.TypeLetterReturned,
		event.TypeLetterRejected,
		event.TypeLetterSigned,
		event.TypeLetterSent,
		event.TypeLetterForwarded,
		event.TypeLetterArchived,
	} {
		disp.SubscribeNamed(t, "audit_log", audit)
	}

	disp.SubscribeNamed(event.TypeLetterApproved, "cc_notify",
		dispatcher.NewCCNotifyHandler(dispatcherLogger, ccResolver(members)))

	return disp, nil
}

// ccResolver looks cc ids up among all members; unknown ids are dropped.
func ccResolver(members port.MemberDirectory) dispatcher.CCResolver {
	return func(ctx context.Context, ids []string) ([]dispatcher.CCRecipient, error) {
		all, err := members.AllMembers(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load members: %w", err)
		}
		byID := make(map[string]dispatcher.CCRecipient, len(all))
		for _, m := range all {
			byID[m.ID] = dispatcher.CCRecipient{MemberID: m.ID, Name: m.Name, Email: m.Email}
		}

		recipients := make([]dispatcher.CCRecipient, 0, len(ids))
		for _, id := range ids {
			if r, ok := byID[id]; ok {
				recipients = append(recipients, r)
			}
		}
		return recipients, nil
	}
}

// WorkflowDeps holds dependencies required for creating the workflow engine.
type WorkflowDeps struct {
	Repos      *RepositoryBundle
	Directory  port.MemberDirectory
	Dispatcher dispatcher.Dispatcher
	Logger     *zap.Logger
}

// ProvideWorkflowEngine creates the workflow engine.
func ProvideWorkflowEngine(deps *WorkflowDeps) (workflow.WorkflowEngine, error) {
	if deps == nil {
		return nil, fmt.Errorf("workflow dependencies are required")
	}
	if deps.Repos == nil {
		return nil, fmt.Errorf("repositories are required")
	}
	if deps.Directory == nil {
		return nil, fmt.Errorf("member directory is required")
	}
	if deps.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return workflow.NewEngine(
		deps.Repos.Letter,
		deps.Repos.User,
		deps.Directory,
		workflow.WithDispatcher(deps.Dispatcher),
		workflow.WithLogger(&zapLoggerAdapter{logger: deps.Logger}),
	), nil
}
