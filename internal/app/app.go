package app

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/openvault-portal/internal/cache"
	"github.com/bobmcallan/openvault-portal/internal/client"
	"github.com/bobmcallan/openvault-portal/internal/common"
	"github.com/bobmcallan/openvault-portal/internal/config"
	"github.com/bobmcallan/openvault-portal/internal/handlers"
	"github.com/bobmcallan/openvault-portal/internal/interfaces"
	"github.com/bobmcallan/openvault-portal/internal/mcp"
	"github.com/bobmcallan/openvault-portal/internal/session"
	"github.com/bobmcallan/openvault-portal/internal/storage"
)

// cacheMaxEntries bounds the API response cache.
const cacheMaxEntries = 256

// App holds all application components and dependencies.
type App struct {
	Config *config.Config
	Logger *common.Logger

	Storage  interfaces.StorageManager
	Sessions *session.Manager
	Cache    *cache.ResponseCache
	API      *client.Client

	// HTTP handlers
	PageHandler         *handlers.PageHandler
	HealthHandler       *handlers.HealthHandler
	VersionHandler      *handlers.VersionHandler
	AuthHandler         *handlers.AuthHandler
	DashboardHandler    *handlers.DashboardHandler
	AccountsHandler     *handlers.AccountsHandler
	TransactionsHandler *handlers.TransactionsHandler
	TransferHandler     *handlers.TransferHandler
	AnalysisHandler     *handlers.AnalysisHandler
	SessionHandler      *handlers.SessionHandler
	MCPHandler          *mcp.Handler

	unwatch func()
}

// New initializes the application with all dependencies.
func New(cfg *config.Config, logger *common.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	// Validate environment setting
	env := strings.ToLower(strings.TrimSpace(cfg.Environment))
	if cfg.IsDevMode() {
		logger.Warn().Msg("RUNNING IN DEV MODE")
	} else if env != "prod" && env != "" {
		logger.Warn().
			Str("environment", cfg.Environment).
			Msg("unrecognized environment value, defaulting to prod behavior")
	}

	if err := a.initStorage(); err != nil {
		return nil, err
	}
	a.initSession()
	a.initClient()
	a.initHandlers()

	logger.Info().
		Str("api_url", cfg.API.URL).
		Str("storage", cfg.Storage.Backend).
		Bool("authenticated", a.Sessions.Current() != nil).
		Msg("application initialization complete")

	return a, nil
}

func (a *App) initStorage() error {
	manager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.Storage = manager
	return nil
}

// initSession restores the stored session, if any, before anything reads it.
func (a *App) initSession() {
	a.Sessions = session.NewManager(
		a.Storage.KeyValueStorage(),
		a.Logger,
		session.WithTokenKey(a.Config.Session.TokenKey),
	)
}

func (a *App) initClient() {
	opts := []client.Option{client.WithTimeout(a.Config.APITimeout())}
	if ttl := a.Config.APICacheTTL(); ttl > 0 {
		a.Cache = cache.New(ttl, cacheMaxEntries)
		opts = append(opts, client.WithCache(a.Cache))
	}

	a.API = client.New(a.Config.API.URL, a.Sessions, a.Logger, opts...)
	a.unwatch = a.API.WatchSession(a.Sessions)
}

// initHandlers initializes all HTTP handlers.
func (a *App) initHandlers() {
	a.PageHandler = handlers.NewPageHandler(a.Logger, a.Sessions, a.Config.IsDevMode())
	a.HealthHandler = handlers.NewHealthHandler(a.Logger, a.Storage.KeyValueStorage())
	a.VersionHandler = handlers.NewVersionHandler(a.Logger, a.Config.API.URL)

	a.AuthHandler = handlers.NewAuthHandler(a.Logger, a.PageHandler, a.API, a.Sessions)
	a.DashboardHandler = handlers.NewDashboardHandler(a.Logger, a.PageHandler, a.API)
	a.AccountsHandler = handlers.NewAccountsHandler(a.Logger, a.PageHandler, a.API)
	a.TransactionsHandler = handlers.NewTransactionsHandler(a.Logger, a.PageHandler, a.API)
	a.TransferHandler = handlers.NewTransferHandler(a.Logger, a.PageHandler, a.API)
	a.AnalysisHandler = handlers.NewAnalysisHandler(a.Logger, a.PageHandler, a.API)
	a.SessionHandler = handlers.NewSessionHandler(a.Logger, a.Sessions)

	a.MCPHandler = mcp.NewHandler(a.API, a.Sessions, a.Config.API.URL, a.Logger)

	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// Close closes all application resources.
func (a *App) Close() error {
	if a.unwatch != nil {
		a.unwatch()
	}
	if a.Storage != nil {
		return a.Storage.Close()
	}
	return nil
}
