package app

import (
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/upbit-mcp/internal/common"
	"github.com/bobmcallan/upbit-mcp/internal/config"
	"github.com/bobmcallan/upbit-mcp/internal/handlers"
	"github.com/bobmcallan/upbit-mcp/internal/mcp"
	"github.com/bobmcallan/upbit-mcp/internal/upbit"
)

// App holds all application components and dependencies.
type App struct {
	Config *config.Config
	Logger *common.Logger

	Client    *upbit.Client
	Proxy     *mcp.UpbitProxy
	MCPServer *mcpserver.MCPServer

	// HTTP handlers
	HealthHandler  *handlers.HealthHandler
	VersionHandler *handlers.VersionHandler
	MCPHandler     *mcp.Handler
}

// New initializes the application with all dependencies.
func New(cfg *config.Config, logger *common.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	if cfg.Upbit.EnableTrading {
		if !cfg.Upbit.Credentials().Complete() {
			logger.Warn().Msg("trading is enabled but upbit API keys are missing, private tools will fail")
		} else {
			logger.Warn().Msg("TRADING ENABLED: private tools can place orders and withdraw funds")
		}
	}

	policy := upbit.DefaultRetryPolicy()
	policy.MaxRetries = cfg.Upbit.MaxRetries

	a.Client = upbit.NewClient(cfg.Upbit.BaseURL(),
		upbit.WithTimeout(cfg.Upbit.GetTimeout()),
		upbit.WithRetryPolicy(policy),
		upbit.WithLogger(logger),
	)
	a.Proxy = mcp.NewUpbitProxy(a.Client, mcp.Access{
		Enabled:     cfg.Upbit.EnableTrading,
		Credentials: cfg.Upbit.Credentials(),
	}, logger)

	a.initHandlers()

	logger.Info().Msg("application initialization complete")

	return a, nil
}

// initHandlers creates the MCP server and the HTTP handlers around it.
func (a *App) initHandlers() {
	var catalog []mcp.CatalogTool
	a.MCPServer, catalog = mcp.NewServer(a.Config, a.Proxy, a.Logger)

	a.MCPHandler = mcp.NewHandler(a.MCPServer, a.Config.Server.AuthToken, a.Logger)

	names := make([]string, len(catalog))
	for i, ct := range catalog {
		names[i] = ct.Name
	}
	a.HealthHandler = handlers.NewHealthHandler(a.Logger, handlers.HealthStatus{
		Tools:          len(catalog),
		ToolNames:      names,
		TradingEnabled: a.Config.Upbit.EnableTrading,
		UpstreamURL:    a.Client.BaseURL(),
	})
	a.VersionHandler = handlers.NewVersionHandler(a.Logger, a.Config.Server.Name)
}

// Close releases application resources.
func (a *App) Close() error {
	a.Logger.Info().Msg("application closed")
	return nil
}
