package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/upbit-mcp/internal/app"
	"github.com/bobmcallan/upbit-mcp/internal/common"
	"github.com/bobmcallan/upbit-mcp/internal/config"
	"github.com/bobmcallan/upbit-mcp/internal/server"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

// configPaths is a custom flag type that allows multiple -config flags.
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles configPaths
	stdio       = flag.Bool("stdio", false, "Use stdio transport (for desktop MCP clients)")
	serverPort  = flag.Int("port", 0, "HTTP port (overrides config)")
	serverHost  = flag.String("host", "", "HTTP host (overrides config)")
	showVersion = flag.Bool("version", false, "Print version information")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	config.LoadVersionFromFile()

	if *showVersion {
		fmt.Printf("upbit-mcp version %s\n", config.GetFullVersion())
		os.Exit(0)
	}

	if len(configFiles) == 0 {
		for _, path := range configSearchPaths() {
			if _, err := os.Stat(path); err == nil {
				configFiles = append(configFiles, path)
				break
			}
		}
	}

	cfg, err := config.LoadFromFiles(configFiles...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	config.ApplyFlagOverrides(cfg, *serverPort, *serverHost)

	issues := cfg.Validate()
	if !*stdio {
		issues = cfg.ValidateHTTP()
	}
	if len(issues) > 0 {
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Configuration error:")
		fmt.Fprintln(os.Stderr, "")
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "  - %s\n", issue)
		}
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Values can be set via TOML file, UPBIT_* environment variables, or CLI flags.")
		fmt.Fprintln(os.Stderr, "")
		os.Exit(1)
	}

	logger := setupLogger(cfg)

	logger.Info().
		Str("version", config.GetVersion()).
		Bool("stdio", *stdio).
		Str("server_url", cfg.Upbit.ServerURL).
		Bool("trading_enabled", cfg.Upbit.EnableTrading).
		Str("config_files", fmt.Sprintf("%v", configFiles)).
		Msg("configuration loaded")

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error().Str("error", err.Error()).Msg("failed to initialize application")
		os.Exit(1)
	}

	if *stdio {
		err = serveStdio(application)
	} else {
		err = serveHTTP(application)
	}
	if err != nil {
		logger.Error().Str("error", err.Error()).Msg("server failed")
		application.Close()
		os.Exit(1)
	}

	if err := application.Close(); err != nil {
		logger.Error().Str("error", err.Error()).Msg("application shutdown failed")
	}
	logger.Info().Msg("server stopped")
}

// serveStdio runs the MCP server on stdin/stdout until the client disconnects
// or the process is signalled.
func serveStdio(application *app.App) error {
	return mcpserver.ServeStdio(application.MCPServer)
}

// serveHTTP runs the streamable HTTP server until SIGINT or SIGTERM.
func serveHTTP(application *app.App) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(application)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Start()
	})

	g.Go(func() error {
		<-gctx.Done()
		if errors.Is(ctx.Err(), context.Canceled) {
			application.Logger.Info().Msg("shutdown signal received")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// configSearchPaths returns TOML files to auto-discover (first match wins).
// Binary-relative paths are tried first, with CWD fallbacks after.
func configSearchPaths() []string {
	candidates := []string{
		"upbit-mcp.toml",
		"config/upbit-mcp.toml",
	}

	exe, err := os.Executable()
	if err != nil {
		return candidates
	}
	binDir := filepath.Dir(exe)

	paths := []string{
		filepath.Join(binDir, "upbit-mcp.toml"),
		filepath.Join(binDir, "config", "upbit-mcp.toml"),
	}
	paths = append(paths, candidates...)

	// Deduplicate via absolute path.
	seen := make(map[string]bool, len(paths))
	deduped := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true
		deduped = append(deduped, p)
	}
	return deduped
}

// setupLogger creates an arbor logger based on config. In stdio mode only
// stderr and file outputs are safe; the console writer already targets stderr.
func setupLogger(cfg *config.Config) *common.Logger {
	return common.NewLoggerFromConfig(cfg.Logging)
}
