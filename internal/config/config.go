package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/bobmcallan/upbit-mcp/internal/common"
	"github.com/bobmcallan/upbit-mcp/internal/upbit"
)

// Config represents the application configuration.
type Config struct {
	Server  ServerConfig         `toml:"server"`
	Upbit   UpbitConfig          `toml:"upbit"`
	Logging common.LoggingConfig `toml:"logging"`
}

// ServerConfig contains MCP server settings. Host, Port and AuthToken only
// apply to the streamable HTTP transport.
type ServerConfig struct {
	Name      string `toml:"name"`
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	AuthToken string `toml:"auth_token"`
}

// UpbitConfig contains the exchange endpoint and credentials.
type UpbitConfig struct {
	ServerURL     string `toml:"server_url"`
	AccessKey     string `toml:"access_key"`
	SecretKey     string `toml:"secret_key"`
	EnableTrading bool   `toml:"enable_trading"`
	Timeout       string `toml:"timeout"`
	MaxRetries    int    `toml:"max_retries"`
}

// GetTimeout parses and returns the per-attempt timeout.
func (c *UpbitConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return upbit.DefaultTimeout
	}
	return d
}

// BaseURL returns the server URL joined with the API base path.
func (c *UpbitConfig) BaseURL() string {
	return strings.TrimRight(c.ServerURL, "/") + upbit.APIBasePath
}

// Credentials returns the configured key pair.
func (c *UpbitConfig) Credentials() upbit.Credentials {
	return upbit.Credentials{
		AccessKey: c.AccessKey,
		SecretKey: c.SecretKey,
	}
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies UPBIT_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if u := os.Getenv("UPBIT_SERVER_URL"); u != "" {
		config.Upbit.ServerURL = u
	}
	if ak := os.Getenv("UPBIT_ACCESS_KEY"); ak != "" {
		config.Upbit.AccessKey = ak
	}
	if sk := os.Getenv("UPBIT_SECRET_KEY"); sk != "" {
		config.Upbit.SecretKey = sk
	}
	// Only a literal "true" (any case) turns trading on
	if v, ok := os.LookupEnv("UPBIT_ENABLE_TRADING"); ok {
		config.Upbit.EnableTrading = strings.EqualFold(strings.TrimSpace(v), "true")
	}
	if timeout := os.Getenv("UPBIT_TIMEOUT"); timeout != "" {
		config.Upbit.Timeout = timeout
	}
	if port := os.Getenv("UPBIT_MCP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("UPBIT_MCP_HOST"); host != "" {
		config.Server.Host = host
	}
	if token := os.Getenv("UPBIT_MCP_AUTH_TOKEN"); token != "" {
		config.Server.AuthToken = token
	}
	if level := os.Getenv("UPBIT_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate returns a list of configuration problems. Missing credentials are
// not a problem: public tools work without them.
func (c *Config) Validate() []string {
	var issues []string

	u, err := url.Parse(c.Upbit.ServerURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		issues = append(issues, fmt.Sprintf("upbit.server_url must be an absolute http(s) URL (got %q)", c.Upbit.ServerURL))
	}
	if c.Upbit.Timeout != "" {
		if d, err := time.ParseDuration(c.Upbit.Timeout); err != nil || d <= 0 {
			issues = append(issues, fmt.Sprintf("upbit.timeout must be a positive duration (got %q)", c.Upbit.Timeout))
		}
	}
	if c.Upbit.MaxRetries < 0 {
		issues = append(issues, fmt.Sprintf("upbit.max_retries must not be negative (got %d)", c.Upbit.MaxRetries))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		issues = append(issues, fmt.Sprintf("server.port out of range (got %d)", c.Server.Port))
	}
	return issues
}

// ValidateHTTP returns Validate's issues plus those that only matter when
// serving streamable HTTP. Trading over HTTP requires server.auth_token.
func (c *Config) ValidateHTTP() []string {
	issues := c.Validate()
	if c.Upbit.EnableTrading && c.Server.AuthToken == "" {
		issues = append(issues, "server.auth_token is required to serve HTTP with upbit.enable_trading (or run with -stdio)")
	}
	return issues
}
