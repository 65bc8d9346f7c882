package config

import (
	"github.com/bobmcallan/upbit-mcp/internal/common"
	"github.com/bobmcallan/upbit-mcp/internal/upbit"
)

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "Upbit MCP Server",
			Host: "localhost",
			Port: 4250,
		},
		Upbit: UpbitConfig{
			ServerURL:     upbit.DefaultServerURL,
			EnableTrading: false,
			Timeout:       "15s",
			MaxRetries:    3,
		},
		Logging: common.LoggingConfig{
			Level:      "info",
			Outputs:    []string{"console"},
			FilePath:   "logs/upbit-mcp.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}
