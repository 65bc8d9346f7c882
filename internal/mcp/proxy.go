package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/bobmcallan/upbit-mcp/internal/common"
	"github.com/bobmcallan/upbit-mcp/internal/upbit"
)

// Access is the private endpoint configuration. It is read-only after startup.
type Access struct {
	Enabled     bool
	Credentials upbit.Credentials
}

// UpbitProxy connects MCP tool calls to the Upbit REST API.
type UpbitProxy struct {
	client *upbit.Client
	access Access
	logger *common.Logger
}

// NewUpbitProxy creates a proxy that issues every tool call through client.
func NewUpbitProxy(client *upbit.Client, access Access, logger *common.Logger) *UpbitProxy {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &UpbitProxy{
		client: client,
		access: access,
		logger: logger,
	}
}

// BaseURL returns the Upbit API base URL.
func (p *UpbitProxy) BaseURL() string {
	return p.client.BaseURL()
}

// Execute validates args, calls the endpoint and returns the response as
// indented JSON. Validation and guard failures happen before any request.
func (p *UpbitProxy) Execute(ctx context.Context, ct CatalogTool, args map[string]any) (string, error) {
	params, err := ct.bind(args)
	if err != nil {
		return "", err
	}

	if ct.Private {
		if err := upbit.EnsurePrivateEnabled(p.access.Enabled, p.access.Credentials); err != nil {
			return "", err
		}
	}

	values := params.Values()
	req := upbit.Request{
		Method: ct.Method,
		Path:   ct.Path,
		Shape:  ct.Shape,
	}
	if ct.Method == http.MethodPost {
		req.Body = values
	} else {
		req.Query = values
	}

	if ct.Private {
		creds := p.access.Credentials
		req.Credentials = &creds
	}

	start := time.Now()
	raw, err := p.client.Do(ctx, req)
	if err != nil {
		return "", err
	}
	p.logger.Debug().
		Str("tool", ct.Name).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("tool call complete")

	if ct.Unwrap {
		first := gjson.GetBytes(raw, "0")
		if !first.Exists() {
			return "", &upbit.SchemaError{Path: ct.Path, Message: "expected a non-empty array", Body: raw}
		}
		raw = json.RawMessage(first.Raw)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return "", fmt.Errorf("failed to format response: %w", err)
	}
	return out.String(), nil
}
