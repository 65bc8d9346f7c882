package mcp

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/upbit-mcp/internal/common"
	"github.com/bobmcallan/upbit-mcp/internal/config"
)

// NewServer creates the MCP server with every valid catalog tool registered.
func NewServer(cfg *config.Config, proxy *UpbitProxy, logger *common.Logger) (*mcpserver.MCPServer, []CatalogTool) {
	mcpSrv := mcpserver.NewMCPServer(
		cfg.Server.Name,
		config.GetVersion(),
		mcpserver.WithToolCapabilities(true),
	)

	validated := ValidateCatalog(Catalog(), logger)
	toolCount := RegisterTools(mcpSrv, proxy, validated)

	logger.Info().
		Int("tools", toolCount).
		Str("api_url", proxy.BaseURL()).
		Bool("trading_enabled", cfg.Upbit.EnableTrading).
		Msg("MCP server initialized")

	return mcpSrv, validated
}

// Handler is the HTTP handler for the MCP endpoint.
// It wraps mcp-go's StreamableHTTPServer and delegates to it.
type Handler struct {
	streamable *mcpserver.StreamableHTTPServer
	logger     *common.Logger
	authToken  []byte
}

// NewHandler serves mcpSrv over stateless streamable HTTP. When authToken is
// non-empty every request must present it as a Bearer token.
func NewHandler(mcpSrv *mcpserver.MCPServer, authToken string, logger *common.Logger) *Handler {
	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithStateLess(true),
	)

	return &Handler{
		streamable: streamable,
		logger:     logger,
		authToken:  []byte(authToken),
	}
}

// ServeHTTP checks the bearer token, if one is configured, and delegates to
// the mcp-go StreamableHTTPServer.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if len(h.authToken) > 0 && !h.authorized(r) {
		h.logger.Warn().
			Str("remote_addr", r.RemoteAddr).
			Msg("rejected MCP request without valid token")

		w.Header().Set("WWW-Authenticate", `Bearer realm="upbit-mcp"`)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{
			"error":             "unauthorized",
			"error_description": "Authentication required to access MCP endpoint",
		})
		return
	}

	h.streamable.ServeHTTP(w, r)
}

func (h *Handler) authorized(r *http.Request) bool {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return false
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	return subtle.ConstantTimeCompare([]byte(token), h.authToken) == 1
}
