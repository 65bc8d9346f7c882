package handlers

import (
	"net/http"

	"github.com/bobmcallan/upbit-mcp/internal/common"
)

// HealthStatus is the static part of the health report, fixed at startup.
type HealthStatus struct {
	Tools          int      `json:"tools"`
	ToolNames      []string `json:"tool_names"`
	TradingEnabled bool     `json:"trading_enabled"`
	UpstreamURL    string   `json:"upstream_url"`
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	logger *common.Logger
	status HealthStatus
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(logger *common.Logger, status HealthStatus) *HealthHandler {
	return &HealthHandler{logger: logger, status: status}
}

// ServeHTTP handles GET /api/health. It does not call Upbit.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		HealthStatus
	}{
		Status:       "ok",
		HealthStatus: h.status,
	})
}
