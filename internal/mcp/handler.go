package mcp

import (
	"encoding/json"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/openvault-portal/internal/common"
	"github.com/bobmcallan/openvault-portal/internal/config"
	"github.com/bobmcallan/openvault-portal/internal/session"
)

// Handler is the HTTP handler for the MCP endpoint.
// It wraps mcp-go's StreamableHTTPServer and delegates to it.
type Handler struct {
	server     *mcpserver.MCPServer
	streamable *mcpserver.StreamableHTTPServer
	sessions   *session.Manager
	logger     *common.Logger
}

// NewHandler creates the MCP handler with the banking tools registered.
func NewHandler(api BankingReader, sessions *session.Manager, apiURL string, logger *common.Logger) *Handler {
	mcpSrv := mcpserver.NewMCPServer(
		"openvault-portal",
		config.GetVersion(),
		mcpserver.WithToolCapabilities(true),
	)

	count := RegisterTools(mcpSrv, api, sessions)
	mcpSrv.AddTool(VersionTool(), VersionToolHandler(apiURL))

	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithStateLess(true),
	)

	logger.Info().
		Int("tools", count+1).
		Msg("MCP handler initialized")

	return &Handler{
		server:     mcpSrv,
		streamable: streamable,
		sessions:   sessions,
		logger:     logger,
	}
}

// Server exposes the underlying MCP server.
func (h *Handler) Server() *mcpserver.MCPServer {
	return h.server
}

// ServeHTTP requires an authenticated session, attaches its identity to the
// request context and delegates to the mcp-go StreamableHTTPServer.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.IsAuthenticated(r.Context()) {
		writeUnauthorized(w)
		return
	}
	current := h.sessions.Current()
	if current == nil {
		writeUnauthorized(w)
		return
	}

	ctx := WithUserContext(r.Context(), userContextOf(current))
	h.streamable.ServeHTTP(w, r.WithContext(ctx))
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"error":             "unauthorized",
		"error_description": "Sign in to the portal to use the MCP endpoint",
	})
}
