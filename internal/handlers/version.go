package handlers

import (
	"net/http"

	"github.com/bobmcallan/openvault-portal/internal/common"
	"github.com/bobmcallan/openvault-portal/internal/config"
)

// VersionHandler handles version information requests.
type VersionHandler struct {
	logger *common.Logger
	apiURL string
}

// NewVersionHandler creates a new version handler.
func NewVersionHandler(logger *common.Logger, apiURL string) *VersionHandler {
	return &VersionHandler{logger: logger, apiURL: apiURL}
}

// ServeHTTP handles GET /api/version.
func (h *VersionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version":    config.GetVersion(),
		"build":      config.GetBuild(),
		"git_commit": config.GetGitCommit(),
		"api_url":    h.apiURL,
	})
}
