package handlers

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/openvault-portal/internal/common"
	"github.com/bobmcallan/openvault-portal/internal/models"
)

// AccountStats pairs an account with its statistics. Stats is nil when they could not be loaded.
type AccountStats struct {
	Account models.Account
	Stats   *models.TransactionStats
}

// AnalysisHandler serves per-account statistics.
type AnalysisHandler struct {
	logger *common.Logger
	pages  *PageHandler
	api    BankingAPI
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(logger *common.Logger, pages *PageHandler, api BankingAPI) *AnalysisHandler {
	return &AnalysisHandler{logger: logger, pages: pages, api: api}
}

// ServeHTTP handles GET /analysis. Stats are fetched concurrently, one call per account.
func (h *AnalysisHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	data := h.pages.baseData(r, "analysis", "Analyse")
	data["Stats"] = []AccountStats(nil)

	accounts, err := h.api.GetAllAccounts(r.Context())
	if err != nil {
		h.logger.Error().Str("error", err.Error()).Msg("failed to load accounts for analysis")
		data["Error"] = apiErrorMessage(err, "Impossible de charger vos comptes.")
		h.pages.RenderStatus(w, http.StatusBadGateway, "analysis.html", data)
		return
	}

	results := make([]AccountStats, len(accounts))
	var g errgroup.Group
	g.SetLimit(4)
	for i, acc := range accounts {
		results[i].Account = acc
		g.Go(func() error {
			stats, err := h.api.GetTransactionStats(r.Context(), acc.ID)
			if err != nil {
				h.logger.Warn().Int64("account_id", acc.ID).Str("error", err.Error()).Msg("failed to load account stats")
				return nil
			}
			results[i].Stats = stats
			return nil
		})
	}
	g.Wait()

	data["Stats"] = results
	h.pages.Render(w, "analysis.html", data)
}
