package handlers

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/openvault-portal/internal/common"
	"github.com/bobmcallan/openvault-portal/internal/models"
)

// DashboardRecentLimit is how many recent transactions the dashboard shows.
const DashboardRecentLimit = 5

// DashboardHandler serves the dashboard page.
type DashboardHandler struct {
	logger *common.Logger
	pages  *PageHandler
	api    BankingAPI
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(logger *common.Logger, pages *PageHandler, api BankingAPI) *DashboardHandler {
	return &DashboardHandler{logger: logger, pages: pages, api: api}
}

// ServeHTTP renders the dashboard. Accounts and the total balance are fetched
// together; recent transactions of the first account follow and may fail
// without failing the page.
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	data := h.pages.baseData(r, "dashboard", "Accueil")
	data["Accounts"] = []models.Account(nil)
	data["TotalBalance"] = decimal.Zero
	data["Recent"] = []models.Transaction(nil)

	var (
		accounts []models.Account
		total    decimal.Decimal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = h.api.GetAllAccounts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = h.api.GetTotalBalance(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.Error().Str("error", err.Error()).Msg("failed to load dashboard")
		data["Error"] = apiErrorMessage(err, "Impossible de charger vos comptes.")
		h.pages.RenderStatus(w, http.StatusBadGateway, "dashboard.html", data)
		return
	}

	data["Accounts"] = accounts
	data["TotalBalance"] = total

	if len(accounts) > 0 {
		recent, err := h.api.GetRecentTransactions(ctx, accounts[0].ID, DashboardRecentLimit)
		if err != nil {
			h.logger.Warn().Int64("account_id", accounts[0].ID).Str("error", err.Error()).Msg("failed to load recent transactions")
		} else {
			data["Recent"] = recent
		}
	}

	h.pages.Render(w, "dashboard.html", data)
}
