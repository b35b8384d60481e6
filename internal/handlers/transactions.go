package handlers

import (
	"net/http"

	"github.com/bobmcallan/openvault-portal/internal/common"
	"github.com/bobmcallan/openvault-portal/internal/format"
)

// HistoryLimit is how many transactions the history page loads.
const HistoryLimit = 50

// TransactionsHandler serves the transaction history of the first account.
type TransactionsHandler struct {
	logger *common.Logger
	pages  *PageHandler
	api    BankingAPI
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(logger *common.Logger, pages *PageHandler, api BankingAPI) *TransactionsHandler {
	return &TransactionsHandler{logger: logger, pages: pages, api: api}
}

// ServeHTTP handles GET /transactions?filter=ALL|TRANSFER|DEPOSIT|WITHDRAWAL.
func (h *TransactionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	filter := r.URL.Query().Get("filter")
	if !validFilter(filter) {
		filter = format.FilterAll
	}

	data := h.pages.baseData(r, "transactions", "Historique")
	data["Filters"] = format.HistoryFilters
	data["Filter"] = filter
	data["Groups"] = []format.DayGroup(nil)

	ctx := r.Context()
	accounts, err := h.api.GetAllAccounts(ctx)
	if err != nil {
		h.logger.Error().Str("error", err.Error()).Msg("failed to load accounts for history")
		data["Error"] = apiErrorMessage(err, "Impossible de charger les transactions.")
		h.pages.RenderStatus(w, http.StatusBadGateway, "transactions.html", data)
		return
	}
	if len(accounts) == 0 {
		h.pages.Render(w, "transactions.html", data)
		return
	}

	txs, err := h.api.GetRecentTransactions(ctx, accounts[0].ID, HistoryLimit)
	if err != nil {
		h.logger.Error().Int64("account_id", accounts[0].ID).Str("error", err.Error()).Msg("failed to load transactions")
		data["Error"] = "Impossible de charger les transactions."
		h.pages.RenderStatus(w, http.StatusBadGateway, "transactions.html", data)
		return
	}

	data["Groups"] = format.GroupByDay(format.FilterByType(txs, filter), h.pages.now())
	h.pages.Render(w, "transactions.html", data)
}

func validFilter(filter string) bool {
	for _, f := range format.HistoryFilters {
		if f == filter {
			return true
		}
	}
	return false
}
