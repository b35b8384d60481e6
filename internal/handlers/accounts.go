package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bobmcallan/openvault-portal/internal/common"
	"github.com/bobmcallan/openvault-portal/internal/format"
	"github.com/bobmcallan/openvault-portal/internal/models"
)

// accountNotices are the messages shown after a successful account action.
var accountNotices = map[string]string{
	"created":     "Compte ouvert.",
	"deactivated": "Compte clôturé.",
	"deposited":   "Dépôt effectué.",
	"withdrawn":   "Retrait effectué.",
}

// AccountsHandler lists accounts and performs account actions.
type AccountsHandler struct {
	logger *common.Logger
	pages  *PageHandler
	api    BankingAPI
}

// NewAccountsHandler creates a new accounts handler.
func NewAccountsHandler(logger *common.Logger, pages *PageHandler, api BankingAPI) *AccountsHandler {
	return &AccountsHandler{logger: logger, pages: pages, api: api}
}

// ServeHTTP handles GET (list) and POST (create, deactivate, deposit, withdraw) /accounts.
func (h *AccountsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.render(w, r, http.StatusOK, "", accountNotices[r.URL.Query().Get("done")])
	case http.MethodPost:
		h.act(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *AccountsHandler) render(w http.ResponseWriter, r *http.Request, status int, errMsg, notice string) {
	data := h.pages.baseData(r, "accounts", "Comptes")
	data["AccountTypes"] = models.AccountTypes
	data["Accounts"] = []models.Account(nil)
	data["Notice"] = notice
	data["Error"] = errMsg

	accounts, err := h.api.GetAllAccounts(r.Context())
	if err != nil {
		h.logger.Error().Str("error", err.Error()).Msg("failed to load accounts")
		if errMsg == "" {
			data["Error"] = apiErrorMessage(err, "Impossible de charger vos comptes.")
		}
		if status == http.StatusOK {
			status = http.StatusBadGateway
		}
	} else {
		data["Accounts"] = accounts
	}

	h.pages.RenderStatus(w, status, "accounts.html", data)
}

func (h *AccountsHandler) act(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	action := r.PostFormValue("action")

	var done string
	var err error

	switch action {
	case "create":
		accountType := models.AccountType(strings.ToUpper(r.PostFormValue("type")))
		if !accountType.Valid() {
			h.render(w, r, http.StatusBadRequest, "Type de compte inconnu.", "")
			return
		}
		_, err = h.api.CreateAccount(ctx, accountType)
		done = "created"

	case "deactivate", "deposit", "withdraw":
		id, perr := strconv.ParseInt(r.PostFormValue("id"), 10, 64)
		if perr != nil || id <= 0 {
			h.render(w, r, http.StatusBadRequest, "Compte invalide.", "")
			return
		}
		if action == "deactivate" {
			err = h.api.DeactivateAccount(ctx, id)
			done = "deactivated"
			break
		}

		amount, perr := format.ParseAmount(r.PostFormValue("amount"))
		if perr != nil || amount.LessThan(minAmount) {
			h.render(w, r, http.StatusBadRequest, "Le montant doit être supérieur à 0.", "")
			return
		}
		req := models.DepositWithdrawRequest{Amount: amount, Description: strings.TrimSpace(r.PostFormValue("description"))}
		if action == "deposit" {
			_, err = h.api.Deposit(ctx, id, req)
			done = "deposited"
		} else {
			_, err = h.api.Withdraw(ctx, id, req)
			done = "withdrawn"
		}

	default:
		h.render(w, r, http.StatusBadRequest, "Action inconnue.", "")
		return
	}

	if err != nil {
		h.logger.Warn().Str("action", action).Str("error", err.Error()).Msg("account action failed")
		h.render(w, r, http.StatusBadRequest, apiErrorMessage(err, "L'opération a échoué."), "")
		return
	}

	http.Redirect(w, r, "/accounts?"+url.Values{"done": {done}}.Encode(), http.StatusSeeOther)
}
