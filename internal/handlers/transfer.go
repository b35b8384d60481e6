package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/openvault-portal/internal/common"
	"github.com/bobmcallan/openvault-portal/internal/format"
	"github.com/bobmcallan/openvault-portal/internal/models"
)

// minAmount is the smallest amount the API accepts.
var minAmount = decimal.New(1, -2)

// keypadKeys are the keypad buttons in display order; "del" is rendered separately.
var keypadKeys = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", ".", "0"}

// transferForm is the sticky state of the transfer form.
type transferForm struct {
	FromAccountID int64
	ToIBAN        string
	Description   string
	Amount        string
}

// TransferHandler serves the transfer form.
type TransferHandler struct {
	logger *common.Logger
	pages  *PageHandler
	api    BankingAPI
}

// NewTransferHandler creates a new transfer handler.
func NewTransferHandler(logger *common.Logger, pages *PageHandler, api BankingAPI) *TransferHandler {
	return &TransferHandler{logger: logger, pages: pages, api: api}
}

// ServeHTTP handles GET and POST /transfer. A POST carrying "key" only
// updates the keypad amount; a POST with action=send submits the transfer.
func (h *TransferHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		notice := ""
		if r.URL.Query().Get("done") == "1" {
			notice = "Virement effectué."
		}
		h.render(w, r, http.StatusOK, transferForm{Amount: "0"}, "", notice)
	case http.MethodPost:
		h.post(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *TransferHandler) post(w http.ResponseWriter, r *http.Request) {
	form := transferForm{
		ToIBAN:      strings.TrimSpace(r.PostFormValue("toIban")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
		Amount:      r.PostFormValue("amount"),
	}
	if form.Amount == "" {
		form.Amount = "0"
	}
	form.FromAccountID, _ = strconv.ParseInt(r.PostFormValue("fromAccountId"), 10, 64)

	if key := r.PostFormValue("key"); key != "" {
		if key == "del" {
			form.Amount = format.RemoveDigit(form.Amount)
		} else {
			form.Amount = format.AddDigit(form.Amount, key)
		}
		h.render(w, r, http.StatusOK, form, "", "")
		return
	}

	amount, err := format.ParseAmount(form.Amount)
	switch {
	case form.FromAccountID <= 0:
		h.render(w, r, http.StatusBadRequest, form, "Choisissez un compte source.", "")
		return
	case form.ToIBAN == "":
		h.render(w, r, http.StatusBadRequest, form, "L'IBAN du destinataire est obligatoire.", "")
		return
	case err != nil || amount.LessThan(minAmount):
		h.render(w, r, http.StatusBadRequest, form, "Le montant doit être supérieur à 0.", "")
		return
	}

	_, err = h.api.Transfer(r.Context(), models.TransferRequest{
		FromAccountID: form.FromAccountID,
		ToIBAN:        form.ToIBAN,
		Amount:        amount,
		Description:   form.Description,
	})
	if err != nil {
		h.logger.Warn().Int64("from_account_id", form.FromAccountID).Str("error", err.Error()).Msg("transfer failed")
		h.render(w, r, http.StatusBadRequest, form, apiErrorMessage(err, "Le virement a échoué."), "")
		return
	}

	h.logger.Info().Int64("from_account_id", form.FromAccountID).Str("amount", amount.String()).Msg("transfer submitted")
	http.Redirect(w, r, "/transfer?done=1", http.StatusSeeOther)
}

func (h *TransferHandler) render(w http.ResponseWriter, r *http.Request, status int, form transferForm, errMsg, notice string) {
	data := h.pages.baseData(r, "transfer", "Virement")
	data["Keys"] = keypadKeys
	data["Error"] = errMsg
	data["Notice"] = notice
	data["Accounts"] = []models.Account(nil)

	accounts, err := h.api.GetAllAccounts(r.Context())
	if err != nil {
		h.logger.Error().Str("error", err.Error()).Msg("failed to load accounts for transfer")
		if errMsg == "" {
			data["Error"] = apiErrorMessage(err, "Impossible de charger vos comptes.")
		}
	} else {
		data["Accounts"] = accounts
		if form.FromAccountID == 0 {
			for _, a := range accounts {
				if a.Active {
					form.FromAccountID = a.ID
					break
				}
			}
		}
	}

	data["Form"] = form
	h.pages.RenderStatus(w, status, "transfer.html", data)
}
