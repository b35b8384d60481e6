package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/openvault-portal/internal/client"
	"github.com/bobmcallan/openvault-portal/internal/models"
	"github.com/bobmcallan/openvault-portal/internal/session"
)

// BankingAPI is the part of the OpenVault API client the pages use.
type BankingAPI interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	GetAllAccounts(ctx context.Context) ([]models.Account, error)
	GetTotalBalance(ctx context.Context) (decimal.Decimal, error)
	CreateAccount(ctx context.Context, accountType models.AccountType) (*models.Account, error)
	DeactivateAccount(ctx context.Context, id int64) error
	GetRecentTransactions(ctx context.Context, accountID int64, limit int) ([]models.Transaction, error)
	GetTransactionStats(ctx context.Context, accountID int64) (*models.TransactionStats, error)
	Transfer(ctx context.Context, req models.TransferRequest) (*models.Transaction, error)
	Deposit(ctx context.Context, accountID int64, req models.DepositWithdrawRequest) (*models.Transaction, error)
	Withdraw(ctx context.Context, accountID int64, req models.DepositWithdrawRequest) (*models.Transaction, error)
}

var _ BankingAPI = (*client.Client)(nil)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method || (method == http.MethodGet && r.Method == http.MethodHead) {
		return true
	}
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	return false
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// redirectNavigator turns session navigation into a 303 redirect.
func redirectNavigator(w http.ResponseWriter, r *http.Request) session.Navigator {
	return session.NavigatorFunc(func(route string) {
		http.Redirect(w, r, route, http.StatusSeeOther)
	})
}

// apiErrorMessage maps a client error to the message shown to the user.
func apiErrorMessage(err error, fallback string) string {
	if errors.Is(err, client.ErrNetwork) {
		return "Impossible de contacter le serveur OpenVault. Réessayez plus tard."
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode < 500 && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// requestTimeout bounds the API calls made while serving one page.
const requestTimeout = 15 * time.Second
