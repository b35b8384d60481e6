package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/openvault-portal/internal/models"
)

// DefaultRecentLimit is the server's default for recent transactions.
const DefaultRecentLimit = 10

// Login exchanges credentials for a token. POST /auth/login
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a user and returns its token. POST /auth/register
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCurrentUser returns the profile of the token's user. GET /users/me
func (c *Client) GetCurrentUser(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAllAccounts lists the user's accounts. GET /accounts
func (c *Client) GetAllAccounts(ctx context.Context) ([]models.Account, error) {
	var out []models.Account
	if err := c.do(ctx, http.MethodGet, "/accounts", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAccountByID fetches one account. GET /accounts/{id}
func (c *Client) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	var out models.Account
	if err := c.do(ctx, http.MethodGet, "/accounts/"+itoa(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateAccount opens an account of the given type. POST /accounts?type=
func (c *Client) CreateAccount(ctx context.Context, accountType models.AccountType) (*models.Account, error) {
	var out models.Account
	q := url.Values{"type": {string(accountType)}}
	if err := c.do(ctx, http.MethodPost, "/accounts", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeactivateAccount closes an account. DELETE /accounts/{id}
func (c *Client) DeactivateAccount(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/accounts/"+itoa(id), nil, nil, nil)
}

// GetTotalBalance sums the balances of all active accounts. GET /accounts/total-balance
func (c *Client) GetTotalBalance(ctx context.Context) (decimal.Decimal, error) {
	var out models.TotalBalance
	if err := c.do(ctx, http.MethodGet, "/accounts/total-balance", nil, nil, &out); err != nil {
		return decimal.Zero, err
	}
	return out.TotalBalance, nil
}

// GetRecentTransactions returns the latest transactions of an account.
// A limit <= 0 uses DefaultRecentLimit. GET /transactions/account/{id}/recent
func (c *Client) GetRecentTransactions(ctx context.Context, accountID int64, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	var out []models.Transaction
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	if err := c.do(ctx, http.MethodGet, "/transactions/account/"+itoa(accountID)+"/recent", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAccountTransactions returns one page of history. GET /transactions/account/{id}
func (c *Client) GetAccountTransactions(ctx context.Context, accountID int64, page, size int) (*models.TransactionPage, error) {
	var out models.TransactionPage
	q := url.Values{"page": {strconv.Itoa(page)}, "size": {strconv.Itoa(size)}}
	if err := c.do(ctx, http.MethodGet, "/transactions/account/"+itoa(accountID), q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTransactionsByType filters history by type. GET /transactions/account/{id}/type/{type}
func (c *Client) GetTransactionsByType(ctx context.Context, accountID int64, txType models.TransactionType) ([]models.Transaction, error) {
	var out []models.Transaction
	path := "/transactions/account/" + itoa(accountID) + "/type/" + url.PathEscape(string(txType))
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTransactionsByDateRange returns history between start and end.
// GET /transactions/account/{id}/date-range
func (c *Client) GetTransactionsByDateRange(ctx context.Context, accountID int64, start, end time.Time) ([]models.Transaction, error) {
	var out []models.Transaction
	const layout = "2006-01-02T15:04:05"
	q := url.Values{"start": {start.Format(layout)}, "end": {end.Format(layout)}}
	if err := c.do(ctx, http.MethodGet, "/transactions/account/"+itoa(accountID)+"/date-range", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTransactionByID fetches one transaction. GET /transactions/{id}
func (c *Client) GetTransactionByID(ctx context.Context, id int64) (*models.Transaction, error) {
	var out models.Transaction
	if err := c.do(ctx, http.MethodGet, "/transactions/"+itoa(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTransactionStats summarises an account. GET /transactions/account/{id}/stats
func (c *Client) GetTransactionStats(ctx context.Context, accountID int64) (*models.TransactionStats, error) {
	var out models.TransactionStats
	if err := c.do(ctx, http.MethodGet, "/transactions/account/"+itoa(accountID)+"/stats", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Transfer sends money to an IBAN. POST /transfers
func (c *Client) Transfer(ctx context.Context, req models.TransferRequest) (*models.Transaction, error) {
	var out models.Transaction
	if err := c.do(ctx, http.MethodPost, "/transfers", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Deposit credits an account. POST /transfers/deposit/{id}
func (c *Client) Deposit(ctx context.Context, accountID int64, req models.DepositWithdrawRequest) (*models.Transaction, error) {
	var out models.Transaction
	if err := c.do(ctx, http.MethodPost, "/transfers/deposit/"+itoa(accountID), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Withdraw debits an account. POST /transfers/withdraw/{id}
func (c *Client) Withdraw(ctx context.Context, accountID int64, req models.DepositWithdrawRequest) (*models.Transaction, error) {
	var out models.Transaction
	if err := c.do(ctx, http.MethodPost, "/transfers/withdraw/"+itoa(accountID), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
