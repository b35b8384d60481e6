package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/openvault-portal/internal/common"
	"github.com/bobmcallan/openvault-portal/internal/models"
	"github.com/bobmcallan/openvault-portal/internal/session"
	"github.com/bobmcallan/openvault-portal/internal/storage/memory"
)

// fakeAPI records calls and returns canned values.
type fakeAPI struct {
	mu sync.Mutex

	authResp    *models.AuthResponse
	authErr     error
	accounts    []models.Account
	accountsErr error
	total       decimal.Decimal
	totalErr    error
	recent      []models.Transaction
	recentErr   error
	stats       map[int64]*models.TransactionStats
	mutateErr   error

	calls       []string
	recentLimit int
	transferReq models.TransferRequest
	depositReq  models.DepositWithdrawRequest
	createdType models.AccountType
	registerReq models.RegisterRequest
	deactivated int64
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeAPI) called(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (f *fakeAPI) Login(_ context.Context, _ models.LoginRequest) (*models.AuthResponse, error) {
	f.record("Login")
	return f.authResp, f.authErr
}

func (f *fakeAPI) Register(_ context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	f.record("Register")
	f.registerReq = req
	return f.authResp, f.authErr
}

func (f *fakeAPI) GetAllAccounts(context.Context) ([]models.Account, error) {
	f.record("GetAllAccounts")
	return f.accounts, f.accountsErr
}

func (f *fakeAPI) GetTotalBalance(context.Context) (decimal.Decimal, error) {
	f.record("GetTotalBalance")
	return f.total, f.totalErr
}

func (f *fakeAPI) CreateAccount(_ context.Context, t models.AccountType) (*models.Account, error) {
	f.record("CreateAccount")
	f.createdType = t
	return &models.Account{Type: t}, f.mutateErr
}

func (f *fakeAPI) DeactivateAccount(_ context.Context, id int64) error {
	f.record("DeactivateAccount")
	f.deactivated = id
	return f.mutateErr
}

func (f *fakeAPI) GetRecentTransactions(_ context.Context, _ int64, limit int) ([]models.Transaction, error) {
	f.record("GetRecentTransactions")
	f.mu.Lock()
	f.recentLimit = limit
	f.mu.Unlock()
	return f.recent, f.recentErr
}

func (f *fakeAPI) GetTransactionStats(_ context.Context, accountID int64) (*models.TransactionStats, error) {
	f.record("GetTransactionStats")
	if s, ok := f.stats[accountID]; ok {
		return s, nil
	}
	return nil, &fakeErr{"no stats"}
}

func (f *fakeAPI) Transfer(_ context.Context, req models.TransferRequest) (*models.Transaction, error) {
	f.record("Transfer")
	f.transferReq = req
	return &models.Transaction{}, f.mutateErr
}

func (f *fakeAPI) Deposit(_ context.Context, _ int64, req models.DepositWithdrawRequest) (*models.Transaction, error) {
	f.record("Deposit")
	f.depositReq = req
	return &models.Transaction{}, f.mutateErr
}

func (f *fakeAPI) Withdraw(_ context.Context, _ int64, req models.DepositWithdrawRequest) (*models.Transaction, error) {
	f.record("Withdraw")
	f.depositReq = req
	return &models.Transaction{}, f.mutateErr
}

type fakeErr struct{ msg string }

func (e *fakeErr) Error() string { return e.msg }

func testToken(t *testing.T, userID int64, email, firstName string, exp time.Time) string {
	t.Helper()
	payload, err := json.Marshal(map[string]any{"userId": userID, "sub": email, "firstName": firstName, "exp": exp.Unix()})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return "eyJhbGciOiJIUzI1NiJ9." + base64.RawURLEncoding.EncodeToString(payload) + ".sig"
}

func newTestSessions(t *testing.T) *session.Manager {
	t.Helper()
	return session.NewManager(memory.NewKVStorage(), common.NewSilentLogger())
}

func loggedInSessions(t *testing.T) *session.Manager {
	t.Helper()
	m := newTestSessions(t)
	token := testToken(t, 7, "a@b.com", "Alice", time.Now().Add(time.Hour))
	if err := m.Authenticate(context.Background(), models.AuthResponse{Token: token}); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	return m
}

func newTestPages(sessions *session.Manager) *PageHandler {
	return NewPageHandler(common.NewSilentLogger(), sessions, false)
}

func postForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func strPtr(s string) *string { return &s }

func sampleAccounts() []models.Account {
	return []models.Account{
		{ID: 1, IBAN: "FR76 3000 6000 0112 3456 7890 189", Balance: decimal.RequireFromString("1250.50"), Type: models.AccountChecking, Active: true},
		{ID: 2, IBAN: "FR76 1027 8098 7654 3210 9876 543", Balance: decimal.RequireFromString("300"), Type: models.AccountSavings, Active: true},
	}
}
