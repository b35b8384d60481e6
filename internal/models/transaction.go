package models

import "github.com/shopspring/decimal"

// TransactionType classifies a ledger movement.
type TransactionType string

const (
	TransactionTransfer   TransactionType = "TRANSFER"
	TransactionDeposit    TransactionType = "DEPOSIT"
	TransactionWithdrawal TransactionType = "WITHDRAWAL"
	TransactionPayment    TransactionType = "PAYMENT"
)

// TransactionStatus is the server-side processing state.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusFailed    TransactionStatus = "FAILED"
	StatusCancelled TransactionStatus = "CANCELLED"
)

// Transaction is one ledger entry as returned by the API.
// FromIBAN is nil for deposits and incoming transfers; ToIBAN is nil for withdrawals.
type Transaction struct {
	ID          int64             `json:"id"`
	FromIBAN    *string           `json:"fromIban"`
	ToIBAN      *string           `json:"toIban"`
	Amount      decimal.Decimal   `json:"amount"`
	Type        TransactionType   `json:"type"`
	Description string            `json:"description"`
	Timestamp   LocalDateTime     `json:"timestamp"`
	Status      TransactionStatus `json:"status"`
	Reference   string            `json:"reference"`
}

// TransactionPage is the paginated history envelope.
type TransactionPage struct {
	Content       []Transaction `json:"content"`
	TotalElements int64         `json:"totalElements"`
	TotalPages    int           `json:"totalPages"`
	Number        int           `json:"number"`
	Size          int           `json:"size"`
	First         bool          `json:"first"`
	Last          bool          `json:"last"`
}

// TransactionStats summarises an account's activity.
type TransactionStats struct {
	TotalTransactions int             `json:"totalTransactions"`
	TotalIncoming     decimal.Decimal `json:"totalIncoming"`
	TotalOutgoing     decimal.Decimal `json:"totalOutgoing"`
	CurrentBalance    decimal.Decimal `json:"currentBalance"`
}

// TransferRequest moves money from one of the user's accounts to an IBAN.
type TransferRequest struct {
	FromAccountID int64           `json:"fromAccountId"`
	ToIBAN        string          `json:"toIban"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description,omitempty"`
}

// DepositWithdrawRequest is the body of deposit and withdraw calls.
type DepositWithdrawRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}
