package models

import "github.com/shopspring/decimal"

// AccountType is the kind of bank account.
type AccountType string

const (
	AccountChecking AccountType = "CHECKING"
	AccountSavings  AccountType = "SAVINGS"
	AccountBusiness AccountType = "BUSINESS"
)

// AccountTypes lists the types a user may open, in display order.
var AccountTypes = []AccountType{AccountChecking, AccountSavings, AccountBusiness}

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountChecking, AccountSavings, AccountBusiness:
		return true
	}
	return false
}

// Account is a bank account owned by the current user.
type Account struct {
	ID        int64           `json:"id"`
	IBAN      string          `json:"iban"`
	Balance   decimal.Decimal `json:"balance"`
	Type      AccountType     `json:"type"`
	Active    bool            `json:"active"`
	CreatedAt LocalDateTime   `json:"createdAt"`
}

// TotalBalance is the body of GET /accounts/total-balance.
type TotalBalance struct {
	TotalBalance decimal.Decimal `json:"totalBalance"`
}
