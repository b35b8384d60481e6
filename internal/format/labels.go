// Package format turns API values into the French display strings the pages show.
// Nothing here is used for authorization.
package format

import (
	"strings"

	"github.com/bobmcallan/openvault-portal/internal/models"
)

// AccountTypeLabel returns the display name of an account type, or the raw value when unknown.
func AccountTypeLabel(t models.AccountType) string {
	switch t {
	case models.AccountChecking:
		return "Compte Courant"
	case models.AccountSavings:
		return "Compte Épargne"
	case models.AccountBusiness:
		return "Compte Professionnel"
	default:
		return string(t)
	}
}

// TransactionTypeLabel returns the display name of a transaction type, or the raw value when unknown.
func TransactionTypeLabel(t models.TransactionType) string {
	switch t {
	case models.TransactionDeposit:
		return "Dépôt"
	case models.TransactionWithdrawal:
		return "Retrait"
	case models.TransactionTransfer:
		return "Virement"
	case models.TransactionPayment:
		return "Paiement"
	default:
		return string(t)
	}
}

// MaskIBAN keeps the first and last four characters: "FR76 •••• 1234".
func MaskIBAN(iban string) string {
	return maskIBAN(iban, " •••• ")
}

// MaskIBANWide is the dashboard variant: "FR76 **** **** 1234".
func MaskIBANWide(iban string) string {
	return maskIBAN(iban, " **** **** ")
}

func maskIBAN(iban, middle string) string {
	clean := strings.Join(strings.Fields(iban), "")
	if clean == "" {
		return ""
	}
	head := clean
	if len(head) > 4 {
		head = head[:4]
	}
	tail := clean
	if len(tail) > 4 {
		tail = tail[len(tail)-4:]
	}
	return head + middle + tail
}

// IsCredit reports whether a transaction adds money to the viewed account:
// deposits, and transfers without a source IBAN.
func IsCredit(tx models.Transaction) bool {
	return tx.Type == models.TransactionDeposit ||
		(tx.Type == models.TransactionTransfer && tx.FromIBAN == nil)
}

// Sign is "+" for credits and "-" otherwise.
func Sign(tx models.Transaction) string {
	if IsCredit(tx) {
		return "+"
	}
	return "-"
}

// AmountClass is the CSS class for a transaction amount.
func AmountClass(tx models.Transaction) string {
	if IsCredit(tx) {
		return "amount-credit"
	}
	return "amount-debit"
}
