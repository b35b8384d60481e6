package format

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/openvault-portal/internal/models"
)

func strPtr(s string) *string { return &s }

func TestAccountTypeLabel(t *testing.T) {
	cases := map[models.AccountType]string{
		models.AccountChecking: "Compte Courant",
		models.AccountSavings:  "Compte Épargne",
		models.AccountBusiness: "Compte Professionnel",
		"CRYPTO":               "CRYPTO",
	}
	for in, want := range cases {
		if got := AccountTypeLabel(in); got != want {
			t.Errorf("AccountTypeLabel(%s): expected %q, got %q", in, want, got)
		}
	}
}

func TestTransactionTypeLabel(t *testing.T) {
	cases := map[models.TransactionType]string{
		models.TransactionDeposit:    "Dépôt",
		models.TransactionWithdrawal: "Retrait",
		models.TransactionTransfer:   "Virement",
		models.TransactionPayment:    "Paiement",
		"REFUND":                     "REFUND",
	}
	for in, want := range cases {
		if got := TransactionTypeLabel(in); got != want {
			t.Errorf("TransactionTypeLabel(%s): expected %q, got %q", in, want, got)
		}
	}
}

func TestMaskIBAN(t *testing.T) {
	iban := "FR76 3000 6000 0112 3456 7890 189"
	if got := MaskIBAN(iban); got != "FR76 •••• 0189" {
		t.Errorf("expected list mask, got %q", got)
	}
	if got := MaskIBANWide(iban); got != "FR76 **** **** 0189" {
		t.Errorf("expected wide mask, got %q", got)
	}
	if got := MaskIBAN(""); got != "" {
		t.Errorf("expected empty for empty iban, got %q", got)
	}
	if got := MaskIBAN("FR7"); got != "FR7 •••• FR7" {
		t.Errorf("expected short iban to repeat, got %q", got)
	}
}

func TestIsCreditAndSign(t *testing.T) {
	cases := []struct {
		name   string
		tx     models.Transaction
		credit bool
	}{
		{"deposit", models.Transaction{Type: models.TransactionDeposit}, true},
		{"incoming transfer", models.Transaction{Type: models.TransactionTransfer, ToIBAN: strPtr("FR76")}, true},
		{"outgoing transfer", models.Transaction{Type: models.TransactionTransfer, FromIBAN: strPtr("FR76")}, false},
		{"withdrawal", models.Transaction{Type: models.TransactionWithdrawal}, false},
		{"payment", models.Transaction{Type: models.TransactionPayment}, false},
	}
	for _, tc := range cases {
		if got := IsCredit(tc.tx); got != tc.credit {
			t.Errorf("%s: expected credit=%v, got %v", tc.name, tc.credit, got)
		}
		wantSign, wantClass := "-", "amount-debit"
		if tc.credit {
			wantSign, wantClass = "+", "amount-credit"
		}
		if got := Sign(tc.tx); got != wantSign {
			t.Errorf("%s: expected sign %s, got %s", tc.name, wantSign, got)
		}
		if got := AmountClass(tc.tx); got != wantClass {
			t.Errorf("%s: expected class %s, got %s", tc.name, wantClass, got)
		}
	}
}

func TestMoney(t *testing.T) {
	cases := map[string]string{
		"1250.5":    "1\u202f250,50\u00a0€",
		"0":         "0,00\u00a0€",
		"12":        "12,00\u00a0€",
		"999.999":   "1\u202f000,00\u00a0€",
		"1234567.8": "1\u202f234\u202f567,80\u00a0€",
		"-42.125":   "-42,13\u00a0€",
		"-0.001":    "0,00\u00a0€",
	}
	for in, want := range cases {
		if got := Money(decimal.RequireFromString(in)); got != want {
			t.Errorf("Money(%s): expected %q, got %q", in, want, got)
		}
	}
}

func TestDayLabel(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	now := time.Date(2026, 1, 15, 0, 30, 0, 0, loc)

	cases := []struct {
		ts    time.Time
		long  string
		short string
	}{
		{time.Date(2026, 1, 15, 0, 5, 0, 0, loc), "Aujourd'hui", "Aujourd'hui"},
		{time.Date(2026, 1, 14, 23, 59, 0, 0, loc), "Hier", "Hier"},
		{time.Date(2026, 1, 13, 10, 0, 0, 0, loc), "13 janvier 2026", "13 janvier"},
		{time.Date(2025, 8, 2, 10, 0, 0, 0, loc), "2 août 2025", "2 août"},
	}
	for _, tc := range cases {
		if got := DayLabel(tc.ts, now); got != tc.long {
			t.Errorf("DayLabel(%v): expected %q, got %q", tc.ts, tc.long, got)
		}
		if got := ShortDayLabel(tc.ts, now); got != tc.short {
			t.Errorf("ShortDayLabel(%v): expected %q, got %q", tc.ts, tc.short, got)
		}
	}
}

func TestClock(t *testing.T) {
	ts := time.Date(2026, 1, 15, 9, 5, 59, 0, time.UTC)
	if got := Clock(ts); got != "09:05" {
		t.Errorf("expected 09:05, got %s", got)
	}
}

func tx(id int64, typ models.TransactionType, ts time.Time) models.Transaction {
	return models.Transaction{ID: id, Type: typ, Timestamp: models.LocalDateTime{Time: ts}}
}

func TestGroupByDay_FirstSeenOrder(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 1, 15, 18, 0, 0, 0, loc)
	txs := []models.Transaction{
		tx(1, models.TransactionDeposit, time.Date(2026, 1, 15, 10, 0, 0, 0, loc)),
		tx(2, models.TransactionTransfer, time.Date(2026, 1, 14, 9, 0, 0, 0, loc)),
		tx(3, models.TransactionWithdrawal, time.Date(2026, 1, 15, 8, 0, 0, 0, loc)),
		tx(4, models.TransactionDeposit, time.Date(2026, 1, 2, 8, 0, 0, 0, loc)),
	}

	groups := GroupByDay(txs, now)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}

	want := []struct {
		key   string
		label string
		ids   []int64
	}{
		{"2026-01-15", "Aujourd'hui", []int64{1, 3}},
		{"2026-01-14", "Hier", []int64{2}},
		{"2026-01-02", "2 janvier 2026", []int64{4}},
	}
	for i, w := range want {
		g := groups[i]
		if g.Key != w.key || g.Label != w.label {
			t.Errorf("group %d: expected %s/%s, got %s/%s", i, w.key, w.label, g.Key, g.Label)
		}
		if len(g.Transactions) != len(w.ids) {
			t.Errorf("group %d: expected %d transactions, got %d", i, len(w.ids), len(g.Transactions))
			continue
		}
		for j, id := range w.ids {
			if g.Transactions[j].ID != id {
				t.Errorf("group %d[%d]: expected id %d, got %d", i, j, id, g.Transactions[j].ID)
			}
		}
	}
}

func TestGroupByDay_Empty(t *testing.T) {
	if groups := GroupByDay(nil, time.Now()); len(groups) != 0 {
		t.Errorf("expected no groups, got %d", len(groups))
	}
}

func TestFilterByType(t *testing.T) {
	now := time.Now()
	txs := []models.Transaction{
		tx(1, models.TransactionDeposit, now),
		tx(2, models.TransactionTransfer, now),
		tx(3, models.TransactionDeposit, now),
	}

	if got := FilterByType(txs, FilterAll); len(got) != 3 {
		t.Errorf("expected ALL to keep 3, got %d", len(got))
	}
	if got := FilterByType(txs, ""); len(got) != 3 {
		t.Errorf("expected empty filter to keep 3, got %d", len(got))
	}
	got := FilterByType(txs, "DEPOSIT")
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Errorf("expected deposits 1 and 3, got %+v", got)
	}
	if got := FilterByType(txs, "WITHDRAWAL"); len(got) != 0 {
		t.Errorf("expected no withdrawals, got %d", len(got))
	}
}

func TestKeypad(t *testing.T) {
	d := "0"
	for _, k := range []string{"1", "2", ",", "5", "0", "9", "x", "."} {
		d = AddDigit(d, k)
	}
	if d != "12.50" {
		t.Errorf("expected 12.50, got %s", d)
	}

	d = RemoveDigit(d)
	d = RemoveDigit(d)
	if d != "12." {
		t.Errorf("expected 12., got %s", d)
	}
	d = RemoveDigit(RemoveDigit(RemoveDigit(d)))
	if d != "0" {
		t.Errorf("expected 0 after clearing, got %s", d)
	}
	if RemoveDigit("0") != "0" {
		t.Error("expected RemoveDigit on 0 to stay 0")
	}
	if AddDigit("0", "0") != "0" {
		t.Error("expected leading zero to stay single")
	}
	if AddDigit("", "7") != "7" {
		t.Error("expected empty display to behave like 0")
	}
	if AddDigit("0", ".") != "0." {
		t.Error("expected decimal point after zero")
	}
}

func TestParseAmount(t *testing.T) {
	cases := map[string]string{
		"12.50":           "12.5",
		"12,5":            "12.5",
		"12.":             "12",
		" 1\u202f250,50 ": "1250.5",
		"1\u00a0000":      "1000",
	}
	for in, want := range cases {
		got, err := ParseAmount(in)
		if err != nil {
			t.Errorf("ParseAmount(%q): unexpected error %v", in, err)
			continue
		}
		if got.String() != want {
			t.Errorf("ParseAmount(%q): expected %s, got %s", in, want, got)
		}
	}
	if _, err := ParseAmount("douze"); err == nil {
		t.Error("expected error for non-numeric amount")
	}
	if _, err := ParseAmount(""); err == nil {
		t.Error("expected error for empty amount")
	}
}
