package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestLocalDateTime_ParsesZonelessTimestamp(t *testing.T) {
	var acc Account
	body := `{"id":1,"iban":"FR76 1027","balance":1250.50,"type":"CHECKING","active":true,"createdAt":"2026-01-15T10:30:00"}`
	if err := json.Unmarshal([]byte(body), &acc); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	want := time.Date(2026, 1, 15, 10, 30, 0, 0, time.Local)
	if !acc.CreatedAt.Equal(want) {
		t.Errorf("expected %v, got %v", want, acc.CreatedAt.Time)
	}
	if acc.Balance.String() != "1250.5" {
		t.Errorf("expected balance 1250.5, got %s", acc.Balance)
	}
}

func TestLocalDateTime_ParsesFractionalAndRFC3339(t *testing.T) {
	cases := []string{
		`"2026-01-22T10:30:00.123456"`,
		`"2026-01-22T10:30:00Z"`,
		`"2026-01-22T10:30"`,
	}
	for _, c := range cases {
		var ts LocalDateTime
		if err := json.Unmarshal([]byte(c), &ts); err != nil {
			t.Errorf("%s: unexpected error %v", c, err)
		}
		if ts.Year() != 2026 || ts.Day() != 22 {
			t.Errorf("%s: parsed wrong date %v", c, ts.Time)
		}
	}
}

func TestLocalDateTime_NullAndInvalid(t *testing.T) {
	var ts LocalDateTime
	if err := json.Unmarshal([]byte(`null`), &ts); err != nil || !ts.IsZero() {
		t.Errorf("expected zero time for null, got %v (%v)", ts.Time, err)
	}
	if err := json.Unmarshal([]byte(`"yesterday"`), &ts); err == nil {
		t.Error("expected error for invalid timestamp")
	}
	if err := json.Unmarshal([]byte(`12345`), &ts); err == nil {
		t.Error("expected error for numeric timestamp")
	}
}

func TestTransaction_NullIBANs(t *testing.T) {
	var tx Transaction
	body := `{"id":9,"fromIban":null,"toIban":"FR76 0001","amount":20,"type":"DEPOSIT","timestamp":"2026-02-01T08:00:00","status":"COMPLETED"}`
	if err := json.Unmarshal([]byte(body), &tx); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if tx.FromIBAN != nil {
		t.Errorf("expected nil fromIban, got %q", *tx.FromIBAN)
	}
	if tx.ToIBAN == nil || *tx.ToIBAN != "FR76 0001" {
		t.Errorf("unexpected toIban %v", tx.ToIBAN)
	}
}

func TestLocalDateTime_MarshalZoneless(t *testing.T) {
	ts := LocalDateTime{Time: time.Date(2026, 3, 4, 5, 6, 7, 0, time.Local)}
	out, err := json.Marshal(ts)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(out) != `"2026-03-04T05:06:07"` {
		t.Errorf("unexpected output %s", out)
	}
	out, _ = json.Marshal(LocalDateTime{})
	if string(out) != "null" {
		t.Errorf("expected null for zero time, got %s", out)
	}
}

func TestAccountType_Valid(t *testing.T) {
	for _, at := range AccountTypes {
		if !at.Valid() {
			t.Errorf("expected %s to be valid", at)
		}
	}
	if AccountType("CRYPTO").Valid() {
		t.Error("expected CRYPTO to be invalid")
	}
}
