package format

import (
	"fmt"
	"time"

	"github.com/bobmcallan/openvault-portal/internal/models"
)

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// DayLabel is "Aujourd'hui", "Hier" or "2 janvier 2026", comparing calendar days in now's location.
func DayLabel(t, now time.Time) string {
	if label, ok := relativeDay(t, now); ok {
		return label
	}
	t = t.In(now.Location())
	return fmt.Sprintf("%d %s %d", t.Day(), frenchMonths[t.Month()-1], t.Year())
}

// ShortDayLabel is DayLabel without the year, as shown on the dashboard.
func ShortDayLabel(t, now time.Time) string {
	if label, ok := relativeDay(t, now); ok {
		return label
	}
	t = t.In(now.Location())
	return fmt.Sprintf("%d %s", t.Day(), frenchMonths[t.Month()-1])
}

func relativeDay(t, now time.Time) (string, bool) {
	switch calendarDaysBetween(t, now) {
	case 0:
		return "Aujourd'hui", true
	case 1:
		return "Hier", true
	}
	return "", false
}

// calendarDaysBetween counts midnights from t to now in now's location.
func calendarDaysBetween(t, now time.Time) int {
	loc := now.Location()
	t = t.In(loc)
	a := time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, loc)
	b := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, loc)
	return int(b.Sub(a).Round(24*time.Hour) / (24 * time.Hour))
}

// Clock renders HH:MM.
func Clock(t time.Time) string {
	return t.Format("15:04")
}

// DayGroup is the transactions of one calendar day.
type DayGroup struct {
	Key          string
	Label        string
	Transactions []models.Transaction
}

// GroupByDay buckets transactions by local calendar day. Groups keep the
// order in which their first transaction appears, as do transactions within a group.
func GroupByDay(txs []models.Transaction, now time.Time) []DayGroup {
	var groups []DayGroup
	index := make(map[string]int)

	for _, tx := range txs {
		ts := tx.Timestamp.In(now.Location())
		key := ts.Format("2006-01-02")
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, DayGroup{Key: key, Label: DayLabel(ts, now)})
		}
		groups[i].Transactions = append(groups[i].Transactions, tx)
	}
	return groups
}

// FilterAll selects every transaction in FilterByType.
const FilterAll = "ALL"

// HistoryFilters are the filter chips of the history page, in display order.
var HistoryFilters = []string{FilterAll, string(models.TransactionTransfer), string(models.TransactionDeposit), string(models.TransactionWithdrawal)}

// FilterByType keeps transactions of the given type; FilterAll or "" keeps everything.
func FilterByType(txs []models.Transaction, filter string) []models.Transaction {
	if filter == "" || filter == FilterAll {
		return txs
	}
	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if string(tx.Type) == filter {
			out = append(out, tx)
		}
	}
	return out
}
