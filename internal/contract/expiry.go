package contract

import (
	"strings"
	"time"

	"github.com/scmhub/calendar"
)

// defaultExpiryDays is the degraded-mode fallback for unknown month codes.
// The pricing kernel still needs a finite positive horizon, so an unknown
// code resolves to 30 days instead of failing the contract.
const defaultExpiryDays = 30

// settlementDay is the conventional mid-month settlement for BYMA series.
const settlementDay = 15

// Single-letter BYMA month codes: A=Jan .. L=Dec.
var monthCodes = map[string]time.Month{
	"A": time.January, "B": time.February, "C": time.March,
	"D": time.April, "E": time.May, "F": time.June,
	"G": time.July, "H": time.August, "I": time.September,
	"J": time.October, "K": time.November, "L": time.December,
}

// Multi-letter codes seen on the feed: Spanish month abbreviations in both
// two- and three-letter forms. Looked up before the single-letter table.
var monthAbbrevs = map[string]time.Month{
	"EN": time.January, "FE": time.February, "MR": time.March,
	"AB": time.April, "MY": time.May, "JN": time.June,
	"JL": time.July, "AG": time.August, "SE": time.September,
	"OC": time.October, "NO": time.November, "DI": time.December,

	"ENE": time.January, "FEB": time.February, "MAR": time.March,
	"ABR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AGO": time.August, "SEP": time.September,
	"SET": time.September, "OCT": time.October, "NOV": time.November,
	"DIC": time.December,
}

// ExpiryResolver maps expiry month codes to concrete days-to-expiry figures,
// rolling settlement forward to a trading day.
type ExpiryResolver struct {
	cal *calendar.Calendar
}

// NewExpiryResolver builds a resolver. No public calendar exists for BYMA,
// so the NYSE calendar stands in for weekend/holiday rolling.
func NewExpiryResolver() *ExpiryResolver {
	return &ExpiryResolver{cal: calendar.XNYS()}
}

// DaysToExpiry resolves a month code relative to now. Unknown codes degrade
// to defaultExpiryDays; the result is never below 1 so downstream pricing
// always sees a positive horizon.
func (r *ExpiryResolver) DaysToExpiry(code string, now time.Time) int {
	month, ok := r.resolveMonth(code)
	if !ok {
		return defaultExpiryDays
	}

	year := now.Year()
	if month < now.Month() {
		year++
	}

	expiry := time.Date(year, month, settlementDay, 17, 0, 0, 0, now.Location())
	expiry = r.nextBusinessDay(expiry)

	days := int(expiry.Sub(now).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

// resolveMonth checks the abbreviation table before the single-letter codes.
func (r *ExpiryResolver) resolveMonth(code string) (time.Month, bool) {
	key := strings.ToUpper(strings.TrimSpace(code))
	if m, ok := monthAbbrevs[key]; ok {
		return m, true
	}
	if m, ok := monthCodes[key]; ok {
		return m, true
	}
	return 0, false
}

// nextBusinessDay rolls t forward until it lands on a trading day.
func (r *ExpiryResolver) nextBusinessDay(t time.Time) time.Time {
	for i := 0; i < 7; i++ {
		if r.cal.IsBusinessDay(t) {
			return t
		}
		t = t.AddDate(0, 0, 1)
	}
	return t
}
