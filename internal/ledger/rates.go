package ledger

import "time"

// dayLayout keys rate series entries by calendar day.
const dayLayout = "2006-01-02"

// RatePoint is a single observed exchange rate (foreign -> base) on a date.
// Providers return sparse observations; the ledger densifies them.
type RatePoint struct {
	Date time.Time
	Rate float64
}

// RateProvider supplies historical exchange rate observations for a currency
// pair over a date range. Gaps in the observations are filled by the ledger,
// not the provider.
type RateProvider interface {
	HistoricalSeries(fromCurrency, toCurrency string, startDate, endDate time.Time) ([]RatePoint, error)
}

// RateSeries is a date-indexed mapping from calendar day to a conversion rate,
// densified over [start, end]. Days without an observation carry the last
// known rate forward; days before the first observation carry the next known
// rate backward. A series built from zero observations has no values and
// every lookup misses.
type RateSeries struct {
	rates map[string]float64
}

// NewRateSeries builds a dense daily series over [start, end] from sparse
// observations. When multiple observations fall on the same day, the last
// one wins.
func NewRateSeries(points []RatePoint, start, end time.Time) RateSeries {
	observed := make(map[string]float64, len(points))
	for _, p := range points {
		observed[p.Date.UTC().Format(dayLayout)] = p.Rate
	}

	startDay := toDay(start)
	endDay := toDay(end)

	days := make([]string, 0)
	for d := startDay; !d.After(endDay); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(dayLayout))
	}

	rates := make(map[string]float64, len(days))

	// Forward fill: carry the last known rate across gaps.
	var last float64
	var haveLast bool
	for _, day := range days {
		if r, ok := observed[day]; ok {
			last = r
			haveLast = true
		}
		if haveLast {
			rates[day] = last
		}
	}

	// Backward fill: days before the first observation take the next known rate.
	var next float64
	var haveNext bool
	for i := len(days) - 1; i >= 0; i-- {
		if r, ok := rates[days[i]]; ok {
			next = r
			haveNext = true
		} else if haveNext {
			rates[days[i]] = next
		}
	}

	return RateSeries{rates: rates}
}

// Rate returns the conversion rate for the given date. The second return
// value reports whether the series has a value for that day.
func (s RateSeries) Rate(date time.Time) (float64, bool) {
	r, ok := s.rates[date.UTC().Format(dayLayout)]
	return r, ok
}

func toDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
