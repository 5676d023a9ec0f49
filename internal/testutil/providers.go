package testutil

import (
	"time"

	"github.com/pvasilakos/Portfolio-Tracker-Backend/internal/ledger"
)

// FakePriceProvider is an in-memory ledger.PriceProvider. Symbols absent from
// Prices are omitted from results, mirroring a provider with no quote.
type FakePriceProvider struct {
	Prices map[string]float64
	Err    error
	// Calls records the symbol batches requested, newest last.
	Calls [][]string
}

// CurrentPrices returns the configured prices for the requested symbols.
func (f *FakePriceProvider) CurrentPrices(symbols []string) (map[string]float64, error) {
	f.Calls = append(f.Calls, symbols)
	if f.Err != nil {
		return nil, f.Err
	}

	prices := make(map[string]float64, len(symbols))
	for _, symbol := range symbols {
		if price, ok := f.Prices[symbol]; ok {
			prices[symbol] = price
		}
	}
	return prices, nil
}

// FakeRateProvider is an in-memory ledger.RateProvider keyed by currency pair
// (e.g. "GBPUSD").
type FakeRateProvider struct {
	Points map[string][]ledger.RatePoint
	Err    error
	Calls  int
}

// HistoricalSeries returns the configured observations for the pair. A pair
// with no configured points yields an empty series, which makes every rate
// lookup miss.
func (f *FakeRateProvider) HistoricalSeries(fromCurrency, toCurrency string, startDate, endDate time.Time) ([]ledger.RatePoint, error) {
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Points[fromCurrency+toCurrency], nil
}

// FlatRateProvider returns a FakeRateProvider quoting a single constant rate
// for the pair across the given dates.
func FlatRateProvider(fromCurrency, toCurrency string, rate float64, dates ...time.Time) *FakeRateProvider {
	points := make([]ledger.RatePoint, len(dates))
	for i, date := range dates {
		points[i] = ledger.RatePoint{Date: date, Rate: rate}
	}
	return &FakeRateProvider{
		Points: map[string][]ledger.RatePoint{
			fromCurrency + toCurrency: points,
		},
	}
}
