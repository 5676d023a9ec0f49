package yahoo

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/pvasilakos/Portfolio-Tracker-Backend/internal/ledger"
)

// maxConcurrentQueries bounds the number of in-flight chart requests during a
// batched quote fetch.
const maxConcurrentQueries = 4

// PriceService answers batched current-price queries against Yahoo Finance.
// Quotes are cached with a TTL so repeated report reads do not hammer the
// API. It implements ledger.PriceProvider.
type PriceService struct {
	client Client
	quotes *cache.Cache
}

// NewPriceService creates a price service that caches quotes for quoteTTL.
func NewPriceService(client Client, quoteTTL time.Duration) *PriceService {
	return &PriceService{
		client: client,
		quotes: cache.New(quoteTTL, 2*quoteTTL),
	}
}

// CurrentPrices returns the latest closing price per symbol. Uncached symbols
// are fetched concurrently. A symbol whose query fails or returns no data is
// logged and omitted from the result; the ledger values it at zero. Only the
// complete absence of a working transport surfaces as an error from the
// underlying client, and per-symbol failures never abort the batch.
func (s *PriceService) CurrentPrices(symbols []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(symbols))

	var missing []string
	for _, symbol := range symbols {
		if price, ok := s.quotes.Get(symbol); ok {
			prices[symbol] = price.(float64)
			continue
		}
		missing = append(missing, symbol)
	}

	if len(missing) == 0 {
		return prices, nil
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(maxConcurrentQueries)

	for _, symbol := range missing {
		symbol := symbol
		g.Go(func() error {
			price, err := s.fetchLatestClose(symbol)
			if err != nil {
				log.Printf("no quote for %s: %v", symbol, err)
				return nil
			}

			s.quotes.SetDefault(symbol, price)

			mu.Lock()
			prices[symbol] = price
			mu.Unlock()
			return nil
		})
	}

	// Workers swallow per-symbol errors, so Wait only synchronizes.
	_ = g.Wait()

	return prices, nil
}

func (s *PriceService) fetchLatestClose(symbol string) (float64, error) {
	raw, err := s.client.QueryFiveDaySymbol(symbol)
	if err != nil {
		return 0, err
	}

	chart, err := s.client.ParseChart(raw)
	if err != nil {
		return 0, err
	}

	price, ok := chart.LatestClose()
	if !ok {
		return 0, fmt.Errorf("empty chart for symbol %s", symbol)
	}

	return price, nil
}

// rangePadding widens historical queries so the first and last requested days
// are covered even when they fall on non-trading days.
const rangePadding = 5 * 24 * time.Hour

// RateService answers historical exchange-rate queries against Yahoo Finance
// using currency-pair tickers of the form "GBPUSD=X". It implements
// ledger.RateProvider.
type RateService struct {
	client Client
}

// NewRateService creates an exchange-rate service backed by client.
func NewRateService(client Client) *RateService {
	return &RateService{client: client}
}

// HistoricalSeries fetches daily closing rates for the fromCurrency to
// toCurrency pair over [startDate, endDate]. The query range is padded on
// both sides; observations outside the requested range are harmless since
// the ledger densifies and fills the series itself.
func (s *RateService) HistoricalSeries(fromCurrency, toCurrency string, startDate, endDate time.Time) ([]ledger.RatePoint, error) {
	symbol := fmt.Sprintf("%s%s=X", fromCurrency, toCurrency)

	raw, err := s.client.QuerySymbolByDateRange(symbol, startDate.Add(-rangePadding), endDate.Add(rangePadding))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", symbol, err)
	}

	chart, err := s.client.ParseChart(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s chart: %w", symbol, err)
	}

	points := make([]ledger.RatePoint, 0, len(chart.Indicators))
	for _, ind := range chart.Indicators {
		points = append(points, ledger.RatePoint{Date: ind.Date, Rate: ind.PriceClose})
	}

	return points, nil
}
