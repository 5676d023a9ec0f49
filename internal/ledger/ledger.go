// Package ledger implements FIFO lot accounting over a chronological stream
// of buy/sell transactions, with multi-currency normalization to a single
// base currency.
//
// The ledger is single-threaded and synchronous. ProcessTransactions must run
// to completion before any read method is called; a ledger mid-replay is not
// valid to query.
package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/pvasilakos/Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/pvasilakos/Portfolio-Tracker-Backend/internal/model"
)

// PriceProvider supplies current prices for a set of symbols in one batched
// call. Symbols without a quote are absent from the result; the ledger treats
// those as a zero price rather than failing.
type PriceProvider interface {
	CurrentPrices(symbols []string) (map[string]float64, error)
}

// lot records a purchase not yet fully sold: a remaining quantity and its
// unit cost in base currency.
type lot struct {
	quantity float64
	unitCost float64
}

// LotLedger maintains per-security FIFO lot queues built by replaying
// transactions in date order, plus the realized-gain history and the running
// cost basis of open positions.
//
// The caller must supply transactions in non-decreasing date order. The
// ledger does not re-sort; out-of-order input yields incorrect FIFO matching.
type LotLedger struct {
	baseCurrency string
	rates        RateProvider

	// lots holds the FIFO queue per security: sells consume from the front,
	// buys append at the back. A security with zero remaining quantity has no
	// entry at all.
	lots map[string][]lot

	// investment is the base-currency cost basis still held per security.
	investment map[string]float64

	realizedTotal float64
	realized      map[string]*model.RealizedGain

	// series caches one exchange-rate series per non-base currency for the
	// duration of a ProcessTransactions batch.
	series map[string]RateSeries

	// unrealized caches the last computed unrealized-gains map.
	unrealized map[string]float64
}

// New creates an empty ledger that normalizes monetary amounts to
// baseCurrency using rates.
func New(baseCurrency string, rates RateProvider) *LotLedger {
	return &LotLedger{
		baseCurrency: baseCurrency,
		rates:        rates,
		lots:         make(map[string][]lot),
		investment:   make(map[string]float64),
		realized:     make(map[string]*model.RealizedGain),
		series:       make(map[string]RateSeries),
	}
}

// ProcessTransactions replays a batch of transactions into the ledger.
//
// One exchange-rate series is fetched per distinct non-base currency in the
// batch, spanning from that currency's earliest transaction date to today.
// This amortizes the external rate lookups to one call per currency instead
// of one per transaction.
//
// A failed transaction aborts the batch and is reported with its security,
// action, quantity and date. State built by the rows before the failure
// remains valid and queryable; there is no rollback.
func (l *LotLedger) ProcessTransactions(transactions []model.Transaction) error {
	if err := l.fetchRateSeries(transactions); err != nil {
		return err
	}

	for _, tx := range transactions {
		pricePerShare := tx.PricePerShare
		totalPrice := tx.TotalPrice

		if tx.Currency != l.baseCurrency {
			rate, ok := l.series[tx.Currency].Rate(tx.Date)
			if !ok {
				return fmt.Errorf("%w: %s on %s (security %s)",
					apperrors.ErrRateUnavailable, tx.Currency, tx.Date.Format(dayLayout), tx.Security)
			}
			pricePerShare *= rate
			totalPrice *= rate
		}

		switch tx.Action {
		case model.ActionBuy:
			l.lots[tx.Security] = append(l.lots[tx.Security], lot{quantity: tx.Quantity, unitCost: pricePerShare})
			l.investment[tx.Security] += totalPrice
		case model.ActionSell:
			if err := l.sellShares(tx.Security, tx.Quantity, pricePerShare, tx.Date); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %q (security %s, quantity %v, date %s)",
				apperrors.ErrInvalidAction, string(tx.Action), tx.Security, tx.Quantity, tx.Date.Format(dayLayout))
		}

		// Closed positions drop their lot queue and investment entry. The
		// realized-gain record is kept; history outlives the position.
		if remainingQuantity(l.lots[tx.Security]) <= 0 {
			delete(l.lots, tx.Security)
			delete(l.investment, tx.Security)
		}
	}

	return nil
}

// fetchRateSeries builds one densified rate series per non-base currency in
// the batch, spanning [earliest transaction date for that currency, today].
func (l *LotLedger) fetchRateSeries(transactions []model.Transaction) error {
	earliest := make(map[string]time.Time)
	for _, tx := range transactions {
		if tx.Currency == l.baseCurrency {
			continue
		}
		if first, ok := earliest[tx.Currency]; !ok || tx.Date.Before(first) {
			earliest[tx.Currency] = tx.Date
		}
	}

	now := time.Now().UTC()
	for currency, start := range earliest {
		points, err := l.rates.HistoricalSeries(currency, l.baseCurrency, start, now)
		if err != nil {
			return fmt.Errorf("failed to fetch %s/%s exchange rates: %w", currency, l.baseCurrency, err)
		}
		l.series[currency] = NewRateSeries(points, start, now)
	}

	return nil
}

// sellShares consumes quantity shares of security from the front of its lot
// queue, accumulating realized gain per consumed unit and decrementing the
// running investment total by the consumed cost basis.
//
// The per-security realized-gain record is updated once per sell with the
// total sold quantity: proceeds, cumulative shares sold, and last-sell date.
func (l *LotLedger) sellShares(security string, quantity, sellingPrice float64, date time.Time) error {
	if remainingQuantity(l.lots[security]) < quantity {
		return fmt.Errorf("%w: cannot sell %v shares of %s on %s",
			apperrors.ErrInsufficientShares, quantity, security, date.Format(dayLayout))
	}

	record, ok := l.realized[security]
	if !ok {
		record = &model.RealizedGain{Security: security}
		l.realized[security] = record
	}

	remaining := quantity
	for remaining > 0 {
		front := &l.lots[security][0]
		if front.quantity > remaining {
			gain := remaining * (sellingPrice - front.unitCost)
			l.realizedTotal += gain
			record.Gain += gain
			l.investment[security] -= remaining * front.unitCost
			front.quantity -= remaining
			remaining = 0
		} else {
			gain := front.quantity * (sellingPrice - front.unitCost)
			l.realizedTotal += gain
			record.Gain += gain
			l.investment[security] -= front.quantity * front.unitCost
			remaining -= front.quantity
			l.lots[security] = l.lots[security][1:]
		}
	}

	record.Proceeds += quantity * sellingPrice
	record.SharesSold += quantity
	record.LastSellDate = date

	return nil
}

// OwnedAssets returns the total remaining quantity per currently-owned
// security.
func (l *LotLedger) OwnedAssets() map[string]float64 {
	owned := make(map[string]float64, len(l.lots))
	for security, lots := range l.lots {
		owned[security] = remainingQuantity(lots)
	}
	return owned
}

// Investments returns the base-currency cost basis still held per security.
func (l *LotLedger) Investments() map[string]float64 {
	investments := make(map[string]float64, len(l.investment))
	for security, amount := range l.investment {
		investments[security] = amount
	}
	return investments
}

// CurrentValues queries current prices for every owned security in one
// batched call and returns the current value and unrealized gain per
// security. A symbol missing from the provider's result is valued at zero;
// that is a documented degraded mode, not a failure.
//
// The unrealized-gains map is also cached on the ledger for later retrieval
// via UnrealizedGains.
func (l *LotLedger) CurrentValues(prices PriceProvider) (map[string]float64, map[string]float64, error) {
	owned := l.OwnedAssets()

	symbols := make([]string, 0, len(owned))
	for security := range owned {
		symbols = append(symbols, security)
	}
	sort.Strings(symbols)

	quotes, err := prices.CurrentPrices(symbols)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrQuoteFetchFailed, err)
	}

	values := make(map[string]float64, len(owned))
	l.unrealized = make(map[string]float64, len(owned))
	for security, shares := range owned {
		value := shares * quotes[security]
		values[security] = value

		var costBasis float64
		for _, lt := range l.lots[security] {
			costBasis += lt.quantity * lt.unitCost
		}
		l.unrealized[security] = value - costBasis
	}

	return values, l.unrealized, nil
}

// UnrealizedGains returns the unrealized-gains map cached by the most recent
// CurrentValues call, or nil if none has completed yet.
func (l *LotLedger) UnrealizedGains() map[string]float64 {
	return l.unrealized
}

// RealizedGains returns the total realized gain across all securities and a
// copy of the per-security realized-gain records.
func (l *LotLedger) RealizedGains() (float64, map[string]model.RealizedGain) {
	records := make(map[string]model.RealizedGain, len(l.realized))
	for security, record := range l.realized {
		records[security] = *record
	}
	return l.realizedTotal, records
}

func remainingQuantity(lots []lot) float64 {
	var total float64
	for _, lt := range lots {
		total += lt.quantity
	}
	return total
}
