// Package view derives portfolio-level reporting numbers from a lot ledger
// scoped to one asset category.
package view

import (
	"sort"
	"time"

	"github.com/pvasilakos/Portfolio-Tracker-Backend/internal/ledger"
	"github.com/pvasilakos/Portfolio-Tracker-Backend/internal/model"
)

// Overview is the three-row portfolio summary for one asset category.
type Overview struct {
	CurrentValue    float64
	TotalInvestment float64
	UnrealizedGain  float64
}

// RealizedGainsRow is one row of the realized-gains report. InitialInvestment
// is back-computed from proceeds and gain rather than tracked independently;
// under FIFO every sold lot's cost is captured, so the derivation is exact.
type RealizedGainsRow struct {
	Security          string
	RealizedGain      float64
	Proceeds          float64
	SharesSold        float64
	LastSellDate      time.Time
	InitialInvestment float64
	RateOfReturn      float64
}

// PortfolioView wraps a LotLedger filtered to one asset category and derives
// aggregates on top of its outputs. Current values are computed lazily and
// cached until Invalidate is called.
type PortfolioView struct {
	assetType model.AssetType
	ledger    *ledger.LotLedger
	prices    ledger.PriceProvider

	// securities is every symbol that ever appeared in this view's category,
	// including fully closed positions. It guards report scoping when records
	// from other categories could otherwise leak in.
	securities map[string]bool

	currentValues map[string]float64
}

// New builds a view over the given transaction batch, keeping only rows whose
// category matches assetType, and replays them into a fresh ledger.
func New(transactions []model.Transaction, assetType model.AssetType, baseCurrency string, rates ledger.RateProvider, prices ledger.PriceProvider) (*PortfolioView, error) {
	filtered := make([]model.Transaction, 0, len(transactions))
	securities := make(map[string]bool)
	for _, tx := range transactions {
		if tx.AssetType != assetType {
			continue
		}
		filtered = append(filtered, tx)
		securities[tx.Security] = true
	}

	l := ledger.New(baseCurrency, rates)
	if err := l.ProcessTransactions(filtered); err != nil {
		return nil, err
	}

	return &PortfolioView{
		assetType:  assetType,
		ledger:     l,
		prices:     prices,
		securities: securities,
	}, nil
}

// AssetType returns the category this view is scoped to.
func (v *PortfolioView) AssetType() model.AssetType {
	return v.assetType
}

// Ledger exposes the underlying lot ledger for read access.
func (v *PortfolioView) Ledger() *ledger.LotLedger {
	return v.ledger
}

// Invalidate discards the cached current values. The next read that needs
// them re-queries the price provider.
func (v *PortfolioView) Invalidate() {
	v.currentValues = nil
}

// refresh recomputes the current-values cache from the price provider. The
// ledger call also refreshes its internal unrealized-gains cache.
func (v *PortfolioView) refresh() error {
	values, _, err := v.ledger.CurrentValues(v.prices)
	if err != nil {
		return err
	}
	v.currentValues = values
	return nil
}

// CurrentValues returns the cached per-security current values, computing
// them on first use.
func (v *PortfolioView) CurrentValues() (map[string]float64, error) {
	if v.currentValues == nil {
		if err := v.refresh(); err != nil {
			return nil, err
		}
	}
	return v.currentValues, nil
}

// CurrentPortfolioValue returns the summed current value of the view's owned
// positions.
func (v *PortfolioView) CurrentPortfolioValue() (float64, error) {
	values, err := v.CurrentValues()
	if err != nil {
		return 0, err
	}

	var total float64
	for _, value := range values {
		total += value
	}
	return total, nil
}

// PercentageOfPortfolio returns each security's share of the current
// portfolio value, in percent. When the total value is zero every share is
// zero; there is no division by zero.
func (v *PortfolioView) PercentageOfPortfolio() (map[string]float64, error) {
	values, err := v.CurrentValues()
	if err != nil {
		return nil, err
	}

	total, err := v.CurrentPortfolioValue()
	if err != nil {
		return nil, err
	}

	percentages := make(map[string]float64, len(values))
	for security, value := range values {
		if total != 0 {
			percentages[security] = value / total * 100
		} else {
			percentages[security] = 0
		}
	}
	return percentages, nil
}

// PortfolioOverview returns the current value, remaining investment and
// unrealized gain summed over securities belonging to this view's category.
// Securities outside the category are excluded even if the underlying ledger
// were shared.
func (v *PortfolioView) PortfolioOverview() (Overview, error) {
	values, err := v.CurrentValues()
	if err != nil {
		return Overview{}, err
	}

	var overview Overview
	for security, value := range values {
		if !v.securities[security] {
			continue
		}
		overview.CurrentValue += value
	}
	for security, amount := range v.ledger.Investments() {
		if !v.securities[security] {
			continue
		}
		overview.TotalInvestment += amount
	}
	for security, gain := range v.ledger.UnrealizedGains() {
		if !v.securities[security] {
			continue
		}
		overview.UnrealizedGain += gain
	}

	return overview, nil
}

// RealizedGainsReport projects the per-security realized-gain records into
// report rows with two derived columns: the initial investment of the sold
// shares (proceeds minus gain) and the rate of return on it. A zero initial
// investment yields a zero rate of return.
func (v *PortfolioView) RealizedGainsReport() []RealizedGainsRow {
	_, records := v.ledger.RealizedGains()

	rows := make([]RealizedGainsRow, 0, len(records))
	for security, record := range records {
		if !v.securities[security] {
			continue
		}

		initial := record.Proceeds - record.Gain
		var rateOfReturn float64
		if initial != 0 {
			rateOfReturn = record.Gain / initial * 100
		}

		rows = append(rows, RealizedGainsRow{
			Security:          security,
			RealizedGain:      record.Gain,
			Proceeds:          record.Proceeds,
			SharesSold:        record.SharesSold,
			LastSellDate:      record.LastSellDate,
			InitialInvestment: initial,
			RateOfReturn:      rateOfReturn,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Security < rows[j].Security
	})
	return rows
}
