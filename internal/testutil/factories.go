package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pvasilakos/Portfolio-Tracker-Backend/internal/model"
)

// Date parses a MM/DD/YYYY date for test fixtures.
func Date(t *testing.T, s string) time.Time {
	t.Helper()
	date, err := time.Parse("01/02/2006", s)
	if err != nil {
		t.Fatalf("invalid test date %q: %v", s, err)
	}
	return date.UTC()
}

// TransactionBuilder provides a fluent interface for creating test
// transactions.
//
// Example usage:
//
//	tx := testutil.NewTransaction("AAPL").
//	    WithAction(model.ActionSell).
//	    WithQuantity(12).
//	    WithPrice(15).
//	    Build()
type TransactionBuilder struct {
	tx model.Transaction
}

// NewTransaction creates a TransactionBuilder with sensible defaults: a buy
// of 10 shares at 100 USD in the stock category.
func NewTransaction(security string) *TransactionBuilder {
	return &TransactionBuilder{
		tx: model.Transaction{
			ID:            uuid.New().String(),
			Date:          time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			Security:      security,
			AssetType:     model.AssetStock,
			Action:        model.ActionBuy,
			Quantity:      10,
			PricePerShare: 100,
			TotalPrice:    1000,
			Currency:      "USD",
		},
	}
}

// WithDate sets the transaction date.
func (b *TransactionBuilder) WithDate(date time.Time) *TransactionBuilder {
	b.tx.Date = date
	return b
}

// WithAssetType sets the asset category.
func (b *TransactionBuilder) WithAssetType(assetType model.AssetType) *TransactionBuilder {
	b.tx.AssetType = assetType
	return b
}

// WithAction sets the transaction action.
func (b *TransactionBuilder) WithAction(action model.Action) *TransactionBuilder {
	b.tx.Action = action
	return b
}

// WithQuantity sets the share quantity and recomputes the total price.
func (b *TransactionBuilder) WithQuantity(quantity float64) *TransactionBuilder {
	b.tx.Quantity = quantity
	b.tx.TotalPrice = quantity * b.tx.PricePerShare
	return b
}

// WithPrice sets the per-share price and recomputes the total price.
func (b *TransactionBuilder) WithPrice(price float64) *TransactionBuilder {
	b.tx.PricePerShare = price
	b.tx.TotalPrice = b.tx.Quantity * price
	return b
}

// WithCurrency sets the transaction currency.
func (b *TransactionBuilder) WithCurrency(currency string) *TransactionBuilder {
	b.tx.Currency = currency
	return b
}

// Build returns the constructed transaction.
func (b *TransactionBuilder) Build() model.Transaction {
	return b.tx
}

// Buy is a shorthand for a buy transaction in USD on the given date.
func Buy(t *testing.T, security, date string, quantity, price float64) model.Transaction {
	t.Helper()
	return NewTransaction(security).
		WithDate(Date(t, date)).
		WithQuantity(quantity).
		WithPrice(price).
		Build()
}

// Sell is a shorthand for a sell transaction in USD on the given date.
func Sell(t *testing.T, security, date string, quantity, price float64) model.Transaction {
	t.Helper()
	return NewTransaction(security).
		WithDate(Date(t, date)).
		WithAction(model.ActionSell).
		WithQuantity(quantity).
		WithPrice(price).
		Build()
}
