package ledger_test

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/pvasilakos/Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/pvasilakos/Portfolio-Tracker-Backend/internal/ledger"
	"github.com/pvasilakos/Portfolio-Tracker-Backend/internal/model"
	"github.com/pvasilakos/Portfolio-Tracker-Backend/internal/testutil"
)

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s: got %v, want %v", name, got, want)
	}
}

// TestLotLedger_FIFOConsumption tests the central FIFO-consume algorithm.
//
// WHY: Realized gains are only correct if sells consume lots strictly in
// arrival order, splitting the front lot when the sell straddles it.
func TestLotLedger_FIFOConsumption(t *testing.T) {
	t.Run("sell straddling two lots realizes per-lot gains", func(t *testing.T) {
		l := ledger.New("USD", &testutil.FakeRateProvider{})

		// buy 10 @ 10, buy 5 @ 12, sell 12 @ 15
		err := l.ProcessTransactions([]model.Transaction{
			testutil.Buy(t, "AAPL", "01/02/2024", 10, 10),
			testutil.Buy(t, "AAPL", "02/02/2024", 5, 12),
			testutil.Sell(t, "AAPL", "03/04/2024", 12, 15),
		})
		if err != nil {
			t.Fatalf("ProcessTransactions() returned unexpected error: %v", err)
		}

		// 10*(15-10) + 2*(15-12) = 56
		total, records := l.RealizedGains()
		approx(t, "total realized gain", total, 56)
		approx(t, "per-security realized gain", records["AAPL"].Gain, 56)
		approx(t, "sale proceeds", records["AAPL"].Proceeds, 12*15)
		approx(t, "shares sold", records["AAPL"].SharesSold, 12)

		// 3 shares remain, all from the 12-dollar lot.
		owned := l.OwnedAssets()
		approx(t, "owned shares", owned["AAPL"], 3)
		approx(t, "remaining investment", l.Investments()["AAPL"], 3*12)
	})

	t.Run("selling exactly one lot leaves the next lot untouched", func(t *testing.T) {
		l := ledger.New("USD", &testutil.FakeRateProvider{})

		err := l.ProcessTransactions([]model.Transaction{
			testutil.Buy(t, "AAPL", "01/02/2024", 10, 10),
			testutil.Buy(t, "AAPL", "02/02/2024", 5, 12),
			testutil.Sell(t, "AAPL", "03/04/2024", 10, 11),
		})
		if err != nil {
			t.Fatalf("ProcessTransactions() returned unexpected error: %v", err)
		}

		total, _ := l.RealizedGains()
		approx(t, "total realized gain", total, 10)
		approx(t, "owned shares", l.OwnedAssets()["AAPL"], 5)
		approx(t, "remaining investment", l.Investments()["AAPL"], 5*12)
	})

	t.Run("record accumulates across sells and keeps the last sell date", func(t *testing.T) {
		l := ledger.New("USD", &testutil.FakeRateProvider{})

		err := l.ProcessTransactions([]model.Transaction{
			testutil.Buy(t, "AAPL", "01/02/2024", 10, 10),
			testutil.Sell(t, "AAPL", "02/02/2024", 4, 12),
			testutil.Sell(t, "AAPL", "03/04/2024", 3, 9),
		})
		if err != nil {
			t.Fatalf("ProcessTransactions() returned unexpected error: %v", err)
		}

		_, records := l.RealizedGains()
		record := records["AAPL"]
		// 4*(12-10) + 3*(9-10) = 5
		approx(t, "per-security realized gain", record.Gain, 5)
		approx(t, "sale proceeds", record.Proceeds, 4*12+3*9)
		approx(t, "shares sold", record.SharesSold, 7)
		if !record.LastSellDate.Equal(testutil.Date(t, "03/04/2024")) {
			t.Errorf("LastSellDate: got %v, want 03/04/2024", record.LastSellDate)
		}
	})
}

// TestLotLedger_Conservation tests the owned-quantity invariant.
//
// WHY: At every point, the owned quantity per security must equal total
// bought minus total sold; anything else means lots were lost or duplicated.
func TestLotLedger_Conservation(t *testing.T) {
	l := ledger.New("USD", &testutil.FakeRateProvider{})

	err := l.ProcessTransactions([]model.Transaction{
		testutil.Buy(t, "AAPL", "01/02/2024", 10, 10),
		testutil.Buy(t, "MSFT", "01/03/2024", 8, 200),
		testutil.Sell(t, "AAPL", "01/10/2024", 4, 12),
		testutil.Buy(t, "AAPL", "01/11/2024", 6, 11),
		testutil.Sell(t, "MSFT", "01/12/2024", 3, 210),
	})
	if err != nil {
		t.Fatalf("ProcessTransactions() returned unexpected error: %v", err)
	}

	owned := l.OwnedAssets()
	approx(t, "AAPL owned", owned["AAPL"], 10-4+6)
	approx(t, "MSFT owned", owned["MSFT"], 8-3)
}

// TestLotLedger_PositionClosure tests removal of fully sold positions.
//
// WHY: Selling down to exactly zero must remove the security from owned
// assets and investment totals while keeping its realized-gain history.
func TestLotLedger_PositionClosure(t *testing.T) {
	l := ledger.New("USD", &testutil.FakeRateProvider{})

	err := l.ProcessTransactions([]model.Transaction{
		testutil.Buy(t, "AAPL", "01/02/2024", 10, 10),
		testutil.Sell(t, "AAPL", "02/02/2024", 10, 12),
	})
	if err != nil {
		t.Fatalf("ProcessTransactions() returned unexpected error: %v", err)
	}

	if owned := l.OwnedAssets(); len(owned) != 0 {
		t.Errorf("Expected no owned assets after closure, got %v", owned)
	}
	if investments := l.Investments(); len(investments) != 0 {
		t.Errorf("Expected no investment entries after closure, got %v", investments)
	}

	// History persists even after the position is closed.
	total, records := l.RealizedGains()
	approx(t, "total realized gain", total, 20)
	if _, ok := records["AAPL"]; !ok {
		t.Error("Expected realized-gain record to survive position closure")
	}
}

// TestLotLedger_FatalTransactions tests the batch-aborting error conditions.
//
// WHY: A skipped sell would silently corrupt FIFO state, so oversells and
// unknown actions must fail the batch while leaving prior state queryable.
func TestLotLedger_FatalTransactions(t *testing.T) {
	t.Run("oversell fails with ErrInsufficientShares", func(t *testing.T) {
		l := ledger.New("USD", &testutil.FakeRateProvider{})

		err := l.ProcessTransactions([]model.Transaction{
			testutil.Buy(t, "AAPL", "01/02/2024", 10, 10),
			testutil.Sell(t, "AAPL", "02/02/2024", 12, 15),
		})
		if !errors.Is(err, apperrors.ErrInsufficientShares) {
			t.Fatalf("Expected ErrInsufficientShares, got %v", err)
		}

		// State before the failing transaction is still valid.
		approx(t, "owned shares after failed sell", l.OwnedAssets()["AAPL"], 10)
	})

	t.Run("sell of a never-bought security fails", func(t *testing.T) {
		l := ledger.New("USD", &testutil.FakeRateProvider{})

		err := l.ProcessTransactions([]model.Transaction{
			testutil.Sell(t, "MSFT", "01/02/2024", 1, 100),
		})
		if !errors.Is(err, apperrors.ErrInsufficientShares) {
			t.Fatalf("Expected ErrInsufficientShares, got %v", err)
		}
	})

	t.Run("unknown action fails with ErrInvalidAction", func(t *testing.T) {
		l := ledger.New("USD", &testutil.FakeRateProvider{})

		tx := testutil.NewTransaction("AAPL").Build()
		tx.Action = model.Action("transfer")

		err := l.ProcessTransactions([]model.Transaction{tx})
		if !errors.Is(err, apperrors.ErrInvalidAction) {
			t.Fatalf("Expected ErrInvalidAction, got %v", err)
		}
	})

	t.Run("failure message names security, quantity and date", func(t *testing.T) {
		l := ledger.New("USD", &testutil.FakeRateProvider{})

		err := l.ProcessTransactions([]model.Transaction{
			testutil.Sell(t, "TSLA", "02/02/2024", 12, 15),
		})
		if err == nil {
			t.Fatal("Expected error, got nil")
		}
		for _, fragment := range []string{"TSLA", "12", "2024-02-02"} {
			if !strings.Contains(err.Error(), fragment) {
				t.Errorf("Error %q does not mention %q", err.Error(), fragment)
			}
		}
	})
}

// TestLotLedger_CurrencyConversion tests normalization to the base currency.
//
// WHY: Foreign-currency transactions must be converted with the rate of the
// transaction's exact date, base-currency transactions must pass through
// untouched, and a missing rate must fail rather than misvalue the lot.
func TestLotLedger_CurrencyConversion(t *testing.T) {
	t.Run("base-currency transactions skip the rate provider", func(t *testing.T) {
		rates := &testutil.FakeRateProvider{}
		l := ledger.New("USD", rates)

		err := l.ProcessTransactions([]model.Transaction{
			testutil.Buy(t, "AAPL", "01/02/2024", 10, 10),
		})
		if err != nil {
			t.Fatalf("ProcessTransactions() returned unexpected error: %v", err)
		}

		if rates.Calls != 0 {
			t.Errorf("Expected no rate provider calls for base-currency batch, got %d", rates.Calls)
		}
		approx(t, "investment", l.Investments()["AAPL"], 100)
	})

	t.Run("foreign transaction converts unit cost with the date's rate", func(t *testing.T) {
		date := testutil.Date(t, "01/02/2024")
		rates := testutil.FlatRateProvider("GBP", "USD", 1.25, date)
		l := ledger.New("USD", rates)

		tx := testutil.NewTransaction("VWRL").
			WithDate(date).
			WithQuantity(100).
			WithPrice(10).
			WithCurrency("GBP").
			Build()

		if err := l.ProcessTransactions([]model.Transaction{tx}); err != nil {
			t.Fatalf("ProcessTransactions() returned unexpected error: %v", err)
		}

		// GBP 1000 at 1.25 -> USD 1250 cost basis.
		approx(t, "converted investment", l.Investments()["VWRL"], 1250)

		prices := &testutil.FakePriceProvider{Prices: map[string]float64{"VWRL": 15}}
		values, unrealized, err := l.CurrentValues(prices)
		if err != nil {
			t.Fatalf("CurrentValues() returned unexpected error: %v", err)
		}
		approx(t, "current value", values["VWRL"], 1500)
		approx(t, "unrealized gain", unrealized["VWRL"], 1500-1250)
	})

	t.Run("one series fetch per currency, not per transaction", func(t *testing.T) {
		date := testutil.Date(t, "01/02/2024")
		rates := testutil.FlatRateProvider("GBP", "USD", 1.25, date)
		l := ledger.New("USD", rates)

		txs := make([]model.Transaction, 0, 3)
		for i, day := range []string{"01/02/2024", "01/03/2024", "01/04/2024"} {
			txs = append(txs, testutil.NewTransaction(fmt.Sprintf("SEC%d", i)).
				WithDate(testutil.Date(t, day)).
				WithCurrency("GBP").
				Build())
		}

		if err := l.ProcessTransactions(txs); err != nil {
			t.Fatalf("ProcessTransactions() returned unexpected error: %v", err)
		}

		if rates.Calls != 1 {
			t.Errorf("Expected 1 batched rate fetch, got %d", rates.Calls)
		}
	})

	t.Run("missing rate fails with ErrRateUnavailable", func(t *testing.T) {
		// Provider knows no GBP/USD observations at all, so the filled
		// series stays empty.
		l := ledger.New("USD", &testutil.FakeRateProvider{})

		tx := testutil.NewTransaction("VWRL").WithCurrency("GBP").Build()

		err := l.ProcessTransactions([]model.Transaction{tx})
		if !errors.Is(err, apperrors.ErrRateUnavailable) {
			t.Fatalf("Expected ErrRateUnavailable, got %v", err)
		}
	})
}

// TestLotLedger_CurrentValues tests valuation against the price provider.
//
// WHY: Valuation is one batched provider call; a missing quote degrades to a
// zero price by design, and the unrealized map must be cached for later reads.
func TestLotLedger_CurrentValues(t *testing.T) {
	t.Run("computes value and unrealized gain per owned security", func(t *testing.T) {
		l := ledger.New("USD", &testutil.FakeRateProvider{})

		err := l.ProcessTransactions([]model.Transaction{
			testutil.Buy(t, "AAPL", "01/02/2024", 10, 10),
			testutil.Buy(t, "MSFT", "01/03/2024", 2, 200),
		})
		if err != nil {
			t.Fatalf("ProcessTransactions() returned unexpected error: %v", err)
		}

		prices := &testutil.FakePriceProvider{Prices: map[string]float64{"AAPL": 15, "MSFT": 190}}
		values, unrealized, err := l.CurrentValues(prices)
		if err != nil {
			t.Fatalf("CurrentValues() returned unexpected error: %v", err)
		}

		approx(t, "AAPL value", values["AAPL"], 150)
		approx(t, "AAPL unrealized", unrealized["AAPL"], 50)
		approx(t, "MSFT value", values["MSFT"], 380)
		approx(t, "MSFT unrealized", unrealized["MSFT"], -20)

		// One batched call for both symbols.
		if len(prices.Calls) != 1 {
			t.Errorf("Expected 1 batched price call, got %d", len(prices.Calls))
		}
	})

	t.Run("missing quote degrades to zero price", func(t *testing.T) {
		l := ledger.New("USD", &testutil.FakeRateProvider{})

		err := l.ProcessTransactions([]model.Transaction{
			testutil.Buy(t, "OBSCURE", "01/02/2024", 10, 10),
		})
		if err != nil {
			t.Fatalf("ProcessTransactions() returned unexpected error: %v", err)
		}

		values, unrealized, err := l.CurrentValues(&testutil.FakePriceProvider{})
		if err != nil {
			t.Fatalf("CurrentValues() returned unexpected error: %v", err)
		}

		approx(t, "value without quote", values["OBSCURE"], 0)
		approx(t, "unrealized without quote", unrealized["OBSCURE"], -100)
	})

	t.Run("caches the unrealized-gains map", func(t *testing.T) {
		l := ledger.New("USD", &testutil.FakeRateProvider{})

		err := l.ProcessTransactions([]model.Transaction{
			testutil.Buy(t, "AAPL", "01/02/2024", 10, 10),
		})
		if err != nil {
			t.Fatalf("ProcessTransactions() returned unexpected error: %v", err)
		}

		if l.UnrealizedGains() != nil {
			t.Error("Expected no cached unrealized gains before CurrentValues")
		}

		prices := &testutil.FakePriceProvider{Prices: map[string]float64{"AAPL": 15}}
		if _, _, err := l.CurrentValues(prices); err != nil {
			t.Fatalf("CurrentValues() returned unexpected error: %v", err)
		}

		approx(t, "cached unrealized", l.UnrealizedGains()["AAPL"], 50)
	})

	t.Run("provider failure surfaces as ErrQuoteFetchFailed", func(t *testing.T) {
		l := ledger.New("USD", &testutil.FakeRateProvider{})

		err := l.ProcessTransactions([]model.Transaction{
			testutil.Buy(t, "AAPL", "01/02/2024", 10, 10),
		})
		if err != nil {
			t.Fatalf("ProcessTransactions() returned unexpected error: %v", err)
		}

		prices := &testutil.FakePriceProvider{Err: errors.New("connection refused")}
		if _, _, err := l.CurrentValues(prices); !errors.Is(err, apperrors.ErrQuoteFetchFailed) {
			t.Fatalf("Expected ErrQuoteFetchFailed, got %v", err)
		}
	})
}
