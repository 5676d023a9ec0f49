package model

import (
	"fmt"
	"time"

	"github.com/pvasilakos/Portfolio-Tracker-Backend/internal/apperrors"
)

// Action is the kind of a ledger transaction. It is a closed enum: invalid
// tags are rejected when a transaction is constructed, not when it is replayed.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
)

// ParseAction validates a raw action tag and returns the typed Action.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionBuy, ActionSell:
		return Action(s), nil
	default:
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidAction, s)
	}
}

// AssetType is the asset category tag of a security.
type AssetType string

const (
	AssetStock     AssetType = "stock"
	AssetIndexFund AssetType = "index_fund"
	AssetCrypto    AssetType = "crypto"
)

// ParseAssetType validates a raw category tag and returns the typed AssetType.
func ParseAssetType(s string) (AssetType, error) {
	switch AssetType(s) {
	case AssetStock, AssetIndexFund, AssetCrypto:
		return AssetType(s), nil
	default:
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidAssetType, s)
	}
}

// Transaction represents a single buy or sell of a security, as produced by
// the transaction feed. Monetary amounts are in the transaction's own
// currency; the ledger normalizes them to the base currency during replay.
type Transaction struct {
	ID            string    `json:"id"`
	Date          time.Time `json:"date"`
	Security      string    `json:"security"`
	AssetType     AssetType `json:"typeOfAsset"`
	Action        Action    `json:"action"`
	Quantity      float64   `json:"quantity"`
	PricePerShare float64   `json:"pricePerShare"`
	TotalPrice    float64   `json:"totalTransactionPrice"`
	Currency      string    `json:"currency"`
}
