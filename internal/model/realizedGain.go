package model

import "time"

// RealizedGain accumulates the sell history of one security. A record is
// created on the first sell and updated on every subsequent sell; it is never
// deleted, so the history survives a fully closed position.
type RealizedGain struct {
	Security     string    `json:"security"`
	Gain         float64   `json:"realizedGain"`
	Proceeds     float64   `json:"saleProceeds"`
	SharesSold   float64   `json:"sharesSold"`
	LastSellDate time.Time `json:"lastSellDate"`
}
