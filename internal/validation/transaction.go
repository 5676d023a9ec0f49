package validation

import (
	"strings"

	"github.com/pvasilakos/Portfolio-Tracker-Backend/internal/model"
)

// ValidateTransaction validates a parsed transaction record.
//
// Checked invariants:
//   - security: must be non-empty
//   - quantity: must be strictly positive
//   - pricePerShare, totalTransactionPrice: must not be negative
//   - currency: must be a 3-letter ISO code
//   - date: must be set
//
// Returns a validation Error with field-specific messages if any check fails.
func ValidateTransaction(tx model.Transaction) error {
	errors := make(map[string]string)

	if strings.TrimSpace(tx.Security) == "" {
		errors["security"] = "security is required"
	}

	if tx.Quantity <= 0 {
		errors["quantity"] = "quantity must be positive"
	}

	if tx.PricePerShare < 0 {
		errors["pricePerShare"] = "price per share cannot be negative"
	}

	if tx.TotalPrice < 0 {
		errors["totalTransactionPrice"] = "total transaction price cannot be negative"
	}

	if len(tx.Currency) != 3 {
		errors["currency"] = "currency must be a 3-letter ISO code"
	}

	if tx.Date.IsZero() {
		errors["date"] = "date is required"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
