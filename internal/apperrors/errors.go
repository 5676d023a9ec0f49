package apperrors

import "errors"

// Business logic errors represent constraint violations while replaying a
// transaction batch. These errors are fatal to the batch being processed:
// the ledger state built up to the failing transaction remains queryable,
// but no further rows of the batch are applied.
var (
	// ErrInsufficientShares indicates that a sell transaction requested more
	// shares of a security than the ledger currently holds.
	ErrInsufficientShares = errors.New("insufficient shares for sale")

	// ErrInvalidAction indicates a transaction action outside buy/sell.
	ErrInvalidAction = errors.New("invalid transaction action")

	// ErrInvalidAssetType indicates an unknown asset category tag.
	ErrInvalidAssetType = errors.New("invalid asset type")

	// ErrRateUnavailable indicates that no exchange rate exists for a required
	// currency and date, even after forward/backward filling the series.
	// A default rate is never substituted; silent misvaluation is worse than
	// failing the batch.
	ErrRateUnavailable = errors.New("exchange rate for currency/date not found")
)

// Input errors represent malformed transaction feeds.
var (
	// ErrInvalidCSVHeaders indicates that the transaction file header does not
	// match the expected column set.
	ErrInvalidCSVHeaders = errors.New("invalid CSV headers")

	// ErrMissingRequiredField indicates that a required field is missing or empty.
	ErrMissingRequiredField = errors.New("missing required field")
)

// Reporting errors represent failures while deriving portfolio reports.
var (
	// ErrViewNotFound indicates that no portfolio view exists for the
	// requested asset category.
	ErrViewNotFound = errors.New("portfolio view not found")

	// ErrQuoteFetchFailed indicates that the batched current-price call to the
	// quote provider failed as a whole. Individual missing symbols are not
	// errors; those degrade to a zero price.
	ErrQuoteFetchFailed = errors.New("failed to fetch current prices")
)
