// Package loader reads the transaction feed from its CSV file into typed,
// validated, date-sorted transaction records.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pvasilakos/Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/pvasilakos/Portfolio-Tracker-Backend/internal/model"
	"github.com/pvasilakos/Portfolio-Tracker-Backend/internal/validation"
)

// DateLayout is the date format of the transaction feed (MM/DD/YYYY).
const DateLayout = "01/02/2006"

// requiredColumns is the column set of the transaction feed. Column order in
// the file does not matter; all columns must be present.
var requiredColumns = []string{
	"date",
	"security",
	"type_of_asset",
	"action",
	"quantity",
	"price_per_share",
	"total_transaction_price",
	"currency",
}

// LoadTransactions reads and parses the transaction CSV at path.
func LoadTransactions(path string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transaction file: %w", err)
	}
	defer f.Close()

	return ReadTransactions(f)
}

// ReadTransactions parses CSV transaction records from r. The header row is
// validated against the required column set, numeric fields are cleaned of
// thousands separators, action and asset tags are parsed into their closed
// enums, and the result is stably sorted by date. Each record is assigned a
// fresh ID for diagnostics and API payloads.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var transactions []model.Transaction
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		line++

		tx, err := parseRecord(record, columns)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		if err := validation.ValidateTransaction(tx); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		transactions = append(transactions, tx)
	}

	// FIFO replay requires chronological order per security. A stable sort
	// preserves the file order of same-day rows.
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].Date.Before(transactions[j].Date)
	})

	return transactions, nil
}

// mapColumns maps each required column name to its index in the header row.
func mapColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.ToLower(name))] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", apperrors.ErrInvalidCSVHeaders, strings.Join(missing, ", "))
	}

	return columns, nil
}

func parseRecord(record []string, columns map[string]int) (model.Transaction, error) {
	field := func(name string) string {
		i := columns[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	for _, name := range requiredColumns {
		if field(name) == "" {
			return model.Transaction{}, fmt.Errorf("%w: %s", apperrors.ErrMissingRequiredField, name)
		}
	}

	date, err := parseDate(field("date"))
	if err != nil {
		return model.Transaction{}, err
	}

	action, err := model.ParseAction(field("action"))
	if err != nil {
		return model.Transaction{}, err
	}

	assetType, err := model.ParseAssetType(field("type_of_asset"))
	if err != nil {
		return model.Transaction{}, err
	}

	quantity, err := parseFloat(field("quantity"))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid quantity: %w", err)
	}

	pricePerShare, err := parseFloat(field("price_per_share"))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid price_per_share: %w", err)
	}

	totalPrice, err := parseFloat(field("total_transaction_price"))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid total_transaction_price: %w", err)
	}

	return model.Transaction{
		ID:            uuid.New().String(),
		Date:          date,
		Security:      field("security"),
		AssetType:     assetType,
		Action:        action,
		Quantity:      quantity,
		PricePerShare: pricePerShare,
		TotalPrice:    totalPrice,
		Currency:      strings.ToUpper(field("currency")),
	}, nil
}

func parseDate(s string) (time.Time, error) {
	date, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return date.UTC(), nil
}

// parseFloat converts a numeric field that may carry thousands separators,
// e.g. "1,234.56".
func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}
