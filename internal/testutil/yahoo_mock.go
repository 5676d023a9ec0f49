package testutil

import (
	"time"

	"github.com/pvasilakos/Portfolio-Tracker-Backend/internal/yahoo"
)

// MockYahooClient is a mock implementation of yahoo.Client for testing.
// It returns predefined responses instead of making actual API calls.
type MockYahooClient struct {
	// Responses maps a symbol to the response returned for its queries.
	// Symbols without an entry fall back to MockResponse.
	Responses map[string]yahoo.Response
	// MockResponse is the default response for query methods.
	MockResponse yahoo.Response
	// MockError is the error to return from query methods.
	MockError error
	// QueryCount tracks how many times a query method was called.
	QueryCount int
}

// NewMockYahooClient creates a mock client whose default response carries
// 5 days of price data ending yesterday.
func NewMockYahooClient() *MockYahooClient {
	return &MockYahooClient{
		Responses:    make(map[string]yahoo.Response),
		MockResponse: CreateMockYahooResponse("TEST", 5, 100.0),
	}
}

// QueryFiveDaySymbol mocks the 5-day symbol query.
func (m *MockYahooClient) QueryFiveDaySymbol(symbol string) (yahoo.Response, error) {
	return m.respond(symbol)
}

// QuerySymbolByDateRange mocks the date range query.
func (m *MockYahooClient) QuerySymbolByDateRange(symbol string, _, _ time.Time) (yahoo.Response, error) {
	return m.respond(symbol)
}

func (m *MockYahooClient) respond(symbol string) (yahoo.Response, error) {
	m.QueryCount++
	if m.MockError != nil {
		return yahoo.Response{}, m.MockError
	}
	if resp, ok := m.Responses[symbol]; ok {
		return resp, nil
	}
	return m.MockResponse, nil
}

// ParseChart delegates to the real ParseChart method since it is pure logic
// with no side effects.
func (m *MockYahooClient) ParseChart(yahooResult yahoo.Response) (yahoo.PriceChart, error) {
	client := yahoo.NewFinanceClient()
	return client.ParseChart(yahooResult)
}

// WithError configures the mock to return the specified error.
func (m *MockYahooClient) WithError(err error) *MockYahooClient {
	m.MockError = err
	return m
}

// WithResponse configures the response for a specific symbol.
func (m *MockYahooClient) WithResponse(symbol string, resp yahoo.Response) *MockYahooClient {
	m.Responses[symbol] = resp
	return m
}

// WithEmptyResponse configures the mock to return a response with no data.
func (m *MockYahooClient) WithEmptyResponse() *MockYahooClient {
	m.MockResponse = yahoo.Response{
		Chart: yahoo.Chart{
			Result: []yahoo.Result{},
		},
	}
	return m
}

// CreateMockYahooResponse creates a mock chart API response for symbol with
// `days` days of data ending yesterday. The close price starts at basePrice
// and climbs 0.5 per day.
func CreateMockYahooResponse(symbol string, days int, basePrice float64) yahoo.Response {
	now := time.Now().UTC()
	yesterday := time.Date(now.Year(), now.Month(), now.Day()-1, 0, 0, 0, 0, time.UTC)

	timestamps := make([]int64, days)
	opens := make([]float64, days)
	highs := make([]float64, days)
	lows := make([]float64, days)
	closes := make([]float64, days)
	volumes := make([]int64, days)

	for i := 0; i < days; i++ {
		date := yesterday.AddDate(0, 0, -days+i+1)
		timestamps[i] = date.Unix()

		dayPrice := basePrice + float64(i)*0.5
		opens[i] = dayPrice
		highs[i] = dayPrice + 1.0
		lows[i] = dayPrice - 0.5
		closes[i] = dayPrice
		volumes[i] = int64(1000000 + i*10000)
	}

	return yahoo.Response{
		Chart: yahoo.Chart{
			Result: []yahoo.Result{
				{
					Meta: yahoo.Meta{
						Symbol:           symbol,
						Currency:         "USD",
						ExchangeName:     "NMS",
						FullExchangeName: "NASDAQ",
						LongName:         "Test Security Inc.",
						Shortname:        symbol,
					},
					Timestamp: timestamps,
					Indicators: yahoo.IndicatorsContainer{
						Quote: []yahoo.Quote{
							{
								Open:   opens,
								High:   highs,
								Low:    lows,
								Close:  closes,
								Volume: volumes,
							},
						},
					},
				},
			},
		},
	}
}

// CreateMockYahooResponseForDates creates a mock response with one data point
// per (date, close) pair, in the given order.
func CreateMockYahooResponseForDates(symbol string, dates []time.Time, closes []float64) yahoo.Response {
	timestamps := make([]int64, len(dates))
	volumes := make([]int64, len(dates))
	for i, date := range dates {
		timestamps[i] = date.Unix()
		volumes[i] = 1000000
	}

	return yahoo.Response{
		Chart: yahoo.Chart{
			Result: []yahoo.Result{
				{
					Meta: yahoo.Meta{
						Symbol:   symbol,
						Currency: "USD",
					},
					Timestamp: timestamps,
					Indicators: yahoo.IndicatorsContainer{
						Quote: []yahoo.Quote{
							{
								Open:   closes,
								High:   closes,
								Low:    closes,
								Close:  closes,
								Volume: volumes,
							},
						},
					},
				},
			},
		},
	}
}

// CreateMockYahooErrorResponse creates a mock response carrying an API-level
// error message.
func CreateMockYahooErrorResponse(errorMsg string) yahoo.Response {
	return yahoo.Response{
		Chart: yahoo.Chart{
			Result: []yahoo.Result{},
			Error:  &errorMsg,
		},
	}
}
