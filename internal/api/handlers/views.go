package handlers

import (
	"fmt"
	"math"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/pvasilakos/Portfolio-Tracker-Backend/internal/api/response"
	"github.com/pvasilakos/Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/pvasilakos/Portfolio-Tracker-Backend/internal/loader"
	"github.com/pvasilakos/Portfolio-Tracker-Backend/internal/model"
	"github.com/pvasilakos/Portfolio-Tracker-Backend/internal/view"
)

// ViewHandler serves the per-category portfolio reports. All presentation
// concerns live here: 2-decimal rounding of monetary amounts and date
// formatting never happen inside the core.
type ViewHandler struct {
	views map[model.AssetType]*view.PortfolioView
}

// NewViewHandler creates a ViewHandler over one view per asset category.
func NewViewHandler(views map[model.AssetType]*view.PortfolioView) *ViewHandler {
	return &ViewHandler{views: views}
}

// resolveView maps the category URL parameter to its portfolio view. Unknown
// category tags and categories without a view both yield nil after writing
// the error response.
func (h *ViewHandler) resolveView(w http.ResponseWriter, r *http.Request) *view.PortfolioView {
	category := chi.URLParam(r, "category")

	assetType, err := model.ParseAssetType(category)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid asset category", err.Error())
		return nil
	}

	v, ok := h.views[assetType]
	if !ok {
		err := fmt.Errorf("%w: %s", apperrors.ErrViewNotFound, category)
		response.RespondError(w, http.StatusNotFound, "no portfolio view for category", err.Error())
		return nil
	}

	return v
}

// HoldingResponse is one owned position with its valuation.
type HoldingResponse struct {
	Security       string  `json:"security"`
	Shares         float64 `json:"shares"`
	CurrentValue   float64 `json:"currentValue"`
	UnrealizedGain float64 `json:"unrealizedGain"`
}

// Holdings returns the owned positions of a category with current values and
// unrealized gains.
//
// Endpoint: GET /api/views/{category}/holdings
func (h *ViewHandler) Holdings(w http.ResponseWriter, r *http.Request) {
	v := h.resolveView(w, r)
	if v == nil {
		return
	}

	values, err := v.CurrentValues()
	if err != nil {
		response.RespondError(w, http.StatusBadGateway, "failed to fetch current values", err.Error())
		return
	}

	owned := v.Ledger().OwnedAssets()
	gains := v.Ledger().UnrealizedGains()

	holdings := make([]HoldingResponse, 0, len(owned))
	for security, shares := range owned {
		holdings = append(holdings, HoldingResponse{
			Security:       security,
			Shares:         shares,
			CurrentValue:   round2(values[security]),
			UnrealizedGain: round2(gains[security]),
		})
	}
	sort.Slice(holdings, func(i, j int) bool {
		return holdings[i].Security < holdings[j].Security
	})

	response.RespondJSON(w, http.StatusOK, holdings)
}

// PercentageResponse is one security's share of the portfolio value.
type PercentageResponse struct {
	Security   string  `json:"security"`
	Percentage float64 `json:"percentage"`
}

// Percentages returns each security's percentage of the category's current
// portfolio value.
//
// Endpoint: GET /api/views/{category}/percentages
func (h *ViewHandler) Percentages(w http.ResponseWriter, r *http.Request) {
	v := h.resolveView(w, r)
	if v == nil {
		return
	}

	percentages, err := v.PercentageOfPortfolio()
	if err != nil {
		response.RespondError(w, http.StatusBadGateway, "failed to compute portfolio percentages", err.Error())
		return
	}

	result := make([]PercentageResponse, 0, len(percentages))
	for security, pct := range percentages {
		result = append(result, PercentageResponse{
			Security:   security,
			Percentage: round2(pct),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Security < result[j].Security
	})

	response.RespondJSON(w, http.StatusOK, result)
}

// OverviewResponse is the three-row category summary.
type OverviewResponse struct {
	CurrentValue    float64 `json:"currentValue"`
	TotalInvestment float64 `json:"totalInvestment"`
	UnrealizedGain  float64 `json:"unrealizedGain"`
}

// Overview returns the category summary: current value, remaining investment
// and unrealized gain.
//
// Endpoint: GET /api/views/{category}/overview
func (h *ViewHandler) Overview(w http.ResponseWriter, r *http.Request) {
	v := h.resolveView(w, r)
	if v == nil {
		return
	}

	overview, err := v.PortfolioOverview()
	if err != nil {
		response.RespondError(w, http.StatusBadGateway, "failed to compute portfolio overview", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, OverviewResponse{
		CurrentValue:    round2(overview.CurrentValue),
		TotalInvestment: round2(overview.TotalInvestment),
		UnrealizedGain:  round2(overview.UnrealizedGain),
	})
}

// RealizedGainsRowResponse is one row of the realized-gains report.
type RealizedGainsRowResponse struct {
	Security          string  `json:"security"`
	RealizedGain      float64 `json:"realizedGain"`
	Proceeds          float64 `json:"saleProceeds"`
	SharesSold        float64 `json:"sharesSold"`
	LastSellDate      string  `json:"lastSellDate"`
	InitialInvestment float64 `json:"initialInvestment"`
	RateOfReturn      float64 `json:"rateOfReturnPct"`
}

// RealizedGainsResponse is the realized-gains report with its grand total.
type RealizedGainsResponse struct {
	TotalRealizedGain float64                    `json:"totalRealizedGain"`
	Records           []RealizedGainsRowResponse `json:"records"`
}

// RealizedGains returns the category's realized-gains report.
//
// Endpoint: GET /api/views/{category}/realized-gains
func (h *ViewHandler) RealizedGains(w http.ResponseWriter, r *http.Request) {
	v := h.resolveView(w, r)
	if v == nil {
		return
	}

	rows := v.RealizedGainsReport()

	var total float64
	records := make([]RealizedGainsRowResponse, len(rows))
	for i, row := range rows {
		total += row.RealizedGain
		records[i] = RealizedGainsRowResponse{
			Security:          row.Security,
			RealizedGain:      round2(row.RealizedGain),
			Proceeds:          round2(row.Proceeds),
			SharesSold:        row.SharesSold,
			LastSellDate:      row.LastSellDate.Format(loader.DateLayout),
			InitialInvestment: round2(row.InitialInvestment),
			RateOfReturn:      round2(row.RateOfReturn),
		}
	}

	response.RespondJSON(w, http.StatusOK, RealizedGainsResponse{
		TotalRealizedGain: round2(total),
		Records:           records,
	})
}

// Refresh invalidates the category's cached current values so the next read
// re-queries the price provider.
//
// Endpoint: POST /api/views/{category}/refresh
func (h *ViewHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	v := h.resolveView(w, r)
	if v == nil {
		return
	}

	v.Invalidate()
	response.RespondJSON(w, http.StatusNoContent, nil)
}

// round2 rounds a monetary or percentage amount to 2 decimals for display.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
