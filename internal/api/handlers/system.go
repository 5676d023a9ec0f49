package handlers

import (
	"net/http"

	"github.com/pvasilakos/Portfolio-Tracker-Backend/internal/api/response"
)

// SystemHandler handles system-related HTTP requests
type SystemHandler struct {
	categories []string
}

// NewSystemHandler creates a new SystemHandler reporting the served categories.
func NewSystemHandler(categories []string) *SystemHandler {
	return &SystemHandler{categories: categories}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string   `json:"status"`
	Categories []string `json:"categories"`
}

// Health reports service liveness and the asset categories currently served.
//
// Endpoint: GET /api/system/health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, HealthResponse{
		Status:     "healthy",
		Categories: h.categories,
	})
}
