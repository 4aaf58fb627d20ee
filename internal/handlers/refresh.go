package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// RatesRefresher runs one fetch-and-store cycle of the rate feed.
type RatesRefresher interface {
	Refresh(ctx context.Context) (stored, skipped int, referenceDate time.Time, err error)
}

// RefreshResponse represents a successful feed refresh
// swagger:model RefreshResponse
type RefreshResponse struct {
	// Success message
	// default: Exchange rates refreshed
	Message string `json:"message"`

	// Number of observations stored
	// default: 31
	Stored int `json:"stored"`

	// Number of feed rows skipped as stale or malformed
	// default: 0
	Skipped int `json:"skipped"`

	// Reference date of the refreshed snapshot, empty when nothing was stored
	// default: 2024-01-02
	ReferenceDate string `json:"reference_date,omitempty"`
}

// RefreshErrorResponse represents an error response for feed refresh
// swagger:model RefreshErrorResponse
type RefreshErrorResponse struct {
	// Error message
	// default: Failed to refresh exchange rates
	Error string `json:"error"`
}

// NewRefreshRatesHandler returns an HTTP handler that triggers a rate feed refresh.
// @Summary Refresh exchange rates
// @Description Fetches the daily rate feed and upserts it into the store. Stale or malformed rows are skipped and counted; a batch with zero stored rows is still a success.
// @Tags rates
// @Produce json
// @Success 200 {object} handlers.RefreshResponse "Exchange rates refreshed"
// @Failure 500 {object} handlers.RefreshErrorResponse "Feed fetch or storage failure"
// @Router /rates/refresh [post]
func NewRefreshRatesHandler(svc RatesRefresher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stored, skipped, referenceDate, err := svc.Refresh(r.Context())
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(RefreshErrorResponse{Error: "Failed to refresh exchange rates"})
			return
		}

		resp := RefreshResponse{
			Message: "Exchange rates refreshed",
			Stored:  stored,
			Skipped: skipped,
		}
		if !referenceDate.IsZero() {
			resp.ReferenceDate = referenceDate.Format("2006-01-02")
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
