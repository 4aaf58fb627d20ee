package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sbilibin2017/gw-exchange-rates/internal/models"
	"github.com/sbilibin2017/gw-exchange-rates/internal/services"
)

// SnapshotProvider loads the snapshot for a date, or the latest one for nil.
type SnapshotProvider interface {
	GetSnapshot(ctx context.Context, date *time.Time) (*models.Snapshot, error)
}

// RatesResponse represents a rate snapshot
// swagger:model RatesResponse
type RatesResponse struct {
	// Reference date of the snapshot
	// default: 2024-01-02
	Date string `json:"date"`

	// Feed the snapshot came from
	// default: ECB
	Source string `json:"source"`

	// Rates per currency code, expressed against EUR
	Rates map[string]float64 `json:"rates"`
}

// RatesErrorResponse represents an error response when fetching a snapshot
// swagger:model RatesErrorResponse
type RatesErrorResponse struct {
	// Error message
	// default: No exchange rates available
	Error string `json:"error"`
}

// NewGetRatesHandler returns an HTTP handler for fetching a rate snapshot.
// @Summary Get a rate snapshot
// @Description Returns all rates for the latest snapshot, or for the requested date.
// @Tags rates
// @Produce json
// @Param date query string false "Snapshot date, YYYY-MM-DD; defaults to the latest"
// @Success 200 {object} handlers.RatesResponse "Rate snapshot"
// @Failure 400 {object} handlers.RatesErrorResponse "Invalid date"
// @Failure 404 {object} handlers.RatesErrorResponse "No snapshot available"
// @Failure 500 {object} handlers.RatesErrorResponse "Internal server error"
// @Router /rates [get]
func NewGetRatesHandler(svc SnapshotProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError := func(status int, msg string) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(RatesErrorResponse{Error: msg})
		}

		var date *time.Time
		if raw := r.URL.Query().Get("date"); raw != "" {
			parsed, err := time.Parse("2006-01-02", raw)
			if err != nil {
				writeError(http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
				return
			}
			date = &parsed
		}

		snapshot, err := svc.GetSnapshot(r.Context(), date)
		if err != nil {
			if errors.Is(err, services.ErrSnapshotNotFound) {
				writeError(http.StatusNotFound,
					"No exchange rates available for the requested date, refresh the rates first")
				return
			}
			writeError(http.StatusInternalServerError, "Internal server error")
			return
		}

		resp := RatesResponse{
			Date:   snapshot.ReferenceDate.Format("2006-01-02"),
			Source: snapshot.Source,
			Rates:  snapshot.Rates,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
