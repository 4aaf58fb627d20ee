package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sbilibin2017/gw-exchange-rates/internal/services"
)

// Converter answers conversion queries against stored snapshots.
type Converter interface {
	Convert(ctx context.Context, amount float64, from, to string, date *time.Time) (*services.ConversionResult, error)
}

// ConvertResponse represents a successful conversion
// swagger:model ConvertResponse
type ConvertResponse struct {
	// Original amount
	// default: 100.0
	Amount float64 `json:"amount"`

	// Source currency
	// default: USD
	From string `json:"from"`

	// Target currency
	// default: GBP
	To string `json:"to"`

	// Converted amount, rounded only when precision was requested
	// default: 77.27
	Result float64 `json:"result"`

	// Price of 1 unit of from in to; absent when not resolvable
	// default: 0.7727
	Rate *float64 `json:"rate,omitempty"`

	// Reference date of the snapshot used
	// default: 2024-01-02
	Date string `json:"date"`
}

// ConvertErrorResponse represents an error response for conversion
// swagger:model ConvertErrorResponse
type ConvertErrorResponse struct {
	// Error message
	// default: exchange rate not found for ZZZ
	Error string `json:"error"`
}

// isCurrencyCode reports whether s looks like a 3-letter currency code.
func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, c := range s {
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

func writeConvertError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ConvertErrorResponse{Error: msg})
}

// NewConvertHandler returns an HTTP handler for currency conversion.
// @Summary Convert an amount between currencies
// @Description Converts amount from one currency to another using the latest snapshot, or the snapshot for the given date. Precision only rounds the displayed result.
// @Tags convert
// @Produce json
// @Param amount query number true "Amount to convert, >= 0"
// @Param from query string true "Source currency, 3 letters"
// @Param to query string true "Target currency, 3 letters"
// @Param date query string false "Snapshot date, YYYY-MM-DD; defaults to the latest"
// @Param precision query integer false "Decimal places for the result, 0..12"
// @Success 200 {object} handlers.ConvertResponse "Conversion result"
// @Failure 400 {object} handlers.ConvertErrorResponse "Invalid amount, currency or precision"
// @Failure 404 {object} handlers.ConvertErrorResponse "No snapshot available"
// @Failure 500 {object} handlers.ConvertErrorResponse "Internal server error"
// @Router /convert [get]
func NewConvertHandler(svc Converter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		amount, err := strconv.ParseFloat(q.Get("amount"), 64)
		if err != nil {
			writeConvertError(w, http.StatusBadRequest, "Invalid amount")
			return
		}
		if amount < 0 {
			writeConvertError(w, http.StatusBadRequest, services.ErrInvalidAmount.Error())
			return
		}

		from := strings.ToUpper(q.Get("from"))
		to := strings.ToUpper(q.Get("to"))
		if !isCurrencyCode(from) || !isCurrencyCode(to) {
			writeConvertError(w, http.StatusBadRequest, "Currency codes must be exactly 3 letters")
			return
		}

		var date *time.Time
		if raw := q.Get("date"); raw != "" {
			parsed, err := time.Parse("2006-01-02", raw)
			if err != nil {
				writeConvertError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
				return
			}
			date = &parsed
		}

		precision := -1
		if raw := q.Get("precision"); raw != "" {
			precision, err = strconv.Atoi(raw)
			if err != nil || precision < 0 || precision > services.MaxPrecision {
				writeConvertError(w, http.StatusBadRequest,
					fmt.Sprintf("Precision must be an integer between 0 and %d", services.MaxPrecision))
				return
			}
		}

		res, err := svc.Convert(r.Context(), amount, from, to, date)
		if err != nil {
			var unknownErr *services.UnknownCurrencyError
			switch {
			case errors.Is(err, services.ErrInvalidAmount):
				writeConvertError(w, http.StatusBadRequest, err.Error())
			case errors.As(err, &unknownErr):
				writeConvertError(w, http.StatusBadRequest, unknownErr.Error())
			case errors.Is(err, services.ErrSnapshotNotFound):
				writeConvertError(w, http.StatusNotFound,
					"No exchange rates available for the requested date, refresh the rates first")
			default:
				writeConvertError(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		result := res.Result
		if precision >= 0 {
			result = services.RoundTo(result, precision)
		}

		resp := ConvertResponse{
			Amount: amount,
			From:   from,
			To:     to,
			Result: result,
			Rate:   res.Rate,
			Date:   res.Snapshot.ReferenceDate.Format("2006-01-02"),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
