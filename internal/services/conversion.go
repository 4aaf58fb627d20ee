package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sbilibin2017/gw-exchange-rates/internal/logger"
	"github.com/sbilibin2017/gw-exchange-rates/internal/models"
)

var (
	// ErrInvalidAmount is returned when a conversion is requested for a negative amount.
	ErrInvalidAmount = errors.New("amount must be >= 0")

	// ErrSnapshotNotFound is returned when no active rates exist for the requested or latest date.
	ErrSnapshotNotFound = errors.New("no exchange rate snapshot available")
)

// UnknownCurrencyError names a currency code that is neither the base
// currency nor present in the snapshot.
type UnknownCurrencyError struct {
	Code string
}

func (e *UnknownCurrencyError) Error() string {
	return fmt.Sprintf("exchange rate not found for %s", e.Code)
}

// MaxPrecision bounds the optional display precision of conversion results.
const MaxPrecision = 12

// ConvertAmount converts amount between two currencies using a snapshot rate
// map with models.BaseCurrency as the implicit base. Pure function.
//
// Codes are uppercased before any comparison. Equal codes short-circuit to
// the unchanged amount without a rate lookup. The result is the single
// combined expression amount * (rateTo / rateFrom); keeping it in one
// multiply-divide is deliberate, two sequential steps round differently.
func ConvertAmount(amount float64, from, to string, rates map[string]float64) (float64, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)

	if amount < 0 {
		return 0, ErrInvalidAmount
	}

	if from == to {
		return amount, nil
	}

	rateFrom, err := resolveRate(from, rates)
	if err != nil {
		return 0, err
	}
	rateTo, err := resolveRate(to, rates)
	if err != nil {
		return 0, err
	}

	return amount * (rateTo / rateFrom), nil
}

// resolveRate returns the rate for an uppercased code. The base currency is
// always exactly 1.0 and never looked up.
func resolveRate(code string, rates map[string]float64) (float64, error) {
	if code == models.BaseCurrency {
		return 1.0, nil
	}
	rate, ok := rates[code]
	if !ok {
		return 0, &UnknownCurrencyError{Code: code}
	}
	return rate, nil
}

// RoundTo rounds value to the given number of decimal places. Display-only:
// conversion arithmetic itself is never rounded.
func RoundTo(value float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(value*pow) / pow
}

// SnapshotReader loads snapshots from the persisted store.
type SnapshotReader interface {
	GetSnapshot(ctx context.Context, date time.Time) (*models.Snapshot, error) // Loads the snapshot for an exact date
	GetLatestSnapshot(ctx context.Context) (*models.Snapshot, error)           // Loads the snapshot for the maximum stored date
}

// SnapshotCacheReader caches snapshots; nil date means the latest slot.
type SnapshotCacheReader interface {
	Get(ctx context.Context, date *time.Time) (*models.Snapshot, error)        // Returns a cached snapshot
	Set(ctx context.Context, date *time.Time, snapshot *models.Snapshot) error // Caches a snapshot
}

// ConversionResult carries the conversion outcome plus presentation extras.
type ConversionResult struct {
	Result   float64          // converted amount, unrounded
	Rate     *float64         // price of 1 unit of from in to; nil when not resolvable
	Snapshot *models.Snapshot // snapshot the conversion was computed against
}

// ConversionService answers conversion queries against stored snapshots.
type ConversionService struct {
	reader SnapshotReader
	cache  SnapshotCacheReader
}

// NewConversionService creates a new service instance. The cache may be nil.
func NewConversionService(reader SnapshotReader, cache SnapshotCacheReader) *ConversionService {
	return &ConversionService{reader: reader, cache: cache}
}

// GetSnapshot returns the snapshot for the given date, or the latest one when
// date is nil. Cache failures fall through to the store; store misses map to
// ErrSnapshotNotFound.
func (svc *ConversionService) GetSnapshot(ctx context.Context, date *time.Time) (*models.Snapshot, error) {
	if svc.cache != nil {
		if snapshot, err := svc.cache.Get(ctx, date); err == nil {
			return snapshot, nil
		}
	}

	var snapshot *models.Snapshot
	var err error
	if date == nil {
		snapshot, err = svc.reader.GetLatestSnapshot(ctx)
	} else {
		snapshot, err = svc.reader.GetSnapshot(ctx, *date)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		logger.Log.Errorw("failed to load snapshot", "error", err)
		return nil, err
	}

	if svc.cache != nil {
		if err := svc.cache.Set(ctx, date, snapshot); err != nil {
			logger.Log.Errorw("failed to cache snapshot", "error", err)
		}
	}

	return snapshot, nil
}

// Convert loads the snapshot for date (nil = latest) and runs the conversion.
// The effective rate is the same conversion applied to 1.0; when that fails
// the rate is simply absent, it never fails the request.
func (svc *ConversionService) Convert(ctx context.Context, amount float64, from, to string, date *time.Time) (*ConversionResult, error) {
	snapshot, err := svc.GetSnapshot(ctx, date)
	if err != nil {
		return nil, err
	}

	result, err := ConvertAmount(amount, from, to, snapshot.Rates)
	if err != nil {
		return nil, err
	}

	var ratePtr *float64
	if rate, err := ConvertAmount(1.0, from, to, snapshot.Rates); err == nil {
		ratePtr = &rate
	}

	return &ConversionResult{
		Result:   result,
		Rate:     ratePtr,
		Snapshot: snapshot,
	}, nil
}
