package repositories

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-exchange-rates/internal/logger"
	"github.com/sbilibin2017/gw-exchange-rates/internal/models"
)

// RateWriteRepository persists rate observations.
type RateWriteRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewRateWriteRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *RateWriteRepository {
	return &RateWriteRepository{db: db, txGetter: txGetter}
}

// Save performs an UPSERT keyed by (currency_code, date): a conflicting row
// gets its rate replaced, so re-running a fetch cycle is idempotent.
func (r *RateWriteRepository) Save(ctx context.Context, obs models.RateObservation) error {
	query := `
		INSERT INTO exchange_rates (currency_code, date, rate, status, source, created_at, updated_at)
		VALUES ($1, $2, $3, 'active', $4, NOW(), NOW())
		ON CONFLICT (currency_code, date)
		DO UPDATE SET rate = EXCLUDED.rate, source = EXCLUDED.source, updated_at = NOW()
	`
	args := []any{obs.CurrencyCode, obs.Date, obs.Rate, obs.Source}

	var executor sqlx.ExtContext = r.db
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			executor = tx
		}
	}

	res, err := executor.ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	// Log query, args, result, error
	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", rowsAffected,
		"error", err,
	)

	return err
}

// RateReadRepository reconstructs rate snapshots from persisted observations.
type RateReadRepository struct {
	db *sqlx.DB
}

func NewRateReadRepository(db *sqlx.DB) *RateReadRepository {
	return &RateReadRepository{db: db}
}

// GetSnapshot loads all active rates for the exact date, ordered by currency
// code. Returns sql.ErrNoRows when the date has no active rows.
func (r *RateReadRepository) GetSnapshot(ctx context.Context, date time.Time) (*models.Snapshot, error) {
	const query = `
		SELECT currency_code, rate, source
		FROM exchange_rates
		WHERE date = $1 AND status = 'active'
		ORDER BY currency_code
	`

	var rows []struct {
		CurrencyCode string  `db:"currency_code"`
		Rate         float64 `db:"rate"`
		Source       string  `db:"source"`
	}

	err := r.db.SelectContext(ctx, &rows, query, date)

	// Log query, args, result, error
	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{date},
		"result", len(rows),
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, sql.ErrNoRows
	}

	snapshot := &models.Snapshot{
		ReferenceDate: date,
		Rates:         make(map[string]float64, len(rows)),
		Source:        rows[0].Source,
	}
	for _, row := range rows {
		snapshot.Rates[row.CurrencyCode] = row.Rate
	}

	return snapshot, nil
}

// GetLatestSnapshot resolves the maximum active date first, then loads that
// date. Returns sql.ErrNoRows when the store holds no active rows at all.
func (r *RateReadRepository) GetLatestSnapshot(ctx context.Context) (*models.Snapshot, error) {
	const query = `
		SELECT MAX(date)
		FROM exchange_rates
		WHERE status = 'active'
	`

	var latest sql.NullTime
	err := r.db.GetContext(ctx, &latest, query)

	// Log query, args, result, error
	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{},
		"result", latest.Time,
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	if !latest.Valid {
		return nil, sql.ErrNoRows
	}

	return r.GetSnapshot(ctx, latest.Time)
}
