package services

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-exchange-rates/internal/logger"
	"github.com/sbilibin2017/gw-exchange-rates/internal/models"
	"github.com/segmentio/kafka-go"
)

// RateSource fetches raw rate rows from the external feed.
type RateSource interface {
	FetchDaily(ctx context.Context) ([]models.RateRow, error)
}

// RateWriter persists validated rate observations.
type RateWriter interface {
	Save(ctx context.Context, obs models.RateObservation) error
}

// SnapshotInvalidator drops the cached latest snapshot after a refresh.
type SnapshotInvalidator interface {
	DeleteLatest(ctx context.Context) error
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// RatesService ingests the daily feed into the rate store.
type RatesService struct {
	source      RateSource
	writer      RateWriter
	cache       SnapshotInvalidator
	kafkaWriter KafkaWriter
	now         func() time.Time
}

// NewRatesService creates a new service instance. Cache and kafkaWriter may be nil.
func NewRatesService(
	source RateSource,
	writer RateWriter,
	cache SnapshotInvalidator,
	kafkaWriter KafkaWriter,
) *RatesService {
	return &RatesService{
		source:      source,
		writer:      writer,
		cache:       cache,
		kafkaWriter: kafkaWriter,
		now:         time.Now,
	}
}

// parseRow validates one raw feed row against the freshness cutoff. It either
// yields a storable observation or a skip reason; a skip never fails a batch.
// Rows without a date get fallback (the fetch date) as their effective date.
func parseRow(row models.RateRow, cutoff, fallback time.Time) (models.RateObservation, string) {
	code := strings.ToUpper(strings.TrimSpace(row.Currency))
	if code == "" {
		return models.RateObservation{}, "missing currency code"
	}

	rate, err := strconv.ParseFloat(strings.TrimSpace(row.Value), 64)
	if err != nil {
		return models.RateObservation{}, "missing or non-numeric rate"
	}
	if rate <= 0 {
		return models.RateObservation{}, "non-positive rate"
	}

	date := fallback
	if row.TimePeriod != "" {
		date, err = time.Parse("2006-01-02", row.TimePeriod)
		if err != nil {
			return models.RateObservation{}, "unparseable date"
		}
	}
	if date.Before(cutoff) {
		return models.RateObservation{}, "stale observation"
	}

	return models.RateObservation{
		CurrencyCode: code,
		Date:         date,
		Rate:         rate,
		Source:       models.SourceECB,
	}, ""
}

// Refresh runs one full fetch-and-store cycle: fetch the feed, validate and
// filter each row (cutoff = today - 1 day in the processing timezone), upsert
// the survivors. Row-level problems are counted, never fatal; a fetch or
// storage error fails the whole cycle, which is safe to retry because the
// upserts are idempotent. Returns the stored/skipped counts and the maximum
// stored date, which is the reference date of the refreshed snapshot.
func (s *RatesService) Refresh(ctx context.Context) (stored, skipped int, referenceDate time.Time, err error) {
	rows, err := s.source.FetchDaily(ctx)
	if err != nil {
		logger.Log.Errorw("failed to fetch rate feed", "error", err)
		return 0, 0, time.Time{}, err
	}

	today := s.now()
	midnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	cutoff := midnight.AddDate(0, 0, -1)

	for _, row := range rows {
		obs, skipReason := parseRow(row, cutoff, midnight)
		if skipReason != "" {
			skipped++
			logger.Log.Debugw("skipping feed row",
				"currency", row.Currency,
				"time_period", row.TimePeriod,
				"reason", skipReason,
			)
			continue
		}

		if err := s.writer.Save(ctx, obs); err != nil {
			logger.Log.Errorw("failed to store rate observation",
				"currency", obs.CurrencyCode,
				"date", obs.Date,
				"error", err,
			)
			return 0, 0, time.Time{}, err
		}
		stored++
		if obs.Date.After(referenceDate) {
			referenceDate = obs.Date
		}
	}

	logger.Log.Infow("rate feed refreshed",
		"stored", stored,
		"skipped", skipped,
		"reference_date", referenceDate,
	)

	if stored > 0 && s.cache != nil {
		if err := s.cache.DeleteLatest(ctx); err != nil {
			logger.Log.Errorw("failed to invalidate cached snapshot", "error", err)
		}
	}

	s.publishRefresh(ctx, stored, skipped, referenceDate)

	return stored, skipped, referenceDate, nil
}

// publishRefresh publishes a refresh event to Kafka. Best effort only.
func (s *RatesService) publishRefresh(ctx context.Context, stored, skipped int, referenceDate time.Time) {
	if s.kafkaWriter == nil {
		logger.Log.Debugw("Kafka writer not configured, skipping publishing")
		return
	}

	event := models.RatesRefreshedEvent{
		EventID:   uuid.NewString(),
		Timestamp: s.now().Unix(),
		Stored:    stored,
		Skipped:   skipped,
		Source:    models.SourceECB,
	}
	if !referenceDate.IsZero() {
		event.ReferenceDate = referenceDate.Format("2006-01-02")
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("failed to marshal refresh event", "event_id", event.EventID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.EventID),
		Value: data,
	}

	if err := s.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("failed to publish refresh event", "event_id", event.EventID, "error", err)
	} else {
		logger.Log.Infow("refresh event published", "event_id", event.EventID, "stored", stored)
	}
}
