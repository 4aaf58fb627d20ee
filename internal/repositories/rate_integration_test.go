package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-exchange-rates/internal/models"
	"github.com/stretchr/testify/assert"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRatePostgresContainer(t *testing.T) (*sqlx.DB, func()) {
	t.Helper()

	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_PASSWORD": "password", "POSTGRES_DB": "testdb", "POSTGRES_USER": "postgres"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp"),
	}

	container, err := tc.GenericContainer(context.Background(), tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	assert.NoError(t, err)

	host, _ := container.Host(context.Background())
	port, _ := container.MappedPort(context.Background(), "5432")

	dsn := fmt.Sprintf("postgres://postgres:password@%s:%d/testdb?sslmode=disable", host, port.Int())

	var db *sqlx.DB
	for i := 0; i < 10; i++ {
		db, err = sqlx.Connect("pgx", dsn)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	assert.NoError(t, err)

	schema := `
	CREATE TABLE IF NOT EXISTS exchange_rates (
		currency_code VARCHAR(3) NOT NULL,
		date DATE NOT NULL,
		rate NUMERIC NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'active',
		source VARCHAR(32) NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
		PRIMARY KEY (currency_code, date)
	);
	`
	_, err = db.Exec(schema)
	assert.NoError(t, err)

	teardown := func() {
		db.Close()
		container.Terminate(context.Background())
	}

	return db, teardown
}

func TestRateRepositories_UpsertAndSnapshots(t *testing.T) {
	db, teardown := setupRatePostgresContainer(t)
	defer teardown()

	writeRepo := NewRateWriteRepository(db, nil)
	readRepo := NewRateReadRepository(db)
	ctx := context.Background()

	day1 := date("2024-01-01")
	day2 := date("2024-01-02")

	for _, obs := range []models.RateObservation{
		{CurrencyCode: "USD", Date: day1, Rate: 1.09, Source: "ECB"},
		{CurrencyCode: "USD", Date: day2, Rate: 1.10, Source: "ECB"},
		{CurrencyCode: "GBP", Date: day2, Rate: 0.85, Source: "ECB"},
	} {
		assert.NoError(t, writeRepo.Save(ctx, obs))
	}

	t.Run("upsert replaces the rate for an existing key", func(t *testing.T) {
		err := writeRepo.Save(ctx, models.RateObservation{CurrencyCode: "USD", Date: day2, Rate: 1.11, Source: "ECB"})
		assert.NoError(t, err)

		var count int
		assert.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM exchange_rates WHERE currency_code = 'USD' AND date = $1", day2))
		assert.Equal(t, 1, count)

		snapshot, err := readRepo.GetSnapshot(ctx, day2)
		assert.NoError(t, err)
		assert.Equal(t, 1.11, snapshot.Rates["USD"])
	})

	t.Run("latest snapshot resolves the maximum date", func(t *testing.T) {
		snapshot, err := readRepo.GetLatestSnapshot(ctx)
		assert.NoError(t, err)
		assert.Equal(t, "2024-01-02", snapshot.ReferenceDate.Format("2006-01-02"))
		assert.Len(t, snapshot.Rates, 2)
	})

	t.Run("snapshot for a date with no rows is not found", func(t *testing.T) {
		_, err := readRepo.GetSnapshot(ctx, date("2020-06-15"))
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}
