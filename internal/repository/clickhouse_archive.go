package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"GoldPredict/internal/domain/models"
	"GoldPredict/internal/domain/repository"
)

// PriceSnapshotSchema creates the archive table. ReplacingMergeTree collapses
// duplicate (ts, source) rows from retried inserts.
func PriceSnapshotSchema(table string) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	ts DateTime64(3, 'UTC'),
	trading_date Date,
	source LowCardinality(String),
	price Decimal(14, 4),
	open Decimal(14, 4),
	high Decimal(14, 4),
	low Decimal(14, 4),
	previous_close Nullable(Decimal(14, 4)),
	volatility Decimal(10, 4)
) ENGINE = ReplacingMergeTree
PARTITION BY toYYYYMM(trading_date)
ORDER BY (trading_date, ts, source)`, table),
	}
}

// ClickHouseArchive implements PriceArchive. Every ingested quote lands here
// together with the day's aggregate as it stood after the upsert.
type ClickHouseArchive struct {
	db    *sql.DB
	table string
}

// NewClickHouseArchive creates the snapshot archive over an open pool.
func NewClickHouseArchive(db *sql.DB, table string) repository.PriceArchive {
	return &ClickHouseArchive{db: db, table: table}
}

func (a *ClickHouseArchive) Append(ctx context.Context, q models.Quote, rec *models.PriceRecord) error {
	ts := q.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	var prevClose interface{}
	if rec.PreviousClose != nil {
		prevClose = rec.PreviousClose.String()
	}

	stmt := fmt.Sprintf(
		"INSERT INTO %s (ts, trading_date, source, price, open, high, low, previous_close, volatility) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		a.table)
	_, err := a.db.ExecContext(ctx, stmt,
		ts.UTC(),
		rec.Date,
		q.Source,
		q.Current.String(),
		rec.Open.String(),
		rec.High.String(),
		rec.Low.String(),
		prevClose,
		rec.Volatility.Round(4).String(),
	)
	return err
}
