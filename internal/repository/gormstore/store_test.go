package gormstore

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"GoldPredict/internal/domain/models"
	"GoldPredict/internal/domain/repository"
)

var testDay = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	sqldb, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqldb}), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet sql expectations: %v", err)
		}
	})
	return New(db), mock
}

func settleResult() models.SettlementResult {
	return models.SettlementResult{
		ResultPrice:       decimal.RequireFromString("2045.50"),
		ResultVolatility:  decimal.RequireFromString("0.73"),
		DirectionCorrect:  true,
		VolatilityCorrect: true,
		PointsEarned:      15,
		SettledAt:         testDay.Add(21 * time.Hour),
	}
}

var settleSQL = `UPDATE "predictions" SET .*"status"=.* WHERE \(?id = \$\d+ AND status = \$\d+\)?`

func TestSettleOnlyTouchesPendingRow(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(settleSQL).WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.Predictions.Settle(context.Background(), "p1", settleResult()); err != nil {
		t.Fatalf("Settle: %v", err)
	}
}

func TestSettleDistinguishesSettledFromMissing(t *testing.T) {
	countSQL := regexp.QuoteMeta(`SELECT count(*) FROM "predictions" WHERE id = `)
	tests := []struct {
		name  string
		count int
		want  error
	}{
		{"already settled", 1, models.ErrAlreadySettled},
		{"missing", 0, models.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStore(t)
			mock.ExpectExec(settleSQL).WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectQuery(countSQL).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(tt.count))

			if err := s.Predictions.Settle(context.Background(), "p1", settleResult()); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestApplyOutcomeIncrementsInPlace(t *testing.T) {
	accuracy := regexp.QuoteMeta(`"accuracy"=ROUND((correct_predictions + `) + `\$\d+` +
		regexp.QuoteMeta(`) * 100.0 / (total_predictions + 1), 2)`)
	tests := []struct {
		name   string
		o      models.Outcome
		streak string
	}{
		{"win extends streak", models.Outcome{OverallCorrect: true, PointsEarned: 15, Date: testDay}, regexp.QuoteMeta(`"consecutive_wins"=consecutive_wins + 1`)},
		{"partial credit resets streak", models.Outcome{PointsEarned: 10, Date: testDay}, `"consecutive_wins"=\$\d+`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStore(t)
			mock.ExpectExec(`UPDATE "user_stats" SET ` + accuracy + `,` + tt.streak +
				`,.*"points"=points \+ \$\d+.*"total_predictions"=total_predictions \+ 1.* WHERE user_id = \$\d+`).
				WillReturnResult(sqlmock.NewResult(0, 1))

			if err := s.Stats.ApplyOutcome(context.Background(), "u1", tt.o); err != nil {
				t.Fatalf("ApplyOutcome: %v", err)
			}
		})
	}
}

func TestApplyOutcomeWithoutRow(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(`UPDATE "user_stats" SET `).WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Stats.ApplyOutcome(context.Background(), "ghost", models.Outcome{Date: testDay})
	if !errors.Is(err, models.ErrUserNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestSetCloseIfAbsentIsConditional(t *testing.T) {
	closeSQL := `UPDATE "gold_prices" SET "close"=\$1,"updated_at"=\$2 WHERE \(?date = \$3 AND close IS NULL\)?`
	countSQL := regexp.QuoteMeta(`SELECT count(*) FROM "gold_prices" WHERE date = `)
	value := decimal.RequireFromString("2045.50")

	t.Run("sets missing close", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(closeSQL).WillReturnResult(sqlmock.NewResult(0, 1))
		set, err := s.Prices.SetCloseIfAbsent(context.Background(), testDay, value)
		if err != nil || !set {
			t.Fatalf("set=%v err=%v", set, err)
		}
	})
	t.Run("keeps existing close", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(closeSQL).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(countSQL).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		set, err := s.Prices.SetCloseIfAbsent(context.Background(), testDay, value)
		if err != nil || set {
			t.Fatalf("set=%v err=%v", set, err)
		}
	})
	t.Run("no record", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(closeSQL).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(countSQL).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		if _, err := s.Prices.SetCloseIfAbsent(context.Background(), testDay, value); !errors.Is(err, models.ErrNoPriceRecord) {
			t.Fatalf("err = %v", err)
		}
	})
}

func TestPendingDatesDistinctAscending(t *testing.T) {
	s, mock := newMockStore(t)
	day2 := testDay.AddDate(0, 0, 1)
	mock.ExpectQuery(`SELECT DISTINCT "date" FROM "predictions" WHERE \(?status = \$1 AND date <= \$2\)? ORDER BY date`).
		WithArgs(string(models.StatusPending), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"date"}).
			AddRow(testDay.Add(5 * time.Hour)).
			AddRow(day2))

	dates, err := s.Predictions.PendingDates(context.Background(), day2.Add(22*time.Hour))
	if err != nil {
		t.Fatalf("PendingDates: %v", err)
	}
	if len(dates) != 2 || !dates[0].Equal(testDay) || !dates[1].Equal(day2) {
		t.Fatalf("dates = %v", dates)
	}
}

func TestWithinTxRollsBackFailedUnit(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec(settleSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "user_stats" SET `).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx repository.TxStores) error {
		if err := tx.Predictions.Settle(ctx, "p1", settleResult()); err != nil {
			return err
		}
		return tx.Stats.ApplyOutcome(ctx, "u1", models.Outcome{OverallCorrect: true, PointsEarned: 15, Date: testDay})
	})
	if !errors.Is(err, models.ErrUserNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestWithinTxCommitsBothWrites(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec(settleSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "user_stats" SET `).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx repository.TxStores) error {
		if err := tx.Predictions.Settle(ctx, "p1", settleResult()); err != nil {
			return err
		}
		return tx.Stats.ApplyOutcome(ctx, "u1", models.Outcome{OverallCorrect: true, PointsEarned: 15, Date: testDay})
	})
	if err != nil {
		t.Fatalf("WithinTx: %v", err)
	}
}

func TestSetUsernameUpdatesExistingRow(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(`UPDATE "user_stats" SET "updated_at"=\$1,"username"=\$2 WHERE user_id = \$3`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "user_stats" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "wallet_address", "username", "points"}).
			AddRow("u1", "0xu1", "goldbug", 30))

	st, err := s.Stats.SetUsername(context.Background(), "u1", "goldbug")
	if err != nil {
		t.Fatalf("SetUsername: %v", err)
	}
	if st.Username == nil || *st.Username != "goldbug" || st.Points != 30 {
		t.Fatalf("stats = %+v", st)
	}
}
