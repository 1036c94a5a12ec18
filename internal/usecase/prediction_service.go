package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"GoldPredict/internal/domain/models"
	drepo "GoldPredict/internal/domain/repository"
	"GoldPredict/pkg/logger"
	"GoldPredict/pkg/util"
)

// SubmitInput is a prediction for today. The base price is always the latest
// recorded price at submission time.
type SubmitInput struct {
	UserID          string
	WalletAddress   string
	Direction       models.Direction
	VolatilityGuess models.VolatilityBand
}

type PredictionService struct {
	predictions drepo.PredictionStore
	stats       drepo.UserStatsStore
	prices      drepo.PriceStore
	log         *logger.Logger
	now         func() time.Time
	newID       func() string
}

func NewPredictionService(
	predictions drepo.PredictionStore,
	stats drepo.UserStatsStore,
	prices drepo.PriceStore,
	log *logger.Logger,
) *PredictionService {
	return &PredictionService{
		predictions: predictions,
		stats:       stats,
		prices:      prices,
		log:         log.With(logger.String("component", "predictions")),
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
}

// Submit records the user's prediction for today. A second submission for
// the same day returns ErrDuplicatePrediction.
func (s *PredictionService) Submit(ctx context.Context, in SubmitInput) (*models.Prediction, error) {
	if !in.Direction.Valid() {
		return nil, models.ErrInvalidDirection
	}
	if !in.VolatilityGuess.Valid() {
		return nil, models.ErrInvalidVolatility
	}

	now := s.now()
	today := models.DayOf(now)

	if _, err := s.predictions.GetForUserDate(ctx, in.UserID, today); err == nil {
		return nil, models.ErrDuplicatePrediction
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("check existing prediction: %w", err)
	}

	latest, err := s.prices.GetLatest(ctx)
	if err != nil {
		if errors.Is(err, models.ErrNoPriceRecord) {
			return nil, models.ErrPriceUnavailable
		}
		return nil, fmt.Errorf("load latest price: %w", err)
	}
	base := latest.Current

	wallet := util.NormalizeWallet(in.WalletAddress)
	if _, err := s.stats.Ensure(ctx, in.UserID, wallet); err != nil {
		return nil, fmt.Errorf("ensure user stats: %w", err)
	}

	p := &models.Prediction{
		ID:              s.newID(),
		UserID:          in.UserID,
		WalletAddress:   wallet,
		Date:            today,
		Direction:       in.Direction,
		VolatilityGuess: in.VolatilityGuess,
		BasePrice:       base,
		Status:          models.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.predictions.Create(ctx, p); err != nil {
		if errors.Is(err, models.ErrDuplicatePrediction) {
			return nil, err
		}
		return nil, fmt.Errorf("create prediction: %w", err)
	}

	s.log.Info("prediction submitted",
		logger.String("user_id", p.UserID),
		logger.String("direction", string(p.Direction)),
		logger.String("volatility", string(p.VolatilityGuess)),
		logger.Decimal("base_price", p.BasePrice),
	)
	return p, nil
}

// Today returns the user's prediction for the current date or ErrNotFound.
func (s *PredictionService) Today(ctx context.Context, userID string) (*models.Prediction, error) {
	return s.predictions.GetForUserDate(ctx, userID, models.DayOf(s.now()))
}

func (s *PredictionService) List(ctx context.Context, userID string, page, pageSize int) (models.PredictionPage, error) {
	page = max(page, 1)
	pageSize = util.ClampInt(pageSize, 1, 100)

	items, total, err := s.predictions.ListByUser(ctx, userID, (page-1)*pageSize, pageSize)
	if err != nil {
		return models.PredictionPage{}, fmt.Errorf("list predictions: %w", err)
	}
	if items == nil {
		items = []models.Prediction{}
	}
	return models.PredictionPage{Items: items, Page: page, PageSize: pageSize, Total: total}, nil
}

// Get returns one of the user's predictions. Another user's prediction reads
// as ErrNotFound.
func (s *PredictionService) Get(ctx context.Context, userID, id string) (*models.Prediction, error) {
	p, err := s.predictions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, models.ErrNotFound
	}
	return p, nil
}
