package memory

import (
	"context"
	"sort"
	"time"

	"GoldPredict/internal/domain/models"
	"GoldPredict/pkg/util"
)

type PredictionStore struct {
	st     *state
	locked bool
}

func userDateKey(userID string, date time.Time) string {
	return userID + "|" + util.FormatDate(models.DayOf(date))
}

func (s *PredictionStore) Create(_ context.Context, p *models.Prediction) error {
	defer s.st.guard(s.locked)()

	key := userDateKey(p.UserID, p.Date)
	if _, exists := s.st.byUserDate[key]; exists {
		return models.ErrDuplicatePrediction
	}
	cp := clonePrediction(p)
	cp.Date = models.DayOf(p.Date)
	s.st.predictions[p.ID] = cp
	s.st.byUserDate[key] = p.ID
	return nil
}

func (s *PredictionStore) GetByID(_ context.Context, id string) (*models.Prediction, error) {
	defer s.st.guard(s.locked)()
	p, ok := s.st.predictions[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return clonePrediction(p), nil
}

func (s *PredictionStore) GetForUserDate(_ context.Context, userID string, date time.Time) (*models.Prediction, error) {
	defer s.st.guard(s.locked)()
	id, ok := s.st.byUserDate[userDateKey(userID, date)]
	if !ok {
		return nil, models.ErrNotFound
	}
	return clonePrediction(s.st.predictions[id]), nil
}

func (s *PredictionStore) ListByUser(_ context.Context, userID string, offset, limit int) ([]models.Prediction, int64, error) {
	defer s.st.guard(s.locked)()
	var all []models.Prediction
	for _, p := range s.st.predictions {
		if p.UserID == userID {
			all = append(all, *clonePrediction(p))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Date.After(all[j].Date) })

	total := int64(len(all))
	if offset >= len(all) {
		return []models.Prediction{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (s *PredictionStore) GetPendingForDate(_ context.Context, date time.Time) ([]models.Prediction, error) {
	defer s.st.guard(s.locked)()
	day := models.DayOf(date)
	var out []models.Prediction
	for _, p := range s.st.predictions {
		if p.IsPending() && p.Date.Equal(day) {
			out = append(out, *clonePrediction(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *PredictionStore) PendingDates(_ context.Context, through time.Time) ([]time.Time, error) {
	defer s.st.guard(s.locked)()
	limit := models.DayOf(through)
	seen := make(map[time.Time]struct{})
	for _, p := range s.st.predictions {
		if p.IsPending() && !p.Date.After(limit) {
			seen[p.Date] = struct{}{}
		}
	}
	out := make([]time.Time, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

func (s *PredictionStore) Settle(_ context.Context, id string, r models.SettlementResult) error {
	defer s.st.guard(s.locked)()
	p, ok := s.st.predictions[id]
	if !ok {
		return models.ErrNotFound
	}
	if !p.IsPending() {
		return models.ErrAlreadySettled
	}
	res := r
	p.Status = models.StatusSettled
	p.Result = &res
	p.UpdatedAt = r.SettledAt
	return nil
}
