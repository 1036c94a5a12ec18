// Package memory is a process-local implementation of the domain stores. It
// backs the "memory" store backend and the use case tests.
package memory

import (
	"context"
	"sync"
	"time"

	"GoldPredict/internal/domain/models"
	"GoldPredict/internal/domain/repository"
)

type state struct {
	mu          sync.Mutex
	prices      map[time.Time]*models.PriceRecord
	predictions map[string]*models.Prediction
	byUserDate  map[string]string
	stats       map[string]*models.UserStats
	now         func() time.Time
}

// guard locks the state unless the caller already holds it inside WithinTx.
func (s *state) guard(locked bool) func() {
	if locked {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type Store struct {
	st          *state
	Prices      *PriceStore
	Predictions *PredictionStore
	Stats       *StatsStore
}

func New() *Store {
	st := &state{
		prices:      make(map[time.Time]*models.PriceRecord),
		predictions: make(map[string]*models.Prediction),
		byUserDate:  make(map[string]string),
		stats:       make(map[string]*models.UserStats),
		now:         func() time.Time { return time.Now().UTC() },
	}
	return &Store{
		st:          st,
		Prices:      &PriceStore{st: st},
		Predictions: &PredictionStore{st: st},
		Stats:       &StatsStore{st: st},
	}
}

// WithinTx holds the store lock for the whole of fn and restores predictions
// and stats if fn fails.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.TxStores) error) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	predSnap := make(map[string]*models.Prediction, len(s.st.predictions))
	for id, p := range s.st.predictions {
		predSnap[id] = clonePrediction(p)
	}
	statsSnap := make(map[string]*models.UserStats, len(s.st.stats))
	for id, st := range s.st.stats {
		statsSnap[id] = cloneStats(st)
	}
	idxSnap := make(map[string]string, len(s.st.byUserDate))
	for k, v := range s.st.byUserDate {
		idxSnap[k] = v
	}

	err := fn(ctx, repository.TxStores{
		Predictions: &PredictionStore{st: s.st, locked: true},
		Stats:       &StatsStore{st: s.st, locked: true},
	})
	if err != nil {
		s.st.predictions = predSnap
		s.st.stats = statsSnap
		s.st.byUserDate = idxSnap
	}
	return err
}

func clonePrediction(p *models.Prediction) *models.Prediction {
	cp := *p
	if p.Result != nil {
		r := *p.Result
		cp.Result = &r
	}
	return &cp
}

func cloneStats(s *models.UserStats) *models.UserStats {
	cp := *s
	if s.Username != nil {
		u := *s.Username
		cp.Username = &u
	}
	if s.LastPredictionDate != nil {
		d := *s.LastPredictionDate
		cp.LastPredictionDate = &d
	}
	return &cp
}

func clonePrice(r *models.PriceRecord) *models.PriceRecord {
	cp := *r
	if r.Close != nil {
		c := *r.Close
		cp.Close = &c
	}
	if r.PreviousClose != nil {
		pc := *r.PreviousClose
		cp.PreviousClose = &pc
	}
	return &cp
}

var (
	_ repository.PriceStore      = (*PriceStore)(nil)
	_ repository.PredictionStore = (*PredictionStore)(nil)
	_ repository.UserStatsStore  = (*StatsStore)(nil)
	_ repository.RankQuery       = (*StatsStore)(nil)
	_ repository.Transactor      = (*Store)(nil)
)
