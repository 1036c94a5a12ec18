// Package pricefeed chains price sources and provides a synthetic source
// for development.
package pricefeed

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"GoldPredict/internal/domain/models"
)

const MockName = "mock"

// Mock generates quotes around a base price. Prices carry two decimals.
type Mock struct {
	mu   sync.Mutex
	rng  *rand.Rand
	base float64
	now  func() time.Time
}

// NewMock returns a generator around 2040 USD/oz. A zero seed picks a random one.
func NewMock(seed uint64) *Mock {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Mock{
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		base: 2040,
		now:  time.Now,
	}
}

func (m *Mock) Name() string { return MockName }

func (m *Mock) FetchCurrent(context.Context) (models.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	price := round2(m.base + m.rng.Float64()*20 - 10)
	open := round2(price - m.rng.Float64()*5)
	high := round2(price + m.rng.Float64()*5)
	low := round2(price - m.rng.Float64()*5)
	prev := round2(price - (m.rng.Float64()*10 - 5))

	p := decimal.NewFromFloat(price)
	pc := decimal.NewFromFloat(prev)
	change := p.Sub(pc)
	return models.Quote{
		Current:       p,
		Open:          decimal.NewFromFloat(open),
		High:          decimal.NewFromFloat(high),
		Low:           decimal.NewFromFloat(low),
		PreviousClose: pc,
		Change:        change,
		ChangePercent: change.Div(pc).Mul(decimal.NewFromInt(100)).Round(2),
		Timestamp:     m.now().UTC(),
		Source:        MockName,
	}, nil
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
