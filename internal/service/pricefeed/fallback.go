package pricefeed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"GoldPredict/internal/domain/models"
	drepo "GoldPredict/internal/domain/repository"
	"GoldPredict/pkg/logger"
)

// configurable is implemented by sources that need credentials.
type configurable interface {
	Configured() bool
}

type Option func(*Fallback)

// WithTimeout bounds each source call.
func WithTimeout(d time.Duration) Option {
	return func(f *Fallback) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithMock appends a last-resort synthetic source.
func WithMock(m drepo.PriceSource) Option {
	return func(f *Fallback) { f.mock = m }
}

// Fallback asks each source in order and returns the first quote. Sources
// without credentials are skipped.
type Fallback struct {
	sources []drepo.PriceSource
	mock    drepo.PriceSource
	timeout time.Duration
	log     *logger.Logger
}

func NewFallback(log *logger.Logger, sources []drepo.PriceSource, opts ...Option) *Fallback {
	f := &Fallback{
		sources: sources,
		timeout: 10 * time.Second,
		log:     log.With(logger.String("component", "pricefeed")),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fallback) Name() string { return "fallback" }

func (f *Fallback) FetchCurrent(ctx context.Context) (models.Quote, error) {
	var errs []error
	for _, src := range f.sources {
		if c, ok := src.(configurable); ok && !c.Configured() {
			f.log.Debug("price source not configured, skipping", logger.String("source", src.Name()))
			continue
		}
		q, err := f.fetch(ctx, src)
		if err == nil {
			return q, nil
		}
		if ctx.Err() != nil {
			return models.Quote{}, ctx.Err()
		}
		f.log.Warn("price source failed", logger.String("source", src.Name()), logger.Error(err))
		errs = append(errs, err)
	}

	if f.mock != nil {
		f.log.Warn("all price sources unavailable, using mock data")
		return f.mock.FetchCurrent(ctx)
	}
	if len(errs) == 0 {
		return models.Quote{}, fmt.Errorf("%w: no price source configured", models.ErrPriceUnavailable)
	}
	return models.Quote{}, fmt.Errorf("%w: %w", models.ErrPriceUnavailable, errors.Join(errs...))
}

func (f *Fallback) fetch(ctx context.Context, src drepo.PriceSource) (models.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	return src.FetchCurrent(ctx)
}
