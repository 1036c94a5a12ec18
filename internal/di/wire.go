//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"GoldPredict/pkg/config"
	"GoldPredict/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,

		// Infrastructure
		ProvideStores,
		ProvideCache,
		ProvideEventPublisher,
		ProvidePriceArchive,
		ProvidePriceSource,

		// Use cases
		ProvideMarketClock,
		ProvideLeaderboard,
		ProvideSettlementEngine,
		ProvidePriceIngestor,
		ProvidePredictionService,
		ProvideProfileService,
		ProvidePriceQuery,

		// Delivery
		ProvideAuthenticator,
		ProvideRateLimiter,
		ProvideHandlers,
		ProvideHTTPServer,
		ProvideScheduler,
		ProvideApp,
	)
	return nil, nil, nil
}
