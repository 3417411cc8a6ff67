//go:build wireinject
// +build wireinject

package di

import (
	"LagScalper/pkg/config"
	"LagScalper/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,
		ProvideHTTPClient,

		// Core state
		ProvideStore,
		ProvideCooldownGate,

		// Feeds
		ProvideMarketStream,
		ProvideFundingPoller,
		ProvideFundingSource,
		ProvideLiquidationPoller,
		ProvideLiquidationSource,

		// Persistence and alert destinations
		ProvideClickHouseClient,
		ProvideSignalHistory,
		ProvideKafkaProducer,
		ProvideNotifiers,
		ProvideDispatcher,
		ProvideSignalSink,

		// Use cases
		ProvideTickCollector,
		ProvideOrchestrator,

		// HTTP and application server
		ProvideStatusHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
