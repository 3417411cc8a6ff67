package di

import (
	"context"
	"fmt"
	"time"

	"LagScalper/internal/alert"
	drepo "LagScalper/internal/domain/repository"
	"LagScalper/internal/handler/api"
	internalrepo "LagScalper/internal/repository"
	"LagScalper/internal/service/binance"
	"LagScalper/internal/service/funding"
	"LagScalper/internal/service/liquidation"
	"LagScalper/internal/store"
	"LagScalper/internal/strategy"
	"LagScalper/internal/usecase"
	pkgch "LagScalper/pkg/clickhouse"
	"LagScalper/pkg/config"
	xhttp "LagScalper/pkg/http"
	pkgkafka "LagScalper/pkg/kafka"
	"LagScalper/pkg/logger"
	"LagScalper/pkg/metrics"
	"LagScalper/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		TimeFormat: cfg.Logging.TimeFormat,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() drepo.Metrics {
	return metrics.New()
}

// ProvideStore creates the rolling price store.
func ProvideStore(cfg *config.Config) *store.RollingStore {
	return store.New(cfg.Store.Retention, cfg.Store.Warmup)
}

// ProvideCooldownGate creates the per-symbol alert cooldown.
func ProvideCooldownGate(cfg *config.Config) *strategy.CooldownGate {
	return strategy.NewCooldownGate(cfg.Strategy.Cooldown)
}

// ProvideHTTPClient creates the shared outbound HTTP client.
func ProvideHTTPClient() *xhttp.Client {
	return xhttp.NewClient(xhttp.WithTimeout(15 * time.Second))
}

// ProvideMarketStream creates the Binance websocket stream covering the alt
// symbols plus the BTC reference.
func ProvideMarketStream(cfg *config.Config, log *logger.Logger) drepo.MarketStream {
	symbols := make([]string, 0, len(cfg.Feed.Symbols)+1)
	symbols = append(symbols, cfg.Feed.BTCSymbol)
	symbols = append(symbols, cfg.Feed.Symbols...)
	return binance.New(
		cfg.Feed.WebSocketURL,
		symbols,
		cfg.Feed.ReconnectDelay,
		cfg.Feed.PingInterval,
		log,
	)
}

// ProvideTickCollector creates the tick collector use case.
func ProvideTickCollector(
	stream drepo.MarketStream,
	st *store.RollingStore,
	m drepo.Metrics,
	log *logger.Logger,
) *usecase.TickCollector {
	return usecase.NewTickCollector(stream, st, m, log)
}

// ProvideFundingPoller creates the funding rate poller. Always constructed;
// when polling is disabled the poller simply never runs and the gate passes
// through as neutral.
func ProvideFundingPoller(cfg *config.Config, client *xhttp.Client, m drepo.Metrics, log *logger.Logger) *funding.Poller {
	return funding.New(
		cfg.Funding.BaseURL,
		cfg.Feed.Symbols,
		cfg.Funding.PollInterval,
		client,
		m,
		log,
	)
}

// ProvideFundingSource adapts the poller to the domain interface.
func ProvideFundingSource(p *funding.Poller) drepo.FundingSource { return p }

// ProvideLiquidationPoller creates the liquidation poller, or nil when
// annotations are disabled.
func ProvideLiquidationPoller(cfg *config.Config, client *xhttp.Client, st *store.RollingStore, m drepo.Metrics, log *logger.Logger) *liquidation.Poller {
	if !cfg.Liquidation.Enabled {
		return nil
	}
	return liquidation.New(
		cfg.Liquidation.BaseURL,
		cfg.Liquidation.APIKey,
		cfg.Feed.Symbols,
		cfg.Liquidation.PollInterval,
		client,
		st,
		m,
		log,
	)
}

// ProvideLiquidationSource adapts the poller to the domain interface,
// keeping a disabled poller as a truly nil interface.
func ProvideLiquidationSource(p *liquidation.Poller) drepo.LiquidationSource {
	if p == nil {
		return nil
	}
	return p
}

// ProvideClickHouseClient creates a ClickHouse client for signal history,
// or nil when history is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	ch := cfg.History.ClickHouse
	client, err := pkgch.NewClient(
		pkgch.WithHost(ch.Host),
		pkgch.WithPort(ch.Port),
		pkgch.WithDatabase(ch.Database),
		pkgch.WithCredentials(ch.User, ch.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithAsyncInsert(ch.AsyncInsert, false),
		pkgch.WithTimeouts(ch.DialTimeout, ch.ReadTimeout, ch.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.SchemaStatements(cfg.History.Table)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideSignalHistory creates the signal history store, or nil.
func ProvideSignalHistory(chClient *pkgch.Client, cfg *config.Config) *internalrepo.SignalHistory {
	if chClient == nil {
		return nil
	}
	return internalrepo.NewSignalHistory(chClient.DB(), cfg.History.Table)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when the Kafka
// destination is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Alerts.Kafka.Enabled {
		return nil, nil
	}
	k := cfg.Alerts.Kafka
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(k.Brokers),
		pkgkafka.WithCompression(k.Compression),
		pkgkafka.WithRequiredAcks(k.RequiredAcks),
		pkgkafka.WithMaxAttempts(k.MaxAttempts),
		pkgkafka.WithTimeouts(k.WriteTimeout, k.WriteTimeout),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideNotifiers assembles the enabled alert destinations.
func ProvideNotifiers(
	cfg *config.Config,
	client *xhttp.Client,
	producer *pkgkafka.Producer,
	history *internalrepo.SignalHistory,
) []alert.Notifier {
	var notifiers []alert.Notifier
	if cfg.Alerts.Telegram.Enabled {
		notifiers = append(notifiers, alert.NewTelegram(alert.TelegramConfig{
			BotToken: cfg.Alerts.Telegram.BotToken,
			ChatID:   cfg.Alerts.Telegram.ChatID,
		}, client))
	}
	if cfg.Alerts.Discord.Enabled {
		notifiers = append(notifiers, alert.NewDiscord(alert.DiscordConfig{
			WebhookURL: cfg.Alerts.Discord.WebhookURL,
		}, client))
	}
	if producer != nil {
		notifiers = append(notifiers, alert.NewKafka(alert.KafkaConfig{
			Topic: cfg.Alerts.Kafka.Topic,
		}, producer))
	}
	if cfg.Alerts.RedisQueue.Enabled {
		rq := cfg.Alerts.RedisQueue
		rdb := redis.NewClient(&redis.Options{
			Addr:     rq.Addr,
			Password: rq.Password,
			DB:       rq.DB,
		})
		notifiers = append(notifiers, alert.NewRedisQueue(alert.RedisQueueConfig{
			Key:     rq.Key,
			MaxSize: rq.MaxSize,
		}, rdb))
	}
	if history != nil {
		notifiers = append(notifiers, history)
	}
	return notifiers
}

// ProvideDispatcher creates the alert fan-out.
func ProvideDispatcher(notifiers []alert.Notifier, cfg *config.Config, m drepo.Metrics, log *logger.Logger) *alert.Dispatcher {
	return alert.NewDispatcher(notifiers, cfg.Alerts.Timeout, m, log)
}

// ProvideSignalSink adapts the dispatcher to the domain interface.
func ProvideSignalSink(d *alert.Dispatcher) drepo.SignalSink { return d }

// ProvideOrchestrator creates the signal orchestrator.
func ProvideOrchestrator(
	st *store.RollingStore,
	fundingSrc drepo.FundingSource,
	liqSrc drepo.LiquidationSource,
	sink drepo.SignalSink,
	gate *strategy.CooldownGate,
	m drepo.Metrics,
	log *logger.Logger,
	cfg *config.Config,
) *usecase.SignalOrchestrator {
	s := cfg.Strategy
	return usecase.NewSignalOrchestrator(st, fundingSrc, liqSrc, sink, gate, m, log, usecase.Options{
		Symbols:   cfg.Feed.Symbols,
		BTCSymbol: cfg.Feed.BTCSymbol,
		Interval:  s.EvalInterval,
		Params: strategy.Params{
			Lookback:                s.Lookback,
			BTCMinDrop1h:            s.BTCMinDrop1h,
			StabilizationWindow:     s.StabilizationWindow,
			StabilizationMinSamples: s.StabilizationMinSamples,
			UnderperfThreshold:      s.UnderperfThreshold,
			UnderperfStrong:         s.UnderperfStrong,
			RatioRSIPeriod:          s.RatioRSIPeriod,
			RatioRSIOversold:        s.RatioRSIOversold,
			RatioLowWindow:          s.RatioLowWindow,
			RatioLowTolerancePct:    s.RatioLowTolerancePct,
			FundingRateMin:          cfg.Funding.RateMin,
			FundingFreshness:        cfg.Funding.Freshness,
			FundingSqueezeLow:       cfg.Funding.SqueezeLow,
			FundingSqueezeHigh:      cfg.Funding.SqueezeHigh,
			FundingCrowded:          cfg.Funding.Crowded,
		},
		Levels: usecase.Levels{
			EntryDiscountPct: cfg.Levels.EntryDiscountPct,
			StopBufferPct:    cfg.Levels.StopBufferPct,
			Target1Pct:       cfg.Levels.Target1Pct,
			Target2Pct:       cfg.Levels.Target2Pct,
		},
		LiqProximityPct: cfg.Liquidation.ProximityPct,
	})
}

// ProvideStatusHandler creates the HTTP handler.
func ProvideStatusHandler(
	log *logger.Logger,
	collector *usecase.TickCollector,
	orchestrator *usecase.SignalOrchestrator,
	st *store.RollingStore,
	gate *strategy.CooldownGate,
	history *internalrepo.SignalHistory,
) xhttp.Handler {
	return api.NewStatusHandler(log, collector, orchestrator, st, gate, history)
}

// producerPublisher adapts the Kafka producer to the log collector's
// publisher interface.
type producerPublisher struct {
	p *pkgkafka.Producer
}

func (pp producerPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return pp.p.Publish(ctx, topic, nil, payload)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	collector *usecase.TickCollector,
	orchestrator *usecase.SignalOrchestrator,
	fundingPoll *funding.Poller,
	liqPoll *liquidation.Poller,
	dispatcher *alert.Dispatcher,
	producer *pkgkafka.Producer,
	chClient *pkgch.Client,
	handler xhttp.Handler,
) *server.App {
	// Aggregate repeated error logs onto the Kafka bus when it is available.
	if producer != nil {
		log.AddCollector(&logger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Alerts.Kafka.Topic + "-errors",
			Publisher:      producerPublisher{p: producer},
		})
	}
	return server.New(cfg, log, collector, orchestrator, fundingPoll, liqPoll, dispatcher, chClient, handler)
}
