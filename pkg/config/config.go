package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Logging     struct {
		Level      string `yaml:"level" default:"info"`
		Format     string `yaml:"format" default:"json"`
		Output     string `yaml:"output" default:"stdout"`
		TimeFormat string `yaml:"time_format"`
	} `yaml:"logging"`
	Server struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Feed struct {
		WebSocketURL   string        `yaml:"websocket_url" default:"wss://stream.binance.com:9443/ws"`
		BTCSymbol      string        `yaml:"btc_symbol" default:"BTCUSDT"`
		Symbols        []string      `yaml:"symbols"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay" default:"5s"`
		PingInterval   time.Duration `yaml:"ping_interval" default:"30s"`
	} `yaml:"feed"`
	Store struct {
		Retention time.Duration `yaml:"retention" default:"24h"`
		Warmup    time.Duration `yaml:"warmup" default:"1h"`
	} `yaml:"store"`
	Strategy struct {
		EvalInterval            time.Duration `yaml:"eval_interval" default:"10s"`
		Lookback                time.Duration `yaml:"lookback" default:"1h"`
		BTCMinDrop1h            float64       `yaml:"btc_min_drop_1h" default:"-0.5"`
		StabilizationWindow     time.Duration `yaml:"stabilization_window" default:"5m"`
		StabilizationMinSamples int           `yaml:"stabilization_min_samples" default:"5"`
		UnderperfThreshold      float64       `yaml:"underperf_threshold" default:"-1.0"`
		UnderperfStrong         float64       `yaml:"underperf_strong" default:"-2.0"`
		RatioRSIPeriod          int           `yaml:"ratio_rsi_period" default:"14"`
		RatioRSIOversold        float64       `yaml:"ratio_rsi_oversold" default:"35"`
		RatioLowWindow          time.Duration `yaml:"ratio_low_window" default:"24h"`
		RatioLowTolerancePct    float64       `yaml:"ratio_low_tolerance_pct" default:"1.0"`
		Cooldown                time.Duration `yaml:"cooldown" default:"30m"`
	} `yaml:"strategy"`
	Funding struct {
		Enabled      bool          `yaml:"enabled" default:"true"`
		BaseURL      string        `yaml:"base_url" default:"https://fapi.binance.com"`
		PollInterval time.Duration `yaml:"poll_interval" default:"2m"`
		Freshness    time.Duration `yaml:"freshness" default:"10m"`
		RateMin      float64       `yaml:"rate_min" default:"-0.08"`
		SqueezeLow   float64       `yaml:"squeeze_low" default:"-0.08"`
		SqueezeHigh  float64       `yaml:"squeeze_high" default:"-0.03"`
		Crowded      float64       `yaml:"crowded" default:"0.05"`
	} `yaml:"funding"`
	Liquidation struct {
		Enabled      bool          `yaml:"enabled"`
		BaseURL      string        `yaml:"base_url" default:"https://open-api.coinglass.com"`
		APIKey       string        `yaml:"api_key"`
		PollInterval time.Duration `yaml:"poll_interval" default:"5m"`
		ProximityPct float64       `yaml:"proximity_pct" default:"3.0"`
	} `yaml:"liquidation"`
	Levels struct {
		EntryDiscountPct float64 `yaml:"entry_discount_pct" default:"0.3"`
		StopBufferPct    float64 `yaml:"stop_buffer_pct" default:"0.5"`
		Target1Pct       float64 `yaml:"target1_pct" default:"1.0"`
		Target2Pct       float64 `yaml:"target2_pct" default:"1.5"`
	} `yaml:"levels"`
	Alerts struct {
		Timeout  time.Duration `yaml:"timeout" default:"10s"`
		Telegram struct {
			Enabled  bool   `yaml:"enabled"`
			BotToken string `yaml:"bot_token"`
			ChatID   string `yaml:"chat_id"`
		} `yaml:"telegram"`
		Discord struct {
			Enabled    bool   `yaml:"enabled"`
			WebhookURL string `yaml:"webhook_url"`
		} `yaml:"discord"`
		Kafka struct {
			Enabled      bool          `yaml:"enabled"`
			Brokers      []string      `yaml:"brokers"`
			Topic        string        `yaml:"topic" default:"lag-signals"`
			RequiredAcks int           `yaml:"required_acks" default:"-1"`
			Compression  string        `yaml:"compression" default:"gzip"`
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		} `yaml:"kafka"`
		RedisQueue struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Key      string `yaml:"key" default:"lag:signals"`
			MaxSize  int64  `yaml:"max_size" default:"1000"`
		} `yaml:"redis_queue"`
	} `yaml:"alerts"`
	History struct {
		Enabled    bool   `yaml:"enabled"`
		Table      string `yaml:"table" default:"lag_signals"`
		ClickHouse struct {
			Host         string        `yaml:"host"`
			Port         int           `yaml:"port" default:"9000"`
			Database     string        `yaml:"database" default:"default"`
			User         string        `yaml:"user" default:"default"`
			Password     string        `yaml:"password"`
			DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			AsyncInsert  bool          `yaml:"async_insert"`
		} `yaml:"clickhouse"`
	} `yaml:"history"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
// Secrets are expected from the environment in deployed setups.
func LoadWithEnv(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Feed.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Alerts.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Alerts.Telegram.ChatID = v
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		c.Alerts.Discord.WebhookURL = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Alerts.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Alerts.RedisQueue.Addr = v
	}
	if v := os.Getenv("COINGLASS_API_KEY"); v != "" {
		c.Liquidation.APIKey = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.History.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.History.ClickHouse.Password = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Feed.Symbols) == 0 {
		return fmt.Errorf("feed.symbols cannot be empty")
	}
	if c.Feed.BTCSymbol == "" {
		return fmt.Errorf("feed.btc_symbol is required")
	}
	for _, s := range c.Feed.Symbols {
		if s == c.Feed.BTCSymbol {
			return fmt.Errorf("feed.symbols must not contain the reference symbol %s", c.Feed.BTCSymbol)
		}
	}
	if c.Store.Warmup > c.Store.Retention {
		return fmt.Errorf("store.warmup cannot exceed store.retention")
	}
	if c.Strategy.Lookback > c.Store.Retention {
		return fmt.Errorf("strategy.lookback cannot exceed store.retention")
	}
	if c.Strategy.RatioLowWindow > c.Store.Retention {
		return fmt.Errorf("strategy.ratio_low_window cannot exceed store.retention")
	}
	if c.Strategy.BTCMinDrop1h >= 0 {
		return fmt.Errorf("strategy.btc_min_drop_1h must be negative")
	}
	if c.Strategy.StabilizationMinSamples < 2 {
		return fmt.Errorf("strategy.stabilization_min_samples must be at least 2")
	}
	if c.Strategy.UnderperfThreshold >= 0 || c.Strategy.UnderperfStrong >= 0 {
		return fmt.Errorf("underperformance thresholds must be negative")
	}
	if c.Strategy.UnderperfStrong > c.Strategy.UnderperfThreshold {
		return fmt.Errorf("strategy.underperf_strong must be at or below strategy.underperf_threshold")
	}
	if c.Strategy.Cooldown <= 0 {
		return fmt.Errorf("strategy.cooldown must be positive")
	}
	if c.Alerts.Telegram.Enabled && (c.Alerts.Telegram.BotToken == "" || c.Alerts.Telegram.ChatID == "") {
		return fmt.Errorf("telegram alerts enabled but bot_token or chat_id missing")
	}
	if c.Alerts.Discord.Enabled && c.Alerts.Discord.WebhookURL == "" {
		return fmt.Errorf("discord alerts enabled but webhook_url missing")
	}
	if c.Alerts.Kafka.Enabled && len(c.Alerts.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka alerts enabled but brokers missing")
	}
	if c.Liquidation.Enabled && c.Liquidation.APIKey == "" {
		return fmt.Errorf("liquidation polling enabled but api_key missing")
	}
	if c.History.Enabled && c.History.ClickHouse.Host == "" {
		return fmt.Errorf("history enabled but clickhouse.host missing")
	}
	return nil
}
