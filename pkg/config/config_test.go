package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimal = `
environment: test
feed:
  symbols: ["SUIUSDT", "SOLUSDT"]
`

func TestLoadAppliesDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, minimal))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Feed.BTCSymbol != "BTCUSDT" {
		t.Fatalf("btc_symbol default missing: %q", c.Feed.BTCSymbol)
	}
	if c.Store.Retention != 24*time.Hour || c.Store.Warmup != time.Hour {
		t.Fatalf("store defaults wrong: %v/%v", c.Store.Retention, c.Store.Warmup)
	}
	if c.Strategy.Cooldown != 30*time.Minute {
		t.Fatalf("cooldown default wrong: %v", c.Strategy.Cooldown)
	}
	if c.Strategy.BTCMinDrop1h != -0.5 || c.Strategy.UnderperfStrong != -2.0 {
		t.Fatalf("threshold defaults wrong: %v/%v", c.Strategy.BTCMinDrop1h, c.Strategy.UnderperfStrong)
	}
	if c.Server.Port != 8080 {
		t.Fatalf("server port default wrong: %d", c.Server.Port)
	}
}

func TestLoadRejectsMissingSymbols(t *testing.T) {
	if _, err := Load(writeConfig(t, "environment: test\n")); err == nil {
		t.Fatalf("empty symbols must fail validation")
	}
}

func TestLoadRejectsPositiveDropThreshold(t *testing.T) {
	body := minimal + `
strategy:
  btc_min_drop_1h: 0.5
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("positive drop threshold must fail validation")
	}
}

func TestLoadRejectsWarmupBeyondRetention(t *testing.T) {
	body := minimal + `
store:
  retention: 2h
  warmup: 3h
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("warmup beyond retention must fail validation")
	}
}

func TestLoadRejectsStabilizationMinBelowTwo(t *testing.T) {
	body := minimal + `
strategy:
  stabilization_min_samples: 1
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("stabilization_min_samples below 2 must fail validation")
	}
}

func TestLoadRejectsEnabledTelegramWithoutToken(t *testing.T) {
	body := minimal + `
alerts:
  telegram:
    enabled: true
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("telegram without credentials must fail validation")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("SYMBOLS", "APTUSDT")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	body := minimal + `
alerts:
  telegram:
    enabled: true
`
	c, err := LoadWithEnv(writeConfig(t, body))
	if err != nil {
		t.Fatalf("load with env: %v", err)
	}
	if len(c.Feed.Symbols) != 1 || c.Feed.Symbols[0] != "APTUSDT" {
		t.Fatalf("SYMBOLS override not applied: %v", c.Feed.Symbols)
	}
	if c.Alerts.Telegram.BotToken != "tok" || c.Alerts.Telegram.ChatID != "42" {
		t.Fatalf("telegram env overrides not applied")
	}
}
