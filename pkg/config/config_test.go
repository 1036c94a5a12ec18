package config

import (
	"strings"
	"testing"
	"time"
)

const sample = `
environment: test
store:
  backend: memory
market:
  close_hour: 21
  close_minute: 30
  timezone: America/New_York
`

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte("environment: dev\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Market.CloseHour != 20 || c.Market.CloseMinute != 0 {
		t.Fatalf("default close = %d:%d, want 20:00", c.Market.CloseHour, c.Market.CloseMinute)
	}
	if c.Scheduler.IngestInterval != 15*time.Minute || c.Scheduler.SettlementInterval != time.Hour {
		t.Fatalf("unexpected default intervals %v %v", c.Scheduler.IngestInterval, c.Scheduler.SettlementInterval)
	}
	if c.Market.RequireNextDayRecord == nil || !*c.Market.RequireNextDayRecord {
		t.Fatalf("require_next_day_record should default to true")
	}
	if c.Leaderboard.AccuracyMinPredictions != 5 || c.Leaderboard.DefaultLimit != 50 {
		t.Fatalf("unexpected leaderboard defaults %+v", c.Leaderboard)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	c, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	err = c.ApplyEnv(env(map[string]string{
		"MARKET_CLOSE_HOUR":         "19",
		"MARKET_CLOSE_MINUTE":       "45",
		"PRICE_UPDATE_INTERVAL":     "5m",
		"SETTLEMENT_CHECK_INTERVAL": "30m",
		"KAFKA_BROKERS":             "k1:9092,k2:9092",
		"GOLD_API_KEY":              "secret",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if c.Market.CloseHour != 19 || c.Market.CloseMinute != 45 {
		t.Fatalf("close = %d:%d, want 19:45", c.Market.CloseHour, c.Market.CloseMinute)
	}
	if c.Scheduler.IngestInterval != 5*time.Minute || c.Scheduler.SettlementInterval != 30*time.Minute {
		t.Fatalf("intervals not overridden")
	}
	if !c.Kafka.Enabled || len(c.Kafka.Brokers) != 2 {
		t.Fatalf("kafka brokers not applied: %+v", c.Kafka.Brokers)
	}
	if c.PriceSource.GoldAPI.APIKey != "secret" {
		t.Fatalf("gold api key not applied")
	}
	if c.Location().String() != "America/New_York" {
		t.Fatalf("location = %s", c.Location())
	}
}

func TestApplyEnvRejectsBadNumbers(t *testing.T) {
	c, _ := Parse([]byte(sample))
	if err := c.ApplyEnv(env(map[string]string{"MARKET_CLOSE_HOUR": "eight"})); err == nil {
		t.Fatalf("expected error for non-numeric hour")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"missing env", "store:\n  backend: memory\n", "environment"},
		{"bad backend", "environment: x\nstore:\n  backend: mongo\n", "store.backend"},
		{"postgres without dsn", "environment: x\nstore:\n  backend: postgres\n", "store.dsn"},
		{"bad hour", "environment: x\nmarket:\n  close_hour: 24\n", "close_hour"},
		{"bad minute", "environment: x\nmarket:\n  close_hour: 20\n  close_minute: 60\n", "close_minute"},
		{"bad tz", "environment: x\nmarket:\n  timezone: Mars/Olympus\n", "timezone"},
	}
	for _, tc := range cases {
		c, err := Parse([]byte(tc.yaml))
		if err != nil {
			t.Fatalf("%s: Parse: %v", tc.name, err)
		}
		err = c.Validate()
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: Validate() = %v, want error containing %q", tc.name, err, tc.want)
		}
	}
}
