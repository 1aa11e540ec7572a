package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	Port        int
	DatabaseURL string

	FeedPageSize      int
	FeedMaxPageSize   int
	BreakdownMinVotes int

	GraphAPIURL string
	GraphAPIKey string

	NotifyWebhookURL string

	LedgerRelayURL string
	LedgerContract string

	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
}

func Default() Config {
	return Config{
		Port:                     8080,
		FeedPageSize:             20,
		FeedMaxPageSize:          50,
		BreakdownMinVotes:        10,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("PORT"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.Port = value
		}
	}
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if raw := os.Getenv("FEED_PAGE_SIZE"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.FeedPageSize = value
		}
	}
	if raw := os.Getenv("FEED_MAX_PAGE_SIZE"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.FeedMaxPageSize = value
		}
	}
	if raw := os.Getenv("BREAKDOWN_MIN_VOTES"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.BreakdownMinVotes = value
		}
	}
	if raw := os.Getenv("GRAPH_API_URL"); raw != "" {
		cfg.GraphAPIURL = raw
	}
	if raw := os.Getenv("GRAPH_API_KEY"); raw != "" {
		cfg.GraphAPIKey = raw
	}
	if raw := os.Getenv("NOTIFY_WEBHOOK_URL"); raw != "" {
		cfg.NotifyWebhookURL = raw
	}
	if raw := os.Getenv("LEDGER_RELAY_URL"); raw != "" {
		cfg.LedgerRelayURL = raw
	}
	if raw := os.Getenv("LEDGER_CONTRACT"); raw != "" {
		cfg.LedgerContract = raw
	}
	if raw := os.Getenv("DB_MAX_OPEN_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxOpenConns = value
		}
	}
	if raw := os.Getenv("DB_MAX_IDLE_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxIdleConns = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_LIFETIME_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxLifetimeSeconds = value
		}
	}
	return cfg
}
