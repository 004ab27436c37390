package config

import (
	"time"

	"github.com/joho/godotenv"
)

// Config collects everything the process reads at startup. The scrape
// target and interval are environment-driven rather than compiled in.
type Config struct {
	RunAddr     string
	DatabaseDSN string
	LogLevel    string

	TargetURL     string
	ScrapeEvery   time.Duration
	FetchTimeout  time.Duration
	NameSelector  string
	PriceSelector string

	MetricsEnabled bool
	MetricsToken   string
}

// Load reads .env if one exists, then the environment. A missing .env is
// not an error. An empty DATABASE_URI selects the in-memory store.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		RunAddr:     getEnv("RUN_ADDRESS", ":8080"),
		DatabaseDSN: getEnv("DATABASE_URI", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		TargetURL:     getEnv("TARGET_URL", "https://www.maxidom.ru/catalog/kran-buksy/"),
		ScrapeEvery:   getEnvDuration("SCRAPE_INTERVAL", 12*time.Hour),
		FetchTimeout:  getEnvDuration("FETCH_TIMEOUT", 30*time.Second),
		NameSelector:  getEnv("NAME_SELECTOR", ""),
		PriceSelector: getEnv("PRICE_SELECTOR", ""),

		MetricsEnabled: getEnvBool("METRICS_ENABLED", false),
		MetricsToken:   getEnv("METRICS_TOKEN", ""),
	}
}
