package config

import "github.com/caarlos0/env/v6"

type Config struct {
	Server struct {
		Port int `env:"PORT" envDefault:"5250"`
	}

	Database struct {
		Path string `env:"DATABASE_PATH" envDefault:"database/compscope.db"`
	}

	// Listings provider configuration
	Listings struct {
		// Base URL of the listings provider; defaults to a local placeholder
		BaseURL string `env:"LISTINGS_BASE_URL" envDefault:"http://localhost:8081"`

		// Maximum candidates fetched per search
		FetchLimit int `env:"LISTINGS_FETCH_LIMIT" envDefault:"50"`

		// Radius in miles for comparable linking
		CompRadiusMiles float64 `env:"COMP_RADIUS_MILES" envDefault:"3"`

		// Wider radius in miles for trade-area market context
		MarketRadiusMiles float64 `env:"MARKET_RADIUS_MILES" envDefault:"5"`
	}

	// Sync pipeline configuration
	Sync struct {
		// Number of concurrent sync workers
		WorkerCount int `env:"SYNC_WORKER_COUNT" envDefault:"2"`

		// Maximum number of retries for a failed sync job
		MaxRetries int `env:"SYNC_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"SYNC_RETRY_DELAY" envDefault:"5"`

		// Buffer size of the in-memory job queue
		QueueSize int `env:"SYNC_QUEUE_SIZE" envDefault:"100"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
