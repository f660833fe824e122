package config

import "github.com/caarlos0/env/v6"

type Config struct {
	// Server configuration
	Server struct {
		// HTTP listen port
		Port string `env:"SERVER_PORT" envDefault:"5250"`

		// Allowed CORS origins, comma separated
		CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost"`
	}

	// Data configuration
	Data struct {
		// Directory holding the catalog database and region mapping
		Dir string `env:"DATA_DIR" envDefault:"backend_data"`

		// SQLite file with the property catalog and valuation history
		DatabasePath string `env:"DATABASE_PATH" envDefault:"backend_data/homeyield.db"`

		// JSON file mapping region name to zip codes
		RegionsPath string `env:"REGIONS_PATH" envDefault:"backend_data/regions.json"`
	}

	// MarketData configuration
	MarketData struct {
		// Directory for per-ticker series cache files
		CacheDir string `env:"MARKET_CACHE_DIR" envDefault:"backend_data/timeseries"`

		// Cached series older than this many days are refreshed
		MaxDataAgeDays int `env:"MARKET_MAX_DATA_AGE_DAYS" envDefault:"1"`

		// Cron expression for the background refresh
		RefreshSchedule string `env:"MARKET_REFRESH_SCHEDULE" envDefault:"30 5 * * *"`

		// HTTP timeout for series downloads (in seconds)
		FetchTimeout int `env:"MARKET_FETCH_TIMEOUT" envDefault:"30"`
	}

	// Risk computation configuration
	Risk struct {
		// Number of concurrent per-property risk workers
		WorkerCount int `env:"RISK_WORKER_COUNT" envDefault:"4"`

		// Upper bound on a single request's risk computation (in seconds)
		ComputeBudget int `env:"RISK_COMPUTE_BUDGET" envDefault:"20"`

		// Confidence level for historical VaR
		VaRConfidence float64 `env:"RISK_VAR_CONFIDENCE" envDefault:"0.95"`

		// Number of (ticker, financing) risk tables kept in memory
		CacheSize int `env:"RISK_CACHE_SIZE" envDefault:"32"`
	}

	// Ingest configuration
	Ingest struct {
		// Maximum number of listings per upsert batch
		MaxBatchSize int `env:"INGEST_MAX_BATCH_SIZE" envDefault:"100"`

		// Number of concurrent batch processors
		ProcessorCount int `env:"INGEST_PROCESSOR_COUNT" envDefault:"2"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"INGEST_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"INGEST_RETRY_DELAY" envDefault:"5"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
