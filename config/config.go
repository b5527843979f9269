package config

import "github.com/caarlos0/env/v6"

type Config struct {
	// Port the API server listens on
	Port string `env:"PORT" envDefault:"5250"`

	// Maps provider configuration
	Maps struct {
		// API key handed to the map client and used for places and
		// directions lookups. An empty key degrades comparison
		// sessions to static mode.
		APIKey string `env:"MAPS_API_KEY"`

		// Timeout for places and directions requests (in seconds)
		RequestTimeout int `env:"MAPS_REQUEST_TIMEOUT" envDefault:"10"`

		// Search radius for category searches (in meters)
		CategoryRadius int `env:"MAPS_CATEGORY_RADIUS" envDefault:"2000"`

		// Search radius for free-text searches (in meters)
		KeywordRadius int `env:"MAPS_KEYWORD_RADIUS" envDefault:"5000"`

		// How long places results stay cached (in seconds)
		PlacesCacheTTL int `env:"MAPS_PLACES_CACHE_TTL" envDefault:"3600"`
	}

	// Comparison session configuration
	Sessions struct {
		// Sessions idle longer than this are swept (in seconds)
		IdleTTL int `env:"SESSION_IDLE_TTL" envDefault:"1800"`

		// How often the session sweeper runs (in seconds)
		SweepInterval int `env:"SESSION_SWEEP_INTERVAL" envDefault:"300"`
	}

	// BatchProcessing configuration for listing ingest
	BatchProcessing struct {
		// Maximum number of listings to accumulate before processing
		MaxBatchSize int `env:"BATCH_MAX_SIZE" envDefault:"100"`

		// Number of concurrent batch processors
		ProcessorCount int `env:"BATCH_PROCESSOR_COUNT" envDefault:"2"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"BATCH_RETRY_DELAY" envDefault:"5"`
	}

	// RecentSearches configuration
	RecentSearches struct {
		// Maximum number of recent search terms to keep
		Cap int `env:"RECENT_SEARCHES_CAP" envDefault:"10"`

		// File the store persists to
		Path string `env:"RECENT_SEARCHES_PATH" envDefault:"data/recent_searches.json"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
