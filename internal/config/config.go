package config

import (
	"net/url"
	"time"

	env "github.com/caarlos0/env/v11"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Daemon           bool          `env:"DAEMON" envDefault:"true"`
	RunFrequency     time.Duration `env:"RUN_FREQUENCY" envDefault:"15m"`
	ExecutionTimeout time.Duration `env:"EXECUTION_TIMEOUT" envDefault:"10m"`

	SentryDsn string        `env:"SENTRY_DSN"`
	JsonLogs  bool          `env:"JSON_LOGS" envDefault:"false"`
	LogLevel  zapcore.Level `env:"LOG_LEVEL" envDefault:"info"`

	RevenueCat struct {
		ApiKey             string        `env:"API_KEY,required,notEmpty"`
		ProjectId          string        `env:"PROJECT_ID,required,notEmpty"`
		BaseUrl            *url.URL      `env:"BASE_URL" envDefault:"https://api.revenuecat.com"`
		Platform           string        `env:"PLATFORM" envDefault:"go"`
		Timeout            time.Duration `env:"TIMEOUT" envDefault:"30s"`
		RateLimitPerMinute int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"480"`
		MaxRetries         int           `env:"MAX_RETRIES" envDefault:"3"`
		BreakerFailures    uint32        `env:"BREAKER_FAILURES" envDefault:"5"`
		BreakerTimeout     time.Duration `env:"BREAKER_TIMEOUT" envDefault:"30s"`
		CatalogCacheSize   int           `env:"CATALOG_CACHE_SIZE" envDefault:"256"`
		CatalogCacheTtl    time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"10m"`
		PageSize           int           `env:"PAGE_SIZE" envDefault:"100"`
	} `envPrefix:"REVENUECAT_"`

	Webhook struct {
		Enabled       bool   `env:"ENABLED" envDefault:"true"`
		ListenAddr    string `env:"LISTEN_ADDR" envDefault:":8080"`
		Authorization string `env:"AUTHORIZATION"`
	} `envPrefix:"WEBHOOK_"`

	DatabaseUri string `env:"DATABASE_URI,required,notEmpty"`

	MinCustomersThreshold int `env:"MIN_CUSTOMERS_THRESHOLD"`
	MaxRemovalsThreshold  int `env:"MAX_REMOVALS_THRESHOLD" envDefault:"100"`
}

func LoadFromEnv() (Config, error) {
	var config Config
	err := env.Parse(&config)
	return config, err
}
