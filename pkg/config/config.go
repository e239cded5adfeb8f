package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable consumed here.
	EnvPrefix = "souk"

	AppEnvDev     = "development"
	AppEnvStaging = "staging"
	AppEnvProd    = "production"

	StorageDriverSQLite = "sqlite"
	StorageDriverRedis  = "redis"
	StorageDriverMemory = "memory"
)

type Config struct {
	App      AppConfig
	API      APIConfig
	Storage  StorageConfig
	Redis    RedisConfig
	Security SecurityConfig
	Fees     FeesConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.API.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SOUK_APP_ENV" default:"development"`
	LogLevel     string `envconfig:"SOUK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SOUK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type APIConfig struct {
	BaseURL   string        `envconfig:"SOUK_API_BASE_URL" required:"true"`
	Timeout   time.Duration `envconfig:"SOUK_API_TIMEOUT" default:"30s"`
	UserAgent string        `envconfig:"SOUK_API_USER_AGENT" default:"souk-go"`
}

func (a APIConfig) validate() error {
	parsed, err := url.Parse(a.BaseURL)
	if err != nil {
		return fmt.Errorf("parsing api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("api base url must be http or https, got %q", a.BaseURL)
	}
	return nil
}

type StorageConfig struct {
	Driver    string `envconfig:"SOUK_STORAGE_DRIVER" default:"sqlite"`
	Path      string `envconfig:"SOUK_STORAGE_PATH" default:"souk.db"`
	Namespace string `envconfig:"SOUK_STORAGE_NAMESPACE" default:"souk"`
}

func (s StorageConfig) validate() error {
	switch s.Driver {
	case StorageDriverSQLite, StorageDriverRedis, StorageDriverMemory:
		return nil
	default:
		return fmt.Errorf("unknown storage driver %q", s.Driver)
	}
}

type RedisConfig struct {
	URL          string        `envconfig:"SOUK_REDIS_URL"`
	Address      string        `envconfig:"SOUK_REDIS_ADDR"`
	Password     string        `envconfig:"SOUK_REDIS_PASSWORD"`
	DB           int           `envconfig:"SOUK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SOUK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SOUK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SOUK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SOUK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SOUK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SecurityConfig drives the sealed storage used for tokens and profile data.
type SecurityConfig struct {
	SealPassphrase   string `envconfig:"SOUK_SEAL_PASSPHRASE"`
	ArgonMemoryKB    int    `envconfig:"SOUK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int    `envconfig:"SOUK_ARGON_TIME" default:"3"`
	ArgonParallelism int    `envconfig:"SOUK_ARGON_PARALLELISM" default:"2"`
}

type FeesConfig struct {
	TransferPercent string `envconfig:"SOUK_FEE_TRANSFER_PERCENT" default:"1"`
	BillPercent     string `envconfig:"SOUK_FEE_BILL_PERCENT" default:"1"`
}
