package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures the full runtime configuration for an imageflow service.
type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	Storage  StorageConfig
	Cache    CacheConfig
	Delivery DeliveryConfig
	Kafka    KafkaConfig
	Tracing  TracingConfig
	Metrics  MetricsConfig
}

type AppConfig struct {
	Name        string `env:"APP_NAME" envDefault:"imageflow-reader"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	Version     string `env:"APP_VERSION" envDefault:"0.1.0"`
	LogLevel    string `env:"APP_LOG_LEVEL" envDefault:"info"`
}

type HTTPConfig struct {
	Addr         string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
}

type StorageConfig struct {
	Provider   string        `env:"STORAGE_PROVIDER" envDefault:"minio"`
	Endpoint   string        `env:"STORAGE_ENDPOINT" envDefault:"localhost:9000"`
	Region     string        `env:"STORAGE_REGION" envDefault:"us-east-1"`
	Bucket     string        `env:"STORAGE_BUCKET" envDefault:"imageflow-processed"`
	MetaPrefix string        `env:"STORAGE_META_PREFIX" envDefault:"meta/"`
	AccessKey  string        `env:"STORAGE_ACCESS_KEY" envDefault:"minioadmin"`
	SecretKey  string        `env:"STORAGE_SECRET_KEY" envDefault:"minioadmin"`
	UseSSL     bool          `env:"STORAGE_USE_SSL" envDefault:"false"`
	OpTimeout  time.Duration `env:"STORAGE_OP_TIMEOUT" envDefault:"3s"`
}

type CacheConfig struct {
	Enabled     bool          `env:"CACHE_ENABLED" envDefault:"false"`
	RedisAddr   string        `env:"CACHE_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass   string        `env:"CACHE_REDIS_PASSWORD" envDefault:""`
	RedisDB     int           `env:"CACHE_REDIS_DB" envDefault:"0"`
	OpTimeout   time.Duration `env:"CACHE_OP_TIMEOUT" envDefault:"300ms"`
	PositiveTTL time.Duration `env:"CACHE_POSITIVE_TTL" envDefault:"5m"`
	NegativeTTL time.Duration `env:"CACHE_NEGATIVE_TTL" envDefault:"30s"`
}

type DeliveryConfig struct {
	// Mode selects the resolver strategy: "signed" or "cdn".
	Mode       string        `env:"DELIVERY_MODE" envDefault:"signed"`
	CDNDomain  string        `env:"DELIVERY_CDN_DOMAIN" envDefault:""`
	SignExpiry time.Duration `env:"DELIVERY_SIGN_EXPIRY" envDefault:"5m"`
}

type KafkaConfig struct {
	Brokers        []string      `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	ProcessedTopic string        `env:"KAFKA_PROCESSED_TOPIC" envDefault:"imageflow.processed"`
	GroupID        string        `env:"KAFKA_GROUP_ID" envDefault:"imageflow-registrar"`
	MinBytes       int           `env:"KAFKA_MIN_BYTES" envDefault:"1"`
	MaxBytes       int           `env:"KAFKA_MAX_BYTES" envDefault:"10485760"`
	CommitInterval time.Duration `env:"KAFKA_COMMIT_INTERVAL" envDefault:"1s"`
}

type TracingConfig struct {
	Endpoint     string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	Insecure     bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	SampleRatio  float64 `env:"OTEL_TRACES_SAMPLER_RATIO" envDefault:"1.0"`
	ResourceAttr string  `env:"OTEL_RESOURCE_ATTRIBUTES" envDefault:"service.namespace=imageflow"`
}

type MetricsConfig struct {
	Addr string `env:"METRICS_ADDR" envDefault:":9102"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
