package config

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"fieldnorm/pkg/client"
	kafka_config "fieldnorm/pkg/kafka/config"
	"fieldnorm/pkg/logger"
)

var (
	mongoURIRegex   = regexp.MustCompile(`^mongodb(\+srv)?://`)
	credentialRegex = regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	redisURLRegex   = regexp.MustCompile(`^rediss?://`)
	redisAuthRegex  = regexp.MustCompile(`(rediss?://)[^@/]*@`)
)

type Config struct {
	MongoURI            string
	MongoDatabaseName   string
	MongoCollectionName string
	MongoConnTimeout    time.Duration
	MongoQueryTimeout   time.Duration

	// RedisURL, when set, backs the idempotency store with Redis.
	RedisURL string

	Port      string
	LogLevel  string
	LogFormat string

	IngestSigningSecret string

	RateLimitRequests int
	RateLimitWindow   time.Duration
	// TrustProxyHeaders keys rate limiting on X-Forwarded-For. Enable only
	// behind a proxy that overwrites the header.
	TrustProxyHeaders bool

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	MetricsEnabled bool

	Kafka *kafka_config.Config

	Log    *logger.Logger
	Client *client.Client
}

// Load reads the service configuration from the environment and exits the
// process when it is invalid.
func Load(serviceName string) *Config {
	cfg, err := New(serviceName)
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// New is Load without the exit. The returned Config carries a usable logger
// even when validation fails.
func New(serviceName string) (*Config, error) {
	cfg := &Config{
		MongoURI:            getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName:   getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoCollectionName: getEnvStr(EnvMongoCollectionName, DefaultMongoCollectionName),
		MongoConnTimeout:    getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),
		MongoQueryTimeout:   getEnvDuration(EnvMongoQueryTimeout, DefaultMongoQueryTimeout),

		RedisURL: getEnvStr(EnvRedisURL, ""),

		Port:      getEnvStr(EnvPort, DefaultPort),
		LogLevel:  getEnvStr(EnvLogLevel, DefaultLogLevel),
		LogFormat: getEnvStr(EnvLogFormat, DefaultLogFormat),

		IngestSigningSecret: getEnvStr(EnvIngestSigningSecret, ""),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),
		TrustProxyHeaders: getEnvBool(EnvTrustProxyHeaders, DefaultTrustProxyHeaders),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		MetricsEnabled: getEnvBool(EnvMetricsEnabled, DefaultMetricsEnabled),

		Client: client.NewClient(),
	}

	cfg.Log = logger.New(logger.Config{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		AddSource: true,
		Service:   serviceName,
	})

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		return cfg, err
	}
	cfg.Kafka = kafkaCfg

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SetMongo connects the shared Mongo client and exits on failure.
func (cfg *Config) SetMongo() {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	defer cancel()

	if err := cfg.Client.SetMongo(ctx, cfg.MongoURI); err != nil {
		cfg.Log.Fatal("Failed to connect to MongoDB",
			"error", err,
			"uri", redactMongoURI(cfg.MongoURI),
		)
	}
	cfg.Log.Info("Successfully connected to MongoDB")
}

// SetRedis connects the optional Redis client and exits on failure. It is a
// no-op when RedisURL is empty.
func (cfg *Config) SetRedis() {
	if cfg.RedisURL == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	defer cancel()

	if err := cfg.Client.SetRedis(ctx, cfg.RedisURL); err != nil {
		cfg.Log.Fatal("Failed to connect to Redis",
			"error", err,
			"url", redactRedisURL(cfg.RedisURL),
		)
	}
	cfg.Log.Info("Successfully connected to Redis")
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !mongoURIRegex.MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}

	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}
	if cfg.MongoCollectionName == "" {
		errors = append(errors, "MongoCollectionName cannot be empty")
	}
	if cfg.RedisURL != "" && !redisURLRegex.MatchString(cfg.RedisURL) {
		errors = append(errors, fmt.Sprintf("RedisURL must start with 'redis://' or 'rediss://', got: %s", redactRedisURL(cfg.RedisURL)))
	}

	switch cfg.LogLevel {
	case logger.DEBUG, logger.INFO, logger.WARN, logger.ERROR:
	default:
		errors = append(errors, fmt.Sprintf("LogLevel must be one of debug, info, warn, error, got: %s", cfg.LogLevel))
	}
	if cfg.LogFormat != logger.JSON && cfg.LogFormat != logger.TEXT {
		errors = append(errors, fmt.Sprintf("LogFormat must be json or text, got: %s", cfg.LogFormat))
	}

	if cfg.MongoConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}
	if cfg.MongoQueryTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoQueryTimeout must be positive, got: %s", cfg.MongoQueryTimeout))
	}
	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_collection", cfg.MongoCollectionName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"mongo_query_timeout", cfg.MongoQueryTimeout,
		"redis_url", redactRedisURL(cfg.RedisURL),
		"version", Version,
		"port", cfg.Port,
		"log_level", cfg.LogLevel,
		"log_format", cfg.LogFormat,
		"ingest_secret_set", cfg.IngestSigningSecret != "",
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"trust_proxy_headers", cfg.TrustProxyHeaders,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"metrics_enabled", cfg.MetricsEnabled,
	)
	if cfg.Kafka != nil {
		cfg.Kafka.LogConfiguration(cfg.Log)
	}
}

func redactMongoURI(uri string) string {
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func redactRedisURL(url string) string {
	return redisAuthRegex.ReplaceAllString(url, "${1}***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// GracefulShutdown disconnects every client opened through cfg.
func (cfg *Config) GracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := cfg.Client.GracefulShutdown(ctx); err != nil {
		cfg.Log.Error("Failed to disconnect clients", "error", err)
		return
	}
	cfg.Log.Info("Clients disconnected")
}
