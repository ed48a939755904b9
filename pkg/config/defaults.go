package config

import "time"

const (
	DefaultMongoURI            = "mongodb://localhost:27017"
	DefaultMongoDatabaseName   = "fieldnorm"
	DefaultMongoCollectionName = "records"
	DefaultMongoConnTimeout    = 10 * time.Second
	DefaultMongoQueryTimeout   = 5 * time.Second

	DefaultPort      = "8080"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultRateLimitRequests = 100
	DefaultRateLimitWindow   = 1 * time.Minute
	DefaultTrustProxyHeaders = false

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultMetricsEnabled = true
)
