package config

const (
	EnvMongoURI            = "MONGO_URI"
	EnvMongoDatabaseName   = "MONGO_DATABASE_NAME"
	EnvMongoCollectionName = "MONGO_COLLECTION_NAME"
	EnvMongoConnTimeout    = "MONGO_CONN_TIMEOUT"
	EnvMongoQueryTimeout   = "MONGO_QUERY_TIMEOUT"

	EnvRedisURL = "REDIS_URL"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvIngestSigningSecret = "INGEST_SIGNING_SECRET"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"
	EnvTrustProxyHeaders = "TRUST_PROXY_HEADERS"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvMetricsEnabled = "METRICS_ENABLED"
)
