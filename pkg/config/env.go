package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvHotelBaseURL = "HOTEL_BASE_URL"

	EnvRemoteCallTimeout = "REMOTE_CALL_TIMEOUT"
	EnvRemoteCallRetries = "REMOTE_CALL_RETRIES"
	EnvRemoteCallBackoff = "REMOTE_CALL_BACKOFF"

	EnvHoldLockTTL     = "HOLD_LOCK_TTL"
	EnvHoldLockRetries = "HOLD_LOCK_RETRIES"
	EnvHoldLockBackoff = "HOLD_LOCK_BACKOFF"

	EnvKafkaBrokers      = "KAFKA_BROKERS"
	EnvKafkaBookingTopic = "KAFKA_BOOKING_TOPIC"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
