package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "innkeep"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultHotelBaseURL = "http://localhost:8081"

	DefaultRemoteCallTimeout = 2 * time.Second
	DefaultRemoteCallRetries = 2
	DefaultRemoteCallBackoff = 200 * time.Millisecond

	DefaultHoldLockTTL     = 10 * time.Second
	DefaultHoldLockRetries = 5
	DefaultHoldLockBackoff = 50 * time.Millisecond

	DefaultKafkaBookingTopic = "booking-events"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)
