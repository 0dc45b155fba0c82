package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "medibook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultKafkaEventsTopic  = "booking-events"
	DefaultKafkaBatchTimeout = 100 * time.Millisecond

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultEventPublishTimeout = 5 * time.Second

	// Pending bookings nobody confirmed within this age get cancelled by
	// the nightly expiry job.
	DefaultPendingExpiryAge  = 72 * time.Hour
	DefaultPendingExpiryCron = "15 0 * * *"

	DefaultPaginationLimit = 100
)
