// Package constants holds configuration values that select implementations.
package constants

// Environments
const (
	EnvDevelop    = "develop"
	EnvProduction = "production"
)

// Pub/Sub providers
const (
	PubSubProviderInline = "inline"
	PubSubProviderLocal  = "local"
	PubSubProviderGoogle = "google"
)

// Backends for the rate limiter and the notification queue
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Attributes attached to published order events
const (
	AttrEventID   = "event_id"
	AttrOrderID   = "order_id"
	AttrStoreID   = "store_id"
	AttrRequestID = "request_id"
	AttrEventType = "event_type"

	EventTypeOrderCreated = "order.created"
)
