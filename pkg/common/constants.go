package common

const (
	RedisStreamProductFetch = "product.fetch"

	RedisStreamGroup    = "tracker-group"
	RedisStreamConsumer = "tracker-consumer"

	// RedisKeyFetchLease guards a product against being dispatched twice before its fetch completes.
	RedisKeyFetchLease = "fetch_lease:%d"
)

const (
	AvailabilityInStock    = "in_stock"
	AvailabilityOutOfStock = "out_of_stock"
	AvailabilityUnknown    = "unknown"
)

const (
	SourceExtension     = "extension"
	SourceBackgroundJob = "background_job"
	SourceMonitor       = "monitor"
)

const (
	MarketplaceAmazon = "amazon"
	MarketplaceNoon   = "noon"
)

const (
	DefaultUpdateIntervalHours = 24
	MinUpdateIntervalHours     = 1
	MaxUpdateIntervalHours     = 24
	DefaultInsightWindowDays   = 30
	DefaultCurrency            = "EGP"
)
