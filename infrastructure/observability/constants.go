package observability

// Metric name prefixes
const (
	MetricPrefix = "fanhunt"
)

// Metric names
const (
	// Redemption metrics
	RedemptionsTotal = MetricPrefix + ".redemptions.total"

	// Transaction runner metrics
	TransactionsTotal        = MetricPrefix + ".transactions.total"
	TransactionAttemptsTotal = MetricPrefix + ".transactions.attempts_total"
	TransactionRetriesTotal  = MetricPrefix + ".transactions.retries_total"
	TransactionDuration      = MetricPrefix + ".transactions.duration"

	// Event metrics
	EventsPublishedTotal = MetricPrefix + ".events.published_total"
)

// Label keys
const (
	LabelType      = "type"
	LabelOperation = "operation"
	LabelOutcome   = "outcome"
	LabelEventType = "event_type"
)

// Exporter types
const (
	ExporterConsole = "console"
	ExporterOTLP    = "otlp"
	ExporterNone    = "none"
)
