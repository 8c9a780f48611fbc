package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fanhunt/config"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// MetricsProvider manages OpenTelemetry metrics for the ledger service.
// It satisfies application.MetricsRecorder and infrastructure.PublishRecorder.
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	reader        sdkmetric.Reader
	initialized   bool
	recording     bool
	mu            sync.RWMutex

	// Metric instruments
	redemptionsCounter         metric.Int64Counter
	transactionsCounter        metric.Int64Counter
	transactionAttemptsCounter metric.Int64Counter
	transactionRetriesCounter  metric.Int64Counter
	transactionDurationHist    metric.Float64Histogram
	eventsPublishedCounter     metric.Int64Counter
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// NewMetricsProviderWithReader creates a provider that records into reader
// instead of a configured exporter. Tests use it with a ManualReader.
func NewMetricsProviderWithReader(cfg *config.Config, reader sdkmetric.Reader) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
		reader: reader,
	}
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		log.Debug("Metrics provider already initialized")
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	res, err := resource.Merge(
		resource.Default(),
		// Schemaless so the merge never conflicts with the SDK's own schema URL
		resource.NewSchemaless(
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	reader := mp.reader
	if reader == nil {
		exporter, err := mp.newExporter(ctx)
		if err != nil {
			return err
		}
		if exporter == nil {
			mp.initialized = true
			return nil
		}
		reader = sdkmetric.NewPeriodicReader(
			exporter,
			sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
		)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	if mp.reader == nil {
		otel.SetMeterProvider(mp.meterProvider)
	}

	mp.meter = mp.meterProvider.Meter("fanhunt-ledger")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	mp.recording = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

// newExporter builds the configured exporter. It returns nil when export is off.
func (mp *MetricsProvider) newExporter(ctx context.Context) (sdkmetric.Exporter, error) {
	switch mp.config.OTelExporterType {
	case ExporterConsole:
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")
		return exporter, nil

	case ExporterOTLP:
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err := otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")
		return exporter, nil

	case ExporterNone:
		log.Info("Metrics export disabled (exporter_type='none')")
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}
}

// createInstruments creates all metric instruments
func (mp *MetricsProvider) createInstruments() error {
	var err error

	mp.redemptionsCounter, err = mp.meter.Int64Counter(
		RedemptionsTotal,
		metric.WithDescription("Total number of checkpoint and reward redemptions by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create redemptions counter: %w", err)
	}

	mp.transactionsCounter, err = mp.meter.Int64Counter(
		TransactionsTotal,
		metric.WithDescription("Total number of ledger transactions by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create transactions counter: %w", err)
	}

	mp.transactionAttemptsCounter, err = mp.meter.Int64Counter(
		TransactionAttemptsTotal,
		metric.WithDescription("Total number of transaction attempts including retries"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction attempts counter: %w", err)
	}

	mp.transactionRetriesCounter, err = mp.meter.Int64Counter(
		TransactionRetriesTotal,
		metric.WithDescription("Total number of transaction retries"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction retries counter: %w", err)
	}

	mp.transactionDurationHist, err = mp.meter.Float64Histogram(
		TransactionDuration,
		metric.WithDescription("Duration of ledger transactions including retries in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction duration histogram: %w", err)
	}

	mp.eventsPublishedCounter, err = mp.meter.Int64Counter(
		EventsPublishedTotal,
		metric.WithDescription("Total number of domain events forwarded to NATS"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create events published counter: %w", err)
	}

	return nil
}

// Shutdown flushes and shuts down the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.recording = false
	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// RecordRedemption records the outcome of a checkpoint or reward redemption
func (mp *MetricsProvider) RecordRedemption(redemptionType, outcome string) {
	if !mp.isEnabled() {
		return
	}

	mp.redemptionsCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelType, redemptionType),
			attribute.String(LabelOutcome, outcome),
		),
	)
}

// RecordTransaction records one run of the transaction runner
func (mp *MetricsProvider) RecordTransaction(operation, outcome string, attempts int, duration time.Duration) {
	if !mp.isEnabled() {
		return
	}

	ctx := context.Background()
	attrs := metric.WithAttributes(
		attribute.String(LabelOperation, operation),
		attribute.String(LabelOutcome, outcome),
	)

	mp.transactionsCounter.Add(ctx, 1, attrs)
	mp.transactionAttemptsCounter.Add(ctx, int64(attempts), attrs)
	if attempts > 1 {
		mp.transactionRetriesCounter.Add(ctx, int64(attempts-1), attrs)
	}
	mp.transactionDurationHist.Record(ctx, duration.Seconds(), attrs)
}

// RecordEventPublished records a domain event forwarded to NATS
func (mp *MetricsProvider) RecordEventPublished(eventType, outcome string) {
	if !mp.isEnabled() {
		return
	}

	mp.eventsPublishedCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelEventType, eventType),
			attribute.String(LabelOutcome, outcome),
		),
	)
}

// isEnabled reports whether instruments exist and may be recorded to
func (mp *MetricsProvider) isEnabled() bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.recording
}

// Global metrics provider instance
var (
	globalMetrics *MetricsProvider
	metricsOnce   sync.Once
)

// InitializeGlobalMetrics initializes the global metrics provider
func InitializeGlobalMetrics(ctx context.Context, cfg *config.Config) error {
	var err error
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsProvider(cfg)
		err = globalMetrics.Initialize(ctx)
	})
	return err
}

// GetMetrics returns the global metrics provider
func GetMetrics() *MetricsProvider {
	return globalMetrics
}

// ShutdownGlobalMetrics shuts down the global metrics provider
func ShutdownGlobalMetrics(ctx context.Context) error {
	if globalMetrics != nil {
		return globalMetrics.Shutdown(ctx)
	}
	return nil
}
