package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/darte/storefront/pkg/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// AppMetrics holds all application metrics
type AppMetrics struct {
	// HTTP Metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestsErrors  metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram

	// Catalog source metrics
	CatalogQueriesTotal  metric.Int64Counter
	CatalogQueryDuration metric.Float64Histogram

	// Business Metrics
	ProductsViewed     metric.Int64Counter
	CartAdds           metric.Int64Counter
	CartItemsCount     metric.Int64Gauge
	FavoritesToggled   metric.Int64Counter
	SearchesTotal      metric.Int64Counter
	LoginsTotal        metric.Int64Counter
	SellerApplications metric.Int64Counter
	ProductUploads     metric.Int64Counter

	// Session and messaging metrics
	ActiveSessions   metric.Int64Gauge
	MessagesSent     metric.Int64Counter
	AutoReplies      metric.Int64Counter
	AutoRepliesAbort metric.Int64Counter

	serviceName string
}

// InitMetrics builds the OTLP meter provider and the application instruments
func InitMetrics(ctx context.Context, cfg *config.Config) (*AppMetrics, *sdkmetric.MeterProvider, error) {
	envRes, err := resource.New(ctx, resource.WithFromEnv())
	if err != nil {
		envRes = resource.Empty()
	}

	// Explicit attributes take precedence over env
	explicitRes, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.OTELServiceName),
			semconv.ServiceVersion(cfg.OTELServiceVersion),
			attribute.String("deployment.environment", cfg.OTELDeploymentEnvironment),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create explicit resource: %w", err)
	}

	res, err := resource.Merge(envRes, explicitRes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to merge resources: %w", err)
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}

	if cfg.MetricsExportEnabled {
		// WithEndpoint expects host:port, without scheme
		exporterOpts := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(cfg.OTELExporterOTLPEndpoint),
			otlpmetrichttp.WithURLPath("/v1/metrics"),
		}
		if cfg.OTELExporterOTLPHeaders != "" {
			exporterOpts = append(exporterOpts, otlpmetrichttp.WithHeaders(parseHeaders(cfg.OTELExporterOTLPHeaders)))
		}
		if cfg.OTELExporterOTLPInsecure {
			exporterOpts = append(exporterOpts, otlpmetrichttp.WithInsecure())
		}

		exporter, err := otlpmetrichttp.New(ctx, exporterOpts...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second)),
		))
	}

	meterProvider := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(meterProvider)

	m, err := New(meterProvider.Meter(cfg.OTELServiceName), cfg.OTELServiceName)
	if err != nil {
		return nil, nil, err
	}
	return m, meterProvider, nil
}

// New creates the application instruments on the given meter
func New(meter metric.Meter, serviceName string) (*AppMetrics, error) {
	// SigNoz default histogram buckets in milliseconds, expanded to 60s
	buckets := []float64{2, 4, 6, 8, 10, 50, 100, 200, 400, 800, 1000, 1400, 2000, 5000, 10000, 15000, 20000, 30000, 45000, 60000}

	b := builder{meter: meter}
	m := &AppMetrics{
		HTTPRequestsTotal:    b.counter("http.server.request.count", "Total number of HTTP requests", "1"),
		HTTPRequestsErrors:   b.counter("http.server.request.error.count", "Total number of HTTP error requests", "1"),
		HTTPRequestDuration:  b.histogram("http.server.request.duration", "HTTP request duration in milliseconds", buckets),
		CatalogQueriesTotal:  b.counter("catalog.queries.count", "Total number of catalog source queries", "1"),
		CatalogQueryDuration: b.histogram("catalog.queries.duration", "Catalog source query duration in milliseconds", buckets),
		ProductsViewed:       b.counter("products_viewed_total", "Total number of product views", "1"),
		CartAdds:             b.counter("cart_adds_total", "Total number of add-to-cart actions", "1"),
		CartItemsCount:       b.gauge("cart_items_count", "Current number of items in a session cart"),
		FavoritesToggled:     b.counter("favorites_toggled_total", "Total number of favorite toggles", "1"),
		SearchesTotal:        b.counter("searches_total", "Total number of product searches", "1"),
		LoginsTotal:          b.counter("logins_total", "Total number of logins and sign-ups", "1"),
		SellerApplications:   b.counter("seller_applications_total", "Total number of seller applications submitted", "1"),
		ProductUploads:       b.counter("product_uploads_total", "Total number of confirmed product uploads", "1"),
		ActiveSessions:       b.gauge("active_sessions_count", "Number of live storefront sessions"),
		MessagesSent:         b.counter("messages_sent_total", "Total number of messages sent to sellers", "1"),
		AutoReplies:          b.counter("auto_replies_total", "Total number of simulated seller replies delivered", "1"),
		AutoRepliesAbort:     b.counter("auto_replies_cancelled_total", "Total number of simulated seller replies cancelled", "1"),
		serviceName:          serviceName,
	}
	if b.err != nil {
		return nil, b.err
	}
	return m, nil
}

// builder keeps the first instrument creation error
type builder struct {
	meter metric.Meter
	err   error
}

func (b *builder) counter(name, desc, unit string) metric.Int64Counter {
	c, err := b.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("failed to create %s counter: %w", name, err)
	}
	return c
}

func (b *builder) gauge(name, desc string) metric.Int64Gauge {
	g, err := b.meter.Int64Gauge(name, metric.WithDescription(desc), metric.WithUnit("1"))
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("failed to create %s gauge: %w", name, err)
	}
	return g
}

func (b *builder) histogram(name, desc string, buckets []float64) metric.Float64Histogram {
	h, err := b.meter.Float64Histogram(name,
		metric.WithDescription(desc),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(buckets...),
	)
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("failed to create %s histogram: %w", name, err)
	}
	return h
}

// WithServiceName adds service.name to attributes
func (m *AppMetrics) WithServiceName(attrs []attribute.KeyValue) []attribute.KeyValue {
	return append(attrs, attribute.String("service.name", m.serviceName))
}

// Attrs is a shorthand for metric.WithAttributes(m.WithServiceName(attrs))
func (m *AppMetrics) Attrs(attrs ...attribute.KeyValue) metric.MeasurementOption {
	return metric.WithAttributes(m.WithServiceName(attrs)...)
}

// RecordCatalogQuery records catalog source query metrics including the statement
func (m *AppMetrics) RecordCatalogQuery(ctx context.Context, operation, table, statement string, start time.Time, success bool) {
	duration := time.Since(start).Milliseconds()

	status := "success"
	if !success {
		status = "error"
	}

	opt := m.Attrs(
		attribute.String("db.operation", operation),
		attribute.String("db.sql.table", table),
		attribute.String("db.statement", statement),
		attribute.String("db.system", "mysql"),
		attribute.String("status", status),
	)
	m.CatalogQueriesTotal.Add(ctx, 1, opt)
	m.CatalogQueryDuration.Record(ctx, float64(duration), opt)
}

// parseHeaders parses header string in format "key1=value1,key2=value2"
func parseHeaders(headerStr string) map[string]string {
	headers := make(map[string]string)
	if headerStr == "" {
		return headers
	}

	for _, pair := range strings.Split(headerStr, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) == 2 {
			headers[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return headers
}

// Noop returns instruments that discard every measurement
func Noop() *AppMetrics {
	m, _ := New(noop.NewMeterProvider().Meter("noop"), "noop")
	return m
}
