package output

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"grepari/config"
	"grepari/logger"

	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	otelLog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
)

// otelLogger mirrors report rows and run metrics to an OTLP/HTTP logs
// endpoint when one is configured. A nil receiver is valid and inert.
type otelLogger struct {
	provider     *sdklog.LoggerProvider
	logger       otelLog.Logger
	timeout      time.Duration
	includePaths bool
}

func newOtelLogger(cfg *config.Config) (*otelLogger, error) {
	if cfg == nil {
		return nil, nil
	}
	endpoint := resolveOtelEndpoint(cfg)
	if endpoint == "" {
		return nil, nil
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		return nil, fmt.Errorf("otel endpoint must include scheme (http or https)")
	}

	opts := []otlploghttp.Option{otlploghttp.WithEndpointURL(endpoint)}
	if len(cfg.OtelHeaders) > 0 {
		opts = append(opts, otlploghttp.WithHeaders(cfg.OtelHeaders))
	}
	if cfg.OtelTimeout > 0 {
		opts = append(opts, otlploghttp.WithTimeout(cfg.OtelTimeout))
	}

	exp, err := otlploghttp.New(context.Background(), opts...)
	if err != nil {
		return nil, err
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(cfg.OtelServiceName),
	)
	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exp)),
		sdklog.WithResource(res),
	)

	return &otelLogger{
		provider:     provider,
		logger:       provider.Logger("grepari"),
		timeout:      cfg.OtelTimeout,
		includePaths: cfg.OtelExportPaths,
	}, nil
}

func resolveOtelEndpoint(cfg *config.Config) string {
	if endpoint := strings.TrimSpace(cfg.OtelEndpoint); endpoint != "" {
		return endpoint
	}
	if !cfg.OtelFromEnv {
		return ""
	}
	if endpoint := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_LOGS_ENDPOINT")); endpoint != "" {
		return endpoint
	}
	return strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
}

func (o *otelLogger) EmitResult(path string, count int) {
	if o == nil || o.logger == nil {
		return
	}
	kvs := []otelLog.KeyValue{
		otelLog.Int("grepari.result.count", count),
	}
	if o.includePaths {
		kvs = append(kvs, otelLog.String(string(semconv.FilePathKey), path))
	}
	o.emit("result", kvs)
}

func (o *otelLogger) EmitMetrics(m *Metrics) {
	if o == nil || o.logger == nil || m == nil {
		return
	}
	o.emit("metrics", []otelLog.KeyValue{
		otelLog.String("grepari.metrics.start_time", m.StartTime),
		otelLog.String("grepari.metrics.end_time", m.EndTime),
		otelLog.Int("grepari.metrics.total_files", m.TotalFiles),
		otelLog.Int("grepari.metrics.searchable_files", m.SearchableFiles),
		otelLog.Int("grepari.metrics.matched_files", m.MatchedFiles),
		otelLog.Int("grepari.metrics.total_matches", m.TotalMatches),
		otelLog.Float64("grepari.metrics.elapsed_seconds", m.ElapsedSeconds),
	})
}

func (o *otelLogger) emit(recordType string, kvs []otelLog.KeyValue) {
	var record otelLog.Record
	now := time.Now()
	record.SetTimestamp(now)
	record.SetObservedTimestamp(now)
	record.SetEventName("grepari.record")
	record.AddAttributes(
		otelLog.String("record_type", recordType),
		otelLog.String("schema_version", SchemaVersion),
	)
	record.AddAttributes(kvs...)
	o.logger.Emit(context.Background(), record)
}

func (o *otelLogger) Shutdown() {
	if o == nil || o.provider == nil {
		return
	}
	timeout := o.timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := o.provider.Shutdown(ctx); err != nil {
		logger.Debugf("OTEL shutdown failed: %v", err)
	}
}
