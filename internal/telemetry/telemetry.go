// Package telemetry installs the OpenTelemetry tracer and meter providers.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gitlab.com/yelinaung/expense-ledger/internal/config"
	"gitlab.com/yelinaung/expense-ledger/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ShutdownFunc flushes and stops the installed providers.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// Setup installs global providers for the configured exporter.
// With the "none" exporter nothing is installed and the shutdown is a no-op.
// Stdout exporters write to stderr so command output stays clean.
func Setup(ctx context.Context, cfg *config.Config) (ShutdownFunc, error) {
	return setup(ctx, cfg, os.Stderr)
}

func setup(ctx context.Context, cfg *config.Config, out io.Writer) (ShutdownFunc, error) {
	if cfg.OTelExporter == "" || cfg.OTelExporter == config.ExporterNone {
		return noopShutdown, nil
	}

	spanExporter, metricExporter, err := newExporters(ctx, cfg, out)
	if err != nil {
		return nil, err
	}

	res := resource.NewSchemaless(attribute.String("service.name", cfg.OTelServiceName))

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spanExporter),
		sdktrace.WithResource(res),
	)
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	logger.Log.Debug().
		Str("exporter", cfg.OTelExporter).
		Str("service", cfg.OTelServiceName).
		Msg("Telemetry enabled")

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}

func newExporters(ctx context.Context, cfg *config.Config, out io.Writer) (sdktrace.SpanExporter, sdkmetric.Exporter, error) {
	var (
		spans   sdktrace.SpanExporter
		metrics sdkmetric.Exporter
		err     error
	)

	switch cfg.OTelExporter {
	case config.ExporterStdout:
		spans, err = stdouttrace.New(stdouttrace.WithWriter(out))
		if err == nil {
			metrics, err = stdoutmetric.New(stdoutmetric.WithWriter(out))
		}
	case config.ExporterOTLPGRPC:
		spans, err = otlptracegrpc.New(ctx, otlptracegrpc.WithEndpointURL(cfg.OTelEndpoint))
		if err == nil {
			metrics, err = otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithEndpointURL(cfg.OTelEndpoint))
		}
	case config.ExporterOTLPHTTP:
		spans, err = otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.OTelEndpoint))
		if err == nil {
			metrics, err = otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpointURL(cfg.OTelEndpoint))
		}
	default:
		return nil, nil, fmt.Errorf("unknown telemetry exporter %q", cfg.OTelExporter)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s exporter: %w", cfg.OTelExporter, err)
	}
	return spans, metrics, nil
}
