// Package observability inicializa el TracerProvider de OpenTelemetry.
package observability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"

	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// ShutdownFunc vacía y cierra el exportador.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// InitTracing registra un TracerProvider global. Deshabilitado devuelve un shutdown vacío
// y los spans quedan en el provider no-op de otel.
func InitTracing(ctx context.Context, app config.AppConfig, cfg config.OTelConfig, log *logger.Logger) (ShutdownFunc, error) {
	if !cfg.Enabled {
		return noopShutdown, nil
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(app.Name),
			attribute.String("deployment.environment", app.Env),
		),
	)
	if err != nil {
		log.Warn().Err(err).Msg("otel: no se pudo construir el resource (se continúa)")
	}

	exporter, err := buildExporter(ctx, cfg, log)
	if err != nil {
		return noopShutdown, fmt.Errorf("otel exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SamplerRatio))),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	log.Info().Str("service", app.Name).Str("endpoint", cfg.Endpoint).Msg("otel tracing inicializado")
	return tp.Shutdown, nil
}

func buildExporter(ctx context.Context, cfg config.OTelConfig, log *logger.Logger) (sdktrace.SpanExporter, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint != "" {
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	}
	log.Warn().Msg("otel: sin OTEL_EXPORTER_OTLP_ENDPOINT, se exporta a stdout")
	return stdouttrace.New(stdouttrace.WithPrettyPrint())
}
