// Package telemetry wires the OpenTelemetry tracer provider.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iyhunko/inventory-console/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Telemetry holds the tracer provider and the collector connection it exports through.
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	conn           *grpc.ClientConn
}

// New installs a global tracer provider exporting to conf.Endpoint over OTLP gRPC.
// With no endpoint the provider records spans but exports nothing.
func New(ctx context.Context, conf config.Telemetry) (*Telemetry, error) {
	res := resource.NewSchemaless(attribute.String("service.name", conf.ServiceName))

	if conf.Endpoint == "" {
		tp := sdktrace.NewTracerProvider(sdktrace.WithResource(res))
		install(tp)
		slog.Info("Telemetry initialized in no-op mode (export disabled)", slog.String("service_name", conf.ServiceName))
		return &Telemetry{TracerProvider: tp}, nil
	}

	conn, err := grpc.NewClient(conf.Endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create collector connection: %w", err)
	}

	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	install(tp)
	slog.Info("Tracer provider initialized",
		slog.String("endpoint", conf.Endpoint),
		slog.String("service_name", conf.ServiceName))

	return &Telemetry{TracerProvider: tp, conn: conn}, nil
}

func install(tp *sdktrace.TracerProvider) {
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

// Shutdown flushes pending spans and closes the collector connection.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if err := t.TracerProvider.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shutdown tracer provider: %w", err))
	}
	if t.conn != nil {
		if err := t.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close collector connection: %w", err))
		}
	}
	return errors.Join(errs...)
}
