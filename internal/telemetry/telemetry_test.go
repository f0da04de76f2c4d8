package telemetry_test

import (
	"context"
	"testing"

	"github.com/iyhunko/inventory-console/internal/config"
	"github.com/iyhunko/inventory-console/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("no endpoint records spans without exporting", func(t *testing.T) {
		tel, err := telemetry.New(ctx, config.Telemetry{ServiceName: "inventory-console"})
		require.NoError(t, err)

		_, span := otel.Tracer("test").Start(ctx, "op")
		assert.True(t, span.SpanContext().IsValid())
		span.End()

		assert.NoError(t, tel.Shutdown(ctx))
	})

	t.Run("endpoint connects lazily", func(t *testing.T) {
		tel, err := telemetry.New(ctx, config.Telemetry{Endpoint: "localhost:4317", ServiceName: "inventory-console"})
		require.NoError(t, err)

		shutdownCtx, cancel := context.WithCancel(ctx)
		cancel()
		// Nothing was recorded, so there is nothing to flush to the absent collector.
		_ = tel.Shutdown(shutdownCtx)
	})
}
