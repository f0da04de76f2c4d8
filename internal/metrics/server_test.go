package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iyhunko/inventory-console/internal/config"
	"github.com/iyhunko/inventory-console/internal/metrics"
	"github.com/stretchr/testify/assert"
)

func TestNewServer_ExposesCatalogMetrics(t *testing.T) {
	metrics.MutationsTotal.WithLabelValues("create", "confirmed").Inc()
	metrics.CatalogProducts.Set(3)

	srv := metrics.NewServer(&config.Config{MetricsServer: config.Server{Port: "9090"}})
	assert.Equal(t, ":9090", srv.Addr)

	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `catalog_mutations_total{kind="create",outcome="confirmed"}`)
	assert.Contains(t, w.Body.String(), "catalog_products 3")
}
