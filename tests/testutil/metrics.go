package testutil

import (
	"context"
	"testing"

	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// Metrics is a LedgerMetrics backed by an in-memory reader
type Metrics struct {
	*telemetry.LedgerMetrics
	reader *sdkmetric.ManualReader
}

// NewMetrics builds ledger metrics that tests can read back. provider may be nil.
func NewMetrics(t *testing.T, provider telemetry.InventoryMetricsProvider) *Metrics {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	lm, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter:     mp.Meter("ledger-test"),
		Inventory: provider,
	})
	require.NoError(t, err)
	return &Metrics{LedgerMetrics: lm, reader: reader}
}

// Int64 returns the summed value of an int64 counter or gauge across the data
// points carrying every attribute in attrs
func (m *Metrics) Int64(t *testing.T, name string, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	var total int64
	switch data := m.find(t, name).(type) {
	case metricdata.Sum[int64]:
		for _, dp := range data.DataPoints {
			if hasAttributes(dp.Attributes, attrs) {
				total += dp.Value
			}
		}
	case metricdata.Gauge[int64]:
		for _, dp := range data.DataPoints {
			if hasAttributes(dp.Attributes, attrs) {
				total += dp.Value
			}
		}
	default:
		t.Fatalf("metric %s is %T, not an int64 instrument", name, data)
	}
	return total
}

// Float64 returns the last value of a float64 gauge
func (m *Metrics) Float64(t *testing.T, name string) float64 {
	t.Helper()
	data, ok := m.find(t, name).(metricdata.Gauge[float64])
	require.True(t, ok, "metric %s is not a float64 gauge", name)
	require.NotEmpty(t, data.DataPoints)
	return data.DataPoints[len(data.DataPoints)-1].Value
}

// find returns the data of metric name, or nil when nothing was recorded
func (m *Metrics) find(t *testing.T, name string) metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, m.reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, metric := range sm.Metrics {
			if metric.Name == name {
				return metric.Data
			}
		}
	}
	return metricdata.Sum[int64]{}
}

func hasAttributes(set attribute.Set, attrs []attribute.KeyValue) bool {
	for _, kv := range attrs {
		v, ok := set.Value(kv.Key)
		if !ok || v.Emit() != kv.Value.Emit() {
			return false
		}
	}
	return true
}
