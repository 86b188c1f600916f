package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricFromValues_RoundTrip(t *testing.T) {
	row := []string{
		"Payments", "API", "Card payments", "99.9%", "Ops",
		"Availability", "Share of successful requests", "Core SLA", "percent",
		"99.5", "Contract", "up", "99", "Page on-call", "down",
		"Prometheus", "1m", "Jane", "VC-12",
	}
	m, err := MetricFromValues(row)
	require.NoError(t, err)

	require.NotNil(t, m.Target.Value)
	assert.InDelta(t, 99.9, *m.Target.Value, 1e-9)
	assert.Equal(t, "VC-12", m.VantageControlID)
	assert.Equal(t, row, m.Values())
}

func TestMetricFromValues_WrongLength(t *testing.T) {
	_, err := MetricFromValues([]string{"a", "b"})
	assert.Error(t, err)
}

func TestMetric_Overwrite(t *testing.T) {
	uid := uint(7)
	dst := &Metric{ID: 3, UserID: &uid, ServiceName: "old", Target: MeasureOf(1)}
	src := &Metric{ID: 9, ServiceName: "new", Target: ParseMeasure("n/a")}

	dst.Overwrite(src)
	assert.Equal(t, uint(3), dst.ID)
	assert.Equal(t, &uid, dst.UserID)
	assert.Equal(t, "new", dst.ServiceName)
	assert.Nil(t, dst.Target.Value)
	assert.Equal(t, "n/a", dst.Target.Raw)
}
