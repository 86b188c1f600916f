package service

import (
	"context"
	"strings"
	"testing"

	"microblog/internal/models"
	"microblog/internal/repository"
	"microblog/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metricForm(name string) MetricInput {
	return MetricInput{
		ServiceName:        "Payments",
		ServiceElementName: "API",
		MetricName:         name,
		Target:             "99.9%",
		ThresholdTrigger:   "1,000",
		DataSource:         "Prometheus",
	}
}

func TestMetricInput_ToMetric(t *testing.T) {
	t.Parallel()
	in := metricForm("Availability")
	in.ThresholdTarget = "best effort"

	m, err := in.ToMetric()
	require.NoError(t, err)
	assert.Equal(t, "Payments", m.ServiceName)
	assert.Equal(t, "Prometheus", m.DataSource)
	require.NotNil(t, m.Target.Value)
	assert.InDelta(t, 99.9, *m.Target.Value, 1e-9)
	require.NotNil(t, m.ThresholdTrigger.Value)
	assert.InDelta(t, 1000, *m.ThresholdTrigger.Value, 1e-9)
	assert.False(t, m.ThresholdTarget.Parsed())
	assert.Equal(t, "best effort", m.ThresholdTarget.Raw)

	back, err := MetricInputFrom(m)
	require.NoError(t, err)
	assert.Equal(t, in, back)
}

func TestMetricFormFields_MatchColumns(t *testing.T) {
	t.Parallel()
	assert.Equal(t, models.MetricColumns, MetricFormFields())
}

func TestMetricService_Validation(t *testing.T) {
	t.Parallel()
	svc := NewMetricService(nil)

	tests := []struct {
		name   string
		mutate func(*MetricInput)
	}{
		{"missing service name", func(in *MetricInput) { in.ServiceName = "" }},
		{"missing element", func(in *MetricInput) { in.ServiceElementName = "" }},
		{"missing metric name", func(in *MetricInput) { in.MetricName = "" }},
		{"missing target", func(in *MetricInput) { in.Target = "" }},
		{"long direction", func(in *MetricInput) { in.ThresholdTargetDirection = "sideways-ish" }},
		{"long description", func(in *MetricInput) { in.MetricDescription = strings.Repeat("d", 5001) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			in := metricForm("x")
			tt.mutate(&in)
			_, err := svc.CreateMetric(context.Background(), in, nil)
			assertValidationError(t, err)
		})
	}
}

func TestMetricService_CRUD(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewMetricService(repository.NewMetricRepository(db))
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "owner")

	first, err := svc.CreateMetric(ctx, metricForm("Availability"), &owner.ID)
	require.NoError(t, err)
	second, err := svc.CreateMetric(ctx, metricForm("Latency"), nil)
	require.NoError(t, err)

	t.Run("edit touches only that record", func(t *testing.T) {
		in := metricForm("Availability (monthly)")
		in.Target = "99.95"
		updated, err := svc.UpdateMetric(ctx, first.ID, in)
		require.NoError(t, err)
		assert.Equal(t, first.ID, updated.ID)

		got, err := svc.GetMetric(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "Availability (monthly)", got.MetricName)
		assert.InDelta(t, 99.95, *got.Target.Value, 1e-9)
		require.NotNil(t, got.UserID)
		assert.Equal(t, owner.ID, *got.UserID)

		other, err := svc.GetMetric(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, "Latency", other.MetricName)
		assert.InDelta(t, 99.9, *other.Target.Value, 1e-9)
		assert.Nil(t, other.UserID)
	})

	t.Run("edit missing", func(t *testing.T) {
		_, err := svc.UpdateMetric(ctx, 9999, metricForm("ghost"))
		assertNotFoundError(t, err)

		invalid := metricForm("ghost")
		invalid.ServiceName = ""
		_, err = svc.UpdateMetric(ctx, 9999, invalid)
		assertNotFoundError(t, err)
	})

	t.Run("delete", func(t *testing.T) {
		assertNotFoundError(t, svc.DeleteMetric(ctx, 9999))

		require.NoError(t, svc.DeleteMetric(ctx, second.ID))
		all, err := svc.ListMetrics(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, first.ID, all[0].ID)

		_, err = svc.GetMetric(ctx, second.ID)
		assertNotFoundError(t, err)
	})
}
