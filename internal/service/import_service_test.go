package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"microblog/internal/models"
	"microblog/internal/repository"
	"microblog/internal/spreadsheet"
	"microblog/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metricCSV(t *testing.T, names ...string) *bytes.Buffer {
	t.Helper()
	rows := make([][]string, 0, len(names))
	for _, n := range names {
		m, err := metricForm(n).ToMetric()
		require.NoError(t, err)
		rows = append(rows, m.Values())
	}
	var buf bytes.Buffer
	require.NoError(t, spreadsheet.Write(spreadsheet.FormatCSV, spreadsheet.MetricColumns(), rows, &buf))
	return &buf
}

func TestImportService_ThreeRows(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := repository.NewMetricRepository(db)
	svc := NewImportService(repo)
	ctx := context.Background()

	n, err := svc.Import(ctx, "metrics.csv", metricCSV(t, "Availability", "Latency", "Errors"), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Availability", all[0].MetricName)
	assert.Equal(t, "Errors", all[2].MetricName)
	assert.Nil(t, all[0].UserID)

	header, rows, err := svc.Grid(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.MetricColumns, header)
	assert.Len(t, rows, 3)
}

func TestImportService_RejectsWholeFile(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := repository.NewMetricRepository(db)
	svc := NewImportService(repo)
	ctx := context.Background()

	t.Run("bad row", func(t *testing.T) {
		buf := metricCSV(t, "Availability", "Latency")
		buf.WriteString("short,row\n")

		_, err := svc.Import(ctx, "metrics.csv", buf, nil)
		assertValidationError(t, err)
		assert.Contains(t, err.Error(), "row 4")
	})

	t.Run("oversize cell", func(t *testing.T) {
		ok, err := metricForm("Availability").ToMetric()
		require.NoError(t, err)
		bad, err := metricForm("Latency").ToMetric()
		require.NoError(t, err)
		bad.ServiceName = strings.Repeat("p", 121)
		var buf bytes.Buffer
		require.NoError(t, spreadsheet.Write(spreadsheet.FormatCSV, spreadsheet.MetricColumns(),
			[][]string{ok.Values(), bad.Values()}, &buf))

		_, err = svc.Import(ctx, "metrics.csv", &buf, nil)
		assertValidationError(t, err)
		assert.Contains(t, err.Error(), "row 3: service_name must be at most 120 characters")
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, err := svc.Import(ctx, "metrics.ods", strings.NewReader("x"), nil)
		assertValidationError(t, err)
	})

	t.Run("wrong header", func(t *testing.T) {
		_, err := svc.Import(ctx, "metrics.csv", strings.NewReader("a,b,c\n1,2,3\n"), nil)
		assertValidationError(t, err)
	})

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestImportService_ExportRoundTrip(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewImportService(repository.NewMetricRepository(db))
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "owner")

	_, err := svc.Import(ctx, "metrics.csv", metricCSV(t, "Availability", "Latency"), &owner.ID)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, svc.Export(ctx, spreadsheet.FormatXLSX, &out))

	n, err := svc.Import(ctx, "again.xlsx", &out, &owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := svc.metricRepo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, all[0].Values(), all[2].Values())
	require.NotNil(t, all[3].UserID)
	assert.Equal(t, owner.ID, *all[3].UserID)
}
