package repository

import (
	"context"
	"regexp"
	"testing"

	"microblog/internal/models"
	"microblog/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMetric(name string) *models.Metric {
	return &models.Metric{
		ServiceName:        "Payments",
		ServiceElementName: "API",
		MetricName:         name,
		Target:             models.ParseMeasure("99.9"),
	}
}

func TestMetricRepository_DeleteMissing_Postgres(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMetricRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "metrics" WHERE "metrics"."id" = $1`)).
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), 42)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMetricRepository_SQLite(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewMetricRepository(db)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "owner")

	m1 := newMetric("Availability")
	m1.UserID = &owner.ID
	m2 := newMetric("Latency")
	require.NoError(t, repo.Create(ctx, m1))
	require.NoError(t, repo.Create(ctx, m2))

	t.Run("measure round trip", func(t *testing.T) {
		got, err := repo.GetByID(ctx, m1.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Target.Value)
		assert.InDelta(t, 99.9, *got.Target.Value, 1e-9)
		assert.True(t, got.ThresholdTarget.IsEmpty())
		require.NotNil(t, got.UserID)
		assert.Equal(t, owner.ID, *got.UserID)
	})

	t.Run("update touches only that record", func(t *testing.T) {
		edited := newMetric("Availability (monthly)")
		edited.ID = m1.ID
		edited.Target = models.ParseMeasure("best effort")
		require.NoError(t, repo.Update(ctx, edited))

		got, err := repo.GetByID(ctx, m1.ID)
		require.NoError(t, err)
		assert.Equal(t, "Availability (monthly)", got.MetricName)
		assert.Nil(t, got.Target.Value)
		assert.Equal(t, "best effort", got.Target.Raw)
		require.NotNil(t, got.UserID, "creator is kept")
		assert.Equal(t, owner.ID, *got.UserID)

		other, err := repo.GetByID(ctx, m2.ID)
		require.NoError(t, err)
		assert.Equal(t, "Latency", other.MetricName)
	})

	t.Run("update missing", func(t *testing.T) {
		missing := newMetric("ghost")
		missing.ID = 9999
		assert.True(t, models.IsCode(repo.Update(ctx, missing), models.CodeNotFound))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, m2.ID))
		assert.True(t, models.IsCode(repo.Delete(ctx, m2.ID), models.CodeNotFound))

		all, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, m1.ID, all[0].ID)
	})

	t.Run("batch is all or nothing", func(t *testing.T) {
		good := newMetric("Throughput")
		clash := newMetric("Clash")
		clash.ID = m1.ID // primary key collision fails the transaction

		err := repo.CreateBatch(ctx, []*models.Metric{good, clash})
		require.Error(t, err)

		all, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)

		require.NoError(t, repo.CreateBatch(ctx, []*models.Metric{newMetric("x"), newMetric("y"), newMetric("z")}))
		all, err = repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 4)
	})
}
