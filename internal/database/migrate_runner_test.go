package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func TestPendingMigrations(t *testing.T) {
	registered := GetMigrations()
	assert.Len(t, pendingMigrations(nil, registered), 2)

	pending := pendingMigrations([]int{1}, registered)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].Version)

	assert.Empty(t, pendingMigrations([]int{1, 2}, registered))
}

func TestRunMigrations_AppliesOnlyPending(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS migration_logs`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT "version" FROM "migration_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS metrics`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO "migration_logs"`).
		WithArgs(2, "metrics", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, RunMigrations(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_FailedScriptRollsBack(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS migration_logs`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT "version" FROM "migration_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"version"}))
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users`).
		WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	err := RunMigrations(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000001_init_schema")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_RejectsUnknownVersions(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS migration_logs`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT "version" FROM "migration_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(1).AddRow(7))

	err := RunMigrations(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000007")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRollbackMigration_NotApplied(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT "version" FROM "migration_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(1))

	err := RollbackMigration(context.Background(), db, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has not been applied")
	assert.NoError(t, mock.ExpectationsWereMet())

	assert.Error(t, RollbackMigration(context.Background(), db, 99))
}
