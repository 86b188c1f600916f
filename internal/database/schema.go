package database

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"microblog/internal/config"
	"microblog/internal/middleware"

	"gorm.io/gorm"
)

// DB_SCHEMA_MODE values.
const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

var prodLikeEnvs = []string{"production", "prod", "staging", "stage"}

// SchemaStatus describes what ApplySchema would do against the current database.
type SchemaStatus struct {
	Mode               string
	Environment        string
	Driver             string
	WillRunSQL         bool
	WillRunAutoMigrate bool
	AppliedVersions    []int
	PendingMigrations  []Migration
}

// schemaPlan is the resolved set of schema steps for one configuration.
type schemaPlan struct {
	mode    string
	sql     bool
	autoMig bool
}

// planSchema resolves DB_SCHEMA_MODE against the environment and driver. The SQL
// migrations target PostgreSQL, so SQLite is always built by AutoMigrate.
func planSchema(cfg *config.Config) (schemaPlan, error) {
	plan := schemaPlan{mode: strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode))}
	if plan.mode == "" {
		plan.mode = SchemaModeHybrid
	}
	prodLike := slices.Contains(prodLikeEnvs, strings.ToLower(strings.TrimSpace(cfg.Env)))
	sqlite := cfg.DBDriver == DriverSQLite

	switch {
	case plan.mode == SchemaModeSQL && sqlite:
		return plan, fmt.Errorf("DB_SCHEMA_MODE=sql is not supported with DB_DRIVER=sqlite")
	case plan.mode == SchemaModeSQL:
		plan.sql = true
	case plan.mode == SchemaModeAuto && prodLike && !sqlite:
		return plan, fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q", cfg.Env)
	case plan.mode == SchemaModeAuto:
		plan.autoMig = true
	case plan.mode == SchemaModeHybrid:
		plan.sql = !sqlite
		plan.autoMig = sqlite || !prodLike
	default:
		return plan, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", plan.mode)
	}
	return plan, nil
}

// AutoMigrate creates or updates every persistent table from the GORM models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(PersistentModels()...)
}

// ApplySchema brings the database schema up to date according to DB_SCHEMA_MODE.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	plan, err := planSchema(cfg)
	if err != nil {
		return err
	}

	if plan.sql {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	}
	if !plan.autoMig {
		return nil
	}

	middleware.Logger.Info("running gorm automigrate",
		slog.String("mode", plan.mode),
		slog.String("env", cfg.Env),
		slog.String("driver", driverName(cfg.DBDriver)),
	)
	if err := AutoMigrate(db.WithContext(ctx)); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// GetSchemaStatus reports the schema plan and, when SQL migrations run, which are applied and pending.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	plan, err := planSchema(cfg)
	if err != nil {
		return nil, err
	}

	status := &SchemaStatus{
		Mode:               plan.mode,
		Environment:        cfg.Env,
		Driver:             driverName(cfg.DBDriver),
		WillRunSQL:         plan.sql,
		WillRunAutoMigrate: plan.autoMig,
	}
	if !plan.sql {
		return status, nil
	}

	if status.AppliedVersions, err = (migrationLedger{db: db}).applied(ctx); err != nil {
		return nil, err
	}
	status.PendingMigrations = pendingMigrations(status.AppliedVersions, GetMigrations())
	return status, nil
}
