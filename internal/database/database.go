// Package database provides database connection and migration functionality.
package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"net/url"
	"strings"
	"sync"

	"culturology/internal/config"
	"culturology/internal/observability"
	contextutils "culturology/internal/utils"

	// Import PostgreSQL driver for database/sql
	_ "github.com/lib/pq"
	// Import the pure-Go SQLite driver, registered as "sqlite"
	_ "modernc.org/sqlite"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// OpenTelemetry SQL instrumentation
	"go.nhat.io/otelsql"

	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

//go:embed migrations
var migrationsFS embed.FS

// Dialect identifies the SQL backend behind a database URL.
type Dialect string

// Supported dialects
const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// Manager handles database operations with proper logging
type Manager struct {
	logger *observability.Logger
}

var (
	otelDriverMu    sync.Mutex
	otelDriverNames = map[Dialect]string{}
)

// NewManager creates a new database manager with the provided logger
func NewManager(logger *observability.Logger) *Manager {
	return &Manager{
		logger: logger,
	}
}

// ParseURL picks the dialect for a database URL and returns the DSN its driver expects.
// postgres:// and postgresql:// go to lib/pq; sqlite://<path> and file:<path> go to modernc sqlite.
func ParseURL(databaseURL string) (Dialect, string, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return DialectPostgres, databaseURL, nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return DialectSQLite, sqliteDSN("file:" + strings.TrimPrefix(databaseURL, "sqlite://")), nil
	case strings.HasPrefix(databaseURL, "file:"):
		return DialectSQLite, sqliteDSN(databaseURL), nil
	}
	return "", "", contextutils.WrapErrorf(contextutils.ErrInvalidInput, "unsupported database url scheme: %s", redactURL(databaseURL))
}

// sqliteDSN adds the pragmas every connection needs unless the URL sets them already.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func driverName(d Dialect) string {
	if d == DialectPostgres {
		return "postgres"
	}
	return "sqlite"
}

// otelDriver registers an otelsql wrapper for the dialect's driver once per process.
func otelDriver(d Dialect, dbName string) (string, error) {
	otelDriverMu.Lock()
	defer otelDriverMu.Unlock()

	if name, ok := otelDriverNames[d]; ok {
		return name, nil
	}

	system := semconv.DBSystemPostgreSQL
	if d == DialectSQLite {
		system = semconv.DBSystemSqlite
	}

	name, err := otelsql.Register(driverName(d),
		otelsql.WithDatabaseName(dbName),
		otelsql.TraceQueryWithArgs(),
		otelsql.WithSystem(system),
		otelsql.TraceRowsAffected(),
	)
	if err != nil {
		return "", err
	}
	otelDriverNames[d] = name
	return name, nil
}

// InitDBWithConfig opens the database and applies pending migrations.
func (dm *Manager) InitDBWithConfig(cfg config.DatabaseConfig) (result0 *sql.DB, err error) {
	dialect, _, err := ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	_, span := observability.TraceDatabaseFunction(context.Background(), "InitDBWithConfig",
		attribute.String("db.name", extractDatabaseName(cfg.URL)),
		attribute.String("db.system", string(dialect)),
		attribute.Bool("migrations.enabled", true),
		attribute.Int("db.max_open_conns", cfg.MaxOpenConns),
		attribute.Int("db.max_idle_conns", cfg.MaxIdleConns),
		attribute.String("db.conn_max_lifetime", cfg.ConnMaxLifetime.String()),
	)
	defer observability.FinishSpan(span, &err)

	if err := dm.RunMigrations(cfg.URL); err != nil {
		return nil, err
	}

	return dm.InitDBWithoutMigrations(cfg)
}

// InitDBWithoutMigrations initializes and returns a database connection without running migrations
func (dm *Manager) InitDBWithoutMigrations(cfg config.DatabaseConfig) (result0 *sql.DB, err error) {
	ctx, span := observability.TraceDatabaseFunction(context.Background(), "InitDBWithoutMigrations",
		attribute.String("db.name", extractDatabaseName(cfg.URL)),
	)
	defer observability.FinishSpan(span, &err)

	dialect, dsn, err := ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("db.system", string(dialect)))

	driver, err := otelDriver(dialect, extractDatabaseName(cfg.URL))
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to register otelsql driver")
	}

	if dialect == DialectSQLite {
		if err := registerSQLiteFunctions(); err != nil {
			return nil, contextutils.WrapError(err, "failed to register sqlite functions")
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to open database connection")
	}

	if dialect == DialectSQLite {
		// single writer; pragmas in the DSN apply to the one connection
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			dm.logger.Error(ctx, "Failed to close database connection after ping failure", closeErr)
		}
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseConnection, "failed to ping database: %v", err)
	}

	dm.logger.Info(ctx, "Database connection established", map[string]interface{}{
		"db.system":         string(dialect),
		"max_open_conns":    cfg.MaxOpenConns,
		"max_idle_conns":    cfg.MaxIdleConns,
		"conn_max_lifetime": cfg.ConnMaxLifetime.String(),
	})

	return db, nil
}

// RunMigrations applies the embedded migrations for the URL's dialect.
// It uses its own connection because closing a migrate instance closes the database it wraps.
func (dm *Manager) RunMigrations(databaseURL string) (err error) {
	ctx, span := observability.TraceDatabaseFunction(context.Background(), "RunMigrations",
		attribute.String("migration.type", "golang_migrate"),
	)
	defer observability.FinishSpan(span, &err)

	m, err := dm.newMigrate(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			dm.logger.Error(ctx, "Error closing migration", errors.Join(srcErr, dbErr))
		}
	}()

	dm.logger.Info(ctx, "Starting database migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		dm.logger.Info(ctx, "No new migrations to apply")
		return nil
	}
	if err != nil {
		return contextutils.WrapError(err, "migrate up failed")
	}

	if version, dirty, vErr := m.Version(); vErr == nil {
		span.SetAttributes(attribute.Int("migration.version", int(version)), attribute.Bool("migration.dirty", dirty))
		dm.logger.Info(ctx, "Database migrations completed successfully", map[string]interface{}{"version": version})
	}
	return nil
}

// MigrationVersion reports the applied schema version. ok is false when nothing is applied yet.
func (dm *Manager) MigrationVersion(databaseURL string) (version uint, dirty bool, ok bool, err error) {
	m, err := dm.newMigrate(databaseURL)
	if err != nil {
		return 0, false, false, err
	}
	defer func() { _, _ = m.Close() }()

	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, contextutils.WrapError(err, "failed to read migration version")
	}
	return version, dirty, true, nil
}

func (dm *Manager) newMigrate(databaseURL string) (*migrate.Migrate, error) {
	dialect, dsn, err := ParseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	src, err := iofs.New(migrationsFS, "migrations/"+string(dialect))
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to open embedded migrations")
	}

	raw, err := sql.Open(driverName(dialect), dsn)
	if err != nil {
		_ = src.Close()
		return nil, contextutils.WrapError(err, "failed to open migration connection")
	}

	var drv database.Driver
	switch dialect {
	case DialectPostgres:
		drv, err = migratepg.WithInstance(raw, &migratepg.Config{})
	case DialectSQLite:
		drv, err = migratesqlite.WithInstance(raw, &migratesqlite.Config{})
	}
	if err != nil {
		_ = raw.Close()
		_ = src.Close()
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseConnection, "failed to initialize migration driver: %v", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, string(dialect), drv)
	if err != nil {
		_ = drv.Close()
		_ = src.Close()
		return nil, contextutils.WrapError(err, "failed to initialize golang-migrate")
	}
	return m, nil
}

// extractDatabaseName extracts the database name from a connection URL
func extractDatabaseName(databaseURL string) string {
	if strings.HasPrefix(databaseURL, "sqlite://") || strings.HasPrefix(databaseURL, "file:") {
		path := strings.TrimPrefix(strings.TrimPrefix(databaseURL, "sqlite://"), "file:")
		if idx := strings.Index(path, "?"); idx != -1 {
			path = path[:idx]
		}
		if idx := strings.LastIndex(path, "/"); idx != -1 {
			path = path[idx+1:]
		}
		if path != "" {
			return path
		}
		return "culturology"
	}

	if u, err := url.Parse(databaseURL); err == nil && u.Path != "" {
		if dbName := strings.TrimPrefix(u.Path, "/"); dbName != "" {
			return dbName
		}
	}

	return "culturology"
}

// redactURL drops credentials so URLs can be logged and returned in errors.
func redactURL(databaseURL string) string {
	u, err := url.Parse(databaseURL)
	if err != nil || u.User == nil {
		return databaseURL
	}
	return u.Redacted()
}
