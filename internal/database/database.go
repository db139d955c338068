package database

import (
	"fmt"
	"strings"

	"quiz-match/internal/config"
	"quiz-match/internal/logger"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/reflectx"
	_ "github.com/lib/pq"           // Postgres driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	_ "github.com/sijms/go-ora/v2"  // Oracle driver
	"go.uber.org/zap"
)

const (
	DriverOracle   = "oracle"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

func init() {
	// go-ora registers as "oracle", which sqlx does not know; repositories write
	// queries with "?" and rely on Rebind.
	sqlx.BindDriver(DriverOracle, sqlx.NAMED)
}

// NewSQLXDB connects to the store selected by db.driver.
func NewSQLXDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := Open(cfg.DB.Driver, cfg.GetDSN())
	if err != nil {
		return nil, err
	}
	if cfg.DB.Driver != DriverSQLite && cfg.DB.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	}
	logger.Get().Info("Connected to database", zap.String("driver", cfg.DB.Driver))
	return db, nil
}

// Open connects and pings. SQLite is limited to one connection so writers
// queue in the pool instead of failing with SQLITE_BUSY.
func Open(driver, dsn string) (*sqlx.DB, error) {
	if driver == DriverSQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	switch driver {
	case DriverSQLite:
		db.SetMaxOpenConns(1)
	case DriverOracle:
		// Oracle reports column names upper-cased.
		db.Mapper = reflectx.NewMapperTagFunc("db", strings.ToUpper, strings.ToUpper)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}
	return db, nil
}

func sqliteDSN(dsn string) string {
	if dsn == "" {
		dsn = "quizmatch.db"
	}
	if strings.Contains(dsn, "_foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on&_busy_timeout=5000"
}
