package database

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"quiz-match/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

//go:embed migrations
var migrationFiles embed.FS

// RunMigrations applies every pending up migration for the connected driver.
func RunMigrations(db *sqlx.DB) error {
	switch db.DriverName() {
	case DriverPostgres, DriverSQLite:
		return runMigrate(db)
	case DriverOracle:
		return runOracleMigrations(db)
	default:
		return fmt.Errorf("no migrations for driver %q", db.DriverName())
	}
}

// runMigrate does not Close the migrate instance: that would close db as well.
func runMigrate(db *sqlx.DB) error {
	src, err := iofs.New(migrationFiles, "migrations/ansi")
	if err != nil {
		return fmt.Errorf("could not open embedded migrations: %w", err)
	}

	var driver migratedb.Driver
	if db.DriverName() == DriverPostgres {
		driver, err = postgres.WithInstance(db.DB, &postgres.Config{})
	} else {
		driver, err = sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	}
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, db.DriverName(), driver)
	if err != nil {
		return fmt.Errorf("could not create migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not apply migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	logger.Get().Info("Migrations completed successfully",
		zap.String("driver", db.DriverName()), zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// runOracleMigrations executes oracle/*.up.sql in name order, one statement at a
// time, recording applied files in schema_versions.
func runOracleMigrations(db *sqlx.DB) error {
	if _, err := db.Exec(`CREATE TABLE schema_versions (name VARCHAR2(255) PRIMARY KEY)`); err != nil &&
		!strings.Contains(err.Error(), "ORA-00955") {
		return fmt.Errorf("could not create schema_versions: %w", err)
	}

	var applied []string
	if err := db.Select(&applied, `SELECT name FROM schema_versions`); err != nil {
		return fmt.Errorf("could not read schema_versions: %w", err)
	}
	done := make(map[string]bool, len(applied))
	for _, name := range applied {
		done[name] = true
	}

	files, err := fs.Glob(migrationFiles, "migrations/oracle/*.up.sql")
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, file := range files {
		if done[file] {
			continue
		}
		content, err := migrationFiles.ReadFile(file)
		if err != nil {
			return fmt.Errorf("could not read migration file %s: %w", file, err)
		}
		for _, stmt := range SplitStatements(string(content)) {
			if _, err := db.Exec(stmt); err != nil {
				return fmt.Errorf("could not execute migration %s: %w", file, err)
			}
		}
		if _, err := db.Exec(db.Rebind(`INSERT INTO schema_versions (name) VALUES (?)`), file); err != nil {
			return fmt.Errorf("could not record migration %s: %w", file, err)
		}
		logger.Get().Info("Executed migration", zap.String("file", file))
	}
	return nil
}

// SplitStatements breaks a script on ";" and drops blanks and "--" comment lines.
func SplitStatements(script string) []string {
	var lines []string
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		lines = append(lines, line)
	}

	var stmts []string
	for _, part := range strings.Split(strings.Join(lines, "\n"), ";") {
		if s := strings.TrimSpace(part); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
