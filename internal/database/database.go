// Package database prepares the MySQL database the PHP test suite runs against.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net"
	"regexp"

	"github.com/go-sql-driver/mysql"

	"pth/internal/config"
)

var validName = regexp.MustCompile(`^[A-Za-z0-9_$-]{1,64}$`)

// Manager manages the test database
type Manager struct {
	settings config.Database
	logger   *slog.Logger
}

// NewManager creates a Manager for the given connection settings
func NewManager(settings config.Database, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{settings: settings, logger: logger}
}

// DSN returns the server DSN, without a default database selected
func (m *Manager) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = m.settings.User
	cfg.Passwd = m.settings.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(m.settings.Host, m.settings.Port)
	return cfg.FormatDSN()
}

// EnsureDatabase creates the configured database if it does not exist yet.
// It reports whether the database was created.
func (m *Manager) EnsureDatabase(ctx context.Context) (bool, error) {
	name := m.settings.Name
	if !isValidDatabaseName(name) {
		return false, fmt.Errorf("invalid database name: %q", name)
	}

	db, err := sql.Open("mysql", m.DSN())
	if err != nil {
		return false, fmt.Errorf("failed to connect to database server: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return false, fmt.Errorf("failed to ping database server %s: %w", m.settings.Host, err)
	}

	exists, err := databaseExists(ctx, db, name)
	if err != nil {
		return false, fmt.Errorf("failed to check database %s: %w", name, err)
	}
	if exists {
		m.logger.Debug("Database exists", "name", name)
		return false, nil
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", name)); err != nil {
		return false, fmt.Errorf("failed to create database %s: %w", name, err)
	}
	m.logger.Debug("Created database", "name", name)
	return true, nil
}

func databaseExists(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?)"
	err := db.QueryRowContext(ctx, query, name).Scan(&exists)
	return exists, err
}

// isValidDatabaseName accepts unquoted MySQL identifiers only, so the name can
// be interpolated into CREATE DATABASE
func isValidDatabaseName(name string) bool {
	return validName.MatchString(name)
}
