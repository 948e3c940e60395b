package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-sql-driver/mysql"

	"bank-reconciliation-service/internal/config"
)

// mysqlErrUnknownDatabase is ER_BAD_DB_ERROR.
const mysqlErrUnknownDatabase = 1049

// NewConnection opens the application database, creating the schema if the
// server reports it does not exist yet.
func NewConnection(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	dsn, err := cfg.GetDSN()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	err = db.PingContext(ctx)
	if err != nil {
		if !isUnknownDatabase(err) {
			db.Close()
			return nil, fmt.Errorf("error pinging database: %w", err)
		}

		slog.Info("Database does not exist, attempting to create it", "database", cfg.Database.Name)
		db.Close()

		if err := createDatabase(ctx, cfg); err != nil {
			return nil, err
		}
		slog.Info("Successfully created database", "database", cfg.Database.Name)

		db, err = sql.Open("mysql", dsn)
		if err != nil {
			return nil, fmt.Errorf("error connecting to new database: %w", err)
		}
		if err = db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("error verifying connection to new database: %w", err)
		}
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	slog.Info("Successfully connected to MySQL database",
		"host", cfg.Database.Host, "database", cfg.Database.Name)
	return db, nil
}

func isUnknownDatabase(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrUnknownDatabase
}

func createDatabase(ctx context.Context, cfg *config.Config) error {
	rootDSN, err := getRootDSN(cfg)
	if err != nil {
		return err
	}
	rootDB, err := sql.Open("mysql", rootDSN)
	if err != nil {
		return fmt.Errorf("error connecting to MySQL root: %w", err)
	}
	defer rootDB.Close()

	_, err = rootDB.ExecContext(ctx, fmt.Sprintf(
		"CREATE DATABASE IF NOT EXISTS `%s` CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci",
		cfg.Database.Name,
	))
	if err != nil {
		return fmt.Errorf("error creating database: %w", err)
	}
	return nil
}

// getRootDSN is the application DSN without a default schema.
func getRootDSN(cfg *config.Config) (string, error) {
	mc, err := cfg.MySQLConfig()
	if err != nil {
		return "", err
	}
	mc.DBName = ""
	return mc.FormatDSN(), nil
}
