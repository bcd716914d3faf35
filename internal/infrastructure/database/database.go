package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"locar-esign/internal/config"
)

type Database struct {
	DB     *sql.DB
	logger *zap.Logger
}

func NewDatabase(cfg *config.Config, logger *zap.Logger) (*Database, error) {
	// Build PostgreSQL connection string
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.DBName,
		cfg.Database.SSLMode,
	)

	db, err := sql.Open(cfg.Database.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connected successfully",
		zap.String("driver", cfg.Database.Driver),
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("dbname", cfg.Database.DBName),
	)

	database := &Database{
		DB:     db,
		logger: logger,
	}

	// Run migrations
	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return database, nil
}

func (d *Database) migrate() error {
	createRentalsSQL := `
	CREATE TABLE IF NOT EXISTS rentals (
		id SERIAL PRIMARY KEY,
		customer_name VARCHAR(255) NOT NULL,
		customer_email VARCHAR(255) NOT NULL,
		vehicle_desc TEXT DEFAULT '',
		starts_at TIMESTAMP NOT NULL,
		ends_at TIMESTAMP NOT NULL,
		total_amount NUMERIC(12,2) DEFAULT 0,
		signature_status VARCHAR(20) NOT NULL DEFAULT 'pending',
		document_id VARCHAR(64),
		package_id VARCHAR(64),
		signed_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`

	if _, err := d.DB.Exec(createRentalsSQL); err != nil {
		return fmt.Errorf("failed to create rentals table: %w", err)
	}

	createAPILogsSQL := `
	CREATE TABLE IF NOT EXISTS provider_api_logs (
		id SERIAL PRIMARY KEY,
		endpoint TEXT NOT NULL,
		method VARCHAR(10) NOT NULL,
		request_body TEXT DEFAULT '',
		response_body TEXT DEFAULT '',
		status_code INT DEFAULT 0,
		duration_ms BIGINT DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`

	if _, err := d.DB.Exec(createAPILogsSQL); err != nil {
		return fmt.Errorf("failed to create provider_api_logs table: %w", err)
	}

	// Create indexes separately (PostgreSQL doesn't support IF NOT EXISTS in same statement)
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_rentals_signature_status ON rentals(signature_status);`,
		`CREATE INDEX IF NOT EXISTS idx_rentals_package_id ON rentals(package_id);`,
		`CREATE INDEX IF NOT EXISTS idx_rentals_document_id ON rentals(document_id);`,
	}
	for _, stmt := range indexes {
		if _, err := d.DB.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	d.logger.Info("Database migrations completed successfully")
	return nil
}

func (d *Database) Close() error {
	return d.DB.Close()
}

var Module = fx.Module("database",
	fx.Provide(NewDatabase),
)
