package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	DB *gorm.DB
}

func New(databaseURL string) (*Database, error) {
	var db *gorm.DB
	var err error

	if strings.HasPrefix(databaseURL, "sqlite://") {
		// SQLite for development
		dbPath := strings.TrimPrefix(databaseURL, "sqlite://")
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	} else {
		// PostgreSQL for production
		db, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Create tables manually with raw SQL
	createTablesSQL := `
	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		external_id TEXT NOT NULL,
		sku TEXT,
		name TEXT NOT NULL,
		description TEXT,
		type TEXT DEFAULT 'simple',
		status TEXT DEFAULT 'publish',
		manage_stock BOOLEAN DEFAULT false,
		stock_qty INTEGER DEFAULT 0,
		regular_price DECIMAL(10,2) DEFAULT 0,
		created_at TIMESTAMP,
		updated_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS product_variations (
		id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL,
		external_id TEXT,
		sku TEXT,
		manage_stock BOOLEAN DEFAULT false,
		stock_qty INTEGER DEFAULT 0,
		regular_price DECIMAL(10,2) DEFAULT 0,
		created_at TIMESTAMP,
		updated_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		number TEXT NOT NULL,
		status TEXT,
		shipping_total DECIMAL(10,2) DEFAULT 0,
		shipping_method TEXT,
		billing_email TEXT,
		billing_first_name TEXT,
		billing_last_name TEXT,
		invoice_number INTEGER DEFAULT 0,
		invoice_pdf_url TEXT,
		invoice_total DECIMAL(10,2) DEFAULT 0,
		invoice_generated_at TIMESTAMP,
		created_at TIMESTAMP,
		updated_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS order_items (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL,
		product_id TEXT,
		variation_id TEXT,
		name TEXT,
		sku TEXT,
		product_type TEXT DEFAULT 'simple',
		quantity INTEGER DEFAULT 0,
		total DECIMAL(10,2) DEFAULT 0,
		stock_consumed_at TIMESTAMP,
		created_at TIMESTAMP,
		updated_at TIMESTAMP
	);
	`

	err = db.Exec(createTablesSQL).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
