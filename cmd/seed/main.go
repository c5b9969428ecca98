// Package main provides a CLI tool for creating the schema and seeding the
// database with demo data.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"stockbook/internal/core/types"
	"stockbook/internal/domain/auth"
	"stockbook/internal/domain/catalogs/item"
	"stockbook/internal/domain/catalogs/supplier"
	"stockbook/internal/domain/ledger"
	"stockbook/internal/infrastructure/storage/postgres"
	"stockbook/internal/infrastructure/storage/postgres/catalog_repo"
	"stockbook/internal/infrastructure/storage/postgres/ledger_repo"
	"stockbook/pkg/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS items (
	id            UUID PRIMARY KEY,
	name          TEXT NOT NULL UNIQUE,
	unit          TEXT NOT NULL,
	minimum_stock BIGINT NOT NULL CHECK (minimum_stock > 0),
	damaged       BIGINT NOT NULL DEFAULT 0 CHECK (damaged >= 0),
	unit_price    NUMERIC(18,4) NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS suppliers (
	id             UUID PRIMARY KEY,
	name           TEXT NOT NULL,
	contact_person TEXT NOT NULL DEFAULT '',
	phone          TEXT NOT NULL DEFAULT '',
	email          TEXT NOT NULL DEFAULT '',
	address        TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
	id          UUID PRIMARY KEY,
	item_id     UUID NOT NULL REFERENCES items(id),
	direction   TEXT NOT NULL CHECK (direction IN ('in', 'out')),
	quantity    BIGINT NOT NULL CHECK (quantity > 0),
	date        TIMESTAMPTZ NOT NULL,
	reference   TEXT NOT NULL DEFAULT '',
	notes       TEXT NOT NULL DEFAULT '',
	recorded_by TEXT NOT NULL DEFAULT '',
	supplier_id UUID REFERENCES suppliers(id),
	unit_price  NUMERIC(18,4) NOT NULL DEFAULT 0,
	total_value NUMERIC(18,4) NOT NULL DEFAULT 0,
	reversed    BOOLEAN NOT NULL DEFAULT FALSE,
	reversal_of UUID REFERENCES transactions(id),
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_item_direction
	ON transactions (item_id, direction);
CREATE INDEX IF NOT EXISTS idx_transactions_date
	ON transactions (date);
CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_reversal_of
	ON transactions (reversal_of) WHERE reversal_of IS NOT NULL;

CREATE TABLE IF NOT EXISTS audit_log (
	id                 UUID PRIMARY KEY,
	entity_type        TEXT NOT NULL,
	entity_id          UUID NOT NULL,
	action             TEXT NOT NULL,
	user_id            TEXT NOT NULL,
	changes            JSONB,
	changes_compressed BYTEA,
	compression_algo   TEXT NOT NULL DEFAULT 'none',
	created_at         TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_log_entity
	ON audit_log (entity_type, entity_id, created_at DESC);
`

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if _, err := pool.Exec(ctx, schema); err != nil {
		log.Fatalw("failed to create schema", "error", err)
	}
	log.Info("schema created")

	if password := os.Getenv("OPERATOR_PASSWORD"); password != "" {
		hash, err := auth.HashPassword(password)
		if err != nil {
			log.Fatalw("failed to hash operator password", "error", err)
		}
		log.Infow("operator password hash (set OPERATOR_PASSWORD_HASH to this)", "hash", hash)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	txManager := postgres.NewTxManager(pool)
	itemRepo := catalog_repo.NewItemRepo(txManager)
	supplierRepo := catalog_repo.NewSupplierRepo(txManager)
	transactionRepo := ledger_repo.NewTransactionRepo(txManager)

	engine := ledger.NewService(transactionRepo, itemRepo, txManager, nil)

	sup := supplier.New("Acme Office Supplies")
	sup.ContactPerson = "Jordan Reyes"
	sup.Email = "sales@acme-office.example"
	if err := supplierRepo.Create(ctx, sup); err != nil {
		return fmt.Errorf("create supplier: %w", err)
	}

	demoItems := []struct {
		name  string
		unit  string
		min   int64
		price string
		stock int64
	}{
		{"Copy paper A4", "ream", 20, "4.80", 120},
		{"Ballpoint pen", "pcs", 50, "0.35", 400},
		{"Toner cartridge", "pcs", 5, "64.90", 12},
		{"Desk lamp", "pcs", 3, "22.00", 7},
	}

	for _, d := range demoItems {
		it := item.New(d.name, d.unit, types.Quantity(d.min))
		it.UnitPrice = types.MustMoney(d.price)
		if err := itemRepo.Create(ctx, it); err != nil {
			return fmt.Errorf("create item %q: %w", d.name, err)
		}

		supID := sup.ID
		if _, err := engine.Record(ctx, ledger.RecordInput{
			ItemID:     it.ID,
			Direction:  ledger.DirectionIn,
			Quantity:   types.Quantity(d.stock),
			Date:       time.Now().UTC().AddDate(0, 0, -7),
			Reference:  "INITIAL-STOCK",
			Notes:      "opening stock",
			RecordedBy: "seed",
			SupplierID: &supID,
			UnitPrice:  it.UnitPrice,
		}); err != nil {
			return fmt.Errorf("record opening stock for %q: %w", d.name, err)
		}

		log.Infow("seeded item", "name", d.name, "stock", d.stock)
	}

	return nil
}
