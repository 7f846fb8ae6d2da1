package inventory

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

type seedData struct {
	Products []struct {
		ID       string `yaml:"id"`
		Name     string `yaml:"name"`
		Category string `yaml:"category"`
	} `yaml:"products"`
	Warehouses []struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"warehouses"`
	Stock []struct {
		ProductID   string `yaml:"product_id"`
		WarehouseID string `yaml:"warehouse_id"`
		Quantity    int    `yaml:"quantity"`
	} `yaml:"stock"`
}

// Seed loads the embedded demo fixture into an empty database. A
// database that already has products is left untouched.
func Seed(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		return nil
	}

	var data seedData
	if err := yaml.Unmarshal(seedYAML, &data); err != nil {
		return fmt.Errorf("parse seed fixture: %w", err)
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, p := range data.Products {
		if _, err := tx.ExecContext(ctx, `INSERT INTO products(id, name, category) VALUES(?, ?, ?)`,
			p.ID, p.Name, p.Category); err != nil {
			return fmt.Errorf("seed product %s: %w", p.ID, err)
		}
	}
	for _, w := range data.Warehouses {
		if _, err := tx.ExecContext(ctx, `INSERT INTO warehouses(id, name) VALUES(?, ?)`,
			w.ID, w.Name); err != nil {
			return fmt.Errorf("seed warehouse %s: %w", w.ID, err)
		}
	}
	for _, s := range data.Stock {
		if _, err := tx.ExecContext(ctx, `INSERT INTO stock_levels(product_id, warehouse_id, quantity) VALUES(?, ?, ?)`,
			s.ProductID, s.WarehouseID, s.Quantity); err != nil {
			return fmt.Errorf("seed stock %s@%s: %w", s.ProductID, s.WarehouseID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	log.Debug().Int("products", len(data.Products)).Int("warehouses", len(data.Warehouses)).
		Msg("inventory: seeded demo fixture")
	return nil
}
