package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"
)

const (
	DefaultRecords = 2000
	DefaultSeed    = 42
)

var defaultStartDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type product struct {
	name      string
	category  string
	unitPrice float64
}

type customer struct {
	name    string
	region  string
	segment string
}

// Demo catalog and customer base, inserted once.
var (
	products = []product{
		{"Product A - Basic", "Software", 49.00},
		{"Product B - Pro", "Software", 149.00},
		{"Product C - Enterprise", "Software", 499.00},
		{"Hardware Kit S", "Hardware", 89.00},
		{"Hardware Kit L", "Hardware", 229.00},
		{"Support Basic", "Service", 29.00},
		{"Support Premium", "Service", 99.00},
		{"Consulting Day", "Service", 850.00},
		{"License Annual", "License", 199.00},
		{"License Multi-User", "License", 599.00},
	}

	customers = []customer{
		{"Alpha GmbH", "North", "B2B"},
		{"Beta AG", "South", "B2B"},
		{"Gamma Solutions", "West", "B2B"},
		{"Delta Corp", "East", "B2B"},
		{"Epsilon Tech", "North", "B2B"},
		{"Zeta Retail", "South", "B2C"},
		{"Eta Retail", "West", "B2C"},
		{"Theta Retail", "East", "B2C"},
		{"Iota Startup", "North", "B2B"},
		{"Kappa Trading", "West", "B2B"},
	}
)

// Q4 sells noticeably more.
const seasonalBoostQ4 = 1.4

var (
	quantityChoices = []weightedInt{{1, 50}, {2, 25}, {3, 15}, {5, 7}, {10, 3}}
	discountChoices = []weightedFloat{{0.0, 40}, {0.05, 25}, {0.10, 20}, {0.15, 10}, {0.20, 5}}
)

type SeedConfig struct {
	Records   int
	Seed      int64
	StartDate time.Time
}

func (cfg *SeedConfig) Validate() error {
	if cfg.Records <= 0 {
		return errors.New("records must be greater than 0")
	}
	if cfg.StartDate.IsZero() {
		cfg.StartDate = defaultStartDate
	}
	return nil
}

// SeedMasterData inserts the product catalog and customer base unless they
// already exist, and returns their ids.
func (s *Store) SeedMasterData(ctx context.Context) (productIDs, customerIDs []int, err error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return nil, nil, fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		productIDs, err = s.selectIDs(ctx, `SELECT id FROM products ORDER BY id`)
		if err != nil {
			return nil, nil, err
		}
		customerIDs, err = s.selectIDs(ctx, `SELECT id FROM customers ORDER BY id`)
		if err != nil {
			return nil, nil, err
		}
		return productIDs, customerIDs, nil
	}

	for _, p := range products {
		var id int
		err := s.db.QueryRowContext(ctx,
			`INSERT INTO products (name, category, unit_price) VALUES (?, ?, ?) RETURNING id`,
			p.name, p.category, p.unitPrice).Scan(&id)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to insert product %q: %w", p.name, err)
		}
		productIDs = append(productIDs, id)
	}

	for _, c := range customers {
		var id int
		err := s.db.QueryRowContext(ctx,
			`INSERT INTO customers (name, region, segment) VALUES (?, ?, ?) RETURNING id`,
			c.name, c.region, c.segment).Scan(&id)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to insert customer %q: %w", c.name, err)
		}
		customerIDs = append(customerIDs, id)
	}

	s.log.Info("Seeded master data",
		slog.Int("products", len(productIDs)),
		slog.Int("customers", len(customerIDs)))
	return productIDs, customerIDs, nil
}

// GenerateSales inserts cfg.Records synthetic sales with Q4 seasonality.
// The random source is built from cfg.Seed, so the same config reproduces
// the same dataset.
func (s *Store) GenerateSales(ctx context.Context, cfg SeedConfig) (int, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}

	productIDs, customerIDs, err := s.SeedMasterData(ctx)
	if err != nil {
		return 0, err
	}

	prices := make(map[int]float64, len(productIDs))
	rows, err := s.db.QueryContext(ctx, `SELECT id, unit_price FROM products`)
	if err != nil {
		return 0, fmt.Errorf("failed to query prices: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int
		var price float64
		if err := rows.Scan(&id, &price); err != nil {
			return 0, fmt.Errorf("failed to scan price: %w", err)
		}
		prices[id] = price
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("error iterating prices: %w", err)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sales (sale_date, product_id, customer_id, quantity, discount, revenue)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < cfg.Records; i++ {
		saleDate := cfg.StartDate.AddDate(0, 0, rng.Intn(365))
		boost := 1.0
		if saleDate.Month() >= time.October {
			boost = seasonalBoostQ4
		}

		productID := productIDs[rng.Intn(len(productIDs))]
		customerID := customerIDs[rng.Intn(len(customerIDs))]
		quantity := chooseInt(rng, quantityChoices)
		discount := chooseFloat(rng, discountChoices)

		revenue := prices[productID] * float64(quantity) * boost * (1 - discount)
		revenue = math.Round(revenue*100) / 100

		if _, err := stmt.ExecContext(ctx,
			saleDate.Format("2006-01-02"), productID, customerID, quantity, discount, revenue); err != nil {
			return 0, fmt.Errorf("failed to insert sale: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sales: %w", err)
	}

	s.log.Info("Generated sales records", slog.Int("records", cfg.Records), slog.Int64("seed", cfg.Seed))
	return cfg.Records, nil
}

func (s *Store) selectIDs(ctx context.Context, query string) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query ids: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type weightedInt struct {
	value  int
	weight int
}

type weightedFloat struct {
	value  float64
	weight int
}

func chooseInt(rng *rand.Rand, choices []weightedInt) int {
	total := 0
	for _, c := range choices {
		total += c.weight
	}
	n := rng.Intn(total)
	for _, c := range choices {
		n -= c.weight
		if n < 0 {
			return c.value
		}
	}
	return choices[len(choices)-1].value
}

func chooseFloat(rng *rand.Rand, choices []weightedFloat) float64 {
	total := 0
	for _, c := range choices {
		total += c.weight
	}
	n := rng.Intn(total)
	for _, c := range choices {
		n -= c.weight
		if n < 0 {
			return c.value
		}
	}
	return choices[len(choices)-1].value
}
