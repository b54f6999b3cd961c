package store

import (
	"context"
	"fmt"
	"time"
)

type MonthlySummaryRow struct {
	Month        string
	Category     string
	TotalRevenue float64
	TotalSales   int
	AvgDiscount  float64
}

type TopProductRow struct {
	Name         string
	Category     string
	TotalRevenue float64
	UnitsSold    int
}

type RegionalRow struct {
	Region       string
	Segment      string
	TotalRevenue float64
	Customers    int
}

type RawSaleRow struct {
	SaleDate time.Time
	Product  string
	Category string
	Customer string
	Region   string
	Segment  string
	Quantity int
	Discount float64
	Revenue  float64
}

// MonthlySummary aggregates revenue, sale count, and average discount per
// month and product category, ordered chronologically.
func (s *Store) MonthlySummary(ctx context.Context) ([]MonthlySummaryRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			strftime(s.sale_date, '%Y-%m') AS month,
			p.category,
			SUM(s.revenue)                 AS total_revenue,
			COUNT(s.id)                    AS total_sales,
			AVG(s.discount)                AS avg_discount
		FROM sales s
		JOIN products p ON s.product_id = p.id
		GROUP BY month, p.category
		ORDER BY month, p.category`)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly summary: %w", err)
	}
	defer rows.Close()

	var result []MonthlySummaryRow
	for rows.Next() {
		var r MonthlySummaryRow
		if err := rows.Scan(&r.Month, &r.Category, &r.TotalRevenue, &r.TotalSales, &r.AvgDiscount); err != nil {
			return nil, fmt.Errorf("failed to scan monthly summary row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// TopProducts returns the best-selling products by revenue.
func (s *Store) TopProducts(ctx context.Context, limit int) ([]TopProductRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.name, p.category, SUM(s.revenue) AS total_revenue, SUM(s.quantity) AS units_sold
		FROM sales s
		JOIN products p ON s.product_id = p.id
		GROUP BY p.id, p.name, p.category
		ORDER BY total_revenue DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top products: %w", err)
	}
	defer rows.Close()

	var result []TopProductRow
	for rows.Next() {
		var r TopProductRow
		if err := rows.Scan(&r.Name, &r.Category, &r.TotalRevenue, &r.UnitsSold); err != nil {
			return nil, fmt.Errorf("failed to scan top product row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// RegionalPerformance aggregates revenue and distinct buyers per region and
// customer segment.
func (s *Store) RegionalPerformance(ctx context.Context) ([]RegionalRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.region, c.segment, SUM(s.revenue) AS total_revenue, COUNT(DISTINCT c.id) AS customers
		FROM sales s
		JOIN customers c ON s.customer_id = c.id
		GROUP BY c.region, c.segment
		ORDER BY total_revenue DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query regional performance: %w", err)
	}
	defer rows.Close()

	var result []RegionalRow
	for rows.Next() {
		var r RegionalRow
		if err := rows.Scan(&r.Region, &r.Segment, &r.TotalRevenue, &r.Customers); err != nil {
			return nil, fmt.Errorf("failed to scan regional row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// RawSales returns every sale joined with product and customer, ordered by
// date. Used for the full report export.
func (s *Store) RawSales(ctx context.Context) ([]RawSaleRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.sale_date, p.name AS product, p.category, c.name AS customer,
		       c.region, c.segment, s.quantity, s.discount, s.revenue
		FROM sales s
		JOIN products p ON s.product_id = p.id
		JOIN customers c ON s.customer_id = c.id
		ORDER BY s.sale_date, s.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query raw sales: %w", err)
	}
	defer rows.Close()

	var result []RawSaleRow
	for rows.Next() {
		var r RawSaleRow
		if err := rows.Scan(&r.SaleDate, &r.Product, &r.Category, &r.Customer,
			&r.Region, &r.Segment, &r.Quantity, &r.Discount, &r.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan raw sale row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
