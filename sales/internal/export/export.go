// Package export turns the sales aggregations into deliverables: a
// semicolon-separated CSV of the monthly summary, a JSON report bundling
// every aggregation plus the raw rows, and rendered console tables.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/medfabrik/plantops/sales/internal/store"
)

// WriteSummaryCSV saves the monthly summary as sales_summary_<timestamp>.csv.
// The separator is a semicolon so the file opens cleanly in spreadsheet
// tools configured for European locales.
func WriteSummaryCSV(log *slog.Logger, dir string, now time.Time, rows []store.MonthlySummaryRow) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("sales_summary_%s.csv", now.UTC().Format("20060102_150405")))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = ';'

	if err := w.Write([]string{"month", "category", "total_revenue", "total_sales", "avg_discount"}); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.Month,
			r.Category,
			strconv.FormatFloat(r.TotalRevenue, 'f', 2, 64),
			strconv.Itoa(r.TotalSales),
			strconv.FormatFloat(r.AvgDiscount, 'f', 4, 64),
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("failed to write record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush export: %w", err)
	}

	log.Info("Wrote CSV export", slog.String("path", path), slog.Int("rows", len(rows)))
	return path, nil
}

type jsonReport struct {
	GeneratedAt time.Time                 `json:"generated_at"`
	Monthly     []monthlyJSON             `json:"monthly_summary"`
	TopProducts []topProductJSON          `json:"top_products"`
	Regional    []regionalJSON            `json:"regional_performance"`
	RawSales    []rawSaleJSON             `json:"raw_sales"`
}

type monthlyJSON struct {
	Month        string  `json:"month"`
	Category     string  `json:"category"`
	TotalRevenue float64 `json:"total_revenue"`
	TotalSales   int     `json:"total_sales"`
	AvgDiscount  float64 `json:"avg_discount"`
}

type topProductJSON struct {
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	TotalRevenue float64 `json:"total_revenue"`
	UnitsSold    int     `json:"units_sold"`
}

type regionalJSON struct {
	Region       string  `json:"region"`
	Segment      string  `json:"segment"`
	TotalRevenue float64 `json:"total_revenue"`
	Customers    int     `json:"customers"`
}

type rawSaleJSON struct {
	SaleDate string  `json:"sale_date"`
	Product  string  `json:"product"`
	Category string  `json:"category"`
	Customer string  `json:"customer"`
	Region   string  `json:"region"`
	Segment  string  `json:"segment"`
	Quantity int     `json:"quantity"`
	Discount float64 `json:"discount"`
	Revenue  float64 `json:"revenue"`
}

// WriteJSONReport saves every aggregation plus the raw sales as one
// sales_report_<timestamp>.json document.
func WriteJSONReport(log *slog.Logger, dir string, now time.Time,
	monthly []store.MonthlySummaryRow, top []store.TopProductRow,
	regional []store.RegionalRow, raw []store.RawSaleRow) (string, error) {

	report := jsonReport{
		GeneratedAt: now.UTC(),
		Monthly:     make([]monthlyJSON, 0, len(monthly)),
		TopProducts: make([]topProductJSON, 0, len(top)),
		Regional:    make([]regionalJSON, 0, len(regional)),
		RawSales:    make([]rawSaleJSON, 0, len(raw)),
	}
	for _, r := range monthly {
		report.Monthly = append(report.Monthly, monthlyJSON{r.Month, r.Category, r.TotalRevenue, r.TotalSales, r.AvgDiscount})
	}
	for _, r := range top {
		report.TopProducts = append(report.TopProducts, topProductJSON{r.Name, r.Category, r.TotalRevenue, r.UnitsSold})
	}
	for _, r := range regional {
		report.Regional = append(report.Regional, regionalJSON{r.Region, r.Segment, r.TotalRevenue, r.Customers})
	}
	for _, r := range raw {
		report.RawSales = append(report.RawSales, rawSaleJSON{
			SaleDate: r.SaleDate.Format("2006-01-02"),
			Product:  r.Product,
			Category: r.Category,
			Customer: r.Customer,
			Region:   r.Region,
			Segment:  r.Segment,
			Quantity: r.Quantity,
			Discount: r.Discount,
			Revenue:  r.Revenue,
		})
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("sales_report_%s.json", now.UTC().Format("20060102_150405")))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	log.Info("Wrote JSON report", slog.String("path", path))
	return path, nil
}
