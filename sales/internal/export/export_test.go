package export_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/medfabrik/plantops/sales/internal/export"
	"github.com/medfabrik/plantops/sales/internal/store"
)

var exportNow = time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)

func sampleMonthly() []store.MonthlySummaryRow {
	return []store.MonthlySummaryRow{
		{Month: "2024-01", Category: "Software", TotalRevenue: 1234.5, TotalSales: 12, AvgDiscount: 0.05},
		{Month: "2024-01", Category: "Hardware", TotalRevenue: 890.0, TotalSales: 4, AvgDiscount: 0.0125},
	}
}

func TestSales_WriteSummaryCSV_Format(t *testing.T) {
	t.Parallel()

	log := logger.With("test", t.Name())
	dir := t.TempDir()

	path, err := export.WriteSummaryCSV(log, dir, exportNow, sampleMonthly())
	require.NoError(t, err)
	require.Equal(t, "sales_summary_20240601_123000.csv", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "month;category;total_revenue;total_sales;avg_discount", lines[0])
	require.Equal(t, "2024-01;Software;1234.50;12;0.0500", lines[1])
	require.Equal(t, "2024-01;Hardware;890.00;4;0.0125", lines[2])
}

func TestSales_WriteJSONReport_Sections(t *testing.T) {
	t.Parallel()

	log := logger.With("test", t.Name())
	dir := t.TempDir()

	top := []store.TopProductRow{
		{Name: "Consulting Day", Category: "Service", TotalRevenue: 5100.0, UnitsSold: 6},
	}
	regional := []store.RegionalRow{
		{Region: "North", Segment: "B2B", TotalRevenue: 3200.0, Customers: 3},
	}
	raw := []store.RawSaleRow{
		{
			SaleDate: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			Product:  "Product B - Pro",
			Category: "Software",
			Customer: "Alpha GmbH",
			Region:   "North",
			Segment:  "B2B",
			Quantity: 2,
			Discount: 0.05,
			Revenue:  283.1,
		},
	}

	path, err := export.WriteJSONReport(log, dir, exportNow, sampleMonthly(), top, regional, raw)
	require.NoError(t, err)
	require.Equal(t, "sales_report_20240601_123000.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var report struct {
		GeneratedAt time.Time `json:"generated_at"`
		Monthly     []struct {
			Month        string  `json:"month"`
			TotalRevenue float64 `json:"total_revenue"`
		} `json:"monthly_summary"`
		TopProducts []struct {
			Name      string `json:"name"`
			UnitsSold int    `json:"units_sold"`
		} `json:"top_products"`
		Regional []struct {
			Region    string `json:"region"`
			Customers int    `json:"customers"`
		} `json:"regional_performance"`
		RawSales []struct {
			SaleDate string  `json:"sale_date"`
			Revenue  float64 `json:"revenue"`
		} `json:"raw_sales"`
	}
	require.NoError(t, json.Unmarshal(data, &report))

	require.Equal(t, exportNow, report.GeneratedAt)
	require.Len(t, report.Monthly, 2)
	require.Equal(t, "2024-01", report.Monthly[0].Month)
	require.Len(t, report.TopProducts, 1)
	require.Equal(t, "Consulting Day", report.TopProducts[0].Name)
	require.Equal(t, 6, report.TopProducts[0].UnitsSold)
	require.Len(t, report.Regional, 1)
	require.Equal(t, 3, report.Regional[0].Customers)
	require.Len(t, report.RawSales, 1)
	require.Equal(t, "2024-03-15", report.RawSales[0].SaleDate)
	require.Equal(t, 283.1, report.RawSales[0].Revenue)
}

func TestSales_WriteJSONReport_EmptySectionsStayArrays(t *testing.T) {
	t.Parallel()

	log := logger.With("test", t.Name())

	path, err := export.WriteJSONReport(log, t.TempDir(), exportNow, nil, nil, nil, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(data)
	require.Contains(t, content, `"monthly_summary": []`)
	require.Contains(t, content, `"raw_sales": []`)
	require.NotContains(t, content, "null")
}

func TestSales_PrintMonthlySummary_RendersTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	export.PrintMonthlySummary(&buf, sampleMonthly())

	out := buf.String()
	require.Contains(t, out, "Month")
	require.Contains(t, out, "Avg Discount")
	require.Contains(t, out, "2024-01")
	require.Contains(t, out, "1234.50")
	require.Contains(t, out, "5.0%")
}

func TestSales_PrintTopProducts_RendersTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	export.PrintTopProducts(&buf, []store.TopProductRow{
		{Name: "License Multi-User", Category: "License", TotalRevenue: 9500.0, UnitsSold: 18},
	})

	out := buf.String()
	require.Contains(t, out, "Units Sold")
	require.Contains(t, out, "License Multi-User")
	require.Contains(t, out, "9500.00")
}

func TestSales_PrintRegionalPerformance_RendersTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	export.PrintRegionalPerformance(&buf, []store.RegionalRow{
		{Region: "West", Segment: "B2C", TotalRevenue: 410.25, Customers: 2},
	})

	out := buf.String()
	require.Contains(t, out, "Region")
	require.Contains(t, out, "West")
	require.Contains(t, out, "B2C")
	require.Contains(t, out, "410.25")
}
