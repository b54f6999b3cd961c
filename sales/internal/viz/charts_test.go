package viz_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/medfabrik/plantops/sales/internal/store"
	"github.com/medfabrik/plantops/sales/internal/viz"
)

func sampleData() viz.Data {
	return viz.Data{
		Monthly: []store.MonthlySummaryRow{
			{Month: "2024-01", Category: "Software", TotalRevenue: 1200, TotalSales: 10, AvgDiscount: 0.05},
			{Month: "2024-01", Category: "Hardware", TotalRevenue: 800, TotalSales: 4, AvgDiscount: 0.0},
			{Month: "2024-02", Category: "Software", TotalRevenue: 1500, TotalSales: 12, AvgDiscount: 0.1},
		},
		Top: []store.TopProductRow{
			{Name: "Consulting Day", Category: "Service", TotalRevenue: 5100, UnitsSold: 6},
			{Name: "Product B - Pro", Category: "Software", TotalRevenue: 2980, UnitsSold: 20},
		},
		Regional: []store.RegionalRow{
			{Region: "North", Segment: "B2B", TotalRevenue: 3200, Customers: 3},
			{Region: "South", Segment: "B2C", TotalRevenue: 410, Customers: 1},
		},
		Raw: []store.RawSaleRow{
			{SaleDate: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), Product: "Product B - Pro", Category: "Software",
				Customer: "Alpha GmbH", Region: "North", Segment: "B2B", Quantity: 2, Discount: 0.05, Revenue: 283.1},
			{SaleDate: time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC), Product: "Hardware Kit S", Category: "Hardware",
				Customer: "Zeta Retail", Region: "South", Segment: "B2C", Quantity: 1, Discount: 0.0, Revenue: 89.0},
		},
	}
}

func TestSales_RenderAll_WritesFourCharts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	paths, err := viz.RenderAll(viz.Config{Logger: logger.With("test", t.Name()), OutputDir: dir}, sampleData())
	require.NoError(t, err)

	expected := []string{
		"01_monthly_revenue.svg",
		"02_top_products.svg",
		"03_regional_heatmap.svg",
		"04_discount_vs_revenue.svg",
	}
	require.Len(t, paths, len(expected))

	for i, name := range expected {
		require.Equal(t, name, filepath.Base(paths[i]))

		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		content := string(data)
		require.True(t, strings.HasPrefix(content, "<svg"), "file %s", name)
		require.True(t, strings.HasSuffix(content, "</svg>\n"), "file %s", name)
	}
}

func TestSales_RenderAll_ChartContents(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := viz.RenderAll(viz.Config{Logger: logger.With("test", t.Name()), OutputDir: dir}, sampleData())
	require.NoError(t, err)

	monthly, err := os.ReadFile(filepath.Join(dir, "01_monthly_revenue.svg"))
	require.NoError(t, err)
	require.Contains(t, string(monthly), "2024-01")
	require.Contains(t, string(monthly), "Software")

	top, err := os.ReadFile(filepath.Join(dir, "02_top_products.svg"))
	require.NoError(t, err)
	require.Contains(t, string(top), "Consulting Day")
	require.Contains(t, string(top), "5100")

	heatmap, err := os.ReadFile(filepath.Join(dir, "03_regional_heatmap.svg"))
	require.NoError(t, err)
	require.Contains(t, string(heatmap), "North")
	require.Contains(t, string(heatmap), "B2C")

	scatter, err := os.ReadFile(filepath.Join(dir, "04_discount_vs_revenue.svg"))
	require.NoError(t, err)
	require.Contains(t, string(scatter), "Hardware")
}

func TestSales_RenderAll_EmptyDataSkipsCharts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	paths, err := viz.RenderAll(viz.Config{Logger: logger.With("test", t.Name()), OutputDir: dir}, viz.Data{})
	require.NoError(t, err)
	require.Empty(t, paths)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestSales_RenderAll_ConfigValidate(t *testing.T) {
	t.Parallel()

	_, err := viz.RenderAll(viz.Config{}, sampleData())
	require.Error(t, err)
}
