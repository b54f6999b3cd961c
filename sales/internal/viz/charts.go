// Package viz renders the sales aggregations as SVG analysis charts.
package viz

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/medfabrik/plantops/internal/svg"
	"github.com/medfabrik/plantops/sales/internal/store"
)

type Config struct {
	Logger *slog.Logger

	// OutputDir receives the rendered SVG files.
	OutputDir string
}

func (cfg *Config) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "docs"
	}
	return nil
}

// Data bundles the query results the charts are drawn from.
type Data struct {
	Monthly  []store.MonthlySummaryRow
	Top      []store.TopProductRow
	Regional []store.RegionalRow
	Raw      []store.RawSaleRow
}

var categoryPalette = []string{"#3498db", "#2ecc71", "#e74c3c", "#f39c12", "#9b59b6", "#1abc9c"}

// RenderAll writes the four analysis charts and returns the written paths.
// Charts with no underlying data are skipped.
func RenderAll(cfg Config, data Data) ([]string, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create chart directory: %w", err)
	}

	charts := []struct {
		name   string
		render func(Data) []byte
	}{
		{"01_monthly_revenue.svg", renderMonthlyRevenue},
		{"02_top_products.svg", renderTopProducts},
		{"03_regional_heatmap.svg", renderRegionalHeatmap},
		{"04_discount_vs_revenue.svg", renderDiscountScatter},
	}

	paths := make([]string, 0, len(charts))
	for _, chart := range charts {
		out := chart.render(data)
		if out == nil {
			continue
		}
		path := filepath.Join(cfg.OutputDir, chart.name)
		if err := os.WriteFile(path, out, 0644); err != nil {
			return nil, fmt.Errorf("failed to write chart %s: %w", chart.name, err)
		}
		cfg.Logger.Info("Wrote chart", slog.String("path", path))
		paths = append(paths, path)
	}
	return paths, nil
}

// renderMonthlyRevenue draws stacked bars of revenue per month, one segment
// per product category.
func renderMonthlyRevenue(data Data) []byte {
	if len(data.Monthly) == 0 {
		return nil
	}

	var months, categories []string
	revenue := make(map[string]map[string]float64)
	for _, r := range data.Monthly {
		if _, seen := revenue[r.Month]; !seen {
			months = append(months, r.Month)
			revenue[r.Month] = make(map[string]float64)
		}
		if !slices.Contains(categories, r.Category) {
			categories = append(categories, r.Category)
		}
		revenue[r.Month][r.Category] += r.TotalRevenue
	}
	slices.Sort(months)
	slices.Sort(categories)

	maxTotal := 0.0
	for _, m := range months {
		total := 0.0
		for _, v := range revenue[m] {
			total += v
		}
		maxTotal = max(maxTotal, total)
	}

	const width, height = 960, 420
	const left, right, top, bottom = 80.0, 170.0, 50.0, 60.0

	c := svg.New(width, height, 12, "Monthly revenue by category")

	plotW := float64(width) - left - right
	gap := plotW / float64(len(months))
	barW := gap * 0.75

	y := func(v float64) float64 {
		return svg.Scale(v, 0, maxTotal, float64(height)-bottom, top)
	}

	for i, m := range months {
		x := left + gap*float64(i) + (gap-barW)/2
		base := float64(height) - bottom
		for ci, cat := range categories {
			v := revenue[m][cat]
			if v == 0 {
				continue
			}
			h := base - y(v)
			c.Rect(x, base-h, barW, h, categoryPalette[ci%len(categoryPalette)], "none")
			base -= h
		}
		c.Text(x+barW/2, float64(height)-bottom+16, m, "middle", "#666666")
	}

	c.Line(left, float64(height)-bottom, float64(width)-right, float64(height)-bottom, "#999999", 1)
	c.Text(left-8, y(maxTotal)+4, fmt.Sprintf("%.0f €", maxTotal), "end", "#666666")
	c.Text(left-8, y(0)+4, "0 €", "end", "#666666")

	for ci, cat := range categories {
		ly := top + float64(16*ci)
		c.Rect(float64(width)-right+16, ly-9, 12, 12, categoryPalette[ci%len(categoryPalette)], "none")
		c.Text(float64(width)-right+34, ly, cat, "start", "#333333")
	}

	return c.Bytes()
}

// renderTopProducts draws a horizontal bar per product, best seller on top,
// labeled with its revenue.
func renderTopProducts(data Data) []byte {
	if len(data.Top) == 0 {
		return nil
	}

	maxRevenue := 0.0
	for _, r := range data.Top {
		maxRevenue = max(maxRevenue, r.TotalRevenue)
	}

	const rowH = 32.0
	const left, right, top, bottom = 200.0, 110.0, 50.0, 30.0
	width := 900
	height := int(top + rowH*float64(len(data.Top)) + bottom)

	c := svg.New(width, height, 12, "Top products by revenue")

	x := func(v float64) float64 {
		return svg.Scale(v, 0, maxRevenue, left, float64(width)-right)
	}

	for i, r := range data.Top {
		y := top + rowH*float64(i)
		barW := x(r.TotalRevenue) - left
		c.Rect(left, y+6, barW, rowH-12, categoryPalette[0], "none")
		c.Text(left-10, y+rowH/2+4, r.Name, "end", "#333333")
		c.Text(left+barW+8, y+rowH/2+4, fmt.Sprintf("%.0f €", r.TotalRevenue), "start", "#666666")
	}

	c.Line(left, top, left, top+rowH*float64(len(data.Top)), "#999999", 1)
	return c.Bytes()
}

// renderRegionalHeatmap draws a region by segment grid shaded by revenue and
// annotated with the value.
func renderRegionalHeatmap(data Data) []byte {
	if len(data.Regional) == 0 {
		return nil
	}

	var regions, segments []string
	revenue := make(map[string]map[string]float64)
	maxRevenue := 0.0
	for _, r := range data.Regional {
		if _, seen := revenue[r.Region]; !seen {
			regions = append(regions, r.Region)
			revenue[r.Region] = make(map[string]float64)
		}
		if !slices.Contains(segments, r.Segment) {
			segments = append(segments, r.Segment)
		}
		revenue[r.Region][r.Segment] += r.TotalRevenue
		maxRevenue = max(maxRevenue, revenue[r.Region][r.Segment])
	}
	slices.Sort(regions)
	slices.Sort(segments)

	const cellW, cellH = 140.0, 56.0
	const left, top = 120.0, 80.0
	width := int(left + cellW*float64(len(segments)) + 40)
	height := int(top + cellH*float64(len(regions)) + 40)

	c := svg.New(width, height, 12, "Revenue by region and segment (€)")

	for si, seg := range segments {
		c.Text(left+cellW*float64(si)+cellW/2, top-14, seg, "middle", "#333333")
	}
	for ri, region := range regions {
		c.Text(left-12, top+cellH*float64(ri)+cellH/2+4, region, "end", "#333333")
		for si, seg := range segments {
			x := left + cellW*float64(si)
			y := top + cellH*float64(ri)
			v := revenue[region][seg]

			t := 0.0
			if maxRevenue > 0 {
				t = v / maxRevenue
			}
			// Negative diverging values give the white-to-blue half of the ramp.
			c.Rect(x, y, cellW-3, cellH-3, svg.DivergingColor(-t), "#dddddd")

			label := "–"
			if v > 0 {
				label = fmt.Sprintf("%.0f", v)
			}
			fill := "#333333"
			if t > 0.6 {
				fill = "#ffffff"
			}
			c.Text(x+cellW/2, y+cellH/2+4, label, "middle", fill)
		}
	}

	return c.Bytes()
}

// renderDiscountScatter draws one point per sale, discount against revenue,
// colored by product category.
func renderDiscountScatter(data Data) []byte {
	if len(data.Raw) == 0 {
		return nil
	}

	var categories []string
	maxRevenue := 0.0
	maxDiscount := 0.0
	for _, r := range data.Raw {
		if !slices.Contains(categories, r.Category) {
			categories = append(categories, r.Category)
		}
		maxRevenue = max(maxRevenue, r.Revenue)
		maxDiscount = max(maxDiscount, r.Discount)
	}
	slices.Sort(categories)

	const width, height = 900, 440
	const left, right, top, bottom = 80.0, 150.0, 50.0, 50.0

	c := svg.New(width, height, 12, "Discount vs revenue per sale")

	x := func(discount float64) float64 {
		return svg.Scale(discount, 0, maxDiscount, left, float64(width)-right)
	}
	y := func(revenue float64) float64 {
		return svg.Scale(revenue, 0, maxRevenue, float64(height)-bottom, top)
	}

	c.Line(left, float64(height)-bottom, float64(width)-right, float64(height)-bottom, "#999999", 1)
	c.Line(left, top, left, float64(height)-bottom, "#999999", 1)
	c.Text(left-8, y(maxRevenue)+4, fmt.Sprintf("%.0f €", maxRevenue), "end", "#666666")
	c.Text(left-8, y(0)+4, "0 €", "end", "#666666")
	c.Text(x(0), float64(height)-bottom+16, "0%", "middle", "#666666")
	c.Text(x(maxDiscount), float64(height)-bottom+16, fmt.Sprintf("%.0f%%", maxDiscount*100), "middle", "#666666")

	colorFor := make(map[string]string, len(categories))
	for ci, cat := range categories {
		colorFor[cat] = categoryPalette[ci%len(categoryPalette)]
	}

	for _, r := range data.Raw {
		c.Circle(x(r.Discount), y(r.Revenue), 2.5, colorFor[r.Category])
	}

	for ci, cat := range categories {
		ly := top + float64(16*ci)
		c.Circle(float64(width)-right+22, ly-4, 4, colorFor[cat])
		c.Text(float64(width)-right+34, ly, cat, "start", "#333333")
	}

	return c.Bytes()
}
