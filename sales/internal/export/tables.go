package export

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/medfabrik/plantops/sales/internal/store"
)

// PrintMonthlySummary renders the monthly aggregation as a console table.
func PrintMonthlySummary(w io.Writer, rows []store.MonthlySummaryRow) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Month", "Category", "Revenue", "Sales", "Avg Discount"})

	for _, r := range rows {
		table.Append([]string{
			r.Month,
			r.Category,
			fmt.Sprintf("%.2f", r.TotalRevenue),
			fmt.Sprintf("%d", r.TotalSales),
			fmt.Sprintf("%.1f%%", r.AvgDiscount*100),
		})
	}
	table.Render()
}

// PrintTopProducts renders the product ranking as a console table.
func PrintTopProducts(w io.Writer, rows []store.TopProductRow) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Product", "Category", "Revenue", "Units Sold"})

	for _, r := range rows {
		table.Append([]string{
			r.Name,
			r.Category,
			fmt.Sprintf("%.2f", r.TotalRevenue),
			fmt.Sprintf("%d", r.UnitsSold),
		})
	}
	table.Render()
}

// PrintRegionalPerformance renders revenue per region and segment.
func PrintRegionalPerformance(w io.Writer, rows []store.RegionalRow) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Region", "Segment", "Revenue", "Customers"})

	for _, r := range rows {
		table.Append([]string{
			r.Region,
			r.Segment,
			fmt.Sprintf("%.2f", r.TotalRevenue),
			fmt.Sprintf("%d", r.Customers),
		})
	}
	table.Render()
}
