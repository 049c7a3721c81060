// ABOUTME: Dashboard and stock check commands for the storefront CLI
// ABOUTME: Weekly sales KPIs and a CI-friendly low-stock threshold check

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/markalston/storefront/internal/analytics"
	"github.com/markalston/storefront/internal/client"
	"github.com/markalston/storefront/internal/format"
	"github.com/markalston/storefront/internal/guard"
	"github.com/spf13/cobra"
)

var (
	lowStockThreshold int
	stockThreshold    int
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the last week of sales and low stock",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(runDashboard)
	},
}

var stockCmd = &cobra.Command{
	Use:   "stock",
	Short: "Inspect stock levels",
}

var stockCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check for products at or below a stock threshold",
	Long: `Check stock levels and exit non-zero if any product is at or below
the threshold.

Exit codes:
  0 - All products above threshold
  1 - One or more products at or below threshold
  2 - Error (connectivity, not logged in, invalid input)`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(runStockCheck)
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd, stockCmd)
	stockCmd.AddCommand(stockCheckCmd)

	dashboardCmd.Flags().IntVar(&lowStockThreshold, "low-stock", 5, "Stock level at or below which products are listed")
	stockCheckCmd.Flags().IntVar(&stockThreshold, "threshold", 5, "Stock level at or below which a product fails the check")
}

func runDashboard(ctx context.Context, w io.Writer) int {
	if err := authorize(guard.Home); err != nil {
		return fail(w, err)
	}
	if lowStockThreshold < 0 {
		return fail(w, fmt.Errorf("--low-stock must not be negative"))
	}

	d := analytics.Load(ctx, current.api, now(), lowStockThreshold)
	if IsJSONOutput() {
		fmt.Fprintln(w, formatDashboardJSON(d))
	} else {
		fmt.Fprintln(w, formatDashboardHuman(d))
	}
	return 0
}

// formatDashboardHuman formats the dashboard for human readability
func formatDashboardHuman(d *analytics.Dashboard) string {
	var b strings.Builder

	for _, warning := range d.Warnings {
		fmt.Fprintf(&b, "⚠ %s\n", warning)
	}
	if len(d.Warnings) > 0 {
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, `Sales %s to %s
  Revenue:        %s
  Transactions:   %s
  Average ticket: %s
  Catalog:        %s products
`,
		d.Range.StartDate, d.Range.EndDate,
		format.Money(d.KPI.TotalRevenue),
		format.Count(d.KPI.Transactions),
		format.Money(d.KPI.AverageTicket),
		format.Count(d.Products),
	)

	if len(d.Daily) > 0 {
		b.WriteString("\nRevenue by day\n")
		for _, day := range d.Daily {
			fmt.Fprintf(&b, "  %s  %s\n", day.Label, format.Money(day.Amount))
		}
	}

	if len(d.Top) > 0 {
		b.WriteString("\nTop products\n")
		for i, p := range d.Top {
			fmt.Fprintf(&b, "  %d. %s (%s)\n", i+1, p.Name, format.Units(p.Quantity))
		}
	}

	if len(d.LowStock) > 0 {
		b.WriteString("\nLow stock\n")
		for _, p := range d.LowStock {
			fmt.Fprintf(&b, "  %s: %s\n", p.Name, format.Units(p.Stock))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// formatDashboardJSON formats the dashboard as JSON
func formatDashboardJSON(d *analytics.Dashboard) string {
	daily := make([]map[string]interface{}, len(d.Daily))
	for i, day := range d.Daily {
		daily[i] = map[string]interface{}{"date": day.Label, "amount": day.Amount.StringFixed(2)}
	}
	top := make([]map[string]interface{}, len(d.Top))
	for i, p := range d.Top {
		top[i] = map[string]interface{}{"name": p.Name, "quantity": p.Quantity}
	}
	lowStock := d.LowStock
	if lowStock == nil {
		lowStock = []client.Product{}
	}
	warnings := d.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	output := map[string]interface{}{
		"start_date":     d.Range.StartDate,
		"end_date":       d.Range.EndDate,
		"total_revenue":  d.KPI.TotalRevenue.StringFixed(2),
		"transactions":   d.KPI.Transactions,
		"average_ticket": d.KPI.AverageTicket.StringFixed(2),
		"products":       d.Products,
		"daily":          daily,
		"top_products":   top,
		"low_stock":      lowStock,
		"warnings":       warnings,
	}

	data, _ := json.MarshalIndent(output, "", "  ")
	return string(data)
}

// runStockCheck lists products at or below the threshold and returns exit code
func runStockCheck(ctx context.Context, w io.Writer) int {
	if err := authorize(guard.Products); err != nil {
		return fail(w, err)
	}
	if stockThreshold < 0 {
		return fail(w, fmt.Errorf("--threshold must not be negative"))
	}

	products, err := current.api.ListProducts(ctx)
	if err != nil {
		return fail(w, err)
	}
	if len(products) == 0 {
		fmt.Fprintln(w, "Error: the catalog is empty")
		return 2
	}

	low := analytics.LowStock(products, stockThreshold)
	if IsJSONOutput() {
		fmt.Fprintln(w, formatStockJSON(products, low))
	} else {
		fmt.Fprintln(w, formatStockHuman(products, low))
	}

	if len(low) > 0 {
		return 1
	}
	return 0
}

// formatStockHuman formats the stock check for human readability
func formatStockHuman(products, low []client.Product) string {
	var output string
	for _, p := range low {
		output += fmt.Sprintf("✗ %s: %s (threshold: %d)\n", p.Name, format.Units(p.Stock), stockThreshold)
	}

	if len(low) > 0 {
		output += fmt.Sprintf("\nFAILED: %d of %d product(s) at or below threshold", len(low), len(products))
	} else {
		output += fmt.Sprintf("✓ All %d product(s) above %s\n", len(products), format.Units(stockThreshold))
		output += fmt.Sprintf("\nPASSED: All %d product(s) above threshold", len(products))
	}
	return output
}

// formatStockJSON formats the stock check as JSON
func formatStockJSON(products, low []client.Product) string {
	status := "passed"
	if len(low) > 0 {
		status = "failed"
	}

	items := make([]map[string]interface{}, len(low))
	for i, p := range low {
		items[i] = map[string]interface{}{
			"id":    p.ID,
			"name":  p.Name,
			"stock": p.Stock,
		}
	}

	output := map[string]interface{}{
		"status":    status,
		"threshold": stockThreshold,
		"checked":   len(products),
		"low_stock": items,
	}

	data, _ := json.MarshalIndent(output, "", "  ")
	return string(data)
}
