// ABOUTME: Home dashboard showing the last week of sales and stock health
// ABOUTME: Renders KPI blocks, best sellers and low-stock products

package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/storefront/internal/analytics"
	"github.com/markalston/storefront/internal/format"
	"github.com/markalston/storefront/internal/tui/icons"
	"github.com/markalston/storefront/internal/tui/styles"
	"github.com/markalston/storefront/internal/tui/widgets"
)

// maxLowStockRows caps the low-stock list on screen
const maxLowStockRows = 8

// Dashboard displays sales KPIs
type Dashboard struct {
	data     *analytics.Dashboard
	greeting string
	lowStock int
	width    int
	height   int
}

// New creates a dashboard. data may be nil while loading.
func New(data *analytics.Dashboard, greeting string, lowStock, width, height int) *Dashboard {
	return &Dashboard{
		data:     data,
		greeting: greeting,
		lowStock: lowStock,
		width:    width,
		height:   height,
	}
}

// Update replaces the dashboard data
func (d *Dashboard) Update(data *analytics.Dashboard) {
	d.data = data
}

// Data returns the data being shown
func (d *Dashboard) Data() *analytics.Dashboard {
	return d.data
}

// SetSize updates the dashboard dimensions
func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// View renders the dashboard
func (d *Dashboard) View() string {
	if d.data == nil {
		return styles.Panel.Width(max(d.width-4, 20)).Render("Loading sales data...")
	}

	var sb strings.Builder
	sb.WriteString(styles.Title.Render(d.greeting))
	sb.WriteString("\n")
	sb.WriteString(styles.Subtitle.Render(fmt.Sprintf("Sales from %s to %s", d.data.Range.StartDate, d.data.Range.EndDate)))
	sb.WriteString("\n")

	sb.WriteString(d.renderBlocks())
	sb.WriteString("\n\n")

	left := d.renderTop()
	right := d.renderLowStock()
	if d.width >= 90 {
		col := (d.width - 4) / 2
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(col).Render(left),
			lipgloss.NewStyle().Width(col).Render(right)))
	} else {
		sb.WriteString(left + "\n\n" + right)
	}

	for _, w := range d.data.Warnings {
		sb.WriteString("\n" + widgets.StatusText("Unavailable: "+w, widgets.StatusWarning))
	}

	return lipgloss.NewStyle().
		Width(d.width).
		MaxHeight(max(d.height, 1)).
		Render(sb.String())
}

// renderBlocks lays out the KPI blocks, four per row when they fit
func (d *Dashboard) renderBlocks() string {
	cfg := widgets.DefaultMetricBlockConfig()
	perRow := 4
	if d.width > 0 {
		perRow = max(1, min(4, d.width/cfg.Width))
	}

	k := d.data.KPI
	daily := make([]float64, 0, len(d.data.Daily))
	for _, day := range d.data.Daily {
		f, _ := day.Amount.Float64()
		daily = append(daily, f)
	}

	blocks := []string{
		widgets.MetricBlockWithSparkline(icons.Money, "Revenue", format.Money(k.TotalRevenue), daily, "last 7 days", cfg),
		widgets.MetricBlock(icons.Receipt, "Sales", format.Count(k.Transactions), fmt.Sprintf("%d this week", d.data.WeekCount), cfg),
		widgets.MetricBlock(icons.Chart, "Avg ticket", format.Money(k.AverageTicket), "per sale", cfg),
		widgets.MetricBlockWithBar(icons.Product, "In stock", d.inStockPercent(),
			fmt.Sprintf("%d of %d products", d.data.Products-len(d.data.LowStock), d.data.Products), cfg),
	}

	var rows []string
	for i := 0; i < len(blocks); i += perRow {
		end := min(i+perRow, len(blocks))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, blocks[i:end]...))
	}
	return strings.Join(rows, "\n")
}

// inStockPercent is the share of products above the low-stock threshold
func (d *Dashboard) inStockPercent() float64 {
	if d.data.Products == 0 {
		return 100
	}
	healthy := d.data.Products - len(d.data.LowStock)
	return float64(healthy) / float64(d.data.Products) * 100
}

func (d *Dashboard) renderTop() string {
	var sb strings.Builder
	sb.WriteString(styles.Subtitle.Render(icons.TrendUp.String() + " Best sellers"))
	sb.WriteString("\n")
	if len(d.data.Top) == 0 {
		sb.WriteString("No sales in this period")
		return sb.String()
	}
	best := float64(d.data.Top[0].Quantity)
	for i, p := range d.data.Top {
		sb.WriteString(fmt.Sprintf("%d. %-18s %s %s\n", i+1, truncate(p.Name, 18),
			widgets.ShareBar(float64(p.Quantity), best, 12, styles.Primary),
			styles.ValueStyle.Render(format.Count(p.Quantity))))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (d *Dashboard) renderLowStock() string {
	var sb strings.Builder
	sb.WriteString(styles.Subtitle.Render(icons.Warning.String() + fmt.Sprintf(" Stock at or below %d", d.lowStock)))
	sb.WriteString("\n")
	if len(d.data.LowStock) == 0 {
		sb.WriteString(widgets.StatusText("All products are stocked", widgets.StatusOK))
		return sb.String()
	}
	for i, p := range d.data.LowStock {
		if i == maxLowStockRows {
			sb.WriteString(styles.Subtitle.Render(fmt.Sprintf("...and %d more", len(d.data.LowStock)-maxLowStockRows)))
			break
		}
		sb.WriteString(fmt.Sprintf("%-22s %s\n", truncate(p.Name, 22), widgets.StockBadge(p.Stock, d.lowStock)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
