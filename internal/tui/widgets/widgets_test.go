// ABOUTME: Tests for dashboard widgets
// ABOUTME: Verifies block layout widths, badges and sparkline scaling

package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/storefront/internal/client"
	"github.com/markalston/storefront/internal/tui/icons"
)

func TestMetricBlock_LinesHaveConfiguredWidth(t *testing.T) {
	cfg := DefaultMetricBlockConfig()
	cfg.Width = 26

	blocks := map[string]string{
		"plain":     MetricBlock(icons.Money, "Revenue", "$1,234.50", "last 7 days", cfg),
		"bar":       MetricBlockWithBar(icons.Product, "In stock", 82, "41 of 50 products", cfg),
		"sparkline": MetricBlockWithSparkline(icons.Chart, "Daily", "$90.00", []float64{1, 5, 3, 8}, "per day", cfg),
	}
	for name, block := range blocks {
		for i, line := range strings.Split(block, "\n") {
			if w := lipgloss.Width(line); w != cfg.Width {
				t.Errorf("%s line %d: width %d, want %d: %q", name, i, w, cfg.Width, line)
			}
		}
	}
}

func TestMetricBlock_TruncatesLongSubtitle(t *testing.T) {
	cfg := DefaultMetricBlockConfig()
	block := MetricBlock(icons.Money, "Revenue", "$1", strings.Repeat("x", 100), cfg)
	if !strings.Contains(block, "...") {
		t.Error("expected truncated subtitle")
	}
}

func TestSparkline(t *testing.T) {
	got := Sparkline([]float64{0, 7}, 2, "")
	if got != "▁█" {
		t.Errorf("expected ▁█, got %q", got)
	}
	if Sparkline(nil, 5, "") != "" {
		t.Error("expected empty sparkline for no data")
	}
	if w := lipgloss.Width(Sparkline([]float64{1, 2, 3}, 8, "")); w != 8 {
		t.Errorf("expected padded width 8, got %d", w)
	}
}

func TestStockLevel(t *testing.T) {
	tests := []struct {
		stock int
		want  StatusLevel
	}{
		{0, StatusCritical},
		{-1, StatusCritical},
		{3, StatusWarning},
		{5, StatusWarning},
		{6, StatusOK},
	}
	for _, tc := range tests {
		if got := StockLevel(tc.stock, 5); got != tc.want {
			t.Errorf("StockLevel(%d) = %d, want %d", tc.stock, got, tc.want)
		}
	}
	if !strings.Contains(StockBadge(0, 5), "OUT") {
		t.Error("expected OUT badge for empty stock")
	}
}

func TestRoleBadge(t *testing.T) {
	if !strings.Contains(RoleBadge(client.RoleAdmin), "Admin") {
		t.Error("expected Admin label")
	}
	if !strings.Contains(RoleBadge(client.RoleEmployee), "Employee") {
		t.Error("expected Employee label")
	}
}

func TestShareBar_ZeroTotal(t *testing.T) {
	if w := lipgloss.Width(ShareBar(3, 0, 10, "#7C3AED")); w != 10 {
		t.Errorf("expected width 10, got %d", w)
	}
}
