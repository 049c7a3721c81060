// ABOUTME: Sparkline widget renders mini trend charts using block characters
// ABOUTME: Used for daily revenue over the dashboard's week

package widgets

import (
	"github.com/charmbracelet/lipgloss"
)

// SparklineBlocks are the Unicode block characters for different heights
var SparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders values (oldest first) as a width-wide block chart.
// An empty color leaves the terminal default.
func Sparkline(values []float64, width int, color lipgloss.Color) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	sampled := fitWidth(values, width)
	lo, hi := bounds(sampled)
	result := make([]rune, len(sampled))
	for i, v := range sampled {
		result[i] = valueToBlock(v, lo, hi)
	}

	style := lipgloss.NewStyle()
	if color != "" {
		style = style.Foreground(color)
	}

	return style.Render(string(result))
}

// fitWidth left-pads short series with zeros and samples long ones down to width
func fitWidth(values []float64, width int) []float64 {
	if len(values) == width {
		return values
	}
	out := make([]float64, width)
	if len(values) < width {
		copy(out[width-len(values):], values)
		return out
	}
	step := float64(len(values)) / float64(width)
	for i := range out {
		out[i] = values[min(int(float64(i)*step), len(values)-1)]
	}
	return out
}

// bounds returns the smallest and largest value
func bounds(values []float64) (lo, hi float64) {
	lo, hi = values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}

func valueToBlock(value, lo, hi float64) rune {
	top := len(SparklineBlocks) - 1
	if hi == lo {
		return SparklineBlocks[len(SparklineBlocks)/2]
	}
	idx := int((value - lo) / (hi - lo) * float64(top))
	return SparklineBlocks[max(0, min(idx, top))]
}
