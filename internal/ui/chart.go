package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/rivo/tview"

	"crypto-narrator/internal/narrative"
	"crypto-narrator/internal/types"
)

const (
	chartHeight = 6
	rsiHeight   = 5
	marker      = '•'
	guideRune   = '┄'
)

// RSI overbought/oversold guides.
var rsiGuides = []float64{30, 70}

// ChartView draws a price and an RSI chart per asset.
type ChartView struct {
	textView *tview.TextView
	width    int
	decimals [2]int
}

func NewChartView(width int, decimals [2]int) *ChartView {
	textView := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)

	textView.SetTitle(" Charts ").SetBorder(true)

	return &ChartView{textView: textView, width: width, decimals: decimals}
}

// Widget returns the tview primitive.
func (v *ChartView) Widget() tview.Primitive {
	return v.textView
}

// Update redraws both assets from the run result.
func (v *ChartView) Update(res *types.RunResult) {
	v.textView.Clear()
	var b strings.Builder
	for i := range res.Series {
		s := &res.Series[i]
		snap := res.Snapshots[i]

		prices := make([]types.Value, 0, s.Len())
		for _, p := range s.Prices() {
			prices = append(prices, types.Defined(p))
		}
		lo, hi := bounds(prices, v.width)

		fmt.Fprintf(&b, "[yellow]%s price[-]  %s .. %s\n", tview.Escape(snap.Symbol),
			narrative.FormatPrice(lo, v.decimals[i]), narrative.FormatPrice(hi, v.decimals[i]))
		for _, line := range Plot(prices, v.width, chartHeight, lo, hi) {
			fmt.Fprintf(&b, "[green]%s[-]\n", line)
		}

		fmt.Fprintf(&b, "[yellow]%s RSI[-]  %s\n", tview.Escape(snap.Symbol), snap.LatestRSI.Format("%.0f", "unavailable"))
		for _, line := range Plot(s.RSI, v.width, rsiHeight, 0, 100, rsiGuides...) {
			fmt.Fprintf(&b, "[aqua]%s[-]\n", line)
		}
		b.WriteString("\n")
	}
	fmt.Fprint(v.textView, b.String())
	v.textView.ScrollToBeginning()
}

// bounds returns the min and max of the defined values among the last width.
func bounds(values []types.Value, width int) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range tail(values, width) {
		if f, ok := v.Get(); ok {
			lo = math.Min(lo, f)
			hi = math.Max(hi, f)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return lo, hi
}

func tail(values []types.Value, n int) []types.Value {
	if n > 0 && len(values) > n {
		return values[len(values)-n:]
	}
	return values
}

// Plot renders the last width values as a height-row dot chart scaled to
// [lo, hi]. Undefined values leave their column empty. Each guide value is
// drawn as a dashed row labelled in the left margin; without guides there is
// no margin.
func Plot(values []types.Value, width, height int, lo, hi float64, guides ...float64) []string {
	if width <= 0 || height <= 0 {
		return nil
	}
	values = tail(values, width)

	row := func(v float64) int {
		if hi <= lo {
			return height / 2
		}
		r := int(math.Round((v - lo) / (hi - lo) * float64(height-1)))
		r = max(0, min(height-1, r))
		return height - 1 - r
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", len(values)))
	}
	labels := make([]string, height)
	for _, g := range guides {
		r := row(g)
		labels[r] = fmt.Sprintf("%3.0f ", g)
		for c := range grid[r] {
			grid[r][c] = guideRune
		}
	}
	for c, v := range values {
		if f, ok := v.Get(); ok {
			grid[row(f)][c] = marker
		}
	}

	lines := make([]string, height)
	for i, cells := range grid {
		if len(guides) > 0 {
			label := labels[i]
			if label == "" {
				label = "    "
			}
			lines[i] = label + string(cells)
			continue
		}
		lines[i] = string(cells)
	}
	return lines
}
