package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"crypto-narrator/internal/narrative"
	"crypto-narrator/internal/types"
)

var snapshotHeaders = []string{"Asset", "Price", "Change", "RSI", "As of"}

// SnapshotView shows the latest price, change and RSI of both assets.
type SnapshotView struct {
	table    *tview.Table
	decimals [2]int
}

func NewSnapshotView(decimals [2]int) *SnapshotView {
	table := tview.NewTable().
		SetBorders(false).
		SetFixed(1, 0)

	table.SetTitle(" Snapshot ").SetBorder(true)

	v := &SnapshotView{table: table, decimals: decimals}
	v.header()
	return v
}

// Widget returns the tview primitive.
func (v *SnapshotView) Widget() tview.Primitive {
	return v.table
}

func (v *SnapshotView) header() {
	for col, header := range snapshotHeaders {
		cell := tview.NewTableCell(header).
			SetTextColor(tview.Styles.SecondaryTextColor).
			SetAlign(tview.AlignLeft).
			SetSelectable(false).
			SetExpansion(1)
		v.table.SetCell(0, col, cell)
	}
}

// Update refreshes both rows.
func (v *SnapshotView) Update(snapshots [2]types.AssetSnapshot) {
	v.table.Clear()
	v.header()

	for i, s := range snapshots {
		row := i + 1
		v.table.SetCell(row, 0, tview.NewTableCell(s.Name+" ("+s.Symbol+")").SetAlign(tview.AlignLeft))

		price := "$" + narrative.FormatPrice(s.LatestPrice.InexactFloat64(), v.decimals[i])
		v.table.SetCell(row, 1, tview.NewTableCell(price).SetAlign(tview.AlignRight))

		changeColor := tcell.ColorWhite
		if pct, ok := s.DayChangePct.Get(); ok {
			if pct > 0 {
				changeColor = tcell.ColorGreen
			} else if pct < 0 {
				changeColor = tcell.ColorRed
			}
		}
		v.table.SetCell(row, 2, tview.NewTableCell(s.DayChangePct.Format("%+.2f%%", "n/a")).
			SetTextColor(changeColor).
			SetAlign(tview.AlignRight))

		rsiColor := tcell.ColorWhite
		if rsi, ok := s.LatestRSI.Get(); ok {
			if rsi >= 70 {
				rsiColor = tcell.ColorRed
			} else if rsi <= 30 {
				rsiColor = tcell.ColorGreen
			}
		}
		v.table.SetCell(row, 3, tview.NewTableCell(s.LatestRSI.Format("%.0f", "n/a")).
			SetTextColor(rsiColor).
			SetAlign(tview.AlignRight))

		asOf := "-"
		if !s.AsOf.IsZero() {
			asOf = s.AsOf.UTC().Format("2006-01-02 15:04")
		}
		v.table.SetCell(row, 4, tview.NewTableCell(asOf).SetAlign(tview.AlignLeft))
	}
}
