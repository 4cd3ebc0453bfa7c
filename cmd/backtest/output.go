package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/xuri/excelize/v2"

	"FXSignals/internal/domain/models"
)

func printSummary(w io.Writer, r models.BacktestResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("Backtest %s %s", r.Pair, r.Timeframe))
	t.SetStyle(table.StyleRounded)
	t.AppendRows([]table.Row{
		{"Source", r.Source},
		{"Trades", r.Trades},
		{"Wins", r.Wins},
		{"Win rate", fmt.Sprintf("%.2f%%", r.WinRate)},
		{"Total return", fmt.Sprintf("%.2f%%", r.TotalReturnPct)},
		{"Max drawdown", fmt.Sprintf("%.2f%%", r.MaxDrawdownPct)},
		{"Initial capital", fmt.Sprintf("%.2f", r.InitialCapital)},
		{"Final equity", fmt.Sprintf("%.2f", r.FinalEquity)},
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 16, Align: text.AlignLeft},
		{Number: 2, WidthMin: 18, Align: text.AlignRight},
	})
	t.Render()
}

func printTrades(w io.Writer, trades []models.Trade) {
	if len(trades) == 0 {
		fmt.Fprintln(w, "no trades")
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Side", "Entry bar", "Exit bar", "Entry", "Exit", "Return %", "Bars", "Reason"})
	for i, tr := range trades {
		t.AppendRow(table.Row{
			i + 1, tr.Side, tr.EntryIndex, tr.ExitIndex,
			fmt.Sprintf("%.5f", tr.Entry), fmt.Sprintf("%.5f", tr.Exit),
			fmt.Sprintf("%.2f", tr.ReturnPct), tr.BarsHeld, tr.Reason,
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 7, Align: text.AlignRight},
	})
	t.Render()
}

// writeXLSX writes the trade log and equity curve to separate sheets.
func writeXLSX(r models.BacktestResult, path string) error {
	fx := excelize.NewFile()
	defer fx.Close()

	const tradesSheet = "Trades"
	const equitySheet = "Equity"
	if err := fx.SetSheetName(fx.GetSheetName(0), tradesSheet); err != nil {
		return err
	}
	if _, err := fx.NewSheet(equitySheet); err != nil {
		return err
	}
	headStyle, err := fx.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	writeRow := func(sheet string, row int, values []interface{}) error {
		for i, v := range values {
			cell, err := excelize.CoordinatesToCellName(i+1, row)
			if err != nil {
				return err
			}
			if err := fx.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
		return nil
	}
	header := func(sheet string, cols []interface{}) error {
		if err := writeRow(sheet, 1, cols); err != nil {
			return err
		}
		last, _ := excelize.CoordinatesToCellName(len(cols), 1)
		return fx.SetCellStyle(sheet, "A1", last, headStyle)
	}

	if err := header(tradesSheet, []interface{}{"Side", "Entry bar", "Exit bar", "Entry", "Exit", "Return %", "Bars held", "Reason"}); err != nil {
		return err
	}
	for i, t := range r.TradeLog {
		if err := writeRow(tradesSheet, i+2, []interface{}{
			string(t.Side), t.EntryIndex, t.ExitIndex, t.Entry, t.Exit, t.ReturnPct, t.BarsHeld, string(t.Reason),
		}); err != nil {
			return err
		}
	}

	if err := header(equitySheet, []interface{}{"Bar", "Equity"}); err != nil {
		return err
	}
	for i, eq := range r.EquityCurve {
		if err := writeRow(equitySheet, i+2, []interface{}{i, eq}); err != nil {
			return err
		}
	}

	return fx.SaveAs(path)
}
