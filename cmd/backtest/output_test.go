package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"FXSignals/internal/domain/models"
)

func sampleResult() models.BacktestResult {
	return models.BacktestResult{
		Pair:           "EUR/USD",
		Timeframe:      "1H",
		Trades:         1,
		Wins:           1,
		WinRate:        100,
		TotalReturnPct: 0.6,
		EquityCurve:    []float64{10000, 10010, 10060},
		InitialCapital: 10000,
		FinalEquity:    10060,
		Source:         "yahoo",
		TradeLog: []models.Trade{
			{Side: models.SideLong, EntryIndex: 60, ExitIndex: 80, Entry: 1.1, Exit: 1.12, ReturnPct: 1.82, BarsHeld: 20, Reason: models.ExitTakeProfit},
		},
	}
}

func TestPrintSummaryAndTrades(t *testing.T) {
	var buf bytes.Buffer
	r := sampleResult()
	printSummary(&buf, r)
	printTrades(&buf, r.TradeLog)

	out := buf.String()
	assert.Contains(t, out, "Backtest EUR/USD 1H")
	assert.Contains(t, out, "100.00%")
	assert.Contains(t, out, "Take Profit")

	buf.Reset()
	printTrades(&buf, nil)
	assert.Equal(t, "no trades\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bt.xlsx")
	require.NoError(t, writeXLSX(sampleResult(), path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	reason, err := f.GetCellValue("Trades", "H2")
	require.NoError(t, err)
	assert.Equal(t, "Take Profit", reason)

	rows, err := f.GetRows("Equity")
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}
