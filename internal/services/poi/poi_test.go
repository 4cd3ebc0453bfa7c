package poi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var valley = []float64{5, 4, 3, 2, 1, 2, 3, 4, 5, 6, 7, 8, 7, 6, 5, 4, 3}

func TestBuildUptrendFibs(t *testing.T) {
	p := Build(valley, nil, nil)

	require.Len(t, p.SwingHighs, 1)
	require.Len(t, p.SwingLows, 1)
	assert.Equal(t, 11, p.SwingHighs[0].Index)
	assert.Equal(t, 4, p.SwingLows[0].Index)

	require.Len(t, p.Fibs, 3)
	assert.InDelta(t, 5.326, p.Fibs[0], 1e-9)
	assert.InDelta(t, 4.5, p.Fibs[1], 1e-9)
	assert.InDelta(t, 3.674, p.Fibs[2], 1e-9)

	require.NotNil(t, p.DemandZone)
	require.NotNil(t, p.SupplyZone)
	assert.InDelta(t, 0.999, p.DemandZone.Low, 1e-12)
	assert.InDelta(t, 1.001, p.DemandZone.High, 1e-12)
	assert.InDelta(t, 7.992, p.SupplyZone.Low, 1e-12)
	assert.InDelta(t, 8.008, p.SupplyZone.High, 1e-12)
}

func TestBuildDowntrendFibs(t *testing.T) {
	rev := make([]float64, len(valley))
	for i, v := range valley {
		rev[len(valley)-1-i] = v
	}
	p := Build(rev, nil, nil)
	require.Len(t, p.Fibs, 3)
	assert.InDelta(t, 3.674, p.Fibs[0], 1e-9)
	assert.InDelta(t, 4.5, p.Fibs[1], 1e-9)
	assert.InDelta(t, 5.326, p.Fibs[2], 1e-9)
}

func TestBuildShortSeries(t *testing.T) {
	p := Build([]float64{1, 2, 3}, nil, nil)
	assert.Empty(t, p.Fibs)
	assert.Nil(t, p.DemandZone)
	assert.Nil(t, p.SupplyZone)
}

func TestBuildIgnoresHighsAndLows(t *testing.T) {
	highs := make([]float64, len(valley))
	lows := make([]float64, len(valley))
	for i, v := range valley {
		highs[i] = v + 0.5
		lows[i] = v - 0.5
	}
	lows[2] = -10

	want := Build(valley, nil, nil)
	got := Build(valley, highs, lows)
	assert.Equal(t, want, got)
	require.NotNil(t, got.SupplyZone)
	assert.InDelta(t, 8.008, got.SupplyZone.High, 1e-12)
	assert.InDelta(t, 0.999, got.DemandZone.Low, 1e-12)
}

func TestWindow(t *testing.T) {
	assert.Equal(t, 2, Window(10))
	assert.Equal(t, 3, Window(120))
	assert.Equal(t, 9, Window(365))
}
