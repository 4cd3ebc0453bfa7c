package logger

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud", Output: "stdout"})
	require.Error(t, err)
}

func TestFieldKeyValues(t *testing.T) {
	k, v := Duration("took", 1500*time.Millisecond).GetKeyValue()
	assert.Equal(t, "took", k)
	assert.Equal(t, 1500, v)

	k, v = Error(errors.New("boom")).GetKeyValue()
	assert.Equal(t, "error", k)
	assert.Equal(t, "boom", v)

	_, v = Strings("pairs", []string{"EUR/USD", "BTC/USD"}).GetKeyValue()
	assert.Equal(t, "EUR/USD, BTC/USD", v)

	_, v = Float64("px", 1.25).GetKeyValue()
	assert.Equal(t, 1.25, v)
}

func TestNopLoggerAcceptsFields(t *testing.T) {
	l := NewNop().With(String("pair", "EUR/USD"))
	l.Info("ok", Int("n", 1))
	l.Warn("warn", Bool("stale", true))
}
