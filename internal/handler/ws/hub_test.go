package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FXSignals/internal/domain/models"
)

func TestHubPushesSnapshotAndUpdates(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	require.NoError(t, hub.PublishSignals(ctx, []models.SignalResult{{Pair: "EUR/USD", Type: models.SignalBuy}}))

	e := echo.New()
	hub.RegisterRoutes(e)
	srv := httptest.NewServer(e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/signals"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() Message {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, b, err := conn.ReadMessage()
		require.NoError(t, err)
		var m Message
		require.NoError(t, json.Unmarshal(b, &m))
		return m
	}

	first := read()
	assert.Equal(t, "signals", first.Type)
	require.Len(t, first.Signals, 1)
	assert.Equal(t, "EUR/USD", first.Signals[0].Pair)

	require.NoError(t, hub.PublishSignals(ctx, []models.SignalResult{{Pair: "BTC/USD"}, {Pair: "ETH/USD"}}))
	second := read()
	require.Len(t, second.Signals, 2)
	assert.Equal(t, "ETH/USD", second.Signals[1].Pair)
}

func TestHubCloseIsIdempotent(t *testing.T) {
	hub := NewHub()
	assert.NoError(t, hub.Close())
	assert.NoError(t, hub.Close())
}
