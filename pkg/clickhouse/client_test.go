package clickhouse

import (
	"testing"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOptions(t *testing.T) {
	cfg := ClientConfig{Host: "ch", Port: 8123, Database: "fxsignals", User: "u", Password: "p", UseHTTP: true, AsyncInsert: true, MaxExecTime: 30 * time.Second}
	o := buildOptions(cfg)

	assert.Equal(t, []string{"ch:8123"}, o.Addr)
	assert.Equal(t, ch.HTTP, o.Protocol)
	assert.Equal(t, "fxsignals", o.Auth.Database)
	assert.Equal(t, 1, o.Settings["async_insert"])
	assert.Equal(t, 0, o.Settings["wait_for_async_insert"])
	assert.Equal(t, 30, o.Settings["max_execution_time"])

	native := buildOptions(ClientConfig{Host: "ch", Port: 9000})
	assert.Equal(t, ch.Native, native.Protocol)
	assert.Empty(t, native.Settings)
}

func TestTimeoutsKeepDefaults(t *testing.T) {
	cfg := &ClientConfig{DialTimeout: time.Second, ReadTimeout: 2 * time.Second}
	WithTimeouts(0, 5*time.Second, time.Minute)(cfg)
	assert.Equal(t, time.Second, cfg.DialTimeout)
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
}

func TestNewClientRequiresHost(t *testing.T) {
	_, err := NewClient()
	require.Error(t, err)
}
