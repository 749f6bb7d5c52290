package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "receivers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
redis_addr: localhost:6379
metrics_addr: ":9216"
receivers:
  - host: 192.168.1.50
    device: ad4d
    interval: 10s
  - host: 192.168.1.60
    device: p10t
    port: 2203
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, ":9216", cfg.MetricsAddr)
	require.Len(t, cfg.Receivers, 2)
	assert.Equal(t, "192.168.1.50", cfg.Receivers[0].Host)
	assert.Equal(t, 10*time.Second, cfg.Receivers[0].Interval)
	assert.Equal(t, "p10t", cfg.Receivers[1].Device)
	assert.Equal(t, 2203, cfg.Receivers[1].Port)
}

func TestLoadConfigDefaultsDeviceToAD4D(t *testing.T) {
	path := writeConfig(t, `
receivers:
  - host: 192.168.1.50
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "ad4d", cfg.Receivers[0].Device)
}

func TestLoadConfigRejectsEmptyReceivers(t *testing.T) {
	path := writeConfig(t, `redis_addr: localhost:6379`)

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "no receivers")
}

func TestLoadConfigRejectsUnknownFamily(t *testing.T) {
	path := writeConfig(t, `
receivers:
  - host: 192.168.1.50
    device: qlxd
`)

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "unknown device family")
}

func TestLoadConfigRejectsMissingHost(t *testing.T) {
	path := writeConfig(t, `
receivers:
  - device: ad4d
`)

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "missing host")
}
