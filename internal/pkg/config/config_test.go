package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Second, cfg.StoveCfg.PollInterval)
	assert.Equal(t, 2.0, cfg.StoveCfg.DeltaEcoTemp)
	assert.False(t, cfg.StoveCfg.EcoModeDrive)
	assert.Equal(t, "homeassistant", cfg.MqttCfg.TopicPrefix)
	assert.Equal(t, "0.0.0.0:8000", cfg.ServerCfg.Address)
	assert.Equal(t, "INFO", cfg.LogLevel)
}

func TestFromEnv_ReadsEnvironment(t *testing.T) {
	t.Setenv("STOVE_HOST", "192.168.1.33")
	t.Setenv("POLL_INTERVAL", "30s")
	t.Setenv("ECO_MODE_DRIVE", "true")
	t.Setenv("DELTA_ECO_TEMP", "1.5")
	t.Setenv("MQTT_HOST", "tcp://broker:1883")
	t.Setenv("API_ADDRESS", "127.0.0.1:9000")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "192.168.1.33", cfg.StoveCfg.Host)
	assert.Equal(t, 30*time.Second, cfg.StoveCfg.PollInterval)
	assert.True(t, cfg.StoveCfg.EcoModeDrive)
	assert.Equal(t, 1.5, cfg.StoveCfg.DeltaEcoTemp)
	assert.Equal(t, "tcp://broker:1883", cfg.MqttCfg.Host)
	assert.Equal(t, "127.0.0.1:9000", cfg.ServerCfg.Address)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

func TestFromEnv_BadDuration(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "often")
	_, err := FromEnv()
	assert.Error(t, err)
}
