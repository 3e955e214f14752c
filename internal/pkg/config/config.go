package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	StoveCfg  *StoveConfig
	MqttCfg   *MqttConfig
	ServerCfg *ServerConfig
	LogLevel  string `env:"LOG_LEVEL" envDefault:"INFO"`
}

type StoveConfig struct {
	Host         string        `env:"STOVE_HOST"`
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"15s"`
	// EcoModeDrive enables the delayed-heating nudge out of eco stop.
	EcoModeDrive bool    `env:"ECO_MODE_DRIVE"`
	DeltaEcoTemp float64 `env:"DELTA_ECO_TEMP" envDefault:"2"`
	// AutoRegulate allows an external thermostat entity to steer the setpoint.
	AutoRegulate bool `env:"AUTO_REGULATE"`
}

type MqttConfig struct {
	Host        string `env:"MQTT_HOST"`
	Username    string `env:"MQTT_USER"`
	Password    string `env:"MQTT_PASS"`
	TopicPrefix string `env:"MQTT_TOPIC_PREFIX" envDefault:"homeassistant"`
}

type ServerConfig struct {
	Address string `env:"API_ADDRESS" envDefault:"0.0.0.0:8000"`
	// PasswordHash is a bcrypt hash; empty disables basic auth.
	PasswordHash string `env:"API_PASSWORD_HASH"`
}

// FromEnv builds a config from environment variables. CLI flags override
// individual fields afterwards.
func FromEnv() (*Config, error) {
	cfg := &Config{
		StoveCfg:  &StoveConfig{},
		MqttCfg:   &MqttConfig{},
		ServerCfg: &ServerConfig{},
	}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
