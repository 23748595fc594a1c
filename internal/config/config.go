package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Agent     AgentConfig     `mapstructure:"agent"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Rates     RatesConfig     `mapstructure:"rates"`
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
	Broker    BrokerConfig    `mapstructure:"broker"`
	Log       LogConfig       `mapstructure:"log"`
}

// AgentConfig covers the localhost facade and local storage paths.
type AgentConfig struct {
	// Addr the facade listens on. Loopback by default; the facade is
	// for UI processes on the same machine, not the network.
	Addr              string  `mapstructure:"addr"`
	SnapshotPath      string  `mapstructure:"snapshot_path"`
	CredentialDir     string  `mapstructure:"credential_dir"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type BackendConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

type RatesConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type ReconcileConfig struct {
	BatchSize    int           `mapstructure:"batch_size"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
}

// BrokerConfig selects the event bus backend. "memory" is the default;
// "redis" lets several local processes share the event stream.
type BrokerConfig struct {
	Kind         string        `mapstructure:"kind"`
	RedisURL     string        `mapstructure:"redis_url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type LogConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("$HOME/.config/auricmart-agent")

	viper.SetEnvPrefix("AGENT")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// Settings may arrive entirely from the environment.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Backend.BaseURL == "" {
		return nil, fmt.Errorf("backend.base_url is required")
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("agent.addr", "127.0.0.1:7920")
	viper.SetDefault("agent.snapshot_path", "agent.db")
	viper.SetDefault("agent.credential_dir", "~/.config/auricmart-agent/credentials")
	viper.SetDefault("agent.requests_per_second", 50.0)
	viper.SetDefault("agent.burst", 25)
	viper.SetDefault("backend.timeout", 30*time.Second)
	viper.SetDefault("backend.requests_per_second", 10.0)
	viper.SetDefault("backend.burst", 5)
	viper.SetDefault("rates.ttl", 30*time.Second)
	viper.SetDefault("reconcile.batch_size", 20)
	viper.SetDefault("reconcile.poll_interval", 30*time.Second)
	viper.SetDefault("reconcile.max_attempts", 5)
	viper.SetDefault("broker.kind", "memory")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.console", true)
}
