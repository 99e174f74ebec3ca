// Package config loads the agent's tunables from environment variables, an
// optional YAML/INI file, and built-in defaults, grounded in
// services/config/viper_config.go's Viper-based layering. Every duration
// spec.md §6 calls "configurable" lives here as a single source of truth.
package config

import (
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/ini.v1"

	"github.com/all-smi-go/agent/daemon/logger"
)

// Config is the agent's fully-resolved runtime configuration.
type Config struct {
	Server ServerConfig

	Aggregator AggregatorConfig

	Collector CollectorConfig

	Logging LoggingConfig
}

// ServerConfig configures the local Prometheus scrape endpoint.
type ServerConfig struct {
	BindAddress     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// AggregatorConfig configures the fleet aggregator client, mirroring
// daemon/aggregator.Config's field set so it can be built directly from it.
type AggregatorConfig struct {
	Peers []string

	RequestTimeout  time.Duration
	ConcurrencyCap  int
	StaggerInterval time.Duration
	RetryAttempts   int
	RetryBaseDelay  time.Duration

	DialTimeout            time.Duration
	TCPKeepAlive           time.Duration
	IdleConnTimeout        time.Duration
	MaxIdleConnsPerHost    int
	HTTP2KeepAliveInterval time.Duration
}

// CollectorConfig holds the external-process collector supervisor's
// tunables (spec.md §4.4/§10). RestartBackoffTiers and UnhealthyAfter are
// applied by daemon/cmd at startup; RingCapacity is loaded but not applied:
// daemon/collector sizes every ring with its own RingCapacity constant.
type CollectorConfig struct {
	RingCapacity       int
	RestartBackoffTiers []time.Duration
	UnhealthyAfter     time.Duration
}

// LoggingConfig configures daemon/logger's console/structured output.
type LoggingConfig struct {
	Level      string
	LogsDir    string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Default returns the agent's built-in conservative defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			BindAddress:     "0.0.0.0:9100",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Aggregator: AggregatorConfig{
			RequestTimeout:         5 * time.Second,
			ConcurrencyCap:         8,
			StaggerInterval:        50 * time.Millisecond,
			RetryAttempts:          3,
			RetryBaseDelay:         200 * time.Millisecond,
			DialTimeout:            3 * time.Second,
			TCPKeepAlive:           30 * time.Second,
			IdleConnTimeout:        90 * time.Second,
			MaxIdleConnsPerHost:    4,
			HTTP2KeepAliveInterval: 30 * time.Second,
		},
		Collector: CollectorConfig{
			RingCapacity:        120,
			RestartBackoffTiers: []time.Duration{1 * time.Second, 5 * time.Second, 15 * time.Second},
			UnhealthyAfter:      30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:      "info",
			LogsDir:    "/var/log",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
	}
}

// Loader layers defaults, an optional config file, and environment
// variables (prefixed ALL_SMI_) via Viper, the way ViperConfigService does
// for the teacher's UMA_-prefixed settings. A legacy all-smi.ini drop-in,
// read with gopkg.in/ini.v1, is consulted only for the aggregator peer list,
// and only when the environment/file left that list empty.
type Loader struct {
	v *viper.Viper
}

// NewLoader constructs a Loader. configPath, if non-empty, is an explicit
// YAML config file to load in addition to the search paths.
func NewLoader(configPath string) *Loader {
	v := viper.New()
	v.SetConfigName("all-smi")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/all-smi")
	v.AddConfigPath("$HOME/.all-smi")
	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	v.SetEnvPrefix("ALL_SMI")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	def := Default()
	v.SetDefault("server.bind_address", def.Server.BindAddress)
	v.SetDefault("server.read_timeout", def.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", def.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", def.Server.ShutdownTimeout)

	v.SetDefault("aggregator.peers", []string{})
	v.SetDefault("aggregator.request_timeout", def.Aggregator.RequestTimeout)
	v.SetDefault("aggregator.concurrency_cap", def.Aggregator.ConcurrencyCap)
	v.SetDefault("aggregator.stagger_interval", def.Aggregator.StaggerInterval)
	v.SetDefault("aggregator.retry_attempts", def.Aggregator.RetryAttempts)
	v.SetDefault("aggregator.retry_base_delay", def.Aggregator.RetryBaseDelay)
	v.SetDefault("aggregator.dial_timeout", def.Aggregator.DialTimeout)
	v.SetDefault("aggregator.tcp_keepalive", def.Aggregator.TCPKeepAlive)
	v.SetDefault("aggregator.idle_conn_timeout", def.Aggregator.IdleConnTimeout)
	v.SetDefault("aggregator.max_idle_conns_per_host", def.Aggregator.MaxIdleConnsPerHost)
	v.SetDefault("aggregator.http2_keepalive_interval", def.Aggregator.HTTP2KeepAliveInterval)

	v.SetDefault("collector.ring_capacity", def.Collector.RingCapacity)
	v.SetDefault("collector.unhealthy_after", def.Collector.UnhealthyAfter)

	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.logs_dir", def.Logging.LogsDir)
	v.SetDefault("logging.max_size_mb", def.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", def.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", def.Logging.MaxAgeDays)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			logger.Warn("error reading config file: %v", err)
		}
	} else {
		logger.Info("using config file: %s", v.ConfigFileUsed())
	}

	return &Loader{v: v}
}

// Load resolves the final Config from defaults, file, and environment.
func (l *Loader) Load() Config {
	cfg := Default()

	cfg.Server.BindAddress = l.v.GetString("server.bind_address")
	cfg.Server.ReadTimeout = l.v.GetDuration("server.read_timeout")
	cfg.Server.WriteTimeout = l.v.GetDuration("server.write_timeout")
	cfg.Server.ShutdownTimeout = l.v.GetDuration("server.shutdown_timeout")

	cfg.Aggregator.Peers = l.v.GetStringSlice("aggregator.peers")
	cfg.Aggregator.RequestTimeout = l.v.GetDuration("aggregator.request_timeout")
	cfg.Aggregator.ConcurrencyCap = l.v.GetInt("aggregator.concurrency_cap")
	cfg.Aggregator.StaggerInterval = l.v.GetDuration("aggregator.stagger_interval")
	cfg.Aggregator.RetryAttempts = l.v.GetInt("aggregator.retry_attempts")
	cfg.Aggregator.RetryBaseDelay = l.v.GetDuration("aggregator.retry_base_delay")
	cfg.Aggregator.DialTimeout = l.v.GetDuration("aggregator.dial_timeout")
	cfg.Aggregator.TCPKeepAlive = l.v.GetDuration("aggregator.tcp_keepalive")
	cfg.Aggregator.IdleConnTimeout = l.v.GetDuration("aggregator.idle_conn_timeout")
	cfg.Aggregator.MaxIdleConnsPerHost = l.v.GetInt("aggregator.max_idle_conns_per_host")
	cfg.Aggregator.HTTP2KeepAliveInterval = l.v.GetDuration("aggregator.http2_keepalive_interval")

	cfg.Collector.RingCapacity = l.v.GetInt("collector.ring_capacity")
	cfg.Collector.UnhealthyAfter = l.v.GetDuration("collector.unhealthy_after")

	cfg.Logging.Level = l.v.GetString("logging.level")
	cfg.Logging.LogsDir = l.v.GetString("logging.logs_dir")
	cfg.Logging.MaxSizeMB = l.v.GetInt("logging.max_size_mb")
	cfg.Logging.MaxBackups = l.v.GetInt("logging.max_backups")
	cfg.Logging.MaxAgeDays = l.v.GetInt("logging.max_age_days")

	if len(cfg.Aggregator.Peers) == 0 {
		cfg.Aggregator.Peers = loadPeersFromLegacyINI()
	}

	return cfg
}

// Watch installs a callback invoked whenever the config file changes on
// disk, for picking up a peer-list edit without restarting the aggregator
// loop, per SPEC_FULL.md's fsnotify hot-reload requirement.
func (l *Loader) Watch(onChange func(Config)) {
	l.v.WatchConfig()
	l.v.OnConfigChange(func(e fsnotify.Event) {
		logger.Info("config file changed: %s", e.Name)
		onChange(l.Load())
	})
}

// loadPeersFromLegacyINI reads a peer list from /etc/all-smi/all-smi.ini's
// [aggregator] section, the fallback source for a deployment still using a
// drop-in file rather than YAML/env, mirroring the teacher's ini.v1 use for
// Unraid's .cfg files.
func loadPeersFromLegacyINI() []string {
	const legacyPath = "/etc/all-smi/all-smi.ini"
	f, err := ini.Load(legacyPath)
	if err != nil {
		return nil
	}
	raw := f.Section("aggregator").Key("peers").String()
	if raw == "" {
		return nil
	}
	var peers []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			peers = append(peers, p)
		}
	}
	return peers
}
