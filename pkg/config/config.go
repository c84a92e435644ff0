// Package config loads sniffer settings from a TOML file.
//
// Load starts from Default and overrides only the keys present in the file,
// so a config file can be as small as a single line.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pion/logging"
)

// Configuration errors.
var (
	ErrInvalidListen     = errors.New("config: listen address is required")
	ErrInvalidLogLevel   = errors.New("config: invalid log level")
	ErrInvalidQoS        = errors.New("config: mqtt qos must be 0, 1 or 2")
	ErrInvalidMaxRecords = errors.New("config: capture max_records must not be negative")
	ErrInvalidTopic      = errors.New("config: mqtt topic_prefix is required when a broker is set")
	ErrInvalidLevel      = errors.New("config: security default_level must be 0-7")
)

// Config holds every sniffer setting.
type Config struct {
	// Listen is the UDP address frames arrive on.
	Listen   string
	LogLevel string

	Capture  CaptureConfig
	MQTT     MQTTConfig
	Metrics  MetricsConfig
	MDNS     MDNSConfig
	Security SecurityConfig
}

// CaptureConfig selects frame storage. An empty Path keeps captures in memory.
type CaptureConfig struct {
	Path       string
	MaxRecords int
}

// MQTTConfig configures summary publishing. An empty Broker disables it.
type MQTTConfig struct {
	Broker      string
	ClientID    string
	TopicPrefix string
	QoS         byte
}

// MetricsConfig configures the Prometheus endpoint. An empty Listen disables it.
type MetricsConfig struct {
	Listen string
}

// MDNSConfig configures DNS-SD advertisement of the listener.
type MDNSConfig struct {
	Enabled  bool
	Instance string
}

// SecurityConfig configures secured frame inspection.
type SecurityConfig struct {
	// DefaultLevel is assumed when a frame carries security level 0.
	DefaultLevel uint8
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Listen:   ":17754",
		LogLevel: "info",
		Capture: CaptureConfig{
			MaxRecords: 10000,
		},
		MQTT: MQTTConfig{
			ClientID:    "zbsniff",
			TopicPrefix: "zigbee/nwk",
			QoS:         0,
		},
		MDNS: MDNSConfig{
			Instance: "zbsniff",
		},
		Security: SecurityConfig{
			DefaultLevel: 5,
		},
	}
}

type fileConfig struct {
	Listen   string `toml:"listen"`
	LogLevel string `toml:"log_level"`
	Capture  struct {
		Path       string `toml:"path"`
		MaxRecords int    `toml:"max_records"`
	} `toml:"capture"`
	MQTT struct {
		Broker      string `toml:"broker"`
		ClientID    string `toml:"client_id"`
		TopicPrefix string `toml:"topic_prefix"`
		QoS         int    `toml:"qos"`
	} `toml:"mqtt"`
	Metrics struct {
		Listen string `toml:"listen"`
	} `toml:"metrics"`
	MDNS struct {
		Enabled  bool   `toml:"enabled"`
		Instance string `toml:"instance"`
	} `toml:"mdns"`
	Security struct {
		DefaultLevel int `toml:"default_level"`
	} `toml:"security"`
}

// Load reads path over Default and validates the result.
func Load(path string) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return apply(raw, meta)
}

// Parse reads TOML text over Default and validates the result.
func Parse(data string) (Config, error) {
	var raw fileConfig
	meta, err := toml.Decode(data, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return apply(raw, meta)
}

func apply(raw fileConfig, meta toml.MetaData) (Config, error) {
	cfg := Default()

	if meta.IsDefined("listen") {
		cfg.Listen = strings.TrimSpace(raw.Listen)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(raw.LogLevel))
	}

	if meta.IsDefined("capture", "path") {
		cfg.Capture.Path = strings.TrimSpace(raw.Capture.Path)
	}
	if meta.IsDefined("capture", "max_records") {
		cfg.Capture.MaxRecords = raw.Capture.MaxRecords
	}

	if meta.IsDefined("mqtt", "broker") {
		cfg.MQTT.Broker = strings.TrimSpace(raw.MQTT.Broker)
	}
	if meta.IsDefined("mqtt", "client_id") {
		cfg.MQTT.ClientID = strings.TrimSpace(raw.MQTT.ClientID)
	}
	if meta.IsDefined("mqtt", "topic_prefix") {
		cfg.MQTT.TopicPrefix = strings.Trim(strings.TrimSpace(raw.MQTT.TopicPrefix), "/")
	}
	if meta.IsDefined("mqtt", "qos") {
		if raw.MQTT.QoS < 0 || raw.MQTT.QoS > 2 {
			return Config{}, ErrInvalidQoS
		}
		cfg.MQTT.QoS = byte(raw.MQTT.QoS)
	}

	if meta.IsDefined("metrics", "listen") {
		cfg.Metrics.Listen = strings.TrimSpace(raw.Metrics.Listen)
	}

	if meta.IsDefined("mdns", "enabled") {
		cfg.MDNS.Enabled = raw.MDNS.Enabled
	}
	if meta.IsDefined("mdns", "instance") {
		cfg.MDNS.Instance = strings.TrimSpace(raw.MDNS.Instance)
	}

	if meta.IsDefined("security", "default_level") {
		if raw.Security.DefaultLevel < 0 || raw.Security.DefaultLevel > 7 {
			return Config{}, ErrInvalidLevel
		}
		cfg.Security.DefaultLevel = uint8(raw.Security.DefaultLevel)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the sniffer cannot run with.
func (c Config) Validate() error {
	if c.Listen == "" {
		return ErrInvalidListen
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Capture.MaxRecords < 0 {
		return ErrInvalidMaxRecords
	}
	if c.MQTT.QoS > 2 {
		return ErrInvalidQoS
	}
	if c.MQTT.Broker != "" && c.MQTT.TopicPrefix == "" {
		return ErrInvalidTopic
	}
	if c.Security.DefaultLevel > 7 {
		return ErrInvalidLevel
	}
	return nil
}

// ParseLogLevel maps a level name to a pion log level.
func ParseLogLevel(s string) (logging.LogLevel, error) {
	switch strings.ToLower(s) {
	case "disabled", "off":
		return logging.LogLevelDisabled, nil
	case "error":
		return logging.LogLevelError, nil
	case "warn", "warning":
		return logging.LogLevelWarn, nil
	case "info", "":
		return logging.LogLevelInfo, nil
	case "debug":
		return logging.LogLevelDebug, nil
	case "trace":
		return logging.LogLevelTrace, nil
	default:
		return logging.LogLevelDisabled, fmt.Errorf("%w: %q", ErrInvalidLogLevel, s)
	}
}

// LoggerFactory returns a pion logger factory at the configured level.
func (c Config) LoggerFactory() *logging.DefaultLoggerFactory {
	f := logging.NewDefaultLoggerFactory()
	if level, err := ParseLogLevel(c.LogLevel); err == nil {
		f.DefaultLogLevel = level
	}
	return f
}
