package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when fields are absent from the config file.
const (
	DefaultListenAddr  = ":3001"
	DefaultPrefix      = "mikrotik_"
	DefaultDialTimeout = 10 * time.Second
)

// Environment variable names recognised by FromEnv.
const (
	EnvUser        = "MIKROTIK_USER"
	EnvPassword    = "MIKROTIK_PASSWORD"
	EnvTargets     = "TARGETS"
	EnvPrefix      = "PROMETHEUS_PREFIX"
	EnvBearerToken = "PROMETHEUS_BEARER_TOKEN"
	EnvListenAddr  = "LISTEN_ADDR"
)

// Config is the full exporter configuration. It is constructed once at
// startup (and on hot-reload) and passed into constructors — nothing
// reads configuration ambiently.
type Config struct {
	// ListenAddr is the HTTP listen address, e.g. ":3001".
	ListenAddr string `yaml:"listen_addr"`

	// Prefix is prepended to every exported metric name.
	Prefix string `yaml:"prefix"`

	// BearerTokenEnv names the environment variable holding the bearer
	// token /metrics clients must present. Empty disables the check.
	BearerTokenEnv string `yaml:"bearer_token_env"`

	// Device holds the shared credentials for every target.
	Device DeviceConfig `yaml:"device"`

	// Targets is the list of device addresses to scrape, host or
	// host:port (port defaults to the RouterOS API port).
	Targets []string `yaml:"targets"`
}

// DeviceConfig holds the management-session credentials.
type DeviceConfig struct {
	Username string `yaml:"username"`

	// PasswordEnv names the environment variable holding the device
	// password. The file never carries the password itself.
	PasswordEnv string `yaml:"password_env"`

	// DialTimeout bounds session setup per target.
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

// BearerToken returns the expected bearer token resolved from the
// environment, or empty when authentication is disabled.
func (c Config) BearerToken() string {
	if c.BearerTokenEnv == "" {
		return ""
	}
	return os.Getenv(c.BearerTokenEnv)
}

// Password returns the device password resolved from the environment.
func (d DeviceConfig) Password() string {
	if d.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(d.PasswordEnv)
}

// Load reads and parses the YAML config file at path, applies defaults
// and validates required fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// FromEnv builds a Config purely from environment variables. Secrets
// stay behind the same env indirection Load uses, so hot paths resolve
// them identically regardless of how the process was configured.
func FromEnv() (*Config, error) {
	cfg := defaults()

	cfg.Device.Username = os.Getenv(EnvUser)
	if os.Getenv(EnvPassword) != "" {
		cfg.Device.PasswordEnv = EnvPassword
	}
	if v := os.Getenv(EnvPrefix); v != "" {
		cfg.Prefix = v
	}
	if os.Getenv(EnvBearerToken) != "" {
		cfg.BearerTokenEnv = EnvBearerToken
	}
	if v := os.Getenv(EnvListenAddr); v != "" {
		cfg.ListenAddr = v
	}
	cfg.Targets = splitTargets(os.Getenv(EnvTargets))

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Resolve loads the file at path when it exists, otherwise falls back to
// the environment.
func Resolve(path string) (*Config, error) {
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}
	return FromEnv()
}

// splitTargets parses a comma-separated target list, dropping empty
// elements and surrounding whitespace.
func splitTargets(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func defaults() *Config {
	return &Config{
		ListenAddr: DefaultListenAddr,
		Prefix:     DefaultPrefix,
		Device: DeviceConfig{
			DialTimeout: DefaultDialTimeout,
		},
	}
}

// validate enforces the startup preconditions: credentials and at least
// one target must be present before the exporter will serve anything.
func validate(cfg *Config) error {
	if cfg.Device.Username == "" {
		return fmt.Errorf("device username is required (%s or device.username)", EnvUser)
	}
	if cfg.Device.Password() == "" {
		return fmt.Errorf("device password is required (%s or device.password_env)", EnvPassword)
	}
	if len(cfg.Targets) == 0 {
		return fmt.Errorf("at least one target is required (%s or targets)", EnvTargets)
	}
	if cfg.Device.DialTimeout <= 0 {
		return fmt.Errorf("device.dial_timeout must be positive")
	}
	for i, t := range cfg.Targets {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("targets[%d] is empty", i)
		}
	}
	return nil
}
