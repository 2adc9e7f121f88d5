package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreValkey = "valkey"
)

var validate = validator.New()

type AppConfig struct {
	OWM   OWMConfig   `yaml:"owm"`
	IRC   IRCConfig   `yaml:"irc"`
	Store StoreConfig `yaml:"store"`
	Cache CacheConfig `yaml:"cache"`

	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`
}

// OWMConfig holds the OpenWeatherMap settings.
type OWMConfig struct {
	APIKey   string `yaml:"api_key" validate:"required"`
	BaseURL  string `yaml:"base_url" validate:"omitempty,url"`
	Language string `yaml:"language"`

	EnableAirQuality        bool `yaml:"enable_air_quality"`
	EnableLocationBestGuess bool `yaml:"enable_location_best_guess"`

	// HTTPTimeout bounds every provider call.
	HTTPTimeout time.Duration `yaml:"http_timeout" validate:"gt=0"`
}

// IRCConfig holds the connection settings. An empty Server disables IRC.
type IRCConfig struct {
	Server        string   `yaml:"server" validate:"omitempty,hostname_port"`
	Nick          string   `yaml:"nick" validate:"required_with=Server"`
	Password      string   `yaml:"password"`
	Channels      []string `yaml:"channels"`
	UseTLS        bool     `yaml:"tls"`
	CommandPrefix string   `yaml:"command_prefix" validate:"required"`
}

type StoreConfig struct {
	Driver       string `yaml:"driver" validate:"oneof=memory sqlite valkey"`
	SQLitePath   string `yaml:"sqlite_path" validate:"required_if=Driver sqlite"`
	ValkeyAddr   string `yaml:"valkey_addr" validate:"required_if=Driver valkey"`
	ValkeyPrefix string `yaml:"valkey_prefix"`
}

// CacheConfig controls the snapshot cache. A zero TTL disables it.
type CacheConfig struct {
	TTL           time.Duration `yaml:"ttl" validate:"gte=0"`
	SweepInterval time.Duration `yaml:"sweep_interval" validate:"gte=0"`
}

// Default returns the configuration used before any file or environment
// overrides are applied.
func Default() *AppConfig {
	return &AppConfig{
		OWM: OWMConfig{
			Language:                "en",
			EnableLocationBestGuess: true,
			HTTPTimeout:             5 * time.Second,
		},
		IRC: IRCConfig{
			Nick:          "weatherbot",
			UseTLS:        true,
			CommandPrefix: ".",
		},
		Store: StoreConfig{
			Driver:       StoreMemory,
			SQLitePath:   "locations.db",
			ValkeyPrefix: "ircweather",
		},
		Cache: CacheConfig{
			TTL:           10 * time.Minute,
			SweepInterval: 15 * time.Minute,
		},
		Port:     "8080",
		LogLevel: "info",
	}
}

// Load reads configuration from an optional YAML file and the environment
// (a .env file is loaded first when present), then validates it.
func Load(path string) (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *AppConfig) applyEnv() error {
	c.OWM.APIKey = getenvDefault("OWM_API_KEY", c.OWM.APIKey)
	c.OWM.BaseURL = getenvDefault("OWM_BASE_URL", c.OWM.BaseURL)
	c.OWM.Language = getenvDefault("OWM_LANGUAGE", c.OWM.Language)

	var err error
	if c.OWM.EnableAirQuality, err = getenvBool("OWM_ENABLE_AIR_QUALITY", c.OWM.EnableAirQuality); err != nil {
		return err
	}
	if c.OWM.EnableLocationBestGuess, err = getenvBool("OWM_ENABLE_LOCATION_BEST_GUESS", c.OWM.EnableLocationBestGuess); err != nil {
		return err
	}
	if c.OWM.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", c.OWM.HTTPTimeout); err != nil {
		return err
	}

	c.IRC.Server = getenvDefault("IRC_SERVER", c.IRC.Server)
	c.IRC.Nick = getenvDefault("IRC_NICK", c.IRC.Nick)
	c.IRC.Password = getenvDefault("IRC_PASSWORD", c.IRC.Password)
	c.IRC.CommandPrefix = getenvDefault("COMMAND_PREFIX", c.IRC.CommandPrefix)
	if v := os.Getenv("IRC_CHANNELS"); v != "" {
		c.IRC.Channels = splitList(v)
	}
	if c.IRC.UseTLS, err = getenvBool("IRC_TLS", c.IRC.UseTLS); err != nil {
		return err
	}

	c.Store.Driver = getenvDefault("STORE_DRIVER", c.Store.Driver)
	c.Store.SQLitePath = getenvDefault("SQLITE_PATH", c.Store.SQLitePath)
	c.Store.ValkeyAddr = getenvDefault("VALKEY_ADDR", c.Store.ValkeyAddr)
	c.Store.ValkeyPrefix = getenvDefault("VALKEY_PREFIX", c.Store.ValkeyPrefix)

	if c.Cache.TTL, err = getenvDuration("CACHE_TTL", c.Cache.TTL); err != nil {
		return err
	}
	if c.Cache.SweepInterval, err = getenvDuration("CACHE_SWEEP_INTERVAL", c.Cache.SweepInterval); err != nil {
		return err
	}

	c.Port = getenvDefault("PORT", c.Port)
	c.LogLevel = strings.ToLower(getenvDefault("LOG_LEVEL", c.LogLevel))
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
