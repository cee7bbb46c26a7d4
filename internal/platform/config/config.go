package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Session SessionConfig `mapstructure:"session"`
	Locale  LocaleConfig  `mapstructure:"locale"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type StorageConfig struct {
	// Driver is "sqlite" or "memory".
	Driver         string `mapstructure:"driver"`
	URL            string `mapstructure:"url"`
	MaxConnections int    `mapstructure:"max_connections"`
}

type SessionConfig struct {
	SignInDelay     time.Duration `mapstructure:"sign_in_delay"`
	RegenerateDelay time.Duration `mapstructure:"regenerate_delay"`
	// Issuer is "mock" or "secure".
	Issuer       string        `mapstructure:"issuer"`
	CookieName   string        `mapstructure:"cookie_name"`
	CookieMaxAge time.Duration `mapstructure:"cookie_max_age"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
	// MaxOrigins caps the origins kept in memory at once.
	MaxOrigins        int           `mapstructure:"max_origins"`
	OriginIdleTimeout time.Duration `mapstructure:"origin_idle_timeout"`
}

type LocaleConfig struct {
	Default string `mapstructure:"default"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.url", "file:data/keyportal.db")
	v.SetDefault("storage.max_connections", 1)

	v.SetDefault("session.sign_in_delay", time.Second)
	v.SetDefault("session.regenerate_delay", 1500*time.Millisecond)
	v.SetDefault("session.issuer", "mock")
	v.SetDefault("session.cookie_name", "origin")
	v.SetDefault("session.cookie_max_age", 365*24*time.Hour)
	v.SetDefault("session.cookie_secure", false)
	v.SetDefault("session.max_origins", 10000)
	v.SetDefault("session.origin_idle_timeout", 30*time.Minute)

	v.SetDefault("locale.default", "en")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// Load reads the YAML file at path on top of the built-in defaults.
// An empty path loads defaults and environment overrides only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
