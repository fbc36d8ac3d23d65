package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode            string        `mapstructure:"mode"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	MaxParticipants int           `mapstructure:"max_participants"`
	CorsOrigins     []string      `mapstructure:"cors_origins"`
	StaticPath      string        `mapstructure:"static_path"`
	ReadLimit       int64         `mapstructure:"read_limit"`
	PingPeriod      time.Duration `mapstructure:"ping_period"`
	SendBuffer      int           `mapstructure:"send_buffer"`
	Secret          string        `mapstructure:"secret"`
	JoinSecret      string        `mapstructure:"join_secret"`
	RateLimit       int           `mapstructure:"rate_limit"`
	RateInterval    time.Duration `mapstructure:"rate_interval"`
}

func (c *Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// Production reports whether logs should be JSON and gin in release mode.
func (c *Config) Production() bool { return c.Mode == "release" || c.Mode == "production" }

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.MaxParticipants < 1 {
		return errors.New("max_participants must be at least 1")
	}
	if c.SendBuffer < 1 {
		return errors.New("send_buffer must be at least 1")
	}
	if c.PingPeriod <= 0 {
		return errors.New("ping_period must be positive")
	}
	return nil
}

// Load reads config/config.<CONFIG_ENV>.yaml when present, then applies
// environment overrides on top of the file and the defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)
	v.SetConfigFile(fileName)

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}
	return decode(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "debug")
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 3000)
	v.SetDefault("max_participants", 6)
	v.SetDefault("cors_origins", []string{})
	v.SetDefault("static_path", "")
	v.SetDefault("read_limit", 65536)
	v.SetDefault("ping_period", "25s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("secret", "zloer-dev-secret")
	v.SetDefault("join_secret", "")
	v.SetDefault("rate_limit", 20)
	v.SetDefault("rate_interval", "10s")
}

// bindEnv keeps the historical variable names of the deployment.
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("port", "PORT")
	_ = v.BindEnv("host", "HOST")
	_ = v.BindEnv("max_participants", "MAX_PARTICIPANTS")
	_ = v.BindEnv("cors_origins", "CORS_ORIGINS")
	_ = v.BindEnv("mode", "MODE", "NODE_ENV")
	_ = v.BindEnv("join_secret", "JOIN_SECRET")
	_ = v.BindEnv("secret", "SESSION_SECRET")
	_ = v.BindEnv("static_path", "STATIC_PATH")
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.CorsOrigins = splitOrigins(cfg.CorsOrigins)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	fmt.Printf("🧩 Mode: %s | Addr: %s | Max participants: %d\n", cfg.Mode, cfg.Addr(), cfg.MaxParticipants)
	return &cfg, nil
}

// splitOrigins accepts both a yaml list and a comma separated env value.
func splitOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, o := range strings.Split(item, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}
	return out
}
