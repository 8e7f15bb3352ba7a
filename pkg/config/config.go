package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	EnvPrefix              = "TODO"
	DefaultAPIURL          = "https://mate.academy/students-api"
	DefaultNotificationTTL = 3 * time.Second
)

type AppConfig struct {
	UserID          int           `mapstructure:"user_id" validate:"gte=0"`
	APIURL          string        `mapstructure:"api_url" validate:"required,url"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	NotificationTTL time.Duration `mapstructure:"notification_ttl" validate:"gt=0"`

	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Fake      FakeConfig      `mapstructure:"fake"`

	Environment string `mapstructure:"environment" validate:"oneof=development production test"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	File  string `mapstructure:"file"`
}

type TelemetryConfig struct {
	ServiceName    string `mapstructure:"service_name" validate:"required"`
	ServiceVersion string `mapstructure:"service_version"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	MetricsAddr    string `mapstructure:"metrics_addr"`
}

// FakeConfig configures the development remote server.
type FakeConfig struct {
	Addr    string        `mapstructure:"addr" validate:"required"`
	Latency time.Duration `mapstructure:"latency" validate:"gte=0"`
	// RateLimit caps requests per client and route within RateWindow; 0 disables it.
	RateLimit  int           `mapstructure:"rate_limit" validate:"gte=0"`
	RateWindow time.Duration `mapstructure:"rate_window" validate:"gte=0"`
}

// Enabled reports whether a user id is configured. Without one the client
// shows the guidance view instead of the task list.
func (c *AppConfig) Enabled() bool {
	return c.UserID > 0
}

func GetDefaultConfig() *AppConfig {
	return &AppConfig{
		UserID:          0,
		APIURL:          DefaultAPIURL,
		RequestTimeout:  10 * time.Second,
		NotificationTTL: DefaultNotificationTTL,
		Log: LogConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "todoclient",
			ServiceVersion: "1.0.0",
		},
		Fake: FakeConfig{
			Addr:       ":8089",
			RateWindow: time.Minute,
		},
		Environment: "development",
	}
}

func setDefaults(v *viper.Viper) {
	d := GetDefaultConfig()

	v.SetDefault("user_id", d.UserID)
	v.SetDefault("api_url", d.APIURL)
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("notification_ttl", d.NotificationTTL)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("telemetry.service_name", d.Telemetry.ServiceName)
	v.SetDefault("telemetry.service_version", d.Telemetry.ServiceVersion)
	v.SetDefault("telemetry.otlp_endpoint", d.Telemetry.OTLPEndpoint)
	v.SetDefault("telemetry.metrics_addr", d.Telemetry.MetricsAddr)
	v.SetDefault("fake.addr", d.Fake.Addr)
	v.SetDefault("fake.latency", d.Fake.Latency)
	v.SetDefault("fake.rate_limit", d.Fake.RateLimit)
	v.SetDefault("fake.rate_window", d.Fake.RateWindow)
	v.SetDefault("environment", d.Environment)
}

// Load reads defaults, then the optional config file, then TODO_* environment
// variables, and validates the result.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *AppConfig) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(c); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) {
			msgs := make([]string, 0, len(fieldErrors))
			for _, fe := range fieldErrors {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}
