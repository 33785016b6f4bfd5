// Package config loads the billing CLI configuration from an optional
// billing.yaml and BILLING_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/xraph/billing/export"
	"github.com/xraph/billing/notify/email"
	"github.com/xraph/billing/notify/pubsub"
	"github.com/xraph/billing/store/driver"
)

// EnvPrefix prefixes environment overrides, e.g. BILLING_STORE_DRIVER.
const EnvPrefix = "BILLING"

// Config is the CLI configuration.
type Config struct {
	Store   driver.Config
	Export  export.SinkConfig
	Billing BillingConfig
	Email   EmailConfig
	PubSub  pubsub.Config
	Log     LogConfig
}

// BillingConfig holds engine settings.
type BillingConfig struct {
	DueInDays     int
	IDFormat      string
	NotifyTimeout time.Duration
}

// EmailConfig enables and configures SMTP notifications.
type EmailConfig struct {
	Enabled bool
	email.Config
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration. path names an explicit config file; when empty,
// billing.yaml is looked up in the working directory and its absence is not
// an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("billing")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Store: driver.Config{
			Driver:      v.GetString("store.driver"),
			Dir:         v.GetString("store.dir"),
			RedisURL:    v.GetString("store.redis_url"),
			RedisPrefix: v.GetString("store.redis_prefix"),
		},
		Export: export.SinkConfig{
			Kind: v.GetString("export.kind"),
			Dir:  v.GetString("export.dir"),
			S3: export.S3Config{
				Bucket:       v.GetString("export.s3.bucket"),
				Prefix:       v.GetString("export.s3.prefix"),
				Region:       v.GetString("export.s3.region"),
				Endpoint:     v.GetString("export.s3.endpoint"),
				AccessKey:    v.GetString("export.s3.access_key"),
				SecretKey:    v.GetString("export.s3.secret_key"),
				UsePathStyle: v.GetBool("export.s3.use_path_style"),
			},
			GCS: export.GCSConfig{
				Bucket:          v.GetString("export.gcs.bucket"),
				Prefix:          v.GetString("export.gcs.prefix"),
				CredentialsJSON: v.GetString("export.gcs.credentials_json"),
			},
		},
		Billing: BillingConfig{
			DueInDays:     v.GetInt("billing.due_in_days"),
			IDFormat:      v.GetString("billing.id_format"),
			NotifyTimeout: v.GetDuration("billing.notify_timeout"),
		},
		Email: EmailConfig{
			Enabled: v.GetBool("email.enabled"),
			Config: email.Config{
				Host:      v.GetString("email.host"),
				Port:      v.GetInt("email.port"),
				Username:  v.GetString("email.username"),
				Password:  v.GetString("email.password"),
				UseTLS:    !v.IsSet("email.use_tls") || v.GetBool("email.use_tls"),
				FromEmail: v.GetString("email.from_email"),
				FromName:  v.GetString("email.from_name"),
				Company:   v.GetString("email.company"),
			},
		},
		PubSub: pubsub.Config{
			ProjectID:       v.GetString("pubsub.project_id"),
			Topic:           v.GetString("pubsub.topic"),
			CredentialsJSON: v.GetString("pubsub.credentials_json"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = driver.File
	}
	if cfg.Store.Dir == "" {
		cfg.Store.Dir = driver.DefaultDir
	}
	if cfg.Export.Kind == "" {
		cfg.Export.Kind = export.SinkDir
	}
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = export.DefaultDir
	}
	if cfg.Billing.DueInDays == 0 {
		cfg.Billing.DueInDays = 30
	}
	if cfg.Billing.IDFormat == "" {
		cfg.Billing.IDFormat = "typeid"
	}
	if cfg.Billing.NotifyTimeout == 0 {
		cfg.Billing.NotifyTimeout = 5 * time.Second
	}

	defaults := email.DefaultConfig()
	if cfg.Email.Host == "" {
		cfg.Email.Host = defaults.Host
	}
	if cfg.Email.Port == 0 {
		cfg.Email.Port = defaults.Port
	}
	if cfg.Email.FromEmail == "" {
		cfg.Email.FromEmail = defaults.FromEmail
	}
	if cfg.Email.FromName == "" {
		cfg.Email.FromName = defaults.FromName
	}
	if cfg.Email.Company == "" {
		cfg.Email.Company = defaults.Company
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

func (c *Config) validate() error {
	if c.Billing.DueInDays < 0 {
		return fmt.Errorf("config: billing.due_in_days must not be negative")
	}
	switch c.Billing.IDFormat {
	case "typeid", "timestamp":
	default:
		return fmt.Errorf("config: unknown billing.id_format %q", c.Billing.IDFormat)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log.format %q", c.Log.Format)
	}
	return nil
}

// NewLogger builds the slog logger described by c, writing to w.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Level)
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("config: unknown log.level %q", s)
	}
	return level, nil
}
