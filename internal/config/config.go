// Package config loads reconciler settings from defaults, an optional
// reconcile.yaml, a .env file and the environment, in increasing precedence.
//
// Keys map to environment variables by upper-casing and replacing dots,
// e.g. reconcile.tolerance_days -> RECONCILE_TOLERANCE_DAYS.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/tirasundara/reconcile-accounts/internal/logger"
	"github.com/tirasundara/reconcile-accounts/internal/report"
)

// Config holds all configuration for the application.
type Config struct {
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Reconcile holds matching settings.
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
	// Input holds record source settings.
	Input InputConfig `mapstructure:"input"`
	// Output holds report settings.
	Output OutputConfig `mapstructure:"output"`
}

// ReconcileConfig holds matching settings.
type ReconcileConfig struct {
	// ToleranceDays is how many calendar days two matching dates may be apart.
	ToleranceDays int `mapstructure:"tolerance_days" default:"1"`
	// DateLayout is the Go time layout of the record date field.
	DateLayout string `mapstructure:"date_layout" default:"2006-1-2"`
	// PreserveInputOrder reports records in source order instead of date order.
	PreserveInputOrder bool `mapstructure:"preserve_input_order" default:"false"`
}

// InputConfig holds record source settings.
type InputConfig struct {
	// HasHeader tells whether record files start with a header row.
	HasHeader bool `mapstructure:"has_header" default:"false"`
}

// OutputConfig holds report settings.
type OutputConfig struct {
	// Format is the report format (json, csv).
	Format string `mapstructure:"format" default:"json"`
	// Pretty indents JSON reports.
	Pretty bool `mapstructure:"pretty" default:"true"`
}

// LoadConfig loads configuration from path/reconcile.yaml, path/.env and environment variables.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." || path == "" {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist
	_ = godotenv.Load(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	v.SetConfigName("reconcile")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Map environment variables to nested keys (e.g. LOG_LEVEL -> log.level)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	return &config, nil
}

// Validate checks settings that would otherwise fail late or silently.
func (c *Config) Validate() error {
	if c.Reconcile.ToleranceDays < 0 {
		return fmt.Errorf("reconcile.tolerance_days must not be negative, got %d", c.Reconcile.ToleranceDays)
	}

	if c.Reconcile.DateLayout == "" {
		return errors.New("reconcile.date_layout must not be empty")
	}

	switch c.Output.Format {
	case report.FormatJSON, report.FormatCSV:
	default:
		return fmt.Errorf("output.format must be %q or %q, got %q", report.FormatJSON, report.FormatCSV, c.Output.Format)
	}

	return nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
