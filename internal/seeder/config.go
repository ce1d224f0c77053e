package seeder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/logging"
	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/signin"
	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/sink"
	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/temporal"
)

// Config represents the complete seeder configuration
type Config struct {
	Version   string          `mapstructure:"version" yaml:"version"`
	Generator GeneratorConfig `mapstructure:"generator" yaml:"generator"`
	Sinks     sink.Config     `mapstructure:"sinks" yaml:"sinks"`
	Output    OutputConfig    `mapstructure:"output" yaml:"output"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

// GeneratorConfig holds the population, window and gate settings.
type GeneratorConfig struct {
	Users      int   `mapstructure:"users" yaml:"users"`
	WindowDays int   `mapstructure:"window_days" yaml:"window_days"`
	Seed       int64 `mapstructure:"seed" yaml:"seed"`
	// Anchor is an RFC 3339 instant standing in for "now". Empty means
	// midnight UTC of the current day.
	Anchor string `mapstructure:"anchor" yaml:"anchor"`

	HomeRate    float64 `mapstructure:"home_rate" yaml:"home_rate"`
	AnomalyRate float64 `mapstructure:"anomaly_rate" yaml:"anomaly_rate"`
	MFARate     float64 `mapstructure:"mfa_rate" yaml:"mfa_rate"`

	SessionMean   float64       `mapstructure:"session_mean" yaml:"session_mean"`
	MinRefresh    int           `mapstructure:"min_refresh" yaml:"min_refresh"`
	MaxRefresh    int           `mapstructure:"max_refresh" yaml:"max_refresh"`
	MinRefreshGap time.Duration `mapstructure:"min_refresh_gap" yaml:"min_refresh_gap"`
	MaxRefreshGap time.Duration `mapstructure:"max_refresh_gap" yaml:"max_refresh_gap"`
	AnomalyOffset time.Duration `mapstructure:"anomaly_offset" yaml:"anomaly_offset"`
}

// OutputConfig controls the console summary and metrics textfile.
type OutputConfig struct {
	Preview     int    `mapstructure:"preview" yaml:"preview"`
	MetricsFile string `mapstructure:"metrics_file" yaml:"metrics_file"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// LoadConfig loads configuration with cascade: flags > ./entraseed.yaml > ~/.entraseed/entraseed.yaml > env > defaults.
// Flags are applied by the caller on the returned Config.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Configure Viper
	v.SetConfigName("entraseed")
	v.SetConfigType("yaml")
	v.SetEnvPrefix("ENTRASEED")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Config file search paths (in priority order)
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// 1. Current directory
		v.AddConfigPath(".")

		// 2. User home directory (~/.entraseed/)
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".entraseed"))
		}
	}

	// Read config file (optional - don't fail if not found)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns the built-in defaults without reading files or env.
func DefaultConfig() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	// Defaults are static; decoding them cannot fail.
	_ = v.Unmarshal(&config)
	return &config
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("version", "1.0")

	// Generator
	v.SetDefault("generator.users", 1000)
	v.SetDefault("generator.window_days", temporal.DefaultWindowDays)
	v.SetDefault("generator.seed", 42)
	v.SetDefault("generator.anchor", "")
	v.SetDefault("generator.home_rate", DefaultHomeRate)
	v.SetDefault("generator.anomaly_rate", DefaultAnomalyRate)
	v.SetDefault("generator.mfa_rate", signin.DefaultMFARate)
	v.SetDefault("generator.session_mean", DefaultSessionShape.SessionMean)
	v.SetDefault("generator.min_refresh", DefaultSessionShape.MinRefresh)
	v.SetDefault("generator.max_refresh", DefaultSessionShape.MaxRefresh)
	v.SetDefault("generator.min_refresh_gap", DefaultSessionShape.MinRefreshGap)
	v.SetDefault("generator.max_refresh_gap", DefaultSessionShape.MaxRefreshGap)
	v.SetDefault("generator.anomaly_offset", DefaultSessionShape.AnomalyOffset)

	// Sinks
	v.SetDefault("sinks.enabled", []string{sink.NameFile})
	v.SetDefault("sinks.file.path", sink.DefaultFilePath)
	v.SetDefault("sinks.file.index", "")
	v.SetDefault("sinks.opensearch.url", "https://localhost:9200")
	v.SetDefault("sinks.opensearch.username", "admin")
	v.SetDefault("sinks.opensearch.password", "")
	v.SetDefault("sinks.opensearch.insecure", false)
	v.SetDefault("sinks.opensearch.index", sink.DefaultIndex)
	v.SetDefault("sinks.opensearch.template", false)
	v.SetDefault("sinks.elasticsearch.url", "http://localhost:9200")
	v.SetDefault("sinks.elasticsearch.username", "")
	v.SetDefault("sinks.elasticsearch.password", "")
	v.SetDefault("sinks.elasticsearch.api_key", "")
	v.SetDefault("sinks.elasticsearch.insecure", false)
	v.SetDefault("sinks.elasticsearch.index", sink.DefaultIndex)
	v.SetDefault("sinks.elasticsearch.template", false)
	v.SetDefault("sinks.hec.url", "http://localhost:8088")
	v.SetDefault("sinks.hec.token", "")
	v.SetDefault("sinks.hec.batch_size", 50)
	v.SetDefault("sinks.hec.sourcetype", sink.DefaultHECSourceType)
	v.SetDefault("sinks.hec.index", "")
	v.SetDefault("sinks.hec.timeout", 10*time.Second)
	v.SetDefault("sinks.nats.url", "nats://localhost:4222")
	v.SetDefault("sinks.nats.subject", sink.DefaultNATSSubject)
	v.SetDefault("sinks.nats.name", "entraseed")
	v.SetDefault("sinks.nats.timeout", 5*time.Second)
	v.SetDefault("sinks.nats.username", "")
	v.SetDefault("sinks.nats.password", "")
	v.SetDefault("sinks.nats.token", "")

	// Output
	v.SetDefault("output.preview", 10)
	v.SetDefault("output.metrics_file", "")

	// Logging
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	g := c.Generator
	if g.Users <= 0 {
		return fmt.Errorf("generator.users must be positive, got %d", g.Users)
	}
	if g.WindowDays < 0 {
		return fmt.Errorf("generator.window_days must not be negative, got %d", g.WindowDays)
	}
	if _, err := c.ResolveAnchor(time.Now()); err != nil {
		return err
	}

	rates := []struct {
		name string
		val  float64
	}{
		{"home_rate", g.HomeRate},
		{"anomaly_rate", g.AnomalyRate},
		{"mfa_rate", g.MFARate},
	}
	for _, r := range rates {
		if r.val < 0 || r.val > 1 {
			return fmt.Errorf("generator.%s must be within [0,1], got %g", r.name, r.val)
		}
	}

	if g.SessionMean < 0 {
		return fmt.Errorf("generator.session_mean must not be negative, got %g", g.SessionMean)
	}
	if g.MinRefresh < 0 || g.MaxRefresh < g.MinRefresh {
		return fmt.Errorf("generator refresh count range [%d,%d] is invalid", g.MinRefresh, g.MaxRefresh)
	}
	if g.MinRefreshGap < time.Minute || g.MaxRefreshGap < g.MinRefreshGap {
		return fmt.Errorf("generator refresh gap range [%s,%s] is invalid", g.MinRefreshGap, g.MaxRefreshGap)
	}
	if g.AnomalyOffset < 0 {
		return fmt.Errorf("generator.anomaly_offset must not be negative, got %s", g.AnomalyOffset)
	}

	if c.Output.Preview < 0 {
		return fmt.Errorf("output.preview must not be negative, got %d", c.Output.Preview)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return err
	}
	if len(c.Sinks.Enabled) == 0 {
		return errors.New("sinks.enabled must name at least one sink")
	}
	if err := c.Sinks.Validate(); err != nil {
		return fmt.Errorf("sinks: %w", err)
	}
	return nil
}

// ResolveAnchor returns the configured anchor, or midnight UTC of now's day.
func (c *Config) ResolveAnchor(now time.Time) (time.Time, error) {
	if c.Generator.Anchor == "" {
		return temporal.DayAnchor(now), nil
	}
	t, err := time.Parse(time.RFC3339, c.Generator.Anchor)
	if err != nil {
		return time.Time{}, fmt.Errorf("generator.anchor: %w", err)
	}
	return t, nil
}

// Shape returns the session shape described by the generator settings.
func (g GeneratorConfig) Shape() SessionShape {
	return SessionShape{
		SessionMean:   g.SessionMean,
		MinRefresh:    g.MinRefresh,
		MaxRefresh:    g.MaxRefresh,
		MinRefreshGap: g.MinRefreshGap,
		MaxRefreshGap: g.MaxRefreshGap,
		AnomalyOffset: g.AnomalyOffset,
	}
}
