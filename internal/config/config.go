package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/precip-etl/internal/domain"
)

// Sink names accepted in REPORT_SINKS.
const (
	SinkValidationLog = "log"
	SinkResults       = "results"
	SinkCSV           = "csv"
	SinkCharts        = "chart"
	SinkStations      = "stations"
)

// Config holds all run settings, populated from environment variables.
type Config struct {
	InputDir    string `env:"INPUT_DIR" validate:"required"`
	OutputDir   string `env:"OUTPUT_DIR" validate:"required"`
	FilePattern string `env:"FILE_PATTERN" validate:"required"`

	HTTPAddr        string        `env:"HTTP_ADDR"`
	LogLevel        string        `env:"LOG_LEVEL" validate:"oneof=debug info warn warning error"`
	LogFormat       string        `env:"LOG_FORMAT" validate:"oneof=json text"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`

	Strictness           domain.Strictness `env:"STRICTNESS" validate:"oneof=lenient strict"`
	TopN                 int               `env:"TOP_N" validate:"min=1,max=50"`
	Workers              int               `env:"WORKERS" validate:"min=1,max=64"`
	RequireCompleteYears bool              `env:"REQUIRE_COMPLETE_YEARS"`
	Sinks                []string          `env:"REPORT_SINKS" validate:"dive,oneof=log results csv chart stations"`

	// Expected header tokens.
	HeaderDescriptor []string `env:"EXPECTED_HEADER" validate:"len=6"`
	HeaderSuffix     []string `env:"EXPECTED_SUFFIX" validate:"min=1"`

	// Optional Kafka publishing of yearly summaries. Disabled when no brokers are set.
	KafkaBrokers   []string `env:"KAFKA_BROKERS"`
	KafkaSinkTopic string   `env:"KAFKA_SINK_TOPIC" validate:"required_with=KafkaBrokers"`

	// Mapbox geocoding configuration.
	MapboxToken     string        `env:"MAPBOX_TOKEN"`
	MapboxEnabled   bool          `env:"MAPBOX_ENABLED"`
	MapboxTimeout   time.Duration `env:"MAPBOX_TIMEOUT"`
	MapboxCacheSize int           `env:"MAPBOX_CACHE_SIZE"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report env variable names instead of struct field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Load reads configuration from environment variables, applying defaults where
// unset. A .env file in the working directory is loaded first when present;
// variables already set in the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	mapboxTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("MAPBOX_TIMEOUT", "5s"))
	if err != nil || mapboxTimeout <= 0 {
		return nil, errors.New("invalid MAPBOX_TIMEOUT")
	}

	topN, err := parseInt("TOP_N", 10)
	if err != nil {
		return nil, err
	}
	workers, err := parseInt("WORKERS", 1)
	if err != nil {
		return nil, err
	}
	requireComplete, err := parseBool("REQUIRE_COMPLETE_YEARS", true)
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	schema := domain.DefaultHeaderSchema()
	cfg := &Config{
		InputDir:        sharedcfg.EnvOrDefault("INPUT_DIR", "data"),
		OutputDir:       sharedcfg.EnvOrDefault("OUTPUT_DIR", "out"),
		FilePattern:     sharedcfg.EnvOrDefault("FILE_PATTERN", "*.dat"),
		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		Strictness:           domain.Strictness(sharedcfg.EnvOrDefault("STRICTNESS", string(domain.StrictnessLenient))),
		TopN:                 topN,
		Workers:              workers,
		RequireCompleteYears: requireComplete,
		Sinks:                splitList(sharedcfg.EnvOrDefault("REPORT_SINKS", "log,results,csv,chart,stations"), ","),

		HeaderDescriptor: strings.Fields(sharedcfg.EnvOrDefault("EXPECTED_HEADER", strings.Join(schema.Descriptor, " "))),
		HeaderSuffix:     strings.Fields(sharedcfg.EnvOrDefault("EXPECTED_SUFFIX", strings.Join(schema.Suffix, " "))),

		KafkaBrokers:   splitList(os.Getenv("KAFKA_BROKERS"), ","),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "precip-yearly-summary"),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, describe(err)
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

// HeaderSchema returns the configured expected header tokens.
func (c *Config) HeaderSchema() domain.HeaderSchema {
	return domain.HeaderSchema{Descriptor: c.HeaderDescriptor, Suffix: c.HeaderSuffix}
}

// SinkEnabled reports whether name is listed in REPORT_SINKS.
func (c *Config) SinkEnabled(name string) bool {
	for _, s := range c.Sinks {
		if s == name {
			return true
		}
	}
	return false
}

// KafkaEnabled reports whether yearly summaries are published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// describe turns validator output into one error naming the offending variables.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		// Slice elements are reported as NAME[i]; keep the variable name.
		if i := strings.IndexByte(name, '['); i > 0 {
			name = name[:i]
		}
		msgs = append(msgs, fmt.Sprintf("invalid %s: failed %q constraint", name, fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}

func splitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
