package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"fx-data/internal/errs"
	"fx-data/internal/resample"
)

const defaultConfigPath = "config.yaml"

// Config holds application configuration from config.yaml, overridden by env.
type Config struct {
	HistdataDir       string                  `yaml:"histdata_dir" env:"HISTDATA_DIR" validate:"required"`
	ReferenceTimezone string                  `yaml:"reference_timezone" env:"REFERENCE_TIMEZONE" validate:"required"`
	LogLevel          string                  `yaml:"log_level" env:"LOG_LEVEL" validate:"oneof=debug info warn warning error"`
	LogFormat         string                  `yaml:"log_format" env:"LOG_FORMAT" validate:"oneof=text json"`
	SaveFormat        string                  `yaml:"save_format" env:"SAVE_FORMAT" validate:"oneof=csv json parquet"`
	OutDir            string                  `yaml:"out_dir" env:"OUT_DIR" validate:"required"`
	Workers           int                     `yaml:"workers" env:"WORKERS" validate:"gte=1,lte=64"`
	Timeframes        map[string]resample.Def `yaml:"timeframes" validate:"required,min=1,dive"`
}

// DefaultConfig mirrors the stock config.yaml shipped with the loader.
func DefaultConfig() *Config {
	return &Config{
		HistdataDir:       filepath.Join("data", "histdata"),
		ReferenceTimezone: "US/Eastern",
		LogLevel:          "info",
		LogFormat:         "text",
		SaveFormat:        "csv",
		OutDir:            filepath.Join("data", "out"),
		Workers:           4,
	}
}

// DefaultTimeframes are used when the config file names none.
// Origins sit on a Sunday 17:00 so daily and 4h bars open with the week.
func DefaultTimeframes() map[string]resample.Def {
	const origin = "2000-01-02 17:00:00"
	return map[string]resample.Def{
		"1m":  {Unit: "minutes", Amount: 1, Origin: origin},
		"5m":  {Unit: "minutes", Amount: 5, Origin: origin},
		"15m": {Unit: "minutes", Amount: 15, Origin: origin},
		"1h":  {Unit: "hours", Amount: 1, Origin: origin},
		"4h":  {Unit: "hours", Amount: 4, Origin: origin},
		"1d":  {Unit: "days", Amount: 1, Origin: origin},
	}
}

// LoadConfig reads .env, the YAML file at path and then env overrides.
// Empty path falls back to FXDATA_CONFIG, then config.yaml; a missing default file is not an error.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	explicit := path != ""
	if !explicit {
		path = getEnv("FXDATA_CONFIG", defaultConfigPath)
		explicit = path != defaultConfigPath
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decodeYAML(data, cfg); err != nil {
			return nil, &errs.ConfigError{Msg: "parse " + path, Err: err}
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		slog.Info("no config file, using defaults", "path", path)
	default:
		return nil, &errs.ConfigError{Msg: "read " + path, Err: err}
	}
	if len(cfg.Timeframes) == 0 {
		cfg.Timeframes = DefaultTimeframes()
	}

	if err := env.Parse(cfg); err != nil {
		return nil, &errs.ConfigError{Msg: "parse env", Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeYAML rejects keys the Config does not know.
func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and that the reference zone exists.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return &errs.ConfigError{Msg: "invalid config", Err: err}
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves ReferenceTimezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.ReferenceTimezone)
	if err != nil {
		return nil, &errs.ConfigError{Msg: fmt.Sprintf("unknown reference_timezone %q", c.ReferenceTimezone), Err: err}
	}
	return loc, nil
}

// ReportPathIn returns path to .lastrun.json under dir.
func ReportPathIn(dir string) string {
	return filepath.Join(dir, ".lastrun.json")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
