package app

import (
	"fmt"
	"strings"

	"fx-data/internal/errs"
	"fx-data/internal/histdata"
	"fx-data/internal/resample"
	"fx-data/internal/saver"
)

// ConfigPath is the --config flag value; empty selects the default lookup.
type ConfigPath string

// ProvideConfig loads config (for Wire).
func ProvideConfig(path ConfigPath) (*Config, error) {
	return LoadConfig(string(path))
}

// ProvideSource builds the shard source for HistdataDir in the reference zone (for Wire).
func ProvideSource(cfg *Config) (histdata.Source, error) {
	loc, err := cfg.Location()
	if err != nil {
		return histdata.Source{}, err
	}
	return histdata.Source{Dir: cfg.HistdataDir, Ref: loc}, nil
}

// ProvideTimeframes validates the configured timeframes once (for Wire).
func ProvideTimeframes(cfg *Config, src histdata.Source) (*resample.Timeframes, error) {
	return resample.NewTimeframes(cfg.Timeframes, src.Ref)
}

// ProvideCache returns the process-wide series cache (for Wire).
func ProvideCache() *histdata.Cache {
	return histdata.NewCache()
}

// ProvideBarSaver creates BarSaver from config (for Wire).
// Returns error if SaveFormat is not supported.
func ProvideBarSaver(cfg *Config) (saver.BarSaver, error) {
	s := saver.NewBarSaver(cfg.SaveFormat)
	if s == nil {
		return nil, errs.Configf("unsupported save_format %q (use: %s)", cfg.SaveFormat, strings.Join(saver.Formats, ", "))
	}
	return s, nil
}

// OutputName is the file name of one export: {PAIR}_{timeframe}.{ext}.
func OutputName(pair, timeframe, ext string) string {
	return fmt.Sprintf("%s_%s.%s", pair, timeframe, ext)
}
