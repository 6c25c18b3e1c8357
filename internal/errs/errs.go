// Package errs holds the two failure kinds surfaced by loading:
// ConfigError for bad caller or configuration input and FormatError for bad shard content.
package errs

import (
	"errors"
	"fmt"
)

var (
	ErrConfig = errors.New("config error")
	ErrFormat = errors.New("format error")
)

// ConfigError reports an unknown timeframe, timezone, unit or an unparsable date bound.
type ConfigError struct {
	Msg string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config: %s: %v", e.Msg, e.Err)
	}
	return "config: " + e.Msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrConfig) match any ConfigError.
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// FormatError reports a malformed row in a shard. Line is 1-based; 0 means the whole file.
type FormatError struct {
	Path string
	Line int
	Msg  string
	Err  error
}

func (e *FormatError) Error() string {
	loc := e.Path
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.Path, e.Line)
	}
	if e.Err != nil {
		return fmt.Sprintf("format: %s: %s: %v", loc, e.Msg, e.Err)
	}
	return fmt.Sprintf("format: %s: %s", loc, e.Msg)
}

func (e *FormatError) Unwrap() error { return e.Err }

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// Configf builds a ConfigError with a formatted message.
func Configf(format string, args ...any) error {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}
