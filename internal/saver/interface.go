package saver

import (
	"strings"
	"time"

	"fx-data/internal/model"
)

// BarSaver persists the bars of one pair/timeframe to a single file.
type BarSaver interface {
	Save(bars []model.Bar, path string) error
	Extension() string
}

// NewBarSaver creates implementation by format (csv, parquet, json).
// Returns nil if format not supported.
func NewBarSaver(format string) BarSaver {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVSaver{}
	case "parquet":
		return ParquetSaver{}
	case "json":
		return JSONSaver{}
	default:
		return nil
	}
}

// Formats lists the accepted save formats.
var Formats = []string{"csv", "json", "parquet"}

// Record is the flat row written by every saver.
// Time keeps the bar's display zone; Timestamp is zone-free.
type Record struct {
	Timestamp int64   `json:"t" parquet:"t"` // Unix timestamp in milliseconds
	Time      string  `json:"time" parquet:"time"`
	Open      float64 `json:"o" parquet:"o"`
	High      float64 `json:"h" parquet:"h"`
	Low       float64 `json:"l" parquet:"l"`
	Close     float64 `json:"c" parquet:"c"`
	Volume    float64 `json:"v" parquet:"v"`
}

// Records flattens bars into Records.
func Records(bars []model.Bar) []Record {
	out := make([]Record, len(bars))
	for i, b := range bars {
		out[i] = Record{
			Timestamp: b.Time.UnixMilli(),
			Time:      b.Time.Format(time.RFC3339),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		}
	}
	return out
}
