package saver

import (
	"encoding/csv"
	"os"
	"strconv"

	"fx-data/internal/model"
)

// CSVSaver writes bars as CSV (header: t,time,o,h,l,c,v).
type CSVSaver struct{}

func (CSVSaver) Extension() string { return "csv" }

func (CSVSaver) Save(bars []model.Bar, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)

	if err := w.Write([]string{"t", "time", "o", "h", "l", "c", "v"}); err != nil {
		return err
	}
	for _, r := range Records(bars) {
		if err := w.Write([]string{
			strconv.FormatInt(r.Timestamp, 10),
			r.Time,
			floatStr(r.Open),
			floatStr(r.High),
			floatStr(r.Low),
			floatStr(r.Close),
			floatStr(r.Volume),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func floatStr(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
