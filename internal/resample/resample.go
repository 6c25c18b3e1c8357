package resample

import (
	"time"

	"fx-data/internal/model"
)

// BucketStart returns the start of the half-open bucket [origin+k*width, origin+(k+1)*width)
// containing t. k may be negative.
func BucketStart(t, origin time.Time, width time.Duration) time.Time {
	d := t.Sub(origin)
	k := d / width
	if d%width < 0 {
		k--
	}
	return origin.Add(k * width)
}

// WallBucketStart is BucketStart on the wall clock of origin's location: buckets of days
// and weeks open at the origin's local time of day on both sides of a DST change.
func WallBucketStart(t, origin time.Time, width time.Duration) time.Time {
	loc := origin.Location()
	start := BucketStart(wall(t.In(loc)), wall(origin), width)
	return time.Date(start.Year(), start.Month(), start.Day(), start.Hour(), start.Minute(), start.Second(), start.Nanosecond(), loc)
}

// wall relabels the wall clock reading of t as UTC.
func wall(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// Resample aggregates a sorted series into bars of tf. Empty buckets produce no bar.
// Bar times are in the location of tf.Origin.
func Resample(series model.Series, tf Timeframe) []model.Bar {
	width := tf.Width()
	if len(series) == 0 || width <= 0 {
		return nil
	}
	bucket := BucketStart
	if tf.Calendar() {
		bucket = WallBucketStart
	}
	bars := make([]model.Bar, 0, estimateBars(series, width))
	for _, tk := range series {
		start := bucket(tk.Time, tf.Origin, width)
		if n := len(bars); n > 0 && bars[n-1].Time.Equal(start) {
			cur := &bars[n-1]
			if tk.High > cur.High {
				cur.High = tk.High
			}
			if tk.Low < cur.Low {
				cur.Low = tk.Low
			}
			cur.Close = tk.Close
			cur.Volume += tk.Volume
			continue
		}
		bars = append(bars, model.Bar{
			Time:   start,
			Open:   tk.Open,
			High:   tk.High,
			Low:    tk.Low,
			Close:  tk.Close,
			Volume: tk.Volume,
		})
	}
	return bars
}

// estimateBars sizes the output from the series span, capped by the input length.
func estimateBars(series model.Series, width time.Duration) int {
	span := series[len(series)-1].Time.Sub(series[0].Time)
	n := int(span/width) + 2
	if n > len(series) || n < 1 {
		n = len(series)
	}
	return n
}
