package histdata

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"fx-data/internal/errs"
	"fx-data/internal/model"
	"fx-data/internal/resample"
)

// LoadRequest selects one pair in one timeframe. Start and End are inclusive and are
// read in Timezone; empty means unbounded. Empty Timezone means the reference zone.
type LoadRequest struct {
	Pair      string
	Timeframe string
	Start     string
	End       string
	Timezone  string
}

// Converter turns raw M1 shards into bars of a configured timeframe.
type Converter struct {
	src   Source
	tfs   *resample.Timeframes
	cache *Cache
}

// NewConverter wires a converter. A nil cache gets a fresh one.
func NewConverter(src Source, tfs *resample.Timeframes, cache *Cache) *Converter {
	if cache == nil {
		cache = NewCache()
	}
	return &Converter{src: src, tfs: tfs, cache: cache}
}

// Timeframes returns the configured timeframe set.
func (c *Converter) Timeframes() *resample.Timeframes { return c.tfs }

// Load is LoadContext without cancellation.
func (c *Converter) Load(pair, timeframe, start, end, timezone string) ([]model.Bar, error) {
	return c.LoadContext(context.Background(), LoadRequest{
		Pair:      pair,
		Timeframe: timeframe,
		Start:     start,
		End:       end,
		Timezone:  timezone,
	})
}

// LoadContext ingests (or reuses) the pair's series, resamples it in the reference zone,
// converts bar times to req.Timezone and clips to [Start, End].
func (c *Converter) LoadContext(ctx context.Context, req LoadRequest) ([]model.Bar, error) {
	tf, err := c.tfs.Get(req.Timeframe)
	if err != nil {
		return nil, err
	}
	pair, err := NormalizePair(req.Pair)
	if err != nil {
		return nil, err
	}
	loc, err := c.location(req.Timezone)
	if err != nil {
		return nil, err
	}
	start, end, err := parseBounds(req.Start, req.End, loc)
	if err != nil {
		return nil, err
	}

	series, err := c.Series(ctx, pair)
	if err != nil {
		return nil, err
	}

	bars := model.In(resample.Resample(series, tf), loc)
	bars = clip(bars, start, end)
	slog.Debug("converted", "pair", pair, "timeframe", tf.Name, "ticks", len(series), "bars", len(bars), "tz", loc.String())
	return bars, nil
}

// Series returns the weekend-free series of pair, ingesting it on first use.
func (c *Converter) Series(ctx context.Context, pair string) (model.Series, error) {
	s, hit, err := c.cache.GetOrLoad(ctx, pair, func(ctx context.Context) (model.Series, error) {
		raw, err := c.src.Ingest(ctx, pair)
		if err != nil {
			return nil, err
		}
		clean := DropWeekends(raw, c.src.Ref)
		slog.Debug("weekend rows dropped", "pair", pair, "dropped", len(raw)-len(clean))
		return clean, nil
	})
	if err != nil {
		return nil, err
	}
	slog.Debug("series", "pair", pair, "cache_hit", hit, "ticks", len(s))
	return s, nil
}

func (c *Converter) location(name string) (*time.Location, error) {
	if name == "" {
		return c.src.Ref, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, &errs.ConfigError{Msg: "unknown timezone " + name, Err: err}
	}
	return loc, nil
}

// parseBounds reads start/end in loc. A zero time means unbounded.
func parseBounds(startStr, endStr string, loc *time.Location) (start, end time.Time, err error) {
	if startStr != "" {
		if start, err = resample.ParseTime(startStr, loc); err != nil {
			return start, end, &errs.ConfigError{Msg: "start", Err: err}
		}
	}
	if endStr != "" {
		if end, err = resample.ParseTime(endStr, loc); err != nil {
			return start, end, &errs.ConfigError{Msg: "end", Err: err}
		}
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return start, end, errs.Configf("start %s is after end %s", startStr, endStr)
	}
	return start, end, nil
}

// clip keeps bars with start <= Time <= end. bars must be sorted.
func clip(bars []model.Bar, start, end time.Time) []model.Bar {
	lo, hi := 0, len(bars)
	if !start.IsZero() {
		lo = sort.Search(len(bars), func(i int) bool { return !bars[i].Time.Before(start) })
	}
	if !end.IsZero() {
		hi = sort.Search(len(bars), func(i int) bool { return bars[i].Time.After(end) })
	}
	if lo >= hi {
		return []model.Bar{}
	}
	return bars[lo:hi]
}
