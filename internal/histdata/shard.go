package histdata

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"fx-data/internal/errs"
	"fx-data/internal/model"
)

const (
	// histdata timestamp, e.g. "20230102 170100"
	timestampLayout = "20060102 150405"
	fieldsPerRow    = 6
)

var pairPattern = regexp.MustCompile(`^[A-Z0-9]{3,12}$`)

// Source locates and reads the raw M1 shards of one data directory.
type Source struct {
	Dir string
	Ref *time.Location // zone the naive shard timestamps are expressed in
}

// NormalizePair upper-cases pair and rejects anything that is not a plain symbol code.
func NormalizePair(pair string) (string, error) {
	p := strings.ToUpper(strings.TrimSpace(pair))
	if !pairPattern.MatchString(p) {
		return "", errs.Configf("invalid currency pair %q", pair)
	}
	return p, nil
}

// ShardPaths returns DAT_ASCII_{pair}_M1_*.csv files under Dir, sorted by name.
func (s Source) ShardPaths(pair string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(s.Dir, fmt.Sprintf("DAT_ASCII_%s_M1_*.csv", pair)))
	if err != nil {
		return nil, fmt.Errorf("glob shards: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// readShard parses one shard. The first malformed row aborts with a FormatError.
func (s Source) readShard(ctx context.Context, path string) ([]model.Tick, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open shard: %w", err)
	}
	defer f.Close()
	return parseRows(ctx, path, f, s.Ref)
}

func parseRows(ctx context.Context, path string, r io.Reader, ref *time.Location) ([]model.Tick, error) {
	// strips a UTF-8 BOM, switches to UTF-16 when the file starts with one
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	cr.Comma = ';'
	cr.FieldsPerRecord = fieldsPerRow
	cr.ReuseRecord = true

	var ticks []model.Tick
	for n := 1; ; n++ {
		if n%100000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &errs.FormatError{Path: path, Line: pe.Line, Msg: "malformed row", Err: pe.Err}
			}
			return nil, fmt.Errorf("read shard %s: %w", path, err)
		}
		tk, err := parseRow(rec, ref)
		if err != nil {
			ln, _ := cr.FieldPos(0)
			return nil, &errs.FormatError{Path: path, Line: ln, Msg: err.Error()}
		}
		ticks = append(ticks, tk)
	}
	return ticks, nil
}

func parseRow(rec []string, ref *time.Location) (model.Tick, error) {
	ts, err := time.ParseInLocation(timestampLayout, strings.TrimSpace(rec[0]), ref)
	if err != nil {
		return model.Tick{}, fmt.Errorf("bad datetime %q", rec[0])
	}
	var v [5]float64
	names := [5]string{"open", "high", "low", "close", "volume"}
	for i := range v {
		f, err := strconv.ParseFloat(strings.TrimSpace(rec[i+1]), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return model.Tick{}, fmt.Errorf("bad %s %q", names[i], rec[i+1])
		}
		v[i] = f
	}
	return model.Tick{Time: ts, Open: v[0], High: v[1], Low: v[2], Close: v[3], Volume: v[4]}, nil
}

// Ingest reads every shard of pair, drops exact duplicate rows and returns the series sorted by time.
// Rows that share a timestamp but differ keep the one read last. No shards yields an empty series.
func (s Source) Ingest(ctx context.Context, pair string) (model.Series, error) {
	paths, err := s.ShardPaths(pair)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		slog.Warn("no shards found", "pair", pair, "dir", s.Dir)
		return model.Series{}, nil
	}

	var rows []model.Tick
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ticks, err := s.readShard(ctx, p)
		if err != nil {
			return nil, err
		}
		slog.Debug("shard read", "pair", pair, "path", p, "rows", len(ticks))
		rows = append(rows, ticks...)
	}

	series, dups, conflicts := dedupe(rows)
	slog.Info("ingested", "pair", pair, "shards", len(paths), "rows", len(rows), "duplicates", dups, "series", len(series))
	if conflicts > 0 {
		slog.Warn("rows with equal timestamp but different values, kept last", "pair", pair, "conflicts", conflicts)
	}
	return series, nil
}

type rowKey struct {
	ns   int64
	vals [5]float64
}

// dedupe drops exact duplicates, sorts by time and collapses equal timestamps to the last row.
func dedupe(rows []model.Tick) (series model.Series, dups, conflicts int) {
	seen := make(map[rowKey]struct{}, len(rows))
	uniq := make([]model.Tick, 0, len(rows))
	for _, r := range rows {
		k := rowKey{r.Time.UnixNano(), [5]float64{r.Open, r.High, r.Low, r.Close, r.Volume}}
		if _, ok := seen[k]; ok {
			dups++
			continue
		}
		seen[k] = struct{}{}
		uniq = append(uniq, r)
	}
	sort.SliceStable(uniq, func(i, j int) bool { return uniq[i].Time.Before(uniq[j].Time) })

	series = make(model.Series, 0, len(uniq))
	for _, r := range uniq {
		if n := len(series); n > 0 && series[n-1].Time.Equal(r.Time) {
			series[n-1] = r
			conflicts++
			continue
		}
		series = append(series, r)
	}
	return series, dups, conflicts
}
