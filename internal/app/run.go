package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"fx-data/internal/histdata"
	"fx-data/internal/saver"
)

// ExportOptions describes one convert run over one or more pairs.
type ExportOptions struct {
	Pairs      []string
	Timeframe  string
	Start      string
	End        string
	Timezone   string
	OutDir     string
	ReportPath string
	Workers    int
}

// RunExport converts every pair with up to Workers in parallel and saves one file per pair.
// A failing pair does not stop the others; all failures are joined into the returned error.
func RunExport(ctx context.Context, conv *histdata.Converter, s saver.BarSaver, opts ExportOptions) (*RunReport, error) {
	if len(opts.Pairs) == 0 {
		return nil, fmt.Errorf("no pairs to export")
	}
	if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
		return nil, err
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	started := time.Now()
	report := &RunReport{
		Timeframe: opts.Timeframe,
		Start:     opts.Start,
		End:       opts.End,
		Timezone:  opts.Timezone,
		Success:   []successEntry{},
		Failed:    []failedEntry{},
	}
	var mu sync.Mutex
	var failures []error

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, pair := range opts.Pairs {
		pair := pair
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entry, err := exportPair(gctx, conv, s, opts, pair)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Error("export fail", "pair", pair, "timeframe", opts.Timeframe, "error", err)
				report.Failed = append(report.Failed, failedEntry{Pair: pair, Reason: err.Error()})
				failures = append(failures, fmt.Errorf("%s: %w", pair, err))
				return nil
			}
			slog.Info("export ok", "pair", pair, "timeframe", opts.Timeframe, "bars", entry.Bars, "path", entry.Path)
			report.Success = append(report.Success, entry)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(report.Success, func(i, j int) bool { return report.Success[i].Pair < report.Success[j].Pair })
	sort.Slice(report.Failed, func(i, j int) bool { return report.Failed[i].Pair < report.Failed[j].Pair })
	report.Elapsed = time.Since(started).Round(time.Millisecond).String()
	slog.Info("export done", "success", len(report.Success), "failed", len(report.Failed), "elapsed", report.Elapsed)

	if opts.ReportPath != "" {
		if err := writeRunReport(opts.ReportPath, report); err != nil {
			slog.Warn("could not write run report", "error", err)
		}
	}
	return report, errors.Join(failures...)
}

func exportPair(ctx context.Context, conv *histdata.Converter, s saver.BarSaver, opts ExportOptions, pair string) (successEntry, error) {
	norm, err := histdata.NormalizePair(pair)
	if err != nil {
		return successEntry{}, err
	}
	bars, err := conv.LoadContext(ctx, histdata.LoadRequest{
		Pair:      norm,
		Timeframe: opts.Timeframe,
		Start:     opts.Start,
		End:       opts.End,
		Timezone:  opts.Timezone,
	})
	if err != nil {
		return successEntry{}, err
	}
	path := filepath.Join(opts.OutDir, OutputName(norm, opts.Timeframe, s.Extension()))
	if err := s.Save(bars, path); err != nil {
		return successEntry{}, fmt.Errorf("save %s: %w", path, err)
	}
	return successEntry{Pair: norm, Bars: len(bars), Path: path}, nil
}
