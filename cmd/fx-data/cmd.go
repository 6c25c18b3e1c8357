package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fx-data/internal/app"
	"fx-data/internal/errs"
	"fx-data/internal/saver"
	"fx-data/internal/slogx"
)

type rootFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	rf := &rootFlags{}
	root := &cobra.Command{
		Use:           "fx-data",
		Short:         "Convert histdata.com M1 ASCII shards into coarser OHLC bars",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&rf.configPath, "config", "", "config file (default $FXDATA_CONFIG or config.yaml)")
	root.PersistentFlags().StringVar(&rf.logLevel, "log-level", "", "debug | info | warn | error (overrides config)")

	root.AddCommand(
		newConvertCmd(rf),
		newTimeframesCmd(rf),
		&cobra.Command{
			Use:   "version",
			Short: "Print version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), version)
			},
		},
	)
	return root
}

// initApp builds the App and installs the configured logger.
func initApp(rf *rootFlags) (*App, error) {
	a, err := InitializeApp(app.ConfigPath(rf.configPath))
	if err != nil {
		return nil, err
	}
	level := a.Config.LogLevel
	if rf.logLevel != "" {
		level = rf.logLevel
	}
	slog.SetDefault(slogx.New(os.Stderr, level, a.Config.LogFormat))
	return a, nil
}

type convertFlags struct {
	pairs     []string
	timeframe string
	start     string
	end       string
	timezone  string
	outDir    string
	format    string
	workers   int
}

func newConvertCmd(rf *rootFlags) *cobra.Command {
	cf := &convertFlags{}
	cmd := &cobra.Command{
		Use:     "convert",
		Short:   "Resample one or more pairs and save one file per pair",
		Example: "  fx-data convert --pair EURUSD,USDJPY --timeframe 4h --start 2022-02-07 --end 2022-03-01 --tz Asia/Tokyo",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initApp(rf)
			if err != nil {
				return err
			}
			s := a.Saver
			if cf.format != "" {
				if s = saver.NewBarSaver(cf.format); s == nil {
					return errs.Configf("unsupported --format %q (use: %s)", cf.format, strings.Join(saver.Formats, ", "))
				}
			}
			opts := app.ExportOptions{
				Pairs:     cf.pairs,
				Timeframe: cf.timeframe,
				Start:     cf.start,
				End:       cf.end,
				Timezone:  cf.timezone,
				OutDir:    a.Config.OutDir,
				Workers:   a.Config.Workers,
			}
			if cf.outDir != "" {
				opts.OutDir = cf.outDir
			}
			if cf.workers > 0 {
				opts.Workers = cf.workers
			}
			opts.ReportPath = app.ReportPathIn(opts.OutDir)

			slog.Info("convert", "pairs", len(opts.Pairs), "timeframe", opts.Timeframe, "dir", a.Config.HistdataDir, "out", opts.OutDir, "format", s.Extension())
			_, err = app.RunExport(cmd.Context(), a.Converter, s, opts)
			return err
		},
	}
	f := cmd.Flags()
	f.StringSliceVarP(&cf.pairs, "pair", "p", nil, "currency pair(s), e.g. EURUSD or EURUSD,USDJPY")
	f.StringVarP(&cf.timeframe, "timeframe", "t", "", "timeframe name from config, e.g. 4h")
	f.StringVar(&cf.start, "start", "", "first bar to keep, inclusive, read in --tz (e.g. 2022-02-07)")
	f.StringVar(&cf.end, "end", "", "last bar to keep, inclusive, read in --tz")
	f.StringVar(&cf.timezone, "tz", "", "output timezone (default: reference_timezone)")
	f.StringVarP(&cf.outDir, "out", "o", "", "output directory (default: out_dir)")
	f.StringVar(&cf.format, "format", "", "csv | json | parquet (default: save_format)")
	f.IntVar(&cf.workers, "workers", 0, "pairs converted in parallel (default: workers)")
	_ = cmd.MarkFlagRequired("pair")
	_ = cmd.MarkFlagRequired("timeframe")
	return cmd
}

func newTimeframesCmd(rf *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "timeframes",
		Short: "List configured timeframes",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initApp(rf)
			if err != nil {
				return err
			}
			tfs := a.Converter.Timeframes()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tWIDTH\tORIGIN")
			for _, name := range tfs.Names() {
				tf, _ := tfs.Get(name)
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, tf.Width(), tf.Origin.Format("2006-01-02 15:04:05 MST"))
			}
			return w.Flush()
		},
	}
}
