package histdata

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"fx-data/internal/errs"
)

func TestParseRows(t *testing.T) {
	loc := eastern(t)
	in := "20230102 170100;1.06700;1.06710;1.06690;1.06705;0\n" +
		"20230102 170200;1.06705;1.06720;1.06700;1.06715;0\n"

	ticks, err := parseRows(context.Background(), "x.csv", strings.NewReader(in), loc)

	require.NoError(t, err)
	require.Len(t, ticks, 2)
	assert.True(t, ticks[0].Time.Equal(time.Date(2023, 1, 2, 17, 1, 0, 0, loc)))
	assert.Equal(t, loc, ticks[0].Time.Location())
	assert.Equal(t, 1.067, ticks[0].Open)
	assert.Equal(t, 1.0671, ticks[0].High)
	assert.Equal(t, 1.0669, ticks[0].Low)
	assert.Equal(t, 1.06715, ticks[1].Close)
}

func TestParseRows_Malformed(t *testing.T) {
	loc := eastern(t)
	good := "20230102 170100;1;1;1;1;0\n"

	testCases := []struct {
		name     string
		in       string
		wantLine int
		wantMsg  string
	}{
		{"missing field", good + "20230102 170200;1;1;1;1\n", 2, "malformed row"},
		{"extra field", good + "20230102 170200;1;1;1;1;0;9\n", 2, "malformed row"},
		{"bad datetime", good + good + "2023-01-02 17:03;1;1;1;1;0\n", 3, "bad datetime"},
		{"bad price", "20230102 170100;1;abc;1;1;0\n", 1, "bad high"},
		{"nan price", "20230102 170100;1;1;NaN;1;0\n", 1, "bad low"},
		{"comma separated", "20230102 170100,1,1,1,1,0\n", 1, "malformed row"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseRows(context.Background(), "x.csv", strings.NewReader(tc.in), loc)
			var fe *errs.FormatError
			require.True(t, errors.As(err, &fe), "got %v", err)
			assert.Equal(t, "x.csv", fe.Path)
			assert.Equal(t, tc.wantLine, fe.Line)
			assert.Contains(t, fe.Error(), tc.wantMsg)
		})
	}
}

func TestParseRows_ByteOrderMarks(t *testing.T) {
	loc := eastern(t)
	body := "20230102 170100;1;2;0.5;1.5;0\n"

	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(body)
	require.NoError(t, err)

	for name, in := range map[string]string{
		"utf8 bom": "\ufeff" + body,
		"utf16le":  utf16,
	} {
		t.Run(name, func(t *testing.T) {
			ticks, err := parseRows(context.Background(), "x.csv", strings.NewReader(in), loc)
			require.NoError(t, err)
			require.Len(t, ticks, 1)
			assert.True(t, ticks[0].Time.Equal(time.Date(2023, 1, 2, 17, 1, 0, 0, loc)))
			assert.Equal(t, 1.5, ticks[0].Close)
		})
	}
}

func TestIngest(t *testing.T) {
	loc := eastern(t)
	dir := t.TempDir()
	writeShard(t, dir, "DAT_ASCII_EURUSD_M1_202301.csv",
		"20230102 170200;2;2;2;2;0",
		"20230102 170100;1;1;1;1;0",
		"20230102 170300;3;3;3;3;0",
	)
	// overlaps the first shard: one exact duplicate, one corrected row
	writeShard(t, dir, "DAT_ASCII_EURUSD_M1_202302.csv",
		"20230102 170300;3;3;3;3;0",
		"20230102 170200;2;2.5;2;2.5;0",
		"20230102 170400;4;4;4;4;0",
	)
	writeShard(t, dir, "DAT_ASCII_USDJPY_M1_202301.csv", "20230102 170100;130;130;130;130;0")

	series, err := Source{Dir: dir, Ref: loc}.Ingest(context.Background(), "EURUSD")

	require.NoError(t, err)
	require.Len(t, series, 4)
	for i := 1; i < len(series); i++ {
		assert.True(t, series[i-1].Time.Before(series[i].Time))
	}
	assert.Equal(t, 1.0, series[0].Close)
	assert.Equal(t, 2.5, series[1].Close, "later shard wins on conflicting timestamp")
	assert.Equal(t, 4.0, series[3].Close)
}

func TestIngest_NoShards(t *testing.T) {
	series, err := Source{Dir: t.TempDir(), Ref: eastern(t)}.Ingest(context.Background(), "GBPUSD")
	require.NoError(t, err)
	assert.Empty(t, series)
}

func TestIngest_MalformedShardFailsWholeLoad(t *testing.T) {
	dir := t.TempDir()
	writeShard(t, dir, "DAT_ASCII_EURUSD_M1_202301.csv", "20230102 170100;1;1;1;1;0")
	bad := writeShard(t, dir, "DAT_ASCII_EURUSD_M1_202302.csv", "20230202 170100;1;1;1;1;0", "garbage")

	series, err := Source{Dir: dir, Ref: eastern(t)}.Ingest(context.Background(), "EURUSD")

	assert.Nil(t, series)
	var fe *errs.FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, bad, fe.Path)
	assert.Equal(t, 2, fe.Line)
}

func TestIngest_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeShard(t, dir, "DAT_ASCII_EURUSD_M1_202301.csv", "20230102 170100;1;1;1;1;0")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Source{Dir: dir, Ref: eastern(t)}.Ingest(ctx, "EURUSD")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDedupe_IdenticalRowsCollapse(t *testing.T) {
	loc := eastern(t)
	ticks, err := parseRows(context.Background(), "x.csv", strings.NewReader(
		"20230102 170100;1;1;1;1;0\n20230102 170100;1;1;1;1;0\n"), loc)
	require.NoError(t, err)

	series, dups, conflicts := dedupe(ticks)

	assert.Len(t, series, 1)
	assert.Equal(t, 1, dups)
	assert.Equal(t, 0, conflicts)
}

func TestNormalizePair(t *testing.T) {
	p, err := NormalizePair(" eurusd ")
	require.NoError(t, err)
	assert.Equal(t, "EURUSD", p)

	for _, bad := range []string{"", "EUR/USD", "../EURUSD", "EUR*"} {
		_, err := NormalizePair(bad)
		assert.ErrorIs(t, err, errs.ErrConfig, bad)
	}
}
