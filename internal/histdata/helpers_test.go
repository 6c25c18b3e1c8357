package histdata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"

	"fx-data/internal/resample"
)

func eastern(t testing.TB) *time.Location {
	loc, err := time.LoadLocation("US/Eastern")
	require.NoError(t, err)
	return loc
}

func writeShard(t testing.TB, dir, name string, lines ...string) string {
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	return p
}

func testTimeframes(t testing.TB, loc *time.Location) *resample.Timeframes {
	tfs, err := resample.NewTimeframes(map[string]resample.Def{
		"5m": {Unit: "minutes", Amount: 5, Origin: "2023-01-02 17:00:00"},
		"1h": {Unit: "hours", Amount: 1, Origin: "2000-01-02 17:00:00"},
		"4h": {Unit: "hours", Amount: 4, Origin: "2000-01-02 17:00:00"},
	}, loc)
	require.NoError(t, err)
	return tfs
}
