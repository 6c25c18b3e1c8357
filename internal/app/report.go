package app

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// RunReport summarizes one export run; it is written to .lastrun.json.
type RunReport struct {
	Timeframe string         `json:"timeframe"`
	Start     string         `json:"start,omitempty"`
	End       string         `json:"end,omitempty"`
	Timezone  string         `json:"timezone,omitempty"`
	Elapsed   string         `json:"elapsed"`
	Success   []successEntry `json:"success"`
	Failed    []failedEntry  `json:"failed"`
}

type successEntry struct {
	Pair string `json:"pair"`
	Bars int    `json:"bars"`
	Path string `json:"path"`
}

type failedEntry struct {
	Pair   string `json:"pair"`
	Reason string `json:"reason"`
}

func writeRunReport(path string, r *RunReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	slog.Info("report wrote", "path", path, "success", len(r.Success), "failed", len(r.Failed))
	return nil
}

// FailedReasons joins the first few failures for a one-line summary.
func (r *RunReport) FailedReasons() string {
	if len(r.Failed) == 0 {
		return ""
	}
	var b strings.Builder
	for i, f := range r.Failed {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f.Pair)
		b.WriteString(": ")
		b.WriteString(f.Reason)
		if i >= 4 && len(r.Failed) > 6 {
			fmt.Fprintf(&b, " (+%d more)", len(r.Failed)-5)
			break
		}
	}
	return b.String()
}
