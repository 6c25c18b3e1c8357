package resample

import (
	"math"
	"sort"
	"strings"
	"time"

	"fx-data/internal/errs"
)

// Def is a timeframe as written in config.yaml.
type Def struct {
	Unit   string `yaml:"unit" validate:"required"`
	Amount int    `yaml:"amount" validate:"gt=0"`
	Origin string `yaml:"origin" validate:"required"`
}

// Timeframe is a validated bucket width plus the origin the bucket grid is aligned to.
type Timeframe struct {
	Name   string
	Unit   string
	Amount int
	Origin time.Time
}

// Width returns the bucket width.
func (tf Timeframe) Width() time.Duration {
	return unitDurations[tf.Unit] * time.Duration(tf.Amount)
}

// Calendar reports whether buckets follow the local calendar (days, weeks) rather than
// fixed elapsed time.
func (tf Timeframe) Calendar() bool {
	return tf.Unit == "days" || tf.Unit == "weeks"
}

// plural unit names, singular accepted
var unitDurations = map[string]time.Duration{
	"weeks":        7 * 24 * time.Hour,
	"days":         24 * time.Hour,
	"hours":        time.Hour,
	"minutes":      time.Minute,
	"seconds":      time.Second,
	"milliseconds": time.Millisecond,
	"microseconds": time.Microsecond,
}

func normalizeUnit(u string) (string, bool) {
	u = strings.ToLower(strings.TrimSpace(u))
	if _, ok := unitDurations[u]; ok {
		return u, true
	}
	if _, ok := unitDurations[u+"s"]; ok {
		return u + "s", true
	}
	return "", false
}

// Timeframes is the set of named timeframes, validated once at construction.
type Timeframes struct {
	byName map[string]Timeframe
	names  []string
}

// NewTimeframes validates every definition, interpreting origins in ref.
// Unknown units, non-positive amounts and unparsable origins are rejected here.
func NewTimeframes(defs map[string]Def, ref *time.Location) (*Timeframes, error) {
	if len(defs) == 0 {
		return nil, errs.Configf("no timeframes configured")
	}
	t := &Timeframes{byName: make(map[string]Timeframe, len(defs))}
	for name, d := range defs {
		unit, ok := normalizeUnit(d.Unit)
		if !ok {
			return nil, errs.Configf("timeframe %q: unsupported unit %q (use: %s)", name, d.Unit, strings.Join(unitNames(), ", "))
		}
		if d.Amount <= 0 {
			return nil, errs.Configf("timeframe %q: amount must be positive, got %d", name, d.Amount)
		}
		if int64(d.Amount) > math.MaxInt64/int64(unitDurations[unit]) {
			return nil, errs.Configf("timeframe %q: %d %s is too large", name, d.Amount, unit)
		}
		origin, err := ParseTime(d.Origin, ref)
		if err != nil {
			return nil, &errs.ConfigError{Msg: "timeframe " + name + ": origin", Err: err}
		}
		t.byName[name] = Timeframe{Name: name, Unit: unit, Amount: d.Amount, Origin: origin}
		t.names = append(t.names, name)
	}
	sort.Strings(t.names)
	return t, nil
}

// Get returns the named timeframe or a ConfigError listing the valid names.
func (t *Timeframes) Get(name string) (Timeframe, error) {
	tf, ok := t.byName[name]
	if !ok {
		return Timeframe{}, errs.Configf("please select timeframe from %s", strings.Join(t.names, ", "))
	}
	return tf, nil
}

// Names returns the configured timeframe names, sorted.
func (t *Timeframes) Names() []string {
	return append([]string(nil), t.names...)
}

func unitNames() []string {
	names := make([]string, 0, len(unitDurations))
	for u := range unitDurations {
		names = append(names, u)
	}
	sort.Strings(names)
	return names
}
