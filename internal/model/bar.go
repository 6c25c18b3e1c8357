package model

import "time"

// Tick is one raw 1-minute row from a histdata shard.
// Time carries the reference zone the shard was localized to.
type Tick struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Series is the ingested history of one currency pair: sorted ascending, unique by Time.
type Series []Tick

// Bar is one resampled interval. Time is the bucket start.
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// In returns a copy of the bars with Time converted to loc.
func In(bars []Bar, loc *time.Location) []Bar {
	out := make([]Bar, len(bars))
	for i, b := range bars {
		b.Time = b.Time.In(loc)
		out[i] = b
	}
	return out
}
