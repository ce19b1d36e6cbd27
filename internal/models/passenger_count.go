package models

import (
	"encoding/json"
	"sort"
)

// PassengerCount decodes the two shapes the feed uses for passenger data:
// a plain number, or a map of millisecond timestamps to counts accumulated
// over the day. Latest resolves either shape to a single current value.
type PassengerCount struct {
	scalar  int
	series  map[int64]int
	present bool
}

// NewPassengerCount returns a scalar passenger count.
func NewPassengerCount(n int) PassengerCount {
	return PassengerCount{scalar: n, present: true}
}

// NewPassengerSeries returns a timestamped passenger count series.
func NewPassengerSeries(series map[int64]int) PassengerCount {
	return PassengerCount{series: series, present: len(series) > 0}
}

// IsZero reports whether no passenger data has been recorded.
func (p PassengerCount) IsZero() bool {
	return !p.present
}

// Latest returns the current passenger count: the scalar value, or the
// entry with the chronologically latest timestamp for series data.
// Returns 0 when no data is present.
func (p PassengerCount) Latest() int {
	if !p.present {
		return 0
	}
	if p.series == nil {
		return p.scalar
	}
	var latestTS int64
	var latest int
	first := true
	for ts, count := range p.series {
		if first || ts > latestTS {
			latestTS = ts
			latest = count
			first = false
		}
	}
	return latest
}

// Series returns the timestamped entries in chronological order, or nil for
// scalar counts. Used by the analytics recorder.
func (p PassengerCount) Series() []PassengerObservation {
	if p.series == nil {
		return nil
	}
	out := make([]PassengerObservation, 0, len(p.series))
	for ts, count := range p.series {
		out = append(out, PassengerObservation{Timestamp: ts, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

// PassengerObservation is a single timestamped passenger count.
type PassengerObservation struct {
	Timestamp int64 `json:"timestamp"`
	Count     int   `json:"count"`
}

// UnmarshalJSON accepts either a JSON number or an object keyed by
// millisecond timestamps. Anything else decodes to the zero value.
func (p *PassengerCount) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*p = NewPassengerCount(int(n))
		return nil
	}

	var raw map[string]json.Number
	if err := json.Unmarshal(data, &raw); err != nil {
		*p = PassengerCount{}
		return nil
	}

	series := make(map[int64]int, len(raw))
	for key, val := range raw {
		ts, err := parseInt64(key)
		if err != nil {
			continue
		}
		count, err := val.Int64()
		if err != nil {
			if f, ferr := val.Float64(); ferr == nil {
				count = int64(f)
			} else {
				continue
			}
		}
		series[ts] = int(count)
	}
	*p = NewPassengerSeries(series)
	return nil
}

// MarshalJSON always emits the resolved scalar value.
func (p PassengerCount) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Latest())
}

func parseInt64(s string) (int64, error) {
	var n json.Number = json.Number(s)
	return n.Int64()
}
