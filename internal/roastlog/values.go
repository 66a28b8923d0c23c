package roastlog

import (
	"encoding/json"
	"fmt"
	"math"
)

// NotAvailable is the display form of any metric that cannot be derived.
const NotAvailable = "N/A"

// Seconds is an elapsed time since charge that may be unknown.
// The zero value is unknown, never "0:00".
type Seconds struct {
	value int
	known bool
}

// Unknown is the sentinel for a duration or offset with no data behind it.
var Unknown = Seconds{}

// KnownSeconds wraps a real value.
func KnownSeconds(v int) Seconds {
	return Seconds{value: v, known: true}
}

// Value returns the raw seconds and whether they are known.
func (s Seconds) Value() (int, bool) { return s.value, s.known }

func (s Seconds) Known() bool { return s.known }

// String renders m:ss, or NotAvailable.
func (s Seconds) String() string {
	if !s.known {
		return NotAvailable
	}
	return FormatClock(s.value)
}

type secondsJSON struct {
	Seconds *int   `json:"seconds"`
	Display string `json:"display"`
}

// MarshalJSON emits {"seconds": n, "display": "m:ss"}; unknown values carry a null.
func (s Seconds) MarshalJSON() ([]byte, error) {
	out := secondsJSON{Display: s.String()}
	if s.known {
		v := s.value
		out.Seconds = &v
	}
	return json.Marshal(out)
}

func (s *Seconds) UnmarshalJSON(b []byte) error {
	var in secondsJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	if in.Seconds == nil {
		*s = Unknown
		return nil
	}
	*s = KnownSeconds(*in.Seconds)
	return nil
}

// FormatClock renders whole seconds as minutes:seconds with zero-padded seconds.
// Negative input is clamped to 0.
func FormatClock(sec int) string {
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}

// Percent is a percentage that may be unknown. Full precision is kept;
// only String rounds.
type Percent struct {
	value float64
	known bool
}

// UnknownPercent is the sentinel for a percentage with no data behind it.
var UnknownPercent = Percent{}

func KnownPercent(v float64) Percent {
	return Percent{value: v, known: true}
}

func (p Percent) Value() (float64, bool) { return p.value, p.known }

func (p Percent) Known() bool { return p.known }

// Rounded returns the value rounded to one decimal place.
func (p Percent) Rounded() float64 {
	return math.Round(p.value*10) / 10
}

func (p Percent) String() string {
	if !p.known {
		return NotAvailable
	}
	return fmt.Sprintf("%.1f%%", p.value)
}

type percentJSON struct {
	Value   *float64 `json:"value"`
	Display string   `json:"display"`
}

func (p Percent) MarshalJSON() ([]byte, error) {
	out := percentJSON{Display: p.String()}
	if p.known {
		v := p.value
		out.Value = &v
	}
	return json.Marshal(out)
}

func (p *Percent) UnmarshalJSON(b []byte) error {
	var in percentJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	if in.Value == nil {
		*p = UnknownPercent
		return nil
	}
	*p = KnownPercent(*in.Value)
	return nil
}
