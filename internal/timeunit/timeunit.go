// Package timeunit defines the base time units a diagram can be measured
// in. All diagram times are stored in milliseconds; a unit only changes how
// coarse the zoom scale, snapping and ruler labels are.
package timeunit

import (
	"fmt"
	"strings"
)

// Unit is a base time unit.
type Unit int

const (
	Millisecond Unit = iota
	Second
	Minute
	Hour
	Day

	unitCount
)

type unitInfo struct {
	name   string
	abbrev string
	ms     float64
	// finer is the next smaller unit; Millisecond is its own finer unit.
	finer Unit
	// coarser is the next larger unit; Day is its own coarser unit.
	coarser Unit
}

// Sized by unitCount so a missing row is a compile error.
var units = [unitCount]unitInfo{
	Millisecond: {name: "milliseconds", abbrev: "ms", ms: 1, finer: Millisecond, coarser: Second},
	Second:      {name: "seconds", abbrev: "s", ms: 1000, finer: Millisecond, coarser: Minute},
	Minute:      {name: "minutes", abbrev: "m", ms: 60 * 1000, finer: Second, coarser: Hour},
	Hour:        {name: "hours", abbrev: "h", ms: 60 * 60 * 1000, finer: Minute, coarser: Day},
	Day:         {name: "days", abbrev: "d", ms: 24 * 60 * 60 * 1000, finer: Hour, coarser: Day},
}

// All returns every unit from finest to coarsest.
func All() []Unit {
	out := make([]Unit, 0, unitCount)
	for u := Millisecond; u < unitCount; u++ {
		out = append(out, u)
	}
	return out
}

// Valid reports whether u is a defined unit.
func (u Unit) Valid() bool {
	return u >= Millisecond && u < unitCount
}

// Milliseconds returns the size of one u.
func (u Unit) Milliseconds() float64 {
	return u.info().ms
}

// Abbrev returns the short label used on rulers ("ms", "s", ...).
func (u Unit) Abbrev() string {
	return u.info().abbrev
}

// Finer returns the next smaller unit.
func (u Unit) Finer() Unit {
	return u.info().finer
}

// Coarser returns the next larger unit.
func (u Unit) Coarser() Unit {
	return u.info().coarser
}

func (u Unit) String() string {
	return u.info().name
}

func (u Unit) info() unitInfo {
	if !u.Valid() {
		return units[Millisecond]
	}
	return units[u]
}

// Parse maps a configuration string to a unit. Both the full plural name
// and the abbreviation are accepted, case-insensitively.
func Parse(s string) (Unit, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for u := Millisecond; u < unitCount; u++ {
		info := units[u]
		if s == info.name || s == info.abbrev || s == strings.TrimSuffix(info.name, "s") {
			return u, nil
		}
	}
	return Millisecond, fmt.Errorf("unknown time unit %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (u Unit) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so units can be used
// directly in YAML and TOML settings.
func (u *Unit) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// Scale describes the active base unit and the sub unit that one step of
// zoom scale represents, e.g. minutes with second granularity.
type Scale struct {
	Base Unit
	Sub  Unit
}

// NewScale validates a base/sub pair. The sub unit may not be coarser
// than the base.
func NewScale(base, sub Unit) (Scale, error) {
	if !base.Valid() {
		return Scale{}, fmt.Errorf("invalid base unit %d", base)
	}
	if !sub.Valid() {
		return Scale{}, fmt.Errorf("invalid sub unit %d", sub)
	}
	if sub > base {
		return Scale{}, fmt.Errorf("sub unit %s is coarser than base unit %s", sub, base)
	}
	return Scale{Base: base, Sub: sub}, nil
}

// MillisecondScale is plain millisecond mode.
func MillisecondScale() Scale {
	return Scale{Base: Millisecond, Sub: Millisecond}
}

// Granularity is the time represented by one unit of zoom scale.
func (s Scale) Granularity() float64 {
	return s.Sub.Milliseconds()
}

// FineStep is the snapping step used when a precision modifier is held:
// one unit finer than the granularity, or a tenth of a millisecond below
// the finest unit.
func (s Scale) FineStep() float64 {
	if fine := s.Sub.Finer(); fine != s.Sub {
		return fine.Milliseconds()
	}
	return s.Granularity() / 10
}

func (s Scale) String() string {
	if s.Base == s.Sub {
		return s.Base.String()
	}
	return fmt.Sprintf("%s/%s", s.Base, s.Sub)
}
