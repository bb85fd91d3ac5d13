package coord

import "math"

// Rounding selects how Snap moves a value onto the step grid.
type Rounding int

const (
	Round Rounding = iota
	Floor
	Ceil
)

// Step is the snapping step: the granularity, or one unit finer when
// precise is set.
func (m *Mapper) Step(precise bool) float64 {
	if precise {
		return m.units.FineStep()
	}
	return m.Granularity()
}

// Snap moves t onto a multiple of the step.
func (m *Mapper) Snap(t float64, r Rounding, precise bool) float64 {
	if !finite(t) {
		return 0
	}
	step := m.Step(precise)
	q := t / step
	switch r {
	case Floor:
		q = math.Floor(q)
	case Ceil:
		q = math.Ceil(q)
	default:
		q = math.Round(q)
	}
	return q * step
}

// SnapCreate snaps the start of a newly created box.
func (m *Mapper) SnapCreate(t float64, precise bool) float64 {
	return math.Max(0, m.Snap(t, Round, precise))
}

// SnapResizeRight returns the duration of a box whose right edge was
// dragged to rawEnd. The edge is floored so it never overshoots, and the
// box keeps at least one granularity unit.
func (m *Mapper) SnapResizeRight(start, rawEnd float64, precise bool) float64 {
	end := m.Snap(rawEnd, Floor, precise)
	return math.Max(end-start, m.Granularity())
}

// SnapResizeLeft returns the new start of a box whose left edge was
// dragged to rawStart while its right edge stays at fixedEnd.
func (m *Mapper) SnapResizeLeft(rawStart, fixedEnd float64, precise bool) float64 {
	start := m.Snap(rawStart, Round, precise)
	if limit := fixedEnd - m.Granularity(); start > limit {
		start = limit
	}
	return math.Max(0, start)
}
