package coord

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lanes2svg/internal/compress"
	"lanes2svg/internal/timeunit"
)

type fixedSource []compress.Interval

func (s fixedSource) Intervals() []compress.Interval { return s }

func twoBoxEngine(enabled bool) *compress.Engine {
	return compress.NewEngine(fixedSource{
		{ID: "x", LaneID: "a", Start: 0, Duration: 100},
		{ID: "y", LaneID: "b", Start: 5000, Duration: 100},
	}, compress.Options{Enabled: enabled, Threshold: 500})
}

func msMapper(comp Compression) *Mapper {
	return New(comp, Options{Units: timeunit.MillisecondScale(), Scale: 0.15})
}

func TestPixelRoundTrip(t *testing.T) {
	m := msMapper(twoBoxEngine(false))
	require.Equal(t, 1.0, m.Granularity())

	assert.InDelta(t, 482.55, m.MsToPixels(3217), 1e-9)
	assert.InDelta(t, 3217, m.PixelsToMs(m.MsToPixels(3217)), 1e-9)
}

func TestGranularityFromUnits(t *testing.T) {
	units, err := timeunit.NewScale(timeunit.Minute, timeunit.Second)
	require.NoError(t, err)

	m := New(twoBoxEngine(false), Options{Units: units, Scale: 2})
	assert.Equal(t, 1000.0, m.Granularity())
	assert.Equal(t, 20.0, m.MsToPixels(10000))
	assert.Equal(t, 10000.0, m.PixelsToMs(20))
}

func TestInvalidUnitsFallBackToMilliseconds(t *testing.T) {
	m := New(twoBoxEngine(false), Options{Units: timeunit.Scale{Base: timeunit.Second, Sub: timeunit.Day}})
	assert.Equal(t, timeunit.MillisecondScale(), m.Units())
}

func TestSetUnitsKeepsPixelsPerMillisecond(t *testing.T) {
	m := msMapper(twoBoxEngine(false))
	before := m.MsToPixels(60000)

	units, err := timeunit.NewScale(timeunit.Minute, timeunit.Second)
	require.NoError(t, err)
	m.SetUnits(units)

	assert.InDelta(t, 150.0, m.Scale(), 1e-9)
	assert.InDelta(t, before, m.MsToPixels(60000), 1e-6)

	m.SetUnits(timeunit.Scale{Base: timeunit.Second, Sub: timeunit.Hour})
	assert.Equal(t, units, m.Units(), "invalid pair ignored")
}

func TestActualToPixelsUsesCompression(t *testing.T) {
	m := New(twoBoxEngine(true), Options{Units: timeunit.MillisecondScale(), Scale: 1})

	assert.Equal(t, 100.0, m.ActualToPixels(5000))
	assert.Equal(t, 5000.0, m.PixelsToActual(100))
	assert.Equal(t, 50.0, m.PixelsToActual(50))
}

func TestZoomClamps(t *testing.T) {
	m := New(twoBoxEngine(false), Options{Units: timeunit.MillisecondScale(), Scale: 1, MinScale: 0.5, MaxScale: 4})

	m.ZoomIn(2)
	assert.Equal(t, 2.0, m.Scale())
	m.ZoomIn(10)
	assert.Equal(t, 4.0, m.Scale())

	m.ZoomOut(2)
	assert.Equal(t, 2.0, m.Scale())
	m.ZoomOut(100)
	assert.Equal(t, 0.5, m.Scale())

	m.ZoomIn(0.5)
	assert.Equal(t, 0.5*DefaultZoomFactor, m.Scale(), "factor below one uses the default")

	m.SetScale(math.NaN())
	assert.Equal(t, 0.5, m.Scale(), "default scale clamped into bounds")

	lo, hi := m.Bounds()
	assert.Equal(t, 0.5, lo)
	assert.Equal(t, 4.0, hi)
}

func TestFitScale(t *testing.T) {
	// compressed duration 200, no trailing space
	m := msMapper(twoBoxEngine(true))
	assert.InDelta(t, 1100/(200*1.1), m.FitScale(1100), 1e-9)

	// raw duration 5100 when compression is off
	m = msMapper(twoBoxEngine(false))
	assert.InDelta(t, 1000/(5100*1.1), m.FitScale(1000), 1e-9)

	m = New(twoBoxEngine(true), Options{Units: timeunit.MillisecondScale(), TrailingSpace: 300})
	assert.Equal(t, 500.0, m.VisualEnd())
	assert.InDelta(t, 550/(500*1.1), m.FitScale(550), 1e-9)

	assert.Equal(t, DefaultScale, m.FitScale(0))
}

func TestFitScaleEmptyDiagram(t *testing.T) {
	m := msMapper(compress.NewEngine(nil, compress.Options{Enabled: true}))
	assert.Equal(t, DefaultScale, m.FitScale(800))
}

func TestToggleFitRestoresPriorState(t *testing.T) {
	m := msMapper(twoBoxEngine(true))
	m.ZoomIn(2)
	manual := m.Scale()

	scroll := m.ToggleFit(1100, 340)
	assert.True(t, m.FitMode())
	assert.Equal(t, 0.0, scroll)
	assert.InDelta(t, 5.0, m.Scale(), 1e-9)

	scroll = m.ToggleFit(1100, 0)
	assert.False(t, m.FitMode())
	assert.Equal(t, 340.0, scroll)
	assert.Equal(t, manual, m.Scale())
}

func TestManualZoomLeavesFitMode(t *testing.T) {
	m := msMapper(twoBoxEngine(true))
	m.ToggleFit(1100, 0)
	m.ZoomOut(2)
	assert.False(t, m.FitMode())
}

func TestRefit(t *testing.T) {
	m := msMapper(twoBoxEngine(true))
	m.Refit(1100)
	assert.Equal(t, 0.15, m.Scale(), "no-op outside fit mode")

	m.ToggleFit(1100, 0)
	m.Refit(2200)
	assert.InDelta(t, 10.0, m.Scale(), 1e-9)
}

func TestViewStateRestore(t *testing.T) {
	m := New(twoBoxEngine(true), Options{Units: timeunit.MillisecondScale(), Scale: 1, MinScale: 0.1, MaxScale: 10})

	m.ToggleFit(1100, 25)
	vs := m.ViewState()
	assert.True(t, vs.FitMode)
	assert.Equal(t, 1.0, vs.PriorScale)
	assert.Equal(t, 25.0, vs.PriorScroll)

	other := New(twoBoxEngine(true), Options{Units: timeunit.MillisecondScale(), MinScale: 0.1, MaxScale: 10})
	other.Restore(vs)
	assert.Equal(t, vs, other.ViewState())
	assert.Equal(t, 25.0, other.ToggleFit(1100, 0))
	assert.Equal(t, 1.0, other.Scale())

	other.Restore(ViewState{Scale: 1e9, PriorScale: math.Inf(1), PriorScroll: -5, FitMode: true})
	got := other.ViewState()
	assert.Equal(t, 10.0, got.Scale)
	assert.Equal(t, DefaultScale, got.PriorScale, "invalid prior falls back to the default")
	assert.Equal(t, 0.0, got.PriorScroll)

	other.Restore(ViewState{Scale: math.NaN()})
	assert.Equal(t, DefaultScale, other.Scale())
	assert.False(t, other.FitMode())
}

func TestSnap(t *testing.T) {
	units, err := timeunit.NewScale(timeunit.Minute, timeunit.Second)
	require.NoError(t, err)
	m := New(twoBoxEngine(false), Options{Units: units})

	assert.Equal(t, 1000.0, m.Step(false))
	assert.Equal(t, 1.0, m.Step(true))

	assert.Equal(t, 2000.0, m.Snap(1500, Round, false))
	assert.Equal(t, 1000.0, m.Snap(1999, Floor, false))
	assert.Equal(t, 2000.0, m.Snap(1001, Ceil, false))
	assert.Equal(t, 1500.0, m.Snap(1500.4, Round, true))
	assert.Equal(t, 0.0, m.Snap(math.Inf(-1), Round, false))
}

func TestSnapPreciseMilliseconds(t *testing.T) {
	m := New(twoBoxEngine(false), Options{Units: timeunit.MillisecondScale()})

	assert.Equal(t, 1.0, m.Step(false))
	assert.Equal(t, 0.1, m.Step(true))
	assert.Equal(t, 12.0, m.Snap(12.34, Round, false))
	assert.InDelta(t, 12.3, m.Snap(12.34, Round, true), 1e-9)
}

func TestSnapInteractions(t *testing.T) {
	units, err := timeunit.NewScale(timeunit.Minute, timeunit.Second)
	require.NoError(t, err)
	m := New(twoBoxEngine(false), Options{Units: units})

	assert.Equal(t, 3000.0, m.SnapCreate(2600, false))
	assert.Equal(t, 0.0, m.SnapCreate(-800, false))

	// right edge floors
	assert.Equal(t, 4000.0, m.SnapResizeRight(1000, 5999, false))
	// never shorter than one granularity unit
	assert.Equal(t, 1000.0, m.SnapResizeRight(1000, 1200, false))

	// left edge clamps against the fixed right edge
	assert.Equal(t, 2000.0, m.SnapResizeLeft(2200, 6000, false))
	assert.Equal(t, 5000.0, m.SnapResizeLeft(5900, 6000, false))
	assert.Equal(t, 0.0, m.SnapResizeLeft(-300, 6000, false))
}
