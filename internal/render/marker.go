package render

import (
	"fmt"
	"strings"
)

// markerSize is the half-size of a break marker in pixels.
const markerSize = 5.0

// drawBreakMarker draws the marker that flags a collapsed gap on the ruler
// baseline at (x, y).
func drawBreakMarker(svg *strings.Builder, x, y float64, shape, color string) {
	size := markerSize

	switch strings.ToLower(shape) {
	case "circle":
		svg.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" stroke="%s" stroke-width="1"/>`,
			x, y, size, color, color))

	case "diamond":
		svg.WriteString(fmt.Sprintf(`<polygon points="%.1f,%.1f %.1f,%.1f %.1f,%.1f %.1f,%.1f" fill="%s" stroke="%s" stroke-width="1"/>`,
			x, y-size, // top
			x+size, y, // right
			x, y+size, // bottom
			x-size, y, // left
			color, color))

	case "line":
		svg.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="2"/>`,
			x, y-size*1.5, x, y+size*1.5, color))

	default:
		// Two slanted strokes, the usual axis-break glyph.
		for _, dx := range []float64{-size / 2, size / 2} {
			svg.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="2"/>`,
				x+dx-size/2, y+size, x+dx+size/2, y-size, color))
		}
	}
}
