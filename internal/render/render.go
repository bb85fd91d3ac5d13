// Package render draws a session as a static SVG document: a time ruler,
// one row per lane with its boxes, markers where idle time was collapsed,
// and a minimap of the whole diagram at fit-to-view scale.
package render

import (
	"fmt"
	"math"
	"strings"

	"lanes2svg/internal/config"
	"lanes2svg/internal/diagram"
	"lanes2svg/internal/logging"
	"lanes2svg/internal/ruler"
	"lanes2svg/internal/session"
)

const (
	majorTickHeight = 10.0
	minorTickHeight = 5.0
	minimapGap      = 10.0
)

// layout holds the absolute geometry of one render.
type layout struct {
	width  int
	height int

	// axisX is the x of visual time zero.
	axisX        float64
	axisWidth    float64
	contentWidth float64

	rulerY      float64
	lanesTop    float64
	lanesBottom float64
	minimapTop  float64
}

func newLayout(s *session.Session) layout {
	cfg := s.Config()
	l := layout{
		axisX:        float64(cfg.Layout.MarginLeft + cfg.Layout.LabelWidth),
		axisWidth:    s.Width(),
		contentWidth: s.Mapper.MsToPixels(s.Mapper.VisualEnd()),
	}

	l.width = cfg.Layout.Width
	if w := int(math.Ceil(l.axisX+l.contentWidth)) + cfg.Layout.MarginRight; w > l.width {
		l.width = w
	}

	l.rulerY = float64(cfg.Layout.MarginTop + cfg.Layout.RulerHeight)
	l.lanesTop = l.rulerY
	l.lanesBottom = l.lanesTop + float64(len(s.Diagram.Lanes)*cfg.Layout.LaneHeight)
	bottom := l.lanesBottom
	if cfg.Minimap.Show {
		l.minimapTop = l.lanesBottom + minimapGap
		bottom = l.minimapTop + float64(cfg.Minimap.Height)
	}
	l.height = int(math.Ceil(bottom)) + cfg.Layout.MarginBottom
	return l
}

// axisRight is the x where the drawn time axis ends.
func (l layout) axisRight() float64 {
	return l.axisX + math.Max(l.axisWidth, l.contentWidth)
}

// SVG renders the session as a complete SVG document.
func SVG(s *session.Session) string {
	cfg := s.Config()
	l := newLayout(s)
	r := s.Ruler()

	var svg strings.Builder
	svg.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">
<rect width="100%%" height="100%%" fill="%s"/>
<defs>
<style>
.lane-label { font-family: %s; font-size: %dpx; fill: %s; }
.box-label { font-family: %s; font-size: %dpx; fill: #ffffff; }
.tick-label { font-family: %s; font-size: %dpx; fill: %s; }
</style>
</defs>
`, l.width, l.height, cfg.Colors.Background,
		cfg.Font.Family, cfg.Font.Size, cfg.Colors.Text,
		cfg.Font.Family, cfg.Font.Size-1,
		cfg.Font.Family, cfg.Font.Size-2, cfg.Colors.Ruler))

	drawGrid(&svg, r, l, cfg)
	drawLanes(&svg, s, l, cfg)
	if cfg.Compression.ShowBreaks {
		drawBreaks(&svg, s, l, cfg)
	}
	drawRuler(&svg, r, l, cfg)
	if cfg.Minimap.Show {
		drawMinimap(&svg, s, l, cfg)
	}

	svg.WriteString("</svg>\n")

	logging.Debug("svg rendered",
		"width", l.width,
		"height", l.height,
		"interval", r.Interval,
		"ticks", len(r.Ticks),
		"scale", s.Mapper.Scale())
	return svg.String()
}

func drawRuler(svg *strings.Builder, r ruler.Ruler, l layout, cfg config.Config) {
	svg.WriteString(fmt.Sprintf(`<g class="ruler"><line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1"/>`,
		l.axisX, l.rulerY, l.axisRight(), l.rulerY, cfg.Colors.Ruler))

	for i, tick := range r.Ticks {
		x := l.axisX + tick.Pixel
		height := minorTickHeight
		if tick.Major {
			height = majorTickHeight
		}
		svg.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1"/>`,
			x, l.rulerY-height, x, l.rulerY, cfg.Colors.Ruler))

		if tick.Label == "" {
			continue
		}
		anchor := "middle"
		if i == 0 {
			anchor = "start"
		}
		svg.WriteString(fmt.Sprintf(`<text class="tick-label" x="%.1f" y="%.1f" text-anchor="%s">%s</text>`,
			x, l.rulerY-majorTickHeight-4, anchor, escapeXML(tick.Label)))
	}
	svg.WriteString("</g>\n")
}

// drawGrid draws vertical lines through the lanes at major ticks.
func drawGrid(svg *strings.Builder, r ruler.Ruler, l layout, cfg config.Config) {
	if l.lanesBottom <= l.lanesTop {
		return
	}
	svg.WriteString(`<g class="grid">`)
	for _, tick := range r.Ticks {
		if !tick.Major {
			continue
		}
		x := l.axisX + tick.Pixel
		svg.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1"/>`,
			x, l.lanesTop, x, l.lanesBottom, cfg.Colors.Grid))
	}
	svg.WriteString("</g>\n")
}

func drawLanes(svg *strings.Builder, s *session.Session, l layout, cfg config.Config) {
	laneHeight := float64(cfg.Layout.LaneHeight)
	padding := float64(cfg.Layout.LanePadding)

	for i, lane := range s.Diagram.Lanes {
		top := l.lanesTop + float64(i)*laneHeight

		svg.WriteString(fmt.Sprintf(`<g class="lane" data-lane="%s">`, escapeXML(lane.ID)))
		svg.WriteString(fmt.Sprintf(`<line x1="%d" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1"/>`,
			cfg.Layout.MarginLeft, top+laneHeight, l.axisRight(), top+laneHeight, cfg.Colors.Grid))
		drawLaneLabel(svg, lane, top, cfg)

		for _, b := range s.Diagram.LaneBoxes(lane.ID) {
			rect, ok := s.BoxRect(b.ID)
			if !ok {
				continue
			}
			drawBox(svg, s, b, boxColor(b, lane, i, cfg), l.axisX+rect.X, top+padding, math.Max(rect.Width, 1), laneHeight-2*padding, cfg)
		}
		svg.WriteString("</g>\n")
	}
}

func drawLaneLabel(svg *strings.Builder, lane diagram.Lane, top float64, cfg config.Config) {
	fontSize := cfg.Font.Size
	maxChars := charsFor(float64(cfg.Layout.LabelWidth-8), fontSize)
	if maxChars < 1 {
		return
	}

	lines := wrapText(strings.Fields(lane.Title()), maxChars)
	if len(lines) > 2 {
		lines = append(lines[:1], truncate(strings.Join(lines[1:], " "), maxChars))
	}
	lineHeight := float64(fontSize) * 1.2
	y := top + float64(cfg.Layout.LaneHeight)/2 - float64(len(lines)-1)*lineHeight/2 + float64(fontSize)/3

	for _, line := range lines {
		svg.WriteString(fmt.Sprintf(`<text class="lane-label" x="%d" y="%.1f">%s</text>`,
			cfg.Layout.MarginLeft, y, escapeXML(truncate(line, maxChars))))
		y += lineHeight
	}
}

func drawBox(svg *strings.Builder, s *session.Session, b diagram.Box, color string, x, y, w, h float64, cfg config.Config) {
	g := s.Mapper.Granularity()
	title := fmt.Sprintf("%s (%s - %s)", b.ID, ruler.FormatLabel(b.Start, g), ruler.FormatLabel(b.End(), g))
	if b.Label != "" {
		title = b.Label + " " + title
	}

	svg.WriteString(fmt.Sprintf(`<g class="box" data-id="%s"><title>%s</title>`, escapeXML(b.ID), escapeXML(title)))
	svg.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%d" fill="%s"/>`,
		x, y, w, h, cfg.Layout.BoxRadius, color))

	fontSize := cfg.Font.Size - 1
	label := b.Label
	if float64(estimateTextBounds(label, fontSize).Width) > w-6 {
		if maxChars := charsFor(w-6, fontSize); maxChars >= 3 {
			label = truncate(label, maxChars)
		} else {
			label = ""
		}
	}
	if label != "" {
		svg.WriteString(fmt.Sprintf(`<text class="box-label" x="%.1f" y="%.1f" text-anchor="middle">%s</text>`,
			x+w/2, y+h/2+float64(fontSize)/3, escapeXML(label)))
	}
	svg.WriteString("</g>")
}

// boxColor picks the box's own color, then its lane's, then the palette
// entry for the lane index.
func boxColor(b diagram.Box, lane diagram.Lane, laneIndex int, cfg config.Config) string {
	switch {
	case b.Color != "":
		return b.Color
	case lane.Color != "":
		return lane.Color
	case len(cfg.Colors.Boxes) > 0:
		return cfg.Colors.Boxes[laneIndex%len(cfg.Colors.Boxes)]
	default:
		return "#888888"
	}
}

// drawBreaks marks every collapsed gap: a band when the gap keeps some
// width, a dashed seam otherwise, plus a marker on the ruler.
func drawBreaks(svg *strings.Builder, s *session.Session, l layout, cfg config.Config) {
	gaps := s.Engine.CompressedGaps()
	if len(gaps) == 0 {
		return
	}
	g := s.Mapper.Granularity()

	for _, gap := range gaps {
		x := l.axisX + s.Mapper.MsToPixels(gap.CompressedStart)
		w := s.Mapper.MsToPixels(gap.CompressedSize)
		title := fmt.Sprintf("%s idle (%s - %s)",
			ruler.FormatLabel(gap.OriginalSize, g),
			ruler.FormatLabel(gap.OriginalStart, g),
			ruler.FormatLabel(gap.OriginalEnd, g))

		svg.WriteString(fmt.Sprintf(`<g class="break"><title>%s</title>`, escapeXML(title)))
		if w >= 1 {
			svg.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" fill-opacity="0.08"/>`,
				x, l.lanesTop, w, l.lanesBottom-l.lanesTop, cfg.Colors.Break))
		} else if l.lanesBottom > l.lanesTop {
			svg.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1" stroke-dasharray="4,3"/>`,
				x, l.lanesTop, x, l.lanesBottom, cfg.Colors.Break))
		}
		drawBreakMarker(svg, x+w/2, l.rulerY, cfg.Compression.BreakStyle, cfg.Colors.Break)
		svg.WriteString("</g>\n")
	}
}

// drawMinimap re-projects every box at fit-to-view scale into a strip
// under the lanes and outlines the part visible at the current zoom.
func drawMinimap(svg *strings.Builder, s *session.Session, l layout, cfg config.Config) {
	height := float64(cfg.Minimap.Height)
	ratio := s.Mapper.FitScale(l.axisWidth) / s.Mapper.Scale()

	svg.WriteString(fmt.Sprintf(`<g class="minimap"><rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="%s" stroke-width="1"/>`,
		l.axisX, l.minimapTop, l.axisWidth, height, cfg.Colors.Grid))

	lanes := s.Diagram.Lanes
	if len(lanes) > 0 {
		rowHeight := height / float64(len(lanes))
		for i, lane := range lanes {
			y := l.minimapTop + float64(i)*rowHeight
			for _, b := range s.Diagram.LaneBoxes(lane.ID) {
				rect, ok := s.BoxRect(b.ID)
				if !ok {
					continue
				}
				svg.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`,
					l.axisX+rect.X*ratio, y+1, math.Max(rect.Width*ratio, 1), math.Max(rowHeight-2, 1), boxColor(b, lane, i, cfg)))
			}
		}
	}

	left := math.Max(0, s.Scroll()*ratio)
	right := math.Min(l.axisWidth, (s.Scroll()+l.axisWidth)*ratio)
	if right > left {
		svg.WriteString(fmt.Sprintf(`<rect class="viewport" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="%s" stroke-width="1.5"/>`,
			l.axisX+left, l.minimapTop, right-left, height, cfg.Colors.Ruler))
	}
	svg.WriteString("</g>\n")
}
