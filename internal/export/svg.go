// Package export renders stored runs as standalone SVG charts.
package export

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// Series is one curve of a chart.
type Series struct {
	Label  string
	Color  string
	Values []float64
}

var palette = []string{"#00ffff", "#ff00ff", "#ffff00", "#00ff88", "#ff8800"}

const (
	margin  = 50.0
	decades = 8.0
)

// DistributionSVG plots each series against radii on log-log axes. Values
// more than eight decades below the overall peak are dropped from the
// path.
func DistributionSVG(w io.Writer, radii []float64, series []Series, width, height int) error {
	if len(radii) < 2 {
		return fmt.Errorf("export: need at least two bins, got %d", len(radii))
	}
	for _, s := range series {
		if len(s.Values) != len(radii) {
			return fmt.Errorf("export: series %q has %d values for %d bins", s.Label, len(s.Values), len(radii))
		}
	}

	minX, maxX := math.Log10(radii[0]), math.Log10(radii[len(radii)-1])
	top := math.Inf(-1)
	for _, s := range series {
		for _, v := range s.Values {
			if v > 0 {
				top = math.Max(top, math.Log10(v))
			}
		}
	}
	if math.IsInf(top, -1) {
		top = 0
	}
	maxY := math.Ceil(top)
	minY := maxY - decades

	plotW, plotH := float64(width)-2*margin, float64(height)-2*margin
	px := func(r float64) float64 { return margin + (math.Log10(r)-minX)/(maxX-minX)*plotW }
	py := func(v float64) float64 { return margin + plotH - (math.Log10(v)-minY)/(maxY-minY)*plotH }

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g stroke="#444466" fill="none">
<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>
</g>
`, width, height, width, height, margin, margin, plotW, plotH))

	sb.WriteString(`<g fill="#888899" font-family="monospace" font-size="11">` + "\n")
	for d := minY; d <= maxY; d += 2 {
		y := margin + plotH - (d-minY)/(maxY-minY)*plotH
		sb.WriteString(fmt.Sprintf(`<text x="4" y="%.1f">1e%.0f</text>`+"\n", y+4, d))
	}
	sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f">%.2e m</text>`+"\n", margin, margin+plotH+16, radii[0]))
	sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" text-anchor="end">%.2e m</text>`+"\n", margin+plotW, margin+plotH+16, radii[len(radii)-1]))
	sb.WriteString("</g>\n")

	for i, s := range series {
		color := s.Color
		if color == "" {
			color = palette[i%len(palette)]
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="%s"/>`+"\n", color, path(radii, s.Values, minY, px, py)))
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="%s" font-family="monospace" font-size="12">%s</text>`+"\n",
			margin+8, margin+16+float64(i)*14, color, escape(s.Label)))
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// path builds the d attribute, starting a new subpath after every gap.
func path(radii, values []float64, floor float64, px, py func(float64) float64) string {
	var sb strings.Builder
	pen := false
	for i, v := range values {
		if !(v > 0) || math.Log10(v) < floor {
			pen = false
			continue
		}
		cmd := "L"
		if !pen {
			cmd = "M"
		}
		sb.WriteString(fmt.Sprintf("%s%.1f,%.1f ", cmd, px(radii[i]), py(v)))
		pen = true
	}
	return strings.TrimSpace(sb.String())
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(s string) string { return escaper.Replace(s) }
