// Package svg is a minimal SVG canvas for rendering chart artifacts.
// Charts are emitted as self-contained documents so they stay viewable
// without any runtime dependency.
package svg

import (
	"bytes"
	"fmt"
	"math"
)

type Canvas struct {
	buf    bytes.Buffer
	width  int
	height int
}

func New(width, height, fontSize int, title string) *Canvas {
	c := &Canvas{width: width, height: height}
	fmt.Fprintf(&c.buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif" font-size="%d">`,
		width, height, width, height, fontSize)
	c.buf.WriteByte('\n')
	c.Rect(0, 0, float64(width), float64(height), "#ffffff", "none")
	if title != "" {
		c.Text(float64(width)/2, 24, title, "middle", "#333333")
	}
	return c
}

func (c *Canvas) Rect(x, y, w, h float64, fill, stroke string) {
	fmt.Fprintf(&c.buf, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" stroke="%s"/>`,
		x, y, w, h, fill, stroke)
	c.buf.WriteByte('\n')
}

func (c *Canvas) Line(x1, y1, x2, y2 float64, stroke string, width float64) {
	fmt.Fprintf(&c.buf, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%.1f"/>`,
		x1, y1, x2, y2, stroke, width)
	c.buf.WriteByte('\n')
}

func (c *Canvas) Circle(x, y, r float64, fill string) {
	fmt.Fprintf(&c.buf, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`, x, y, r, fill)
	c.buf.WriteByte('\n')
}

func (c *Canvas) Polyline(points [][2]float64, stroke string, width float64) {
	if len(points) == 0 {
		return
	}
	fmt.Fprintf(&c.buf, `<polyline fill="none" stroke="%s" stroke-width="%.1f" points="`, stroke, width)
	for _, p := range points {
		fmt.Fprintf(&c.buf, "%.1f,%.1f ", p[0], p[1])
	}
	c.buf.WriteString(`"/>`)
	c.buf.WriteByte('\n')
}

func (c *Canvas) Text(x, y float64, s, anchor, fill string) {
	fmt.Fprintf(&c.buf, `<text x="%.1f" y="%.1f" text-anchor="%s" fill="%s">%s</text>`,
		x, y, anchor, fill, escapeText(s))
	c.buf.WriteByte('\n')
}

func (c *Canvas) Bytes() []byte {
	out := make([]byte, c.buf.Len(), c.buf.Len()+7)
	copy(out, c.buf.Bytes())
	return append(out, []byte("</svg>\n")...)
}

func escapeText(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		switch r {
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '&':
			b.WriteString("&amp;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Scale maps v from [lo, hi] onto [outLo, outHi], clamping degenerate input.
func Scale(v, lo, hi, outLo, outHi float64) float64 {
	if hi == lo {
		return (outLo + outHi) / 2
	}
	return outLo + (v-lo)/(hi-lo)*(outHi-outLo)
}

// HeatColor maps t in [0, 1] onto a white-to-red ramp.
func HeatColor(t float64) string {
	if math.IsNaN(t) {
		t = 0
	}
	t = math.Min(math.Max(t, 0), 1)
	g := int(255 * (1 - t))
	return fmt.Sprintf("#ff%02x%02x", g, g)
}

// DivergingColor maps t in [-1, 1] onto a blue-white-red ramp.
func DivergingColor(t float64) string {
	if math.IsNaN(t) {
		t = 0
	}
	t = math.Min(math.Max(t, -1), 1)
	if t < 0 {
		v := int(255 * (1 + t))
		return fmt.Sprintf("#%02x%02xff", v, v)
	}
	v := int(255 * (1 - t))
	return fmt.Sprintf("#ff%02x%02x", v, v)
}
