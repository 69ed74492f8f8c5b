package svg

import (
	"fmt"
	"html/template"
	"strings"
)

// Bars renders one bar per point.
func Bars(width, height int, points []Point, opts Opts) (template.HTML, error) {
	f, err := newFrame(width, height, points, opts)
	if err != nil {
		return "", err
	}
	color := fallback(opts.Color, "#0ea5e9")

	slot := f.chartWidth / float64(len(points))
	barWidth := slot * 0.7

	var b strings.Builder
	f.open(&b, opts, "bar", "Bar chart")
	f.grid(&b)

	zeroY := f.y(0)
	for i, p := range points {
		x := f.padding + float64(i)*slot
		top := f.y(p.Value)
		y, h := top, zeroY-top
		if h < 0 {
			y, h = zeroY, -h
		}
		fmt.Fprintf(&b, "<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" fill=\"%s\"><title>%s: %s</title></rect>",
			x+(slot-barWidth)/2, y, barWidth, h, color, template.HTMLEscapeString(p.Label), formatTick(p.Value))
		f.label(&b, i, len(points), x+slot/2, p.Label)
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
