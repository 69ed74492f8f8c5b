package svg

import (
	"fmt"
	"html/template"
	"strings"
)

// Line renders an area line chart of points in x order.
func Line(width, height int, points []Point, opts Opts) (template.HTML, error) {
	f, err := newFrame(width, height, points, opts)
	if err != nil {
		return "", err
	}
	stroke := fallback(opts.Color, "#2563eb")
	fill := fallback(opts.FillColor, "rgba(37,99,235,0.12)")

	xs := make([]float64, len(points))
	for i := range points {
		xs[i] = f.padding + f.chartWidth/2
		if len(points) > 1 {
			xs[i] = f.padding + float64(i)*f.chartWidth/float64(len(points)-1)
		}
	}

	var path strings.Builder
	for i, p := range points {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		} else {
			path.WriteByte(' ')
		}
		fmt.Fprintf(&path, "%s%.2f %.2f", cmd, xs[i], f.y(p.Value))
	}

	var b strings.Builder
	f.open(&b, opts, "line", "Line chart")
	f.grid(&b)

	base := f.y(0)
	fmt.Fprintf(&b, "<path d=\"%s L%.2f %.2f L%.2f %.2f Z\" fill=\"%s\" stroke=\"none\" aria-hidden=\"true\"></path>", path.String(), xs[len(xs)-1], base, xs[0], base, fill)
	fmt.Fprintf(&b, "<path d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"2\" stroke-linejoin=\"round\" stroke-linecap=\"round\"></path>", path.String(), stroke)

	for i, p := range points {
		if opts.ShowDots {
			fmt.Fprintf(&b, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"2.5\" fill=\"%s\"><title>%s: %s</title></circle>", xs[i], f.y(p.Value), stroke, template.HTMLEscapeString(p.Label), formatTick(p.Value))
		}
		f.label(&b, i, len(points), xs[i], p.Label)
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
