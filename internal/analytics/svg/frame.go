package svg

import (
	"errors"
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Point is one labelled value on the x axis.
type Point struct {
	Label string
	Value float64
}

// Opts customises a chart.
type Opts struct {
	Title       string
	Description string
	Color       string
	FillColor   string
	AxisColor   string
	GridColor   string
	Padding     float64
	TickCount   int
	// MaxLabels caps the number of x axis labels; dense daily series skip labels evenly.
	MaxLabels int
	ShowDots  bool
}

// Defaults for dashboard charts.
const (
	DefaultWidth     = 720
	DefaultHeight    = 240
	DefaultPadding   = 32.0
	DefaultTicks     = 5
	DefaultMaxLabels = 8
)

var (
	errNoPoints      = errors.New("svg: points required")
	errViewportSmall = errors.New("svg: viewport too small")
)

// frame holds the geometry shared by the line and bar renderers.
type frame struct {
	width, height int
	padding       float64
	chartWidth    float64
	chartHeight   float64
	minVal        float64
	maxVal        float64
	ticks         int
	maxLabels     int
	axisColor     string
	gridColor     string
}

func newFrame(width, height int, points []Point, opts Opts) (frame, error) {
	if len(points) == 0 {
		return frame{}, errNoPoints
	}
	f := frame{
		width:     width,
		height:    height,
		padding:   opts.Padding,
		ticks:     opts.TickCount,
		maxLabels: opts.MaxLabels,
		axisColor: fallback(opts.AxisColor, "#475569"),
		gridColor: fallback(opts.GridColor, "#cbd5e1"),
	}
	if f.width <= 0 {
		f.width = DefaultWidth
	}
	if f.height <= 0 {
		f.height = DefaultHeight
	}
	if f.padding <= 0 {
		f.padding = DefaultPadding
	}
	if f.ticks <= 0 {
		f.ticks = DefaultTicks
	}
	if f.maxLabels <= 0 {
		f.maxLabels = DefaultMaxLabels
	}
	f.chartWidth = float64(f.width) - 2*f.padding
	f.chartHeight = float64(f.height) - 2*f.padding
	if f.chartWidth <= 0 || f.chartHeight <= 0 {
		return frame{}, errViewportSmall
	}

	// Counts and revenue are never negative, so the axis is anchored at zero.
	f.minVal = 0
	f.maxVal = 0
	for _, p := range points {
		f.maxVal = math.Max(f.maxVal, p.Value)
		f.minVal = math.Min(f.minVal, p.Value)
	}
	if almostEqual(f.maxVal, f.minVal) {
		f.maxVal = f.minVal + 1
	}
	return f, nil
}

func (f frame) y(value float64) float64 {
	scale := f.chartHeight / (f.maxVal - f.minVal)
	return f.padding + f.chartHeight - (value-f.minVal)*scale
}

func (f frame) bottom() float64 {
	return f.padding + f.chartHeight
}

func (f frame) open(b *strings.Builder, opts Opts, kind, defaultTitle string) {
	titleID := makeID(opts.Title, kind+"-title")
	descID := makeID(opts.Title, kind+"-desc")
	fmt.Fprintf(b, "<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", f.width, f.height, titleID, descID)
	fmt.Fprintf(b, "<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, defaultTitle)))
	fmt.Fprintf(b, "<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, defaultTitle)))
}

func (f frame) grid(b *strings.Builder) {
	for i := 0; i <= f.ticks; i++ {
		ratio := float64(i) / float64(f.ticks)
		value := f.minVal + (f.maxVal-f.minVal)*ratio
		y := f.y(value)
		fmt.Fprintf(b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"0.5\" stroke-dasharray=\"2,4\" aria-hidden=\"true\"></line>", f.padding, y, f.padding+f.chartWidth, y, f.gridColor)
		fmt.Fprintf(b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"end\">%s</text>", f.padding-6, y+4, f.axisColor, template.HTMLEscapeString(formatTick(value)))
	}
	fmt.Fprintf(b, "<g stroke=\"%s\" aria-label=\"axes\">", f.axisColor)
	fmt.Fprintf(b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", f.padding, f.padding, f.padding, f.bottom())
	fmt.Fprintf(b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", f.padding, f.y(0), f.padding+f.chartWidth, f.y(0))
	b.WriteString("</g>")
}

// label writes the x axis label of point i when it falls on the label stride.
func (f frame) label(b *strings.Builder, i, total int, x float64, text string) {
	stride := int(math.Ceil(float64(total) / float64(f.maxLabels)))
	if stride < 1 {
		stride = 1
	}
	if i%stride != 0 && i != total-1 {
		return
	}
	fmt.Fprintf(b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\">%s</text>", x, f.bottom()+14, f.axisColor, template.HTMLEscapeString(text))
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func makeID(base, suffix string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '-'
	}, strings.ToLower(strings.TrimSpace(base)))
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "chart"
	}
	return cleaned + "-" + suffix
}

func formatTick(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fk", v/1_000)
	case almostEqual(v, math.Round(v)):
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
