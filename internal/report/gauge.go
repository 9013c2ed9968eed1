package report

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	GaugeMin   = 0.0
	GaugeMax   = 10.0
	GaugeTitle = "Suspicion Score"
	barColor   = "darkred"

	cx, cy = 150.0, 160.0
	radius = 110.0
	bandW  = 28.0
	svgW   = 300
	svgH   = 200
)

// Band is one coloured range of the gauge.
type Band struct {
	From  float64 `json:"from"`
	To    float64 `json:"to"`
	Color string  `json:"color"`
}

// Gauge describes the score dial. Value is the exact score; only the needle is clamped.
type Gauge struct {
	Title    string  `json:"title"`
	Value    float64 `json:"value"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	BarColor string  `json:"bar_color"`
	Bands    []Band  `json:"bands"`
}

// NewGauge builds the dial for score with five bands of width 2.
func NewGauge(score float64) Gauge {
	return Gauge{
		Title:    GaugeTitle,
		Value:    score,
		Min:      GaugeMin,
		Max:      GaugeMax,
		BarColor: barColor,
		Bands: []Band{
			{From: 0, To: 2, Color: "lightgreen"},
			{From: 2, To: 4, Color: "green"},
			{From: 4, To: 6, Color: "yellow"},
			{From: 6, To: 8, Color: "orange"},
			{From: 8, To: 10, Color: "red"},
		},
	}
}

// Needle is the clamped value the needle points at.
func (g Gauge) Needle() float64 {
	return math.Min(math.Max(g.Value, g.Min), g.Max)
}

// BandFor returns the band the clamped value falls into; the upper edge belongs to the higher band.
func (g Gauge) BandFor() Band {
	v := g.Needle()
	for i, b := range g.Bands {
		if v < b.To || i == len(g.Bands)-1 {
			return b
		}
	}
	return Band{}
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// point maps a dial value to coordinates on a half circle of radius r.
func (g Gauge) point(v, r float64) (float64, float64) {
	frac := (v - g.Min) / (g.Max - g.Min)
	theta := math.Pi * (1 - frac)
	return cx + r*math.Cos(theta), cy - r*math.Sin(theta)
}

// SVG renders the dial as a standalone SVG document.
func (g Gauge) SVG() string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" class="gauge" width="%d" height="%d" viewBox="0 0 %d %d" data-value="%s">`,
		svgW, svgH, svgW, svgH, formatValue(g.Value))
	fmt.Fprintf(&b, `<text x="%g" y="20" text-anchor="middle" font-size="16">%s</text>`, cx, g.Title)

	for _, band := range g.Bands {
		x0, y0 := g.point(band.From, radius)
		x1, y1 := g.point(band.To, radius)
		fmt.Fprintf(&b, `<path d="M %.2f %.2f A %g %g 0 0 1 %.2f %.2f" fill="none" stroke="%s" stroke-width="%g"/>`,
			x0, y0, radius, radius, x1, y1, band.Color, bandW)
	}

	nx, ny := g.point(g.Needle(), radius-bandW/2)
	fmt.Fprintf(&b, `<line class="needle" x1="%g" y1="%g" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="6" stroke-linecap="round"/>`,
		cx, cy, nx, ny, g.BarColor)
	fmt.Fprintf(&b, `<circle cx="%g" cy="%g" r="8" fill="%s"/>`, cx, cy, g.BarColor)
	fmt.Fprintf(&b, `<text x="%g" y="%g" text-anchor="middle" font-size="28">%s</text>`, cx, cy+34, formatValue(g.Value))
	b.WriteString(`</svg>`)
	return b.String()
}

var dataValueRe = regexp.MustCompile(`data-value="([^"]+)"`)

// ParseGaugeValue reads the exact score back from a rendered SVG.
func ParseGaugeValue(svg string) (float64, error) {
	m := dataValueRe.FindStringSubmatch(svg)
	if m == nil {
		return 0, fmt.Errorf("gauge value attribute not found")
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("parse gauge value: %w", err)
	}
	return v, nil
}
