package report

import (
	"fmt"
	"math"
	"strings"

	"salespulse/internal/charts"
)

const (
	chartWidth  = 640
	chartHeight = 220
	chartPad    = 10
)

var palette = []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd", "#8c564b", "#e377c2", "#17becf"}

type chartView struct {
	Title  string
	Width  int
	Height int
	Lines  []lineView
}

type lineView struct {
	Name   string
	Color  string
	Points string
}

// newChartView lays every series of c on one shared axis. Labels keep the
// order in which they first appear across series, so a forecast overlay's
// train, test and future days line up left to right.
func newChartView(c *charts.Chart) chartView {
	index := make(map[string]int)
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range c.Series {
		for _, p := range s.Points {
			if _, ok := index[p.Label]; !ok {
				index[p.Label] = len(index)
			}
			lo = math.Min(lo, p.Y)
			hi = math.Max(hi, p.Y)
		}
	}

	v := chartView{Title: c.Title, Width: chartWidth, Height: chartHeight}
	for i, s := range c.Series {
		pts := make([]string, len(s.Points))
		for j, p := range s.Points {
			x := scaleX(index[p.Label], len(index))
			y := scaleY(p.Y, lo, hi)
			pts[j] = fmt.Sprintf("%.1f,%.1f", x, y)
		}
		v.Lines = append(v.Lines, lineView{
			Name:   s.Name,
			Color:  palette[i%len(palette)],
			Points: strings.Join(pts, " "),
		})
	}
	return v
}

func scaleX(i, n int) float64 {
	span := float64(chartWidth - 2*chartPad)
	if n <= 1 {
		return chartPad + span/2
	}
	return chartPad + span*float64(i)/float64(n-1)
}

// scaleY maps v into the drawing area; SVG y grows downwards
func scaleY(v, lo, hi float64) float64 {
	span := float64(chartHeight - 2*chartPad)
	if hi <= lo {
		return chartPad + span/2
	}
	return chartPad + span*(1-(v-lo)/(hi-lo))
}
