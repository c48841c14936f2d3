package viz

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/bactsim/internal/sim"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var ErrNoRecords = errors.New("viz: chart needs at least two records")

type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// FormatFromPath picks the image format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".svg":
		return FormatSVG, nil
	}
	return "", fmt.Errorf("viz: unsupported chart format %q", filepath.Ext(path))
}

// doublingTicks marks seed·2^k up to max, so each tick is one doubling.
func doublingTicks(seed int, max float64) []chart.Tick {
	ticks := []chart.Tick{{Value: 0, Label: "0"}}
	for v := float64(seed); v <= max*1.05; v *= 2 {
		ticks = append(ticks, chart.Tick{Value: v, Label: fmt.Sprintf("%.0f", v)})
	}
	return ticks
}

// RenderChart draws approximate and analytical population against time.
func RenderChart(w io.Writer, records []sim.Record, seed int, format Format) error {
	if len(records) < 2 {
		return ErrNoRecords
	}
	times, approx, analytical := sim.Series(records)

	yMax := 0.0
	for i := range approx {
		yMax = math.Max(yMax, math.Max(approx[i], analytical[i]))
	}

	graph := chart.Chart{
		Title:  "Population",
		Width:  1024,
		Height: 512,
		XAxis: chart.XAxis{
			Name:  "time",
			Style: chart.Style{FontSize: 10.0},
			Range: &chart.ContinuousRange{Min: times[0], Max: times[len(times)-1]},
		},
		YAxis: chart.YAxis{
			Name:  "agents",
			Style: chart.Style{FontSize: 10.0},
			Range: &chart.ContinuousRange{Min: 0, Max: yMax * 1.05},
			Ticks: doublingTicks(seed, yMax),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "approximate",
				XValues: times,
				YValues: approx,
				Style:   chart.Style{StrokeColor: chart.ColorGreen, StrokeWidth: 2.0},
			},
			chart.ContinuousSeries{
				Name:    "analytical",
				XValues: times,
				YValues: analytical,
				Style:   chart.Style{StrokeColor: drawing.Color{R: 255, G: 165, B: 0, A: 255}, StrokeWidth: 2.0, StrokeDashArray: []float64{5.0, 5.0}},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	switch format {
	case FormatPNG:
		return graph.Render(chart.PNG, w)
	case FormatSVG:
		return graph.Render(chart.SVG, w)
	}
	return fmt.Errorf("viz: unsupported chart format %q", format)
}

// SaveChart writes the population chart to path, choosing PNG or SVG by extension.
func SaveChart(path string, records []sim.Record, seed int) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := RenderChart(f, records, seed, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
