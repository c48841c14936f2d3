package viz

import (
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/bactsim/internal/sim"
)

// Graph plots the approximate count against the analytical population.
// Fewer than two records yield an empty string.
func Graph(records []sim.Record, width, height int) string {
	if len(records) < 2 {
		return ""
	}
	_, approx, analytical := sim.Series(records)
	return asciigraph.PlotMany([][]float64{approx, analytical},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Red),
		asciigraph.Caption("approx (green) vs analytical (red)"),
	)
}
