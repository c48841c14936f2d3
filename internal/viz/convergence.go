package viz

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/bactsim/internal/sim"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// errorFloor replaces zero errors so they stay on a log axis.
const errorFloor = 1e-9

var ErrTooFewPoints = errors.New("viz: convergence plot needs at least two sweep points")

// ConvergencePlot builds a log-log plot of the final absolute error against
// the step count, with a first-order reference line through the first point.
func ConvergencePlot(points []sim.SweepPoint) (*plot.Plot, error) {
	if len(points) < 2 {
		return nil, ErrTooFewPoints
	}

	p := plot.New()
	p.Title.Text = "Convergence at end time"
	p.X.Label.Text = "steps"
	p.Y.Label.Text = "absolute error"
	p.X.Scale = plot.LogScale{}
	p.Y.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}

	measured := make(plotter.XYs, len(points))
	reference := make(plotter.XYs, len(points))
	first := math.Max(points[0].Final.AbsError, errorFloor)
	for i, pt := range points {
		if pt.Steps <= 0 {
			return nil, fmt.Errorf("viz: sweep point %d has %d steps", i, pt.Steps)
		}
		measured[i].X = float64(pt.Steps)
		measured[i].Y = math.Max(pt.Final.AbsError, errorFloor)
		reference[i].X = float64(pt.Steps)
		reference[i].Y = first * float64(points[0].Steps) / float64(pt.Steps)
	}

	if err := plotutil.AddLinePoints(p, "measured", measured, "first order", reference); err != nil {
		return nil, err
	}
	return p, nil
}

// SaveConvergencePlot renders the convergence plot to path. The format
// follows the extension (png, svg, pdf, ...).
func SaveConvergencePlot(path string, points []sim.SweepPoint) error {
	p, err := ConvergencePlot(points)
	if err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}
