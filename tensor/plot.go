package tensor

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// SavePlot renders the expectation history as a line plot. The image format
// follows the file extension (.png, .svg, .pdf).
func (e *Evaluator) SavePlot(path string) error {
	history := e.History()
	if len(history) == 0 {
		return ErrNoHistory
	}

	p := plot.New()
	p.Title.Text = "Expectation value"
	p.X.Label.Text = "Number of iterations"
	p.Y.Label.Text = "Expectation value"

	pts := make(plotter.XYs, len(history))
	for i, v := range history {
		pts[i].X = float64(i + 1)
		pts[i].Y = v
	}
	if err := plotutil.AddLinePoints(p, "expectation", pts); err != nil {
		return err
	}

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
