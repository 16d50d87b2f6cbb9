package render

import (
	"errors"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// StepHistogram plots the distribution of tracer iterations per pixel over
// bins bins. Pixels with zero steps are left out.
func StepHistogram(steps []int, bins int) (*plot.Plot, error) {
	if bins <= 0 {
		return nil, errors.New("zero or negative histogram bins")
	}
	vals := make(plotter.Values, 0, len(steps))
	for _, s := range steps {
		if s > 0 {
			vals = append(vals, float64(s))
		}
	}
	if len(vals) == 0 {
		return nil, errors.New("no traced pixels")
	}
	h, err := plotter.NewHist(vals, bins)
	if err != nil {
		return nil, err
	}
	p := plot.New()
	p.Title.Text = "Sphere tracing iterations"
	p.X.Label.Text = "steps"
	p.Y.Label.Text = "pixels"
	p.Add(h)
	return p, nil
}

// WriteStepHistogram writes the step histogram of a frame to w as a PNG image.
func WriteStepHistogram(w io.Writer, steps []int, bins int) error {
	p, err := StepHistogram(steps, bins)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(6*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
