package stats

import (
	"errors"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"searchkit/internal/model"
	"searchkit/internal/score"
)

// Trajectory records a point each time the best score strictly improves.
type Trajectory[G any, S score.Comparable[S]] struct {
	value  func(S) float64
	points []model.TrajectoryPoint
	best   S
	seen   bool
}

// NewTrajectory plots scores through value, which maps a score to a number
// on the y axis.
func NewTrajectory[G any, S score.Comparable[S]](value func(S) float64) *Trajectory[G, S] {
	return &Trajectory[G, S]{value: value}
}

func (t *Trajectory[G, S]) Process(record model.SampleRecord[G, S]) {
	if t.seen && !score.Improves(record.Score, t.best) {
		return
	}
	t.seen = true
	t.best = record.Score
	t.points = append(t.points, model.TrajectoryPoint{Index: record.Index, Value: t.value(record.Score)})
}

func (t *Trajectory[G, S]) Points() []model.TrajectoryPoint {
	return append([]model.TrajectoryPoint(nil), t.points...)
}

// WritePlot renders the trajectory to path; the extension picks the format
// (.png, .svg, .pdf).
func (t *Trajectory[G, S]) WritePlot(path, title string) error {
	return WriteTrajectoryPlot(path, title, t.points)
}

// WriteTrajectoryPlot draws best score against sample index as a step line.
func WriteTrajectoryPlot(path, title string, points []model.TrajectoryPoint) error {
	if len(points) == 0 {
		return errors.New("trajectory has no points")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Sample"
	p.Y.Label.Text = "Best score"

	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = float64(pt.Index)
		xys[i].Y = pt.Value
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("build trajectory line: %w", err)
	}
	line.StepStyle = plotter.PostStep
	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return fmt.Errorf("build trajectory points: %w", err)
	}
	p.Add(line, scatter)
	p.Add(plotter.NewGrid())

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot %s: %w", path, err)
	}
	return nil
}
