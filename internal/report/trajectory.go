package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// WriteTrajectoryPNG renders the estimated trajectory, the ground truth
// trajectory and the landmark positions to a PNG file.
func WriteTrajectoryPNG(path string, data RunData) error {
	p := plot.New()
	p.Title.Text = data.Title
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"

	if len(data.GroundTruth) > 0 {
		pts := make(plotter.XYs, len(data.GroundTruth))
		for i, gt := range data.GroundTruth {
			pts[i].X = gt.X
			pts[i].Y = gt.Y
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("ground truth line: %w", err)
		}
		line.Color = color.RGBA{B: 255, A: 255}
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add("ground truth", line)
	}

	if len(data.History) > 0 {
		pts := make(plotter.XYs, len(data.History))
		for i, entry := range data.History {
			pts[i].X = entry.State.AtVec(0)
			pts[i].Y = entry.State.AtVec(1)
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("estimate line: %w", err)
		}
		line.Color = color.RGBA{R: 255, A: 255}
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add("estimate", line)
	}

	if len(data.LandmarkTruth) > 0 {
		pts := make(plotter.XYs, len(data.LandmarkTruth))
		for i, lm := range data.LandmarkTruth {
			pts[i].X = lm.X
			pts[i].Y = lm.Y
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("landmark truth scatter: %w", err)
		}
		scatter.GlyphStyle.Radius = vg.Points(4)
		scatter.GlyphStyle.Color = color.RGBA{R: 128, G: 128, B: 128, A: 128}
		p.Add(scatter)
		p.Legend.Add("landmarks (surveyed)", scatter)
	}

	if len(data.Landmarks) > 0 {
		pts := make(plotter.XYs, len(data.Landmarks))
		for i, lm := range data.Landmarks {
			pts[i].X = lm.Position.X
			pts[i].Y = lm.Position.Y
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("landmark estimate scatter: %w", err)
		}
		scatter.GlyphStyle.Radius = vg.Points(2)
		scatter.GlyphStyle.Color = color.RGBA{A: 255}
		p.Add(scatter)
		p.Legend.Add("landmarks (estimated)", scatter)
	}

	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("save trajectory plot: %w", err)
	}
	return nil
}
