package report

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteHTML renders an interactive scatter chart of the run to an HTML
// file: estimated trajectory, ground truth trajectory, and both surveyed
// and estimated landmark positions.
func WriteHTML(path string, data RunData) error {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: data.Title,
			Width:     "900px",
			Height:    "900px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    data.Title,
			Subtitle: fmt.Sprintf("states=%d landmarks=%d", len(data.History), len(data.Landmarks)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
	)

	truth := make([]opts.ScatterData, 0, len(data.GroundTruth))
	for _, gt := range data.GroundTruth {
		truth = append(truth, opts.ScatterData{Value: []interface{}{gt.X, gt.Y}})
	}
	scatter.AddSeries("ground truth", truth,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 2}))

	estimate := make([]opts.ScatterData, 0, len(data.History))
	for _, entry := range data.History {
		estimate = append(estimate, opts.ScatterData{
			Value: []interface{}{entry.State.AtVec(0), entry.State.AtVec(1)},
		})
	}
	scatter.AddSeries("estimate", estimate,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 2}))

	surveyed := make([]opts.ScatterData, 0, len(data.LandmarkTruth))
	for _, lm := range data.LandmarkTruth {
		surveyed = append(surveyed, opts.ScatterData{Value: []interface{}{lm.X, lm.Y}})
	}
	scatter.AddSeries("landmarks (surveyed)", surveyed,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 12}))

	estimated := make([]opts.ScatterData, 0, len(data.Landmarks))
	for _, lm := range data.Landmarks {
		estimated = append(estimated, opts.ScatterData{
			Value: []interface{}{lm.Position.X, lm.Position.Y},
		})
	}
	scatter.AddSeries("landmarks (estimated)", estimated,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	if err := scatter.Render(f); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}
