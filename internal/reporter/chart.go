package reporter

import (
	"errors"
	"io"
	"slices"

	"github.com/wcharczuk/go-chart/v2"
)

// WriteModeChart renders the mode histogram as an SVG line chart of block
// count against mode index.
func WriteModeChart(w io.Writer, title string, hist []int) error {
	if len(hist) == 0 {
		return errors.New("reporter: empty mode histogram")
	}
	xs := make([]float64, len(hist))
	ys := make([]float64, len(hist))
	for m, c := range hist {
		xs[m] = float64(m)
		ys[m] = float64(c)
	}
	top := float64(max(1, slices.Max(hist)))

	graph := chart.Chart{
		Title:  title,
		Width:  800,
		Height: 400,
		XAxis: chart.XAxis{
			Name:  "intra mode",
			Range: &chart.ContinuousRange{Min: 0, Max: float64(len(hist) - 1)},
		},
		YAxis: chart.YAxis{
			Name:  "prediction blocks",
			Range: &chart.ContinuousRange{Min: 0, Max: top},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name: "blocks",
				Style: chart.Style{
					DotWidth: 3,
				},
				XValues: xs,
				YValues: ys,
			},
		},
	}
	return graph.Render(chart.SVG, w)
}
