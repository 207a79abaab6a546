package viz

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/thesavant42/renewables-explorer/internal/models"
)

// ErrNotChartable is returned by WritePNG for plans it cannot draw.
var ErrNotChartable = errors.New("visualization cannot be exported as an image")

const (
	pngWidth    = 1024
	pngHeight   = 512
	maxPNGBars  = 40
	maxPNGTicks = 10
)

// WritePNG renders a line or bar plan as a PNG image.
func WritePNG(w io.Writer, records models.Records, plan Plan, title string) error {
	switch plan.Mode {
	case ModeLine:
		return writeLinePNG(w, records, plan, title)
	case ModeBar:
		return writeBarPNG(w, records, plan, title)
	}
	return fmt.Errorf("%w: mode %s", ErrNotChartable, plan.Mode)
}

func writeLinePNG(w io.Writer, records models.Records, plan Plan, title string) error {
	pts := linePoints(records, plan)
	if len(pts) < 2 {
		return fmt.Errorf("%w: need at least 2 points, have %d", ErrNotChartable, len(pts))
	}

	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i] = float64(i)
		ys[i] = p.value
	}

	step := int(math.Ceil(float64(len(pts)) / maxPNGTicks))
	var ticks []chart.Tick
	for i := 0; i < len(pts); i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: pts[i].label})
	}

	lo, hi := bounds(pts)
	if lo == hi {
		lo, hi = lo-1, hi+1
	}

	graph := chart.Chart{
		Title:  title,
		Width:  pngWidth,
		Height: pngHeight,
		XAxis: chart.XAxis{
			Name:  plan.DateCol,
			Ticks: ticks,
			Range: &chart.ContinuousRange{Min: 0, Max: float64(len(pts) - 1)},
		},
		YAxis: chart.YAxis{
			Name:  plan.NumericCol,
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    plan.NumericCol,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2,
				},
			},
		},
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render line chart: %w", err)
	}
	return nil
}

func writeBarPNG(w io.Writer, records models.Records, plan Plan, title string) error {
	var bars []chart.Value
	lo, hi := 0.0, 0.0
	for _, r := range records {
		v, ok := r.Number(plan.NumericCol)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		bars = append(bars, chart.Value{Label: r.String(plan.CategoryCol), Value: v})
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		if len(bars) == maxPNGBars {
			break
		}
	}
	if len(bars) == 0 {
		return fmt.Errorf("%w: no numeric values in %q", ErrNotChartable, plan.NumericCol)
	}
	if lo == hi {
		hi = lo + 1
	}

	graph := chart.BarChart{
		Title:    title,
		Width:    pngWidth,
		Height:   pngHeight,
		BarWidth: max(4, (pngWidth-100)/len(bars)/2),
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		Bars: bars,
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render bar chart: %w", err)
	}
	return nil
}
