package charts

import (
	"bytes"
	"errors"
	chart "github.com/wcharczuk/go-chart/v2"
	"math"
	"time"
)

const (
	chartWidth  = 800
	chartHeight = 400
)

var ErrNoData = errors.New("no data points to plot")

type Point struct {
	Time  time.Time
	Value float64
}

type Series struct {
	Name   string
	Points []Point
}

// RenderPNG draws one line per sensor on a shared time axis. The value axis is
// scaled to the data with a 10% pad. Series without points are left out.
func RenderPNG(title, unit string, series []Series) ([]byte, error) {
	var earliest, latest time.Time
	minV, maxV := math.Inf(1), math.Inf(-1)

	graph := chart.Chart{
		Title:  title,
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
	}

	for _, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		ts := chart.TimeSeries{
			Name:    s.Name,
			XValues: make([]time.Time, len(s.Points)),
			YValues: make([]float64, len(s.Points)),
			Style:   chart.Style{StrokeWidth: 2},
		}
		for i, p := range s.Points {
			ts.XValues[i] = p.Time
			ts.YValues[i] = p.Value
			if earliest.IsZero() || p.Time.Before(earliest) {
				earliest = p.Time
			}
			if p.Time.After(latest) {
				latest = p.Time
			}
			minV = math.Min(minV, p.Value)
			maxV = math.Max(maxV, p.Value)
		}
		graph.Series = append(graph.Series, ts)
	}
	if len(graph.Series) == 0 {
		return nil, ErrNoData
	}

	// flat or single point data still needs a non-empty range
	if !latest.After(earliest) {
		earliest = earliest.Add(-time.Hour)
		latest = latest.Add(time.Hour)
	}
	pad := (maxV - minV) * 0.1
	if pad == 0 {
		pad = 1
	}

	graph.XAxis = chart.XAxis{
		ValueFormatter: chart.TimeValueFormatterWithFormat("01-02 15:04"),
		Range: &chart.ContinuousRange{
			Min: chart.TimeToFloat64(earliest),
			Max: chart.TimeToFloat64(latest),
		},
	}
	graph.YAxis = chart.YAxis{
		Name:  unit,
		Range: &chart.ContinuousRange{Min: minV - pad, Max: maxV + pad},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
