package charts

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sw33tLie/covidboard/pkg/format"
	"github.com/sw33tLie/covidboard/pkg/stats"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// PNG image size.
const (
	ImageWidth  = 1024
	ImageHeight = 512
)

// ErrNotEnoughData is returned when there is nothing to draw.
var ErrNotEnoughData = errors.New("not enough data to draw")

var (
	pngCases     = drawing.Color{R: 25, G: 118, B: 210, A: 255}
	pngRecovered = drawing.Color{R: 46, G: 125, B: 50, A: 255}
	pngDeaths    = drawing.Color{R: 211, G: 47, B: 47, A: 255}
)

func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: col,
		StrokeWidth: 2,
	}
}

// countFormatter labels the y axis with abbreviated counts.
func countFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return format.FormatCount(int64(f))
	}
	return ""
}

// yRange spans 0 to the largest value. go-chart refuses to draw a range of
// zero width, which it derives when every value is equal.
func yRange(values ...[]float64) *chart.ContinuousRange {
	max := 0.0
	for _, vs := range values {
		for _, v := range vs {
			if v > max {
				max = v
			}
		}
	}
	if max <= 0 {
		max = 1
	}
	return &chart.ContinuousRange{Min: 0, Max: max}
}

// RenderTimelinePNG draws cases, recovered and deaths of series as a PNG.
// It needs at least two points.
func RenderTimelinePNG(w io.Writer, series stats.HistorySeries) error {
	if len(series.Points) < 2 {
		return ErrNotEnoughData
	}

	n := len(series.Points)
	xs := make([]time.Time, n)
	cases, recovered, deaths := make([]float64, n), make([]float64, n), make([]float64, n)
	for i, p := range series.Points {
		xs[i] = p.Date
		cases[i] = float64(p.Cases)
		recovered[i] = float64(p.Recovered)
		deaths[i] = float64(p.Deaths)
	}

	ch := chart.Chart{
		Title:      series.Country,
		Width:      ImageWidth,
		Height:     ImageHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 12}},
		XAxis:      chart.XAxis{ValueFormatter: chart.TimeDateValueFormatter},
		YAxis:      chart.YAxis{ValueFormatter: countFormatter, Range: yRange(cases, recovered, deaths)},
		Series: []chart.Series{
			chart.TimeSeries{Name: "Cases", XValues: xs, YValues: cases, Style: lineStyle(pngCases)},
			chart.TimeSeries{Name: "Recovered", XValues: xs, YValues: recovered, Style: lineStyle(pngRecovered)},
			chart.TimeSeries{Name: "Deaths", XValues: xs, YValues: deaths, Style: lineStyle(pngDeaths)},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render timeline: %w", err)
	}
	return nil
}

// RenderCasesPNG draws the total cases of countries as a bar chart PNG.
func RenderCasesPNG(w io.Writer, countries []stats.CountryRecord) error {
	if len(countries) == 0 {
		return ErrNotEnoughData
	}

	bars := make([]chart.Value, len(countries))
	values := make([]float64, len(countries))
	for i, c := range countries {
		values[i] = float64(c.Cases)
		bars[i] = chart.Value{
			Label: c.Country,
			Value: values[i],
			Style: chart.Style{FillColor: pngCases, StrokeColor: pngCases},
		}
	}

	bc := chart.BarChart{
		Title:      "Total cases",
		Width:      ImageWidth,
		Height:     ImageHeight,
		BarWidth:   ImageWidth / (2*len(countries) + 1),
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		YAxis:      chart.YAxis{ValueFormatter: countFormatter, Range: yRange(values)},
		Bars:       bars,
	}
	if err := bc.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	return nil
}
