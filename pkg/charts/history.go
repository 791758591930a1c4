package charts

import (
	"fmt"

	"github.com/sw33tLie/covidboard/pkg/stats"
	"github.com/tidwall/sjson"
)

const historyDateLayout = "Jan 2"

// Timeline turns a history series into a dataset with one label per day and
// cases, recovered and deaths series.
func Timeline(series stats.HistorySeries) Dataset {
	d := Dataset{Labels: make([]string, len(series.Points))}
	cases := Series{Label: "Cases", Data: make([]int64, len(series.Points)), BackgroundColor: CasesColor, BorderColor: casesBorder, BorderWidth: 2}
	recovered := Series{Label: "Recovered", Data: make([]int64, len(series.Points)), BackgroundColor: RecoveredColor, BorderColor: recoveredBorder, BorderWidth: 2}
	deaths := Series{Label: "Deaths", Data: make([]int64, len(series.Points)), BackgroundColor: DeathsColor, BorderColor: deathsBorder, BorderWidth: 2}
	for i, p := range series.Points {
		d.Labels[i] = p.Date.Format(historyDateLayout)
		cases.Data[i] = p.Cases
		recovered.Data[i] = p.Recovered
		deaths.Data[i] = p.Deaths
	}
	d.Series = []Series{cases, recovered, deaths}
	return d
}

// BuildTimeline returns a line chart configuration for series.
func BuildTimeline(series stats.HistorySeries) ([]byte, error) {
	cfg, err := sjson.SetBytes([]byte(baseConfig), "type", string(Line))
	if err != nil {
		return nil, fmt.Errorf("set chart type: %w", err)
	}
	if cfg, err = sjson.SetBytes(cfg, "data", Timeline(series)); err != nil {
		return nil, fmt.Errorf("set chart data: %w", err)
	}
	if cfg, err = sjson.SetBytes(cfg, "options.elements.point.radius", 0); err != nil {
		return nil, fmt.Errorf("set timeline options: %w", err)
	}
	return cfg, nil
}
