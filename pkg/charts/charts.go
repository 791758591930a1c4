// Package charts shapes country records into Chart.js datasets.
package charts

import (
	"fmt"
	"strings"

	"github.com/sw33tLie/covidboard/pkg/stats"
	"github.com/tidwall/sjson"
)

// Mode is the chart type shown in the chart panel.
type Mode string

const (
	Bar      Mode = "bar"
	Line     Mode = "line"
	Doughnut Mode = "doughnut"
)

// Modes lists every mode in toggle order.
var Modes = []Mode{Bar, Line, Doughnut}

// ParseMode maps a query value to a Mode. Unknown values fall back to Bar.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(s)) {
	case Line:
		return Line
	case Doughnut:
		return Doughnut
	default:
		return Bar
	}
}

// Title is the label of the mode's toggle button.
func (m Mode) Title() string {
	switch m {
	case Line:
		return "Line Chart"
	case Doughnut:
		return "Doughnut Chart"
	default:
		return "Bar Chart"
	}
}

// Series colors, one per measure.
const (
	CasesColor     = "rgba(25, 118, 210, 0.7)"
	ActiveColor    = "rgba(237, 108, 2, 0.7)"
	RecoveredColor = "rgba(46, 125, 50, 0.7)"
	DeathsColor    = "rgba(211, 47, 47, 0.7)"

	casesBorder     = "rgba(25, 118, 210, 1)"
	activeBorder    = "rgba(237, 108, 2, 1)"
	recoveredBorder = "rgba(46, 125, 50, 1)"
	deathsBorder    = "rgba(211, 47, 47, 1)"
)

// Series is one Chart.js dataset. Categorical series use a single color
// string; ring series use one color per slice.
type Series struct {
	Label           string  `json:"label,omitempty"`
	Data            []int64 `json:"data"`
	BackgroundColor any     `json:"backgroundColor"`
	BorderColor     any     `json:"borderColor"`
	BorderWidth     int     `json:"borderWidth"`
}

// Dataset is labels plus the series drawn over them.
type Dataset struct {
	Labels []string `json:"labels"`
	Series []Series `json:"datasets"`
}

// Categorical has one label per country and four series:
// cases, active, recovered and deaths.
func Categorical(countries []stats.CountryRecord) Dataset {
	d := Dataset{Labels: stats.Names(countries)}
	measures := []struct {
		label  string
		color  string
		border string
		value  func(stats.CountryRecord) int64
	}{
		{"Cases", CasesColor, casesBorder, func(c stats.CountryRecord) int64 { return c.Cases }},
		{"Active", ActiveColor, activeBorder, func(c stats.CountryRecord) int64 { return c.Active }},
		{"Recovered", RecoveredColor, recoveredBorder, func(c stats.CountryRecord) int64 { return c.Recovered }},
		{"Deaths", DeathsColor, deathsBorder, func(c stats.CountryRecord) int64 { return c.Deaths }},
	}
	for _, m := range measures {
		s := Series{
			Label:           m.label,
			Data:            make([]int64, len(countries)),
			BackgroundColor: m.color,
			BorderColor:     m.border,
			BorderWidth:     1,
		}
		for i, c := range countries {
			s.Data[i] = m.value(c)
		}
		d.Series = append(d.Series, s)
	}
	return d
}

// Ring sums active, recovered and deaths across countries into one
// three-slice series.
func Ring(countries []stats.CountryRecord) Dataset {
	var active, recovered, deaths int64
	for _, c := range countries {
		active += c.Active
		recovered += c.Recovered
		deaths += c.Deaths
	}
	return Dataset{
		Labels: []string{"Active", "Recovered", "Deaths"},
		Series: []Series{{
			Data:            []int64{active, recovered, deaths},
			BackgroundColor: []string{ActiveColor, RecoveredColor, DeathsColor},
			BorderColor:     []string{activeBorder, recoveredBorder, deathsBorder},
			BorderWidth:     1,
		}},
	}
}

// For returns the dataset a mode draws.
func For(countries []stats.CountryRecord, mode Mode) Dataset {
	if mode == Doughnut {
		return Ring(countries)
	}
	return Categorical(countries)
}

const baseConfig = `{
	"type": "bar",
	"data": {"labels": [], "datasets": []},
	"options": {
		"responsive": true,
		"maintainAspectRatio": false,
		"plugins": {
			"legend": {"position": "top", "labels": {"color": "#a1a1aa"}},
			"tooltip": {
				"backgroundColor": "#27272a",
				"titleColor": "#e4e4e7",
				"bodyColor": "#e4e4e7",
				"borderColor": "#3f3f46",
				"borderWidth": 1
			}
		},
		"scales": {
			"x": {"ticks": {"color": "#a1a1aa"}, "grid": {"color": "#27272a"}},
			"y": {"beginAtZero": true, "ticks": {"color": "#a1a1aa"}, "grid": {"color": "#27272a"}}
		}
	}
}`

// Build returns the Chart.js configuration for countries in the given mode.
// The output only depends on its inputs.
func Build(countries []stats.CountryRecord, mode Mode) ([]byte, error) {
	mode = ParseMode(string(mode))
	cfg := []byte(baseConfig)

	var err error
	if cfg, err = sjson.SetBytes(cfg, "type", string(mode)); err != nil {
		return nil, fmt.Errorf("set chart type: %w", err)
	}
	if cfg, err = sjson.SetBytes(cfg, "data", For(countries, mode)); err != nil {
		return nil, fmt.Errorf("set chart data: %w", err)
	}

	switch mode {
	case Doughnut:
		if cfg, err = sjson.DeleteBytes(cfg, "options.scales"); err != nil {
			return nil, fmt.Errorf("drop scales: %w", err)
		}
		cfg, err = sjson.SetBytes(cfg, "options.plugins.legend.position", "bottom")
	case Line:
		cfg, err = sjson.SetBytes(cfg, "options.elements.line.tension", 0.3)
	}
	if err != nil {
		return nil, fmt.Errorf("set %s options: %w", mode, err)
	}
	return cfg, nil
}
