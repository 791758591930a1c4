package charts

import (
	"bytes"
	"testing"
	"time"

	"github.com/sw33tLie/covidboard/pkg/stats"
	"github.com/tidwall/gjson"
)

func sample() []stats.CountryRecord {
	return []stats.CountryRecord{
		{Country: "A", Counts: stats.Counts{Cases: 1000, Active: 180, Recovered: 800, Deaths: 20}},
		{Country: "B", Counts: stats.Counts{Cases: 500, Active: 142, Recovered: 350, Deaths: 8}},
		{Country: "C", Counts: stats.Counts{Cases: 100, Active: 48, Recovered: 50, Deaths: 2}},
	}
}

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{
		"bar":      Bar,
		"LINE":     Line,
		"doughnut": Doughnut,
		"":         Bar,
		"pie":      Bar,
	}
	for in, want := range tests {
		if got := ParseMode(in); got != want {
			t.Errorf("ParseMode(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestCategorical(t *testing.T) {
	d := Categorical(sample())
	if len(d.Labels) != 3 || d.Labels[0] != "A" || d.Labels[2] != "C" {
		t.Fatalf("labels = %v", d.Labels)
	}
	if len(d.Series) != 4 {
		t.Fatalf("got %d series, want 4", len(d.Series))
	}
	wantLabels := []string{"Cases", "Active", "Recovered", "Deaths"}
	wantColors := []string{CasesColor, ActiveColor, RecoveredColor, DeathsColor}
	for i, s := range d.Series {
		if s.Label != wantLabels[i] || s.BackgroundColor != wantColors[i] {
			t.Errorf("series %d = %s/%v", i, s.Label, s.BackgroundColor)
		}
		if len(s.Data) != len(d.Labels) {
			t.Errorf("series %s has %d points for %d labels", s.Label, len(s.Data), len(d.Labels))
		}
	}
	if d.Series[3].Data[1] != 8 {
		t.Errorf("deaths of B = %d", d.Series[3].Data[1])
	}
}

func TestRing(t *testing.T) {
	d := Ring(sample())
	if len(d.Series) != 1 {
		t.Fatalf("got %d series", len(d.Series))
	}
	data := d.Series[0].Data
	if data[0] != 370 || data[1] != 1200 || data[2] != 30 {
		t.Errorf("ring sums = %v, want [370 1200 30]", data)
	}

	empty := Ring(nil)
	if empty.Series[0].Data[0] != 0 {
		t.Errorf("empty ring not zero: %v", empty.Series[0].Data)
	}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		mode       Mode
		wantType   string
		wantLabels int
		hasScales  bool
	}{
		{Bar, "bar", 3, true},
		{Line, "line", 3, true},
		{Doughnut, "doughnut", 3, false},
		{"", "bar", 3, true},
	}
	for _, tt := range tests {
		cfg, err := Build(sample(), tt.mode)
		if err != nil {
			t.Fatalf("Build(%s): %v", tt.mode, err)
		}
		if !gjson.ValidBytes(cfg) {
			t.Fatalf("Build(%s) produced invalid JSON: %s", tt.mode, cfg)
		}
		if got := gjson.GetBytes(cfg, "type").String(); got != tt.wantType {
			t.Errorf("type = %s, want %s", got, tt.wantType)
		}
		if got := len(gjson.GetBytes(cfg, "data.labels").Array()); got != tt.wantLabels {
			t.Errorf("%s: %d labels", tt.mode, got)
		}
		if got := gjson.GetBytes(cfg, "options.scales").Exists(); got != tt.hasScales {
			t.Errorf("%s: scales present = %v", tt.mode, got)
		}
	}

	d, _ := Build(sample(), Doughnut)
	if got := gjson.GetBytes(d, "data.datasets.0.data.1").Int(); got != 1200 {
		t.Errorf("doughnut recovered slice = %d", got)
	}
	if got := len(gjson.GetBytes(d, "data.datasets.0.backgroundColor").Array()); got != 3 {
		t.Errorf("doughnut has %d slice colors", got)
	}

	b, _ := Build(sample(), Bar)
	if got := gjson.GetBytes(b, "data.datasets.#.label").String(); got != `["Cases","Active","Recovered","Deaths"]` {
		t.Errorf("bar series labels = %s", got)
	}
}

func TestBuildDeterministic(t *testing.T) {
	a, _ := Build(sample(), Line)
	b, _ := Build(sample(), Line)
	if !bytes.Equal(a, b) {
		t.Errorf("Build is not deterministic")
	}
}

func TestBuildTimeline(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2022, 1, d, 0, 0, 0, 0, time.UTC) }
	series := stats.HistorySeries{Country: "Italy", Points: []stats.HistoryPoint{
		{Date: day(1), Cases: 100, Deaths: 10, Recovered: 60},
		{Date: day(2), Cases: 130, Deaths: 12, Recovered: 61},
	}}

	cfg, err := BuildTimeline(series)
	if err != nil {
		t.Fatalf("BuildTimeline: %v", err)
	}
	if got := gjson.GetBytes(cfg, "type").String(); got != "line" {
		t.Errorf("type = %s", got)
	}
	if got := gjson.GetBytes(cfg, "data.labels").Raw; got != `["Jan 1","Jan 2"]` {
		t.Errorf("labels = %s", got)
	}
	if got := gjson.GetBytes(cfg, "data.datasets.0.data").Raw; got != "[100,130]" {
		t.Errorf("cases = %s", got)
	}
	if got := gjson.GetBytes(cfg, "data.datasets.2.label").String(); got != "Deaths" {
		t.Errorf("third series = %s", got)
	}
}

func TestRenderPNG(t *testing.T) {
	pngMagic := []byte("\x89PNG\r\n\x1a\n")
	day := time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC)
	series := stats.HistorySeries{Country: "A", Points: []stats.HistoryPoint{
		{Date: day, Cases: 100, Recovered: 50, Deaths: 1},
		{Date: day.AddDate(0, 0, 1), Cases: 150, Recovered: 80, Deaths: 2},
		{Date: day.AddDate(0, 0, 2), Cases: 190, Recovered: 120, Deaths: 4},
	}}

	var buf bytes.Buffer
	if err := RenderTimelinePNG(&buf, series); err != nil {
		t.Fatalf("RenderTimelinePNG: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
		t.Errorf("timeline is not a PNG")
	}

	buf.Reset()
	if err := RenderCasesPNG(&buf, sample()); err != nil {
		t.Fatalf("RenderCasesPNG: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
		t.Errorf("bar chart is not a PNG")
	}

	flat := []struct {
		name      string
		countries []stats.CountryRecord
	}{
		{"one country", []stats.CountryRecord{{Country: "USA", Counts: stats.Counts{Cases: 1000}}}},
		{"equal cases", []stats.CountryRecord{{Country: "A", Counts: stats.Counts{Cases: 500}}, {Country: "B", Counts: stats.Counts{Cases: 500}}}},
		{"no cases", []stats.CountryRecord{{Country: "A"}}},
	}
	for _, tt := range flat {
		buf.Reset()
		if err := RenderCasesPNG(&buf, tt.countries); err != nil {
			t.Errorf("RenderCasesPNG(%s): %v", tt.name, err)
		} else if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
			t.Errorf("RenderCasesPNG(%s) is not a PNG", tt.name)
		}
	}

	zero := stats.HistorySeries{Country: "Z", Points: []stats.HistoryPoint{{Date: day}, {Date: day.AddDate(0, 0, 1)}}}
	buf.Reset()
	if err := RenderTimelinePNG(&buf, zero); err != nil {
		t.Errorf("flat timeline: %v", err)
	}

	series.Points = series.Points[:1]
	if err := RenderTimelinePNG(&buf, series); err != ErrNotEnoughData {
		t.Errorf("single point: err = %v", err)
	}
	if err := RenderCasesPNG(&buf, nil); err != ErrNotEnoughData {
		t.Errorf("no countries: err = %v", err)
	}
}
