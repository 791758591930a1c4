package stats

import (
	"encoding/json"
	"testing"
)

const countryJSON = `{
  "updated": 1700000000000,
  "country": "USA",
  "countryInfo": {"_id": 840, "iso2": "US", "iso3": "USA", "lat": 38, "long": -97, "flag": "https://disease.sh/assets/img/flags/us.png"},
  "cases": 111820082, "todayCases": 12, "deaths": 1219487, "todayDeaths": 0,
  "recovered": 109814428, "todayRecovered": 0, "active": 786167, "critical": 940,
  "casesPerOneMillion": 333985, "deathsPerOneMillion": 3642, "tests": 1186851502,
  "testsPerOneMillion": 3544901, "population": 334805269, "continent": "North America"
}`

func TestCountryRecordDecode(t *testing.T) {
	var c CountryRecord
	if err := json.Unmarshal([]byte(countryJSON), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Country != "USA" || c.CountryInfo.Iso2 != "US" {
		t.Errorf("unexpected identity: %+v", c)
	}
	if c.Cases != 111820082 || c.Active != 786167 || c.Tests != 1186851502 {
		t.Errorf("unexpected counts: %+v", c.Counts)
	}
	if c.CountryInfo.Flag == "" {
		t.Error("flag URL missing")
	}
}

func TestTopAndFind(t *testing.T) {
	agg := &AggregateData{Countries: []CountryRecord{
		{Country: "A"}, {Country: "B"}, {Country: "C"},
	}}

	if got := agg.Top(2); len(got) != 2 || got[1].Country != "B" {
		t.Errorf("Top(2) = %v", Names(got))
	}
	if got := agg.Top(10); len(got) != 3 {
		t.Errorf("Top(10) len = %d, want 3", len(got))
	}
	if _, ok := agg.Find("C"); !ok {
		t.Error("expected to find C")
	}
	if _, ok := agg.Find("c"); ok {
		t.Error("Find must be exact")
	}

	var nilAgg *AggregateData
	if nilAgg.Top(3) != nil {
		t.Error("nil aggregate should have no countries")
	}
}

func TestHistoryLatest(t *testing.T) {
	var h HistorySeries
	if _, ok := h.Latest(); ok {
		t.Error("empty series has no latest point")
	}
	h.Points = []HistoryPoint{{Cases: 1}, {Cases: 5}}
	if p, _ := h.Latest(); p.Cases != 5 {
		t.Errorf("latest cases = %d", p.Cases)
	}
}
