package stats

import "time"

// Counts is the shape shared by the global summary and every country row.
type Counts struct {
	Cases          int64 `json:"cases"`
	TodayCases     int64 `json:"todayCases"`
	Deaths         int64 `json:"deaths"`
	TodayDeaths    int64 `json:"todayDeaths"`
	Recovered      int64 `json:"recovered"`
	TodayRecovered int64 `json:"todayRecovered"`
	Active         int64 `json:"active"`
	Critical       int64 `json:"critical"`
	Tests          int64 `json:"tests"`
	Population     int64 `json:"population"`

	CasesPerOneMillion  float64 `json:"casesPerOneMillion"`
	DeathsPerOneMillion float64 `json:"deathsPerOneMillion"`
	TestsPerOneMillion  float64 `json:"testsPerOneMillion"`

	// Updated is the upstream timestamp in milliseconds since the epoch.
	Updated int64 `json:"updated"`
}

// GlobalSummary is the /all payload.
type GlobalSummary struct {
	Counts
	AffectedCountries int64 `json:"affectedCountries"`
}

// CountryInfo carries the identifiers and flag image of a country.
type CountryInfo struct {
	ID   int64   `json:"_id"`
	Iso2 string  `json:"iso2"`
	Iso3 string  `json:"iso3"`
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
	Flag string  `json:"flag"`
}

// CountryRecord is one element of /countries. Country is the unique key.
type CountryRecord struct {
	Counts
	Country     string      `json:"country"`
	Continent   string      `json:"continent"`
	CountryInfo CountryInfo `json:"countryInfo"`
}

// AggregateData is the merged result of one successful fetch cycle.
// Countries keep the order the API returned them in (cases, descending).
type AggregateData struct {
	Global    GlobalSummary   `json:"global"`
	Countries []CountryRecord `json:"countries"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

// Top returns at most n countries from the head of the list.
func (a *AggregateData) Top(n int) []CountryRecord {
	if a == nil {
		return nil
	}
	if n < 0 || n > len(a.Countries) {
		n = len(a.Countries)
	}
	return a.Countries[:n]
}

// Find looks a country up by its exact name.
func (a *AggregateData) Find(name string) (CountryRecord, bool) {
	if a == nil {
		return CountryRecord{}, false
	}
	for _, c := range a.Countries {
		if c.Country == name {
			return c, true
		}
	}
	return CountryRecord{}, false
}

// Names returns the country names in data order.
func Names(countries []CountryRecord) []string {
	names := make([]string, len(countries))
	for i, c := range countries {
		names[i] = c.Country
	}
	return names
}

// HistoryPoint is one day of a country's cumulative timeline.
type HistoryPoint struct {
	Date      time.Time `json:"date"`
	Cases     int64     `json:"cases"`
	Deaths    int64     `json:"deaths"`
	Recovered int64     `json:"recovered"`
}

// HistorySeries is the /historical/{country} payload, oldest point first.
type HistorySeries struct {
	Country   string         `json:"country"`
	Provinces []string       `json:"provinces,omitempty"`
	Points    []HistoryPoint `json:"points"`
}

// Latest returns the most recent point of the series.
func (h HistorySeries) Latest() (HistoryPoint, bool) {
	if len(h.Points) == 0 {
		return HistoryPoint{}, false
	}
	return h.Points[len(h.Points)-1], true
}
