package gateway

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sw33tLie/covidboard/pkg/stats"
	"github.com/tidwall/gjson"
)

// Timeline keys look like "9/14/23".
const timelineDateLayout = "1/2/06"

// parseHistory reads a /historical payload. Country payloads nest the series
// under "timeline"; the worldwide payload has them at the top level.
func parseHistory(body []byte, worldwide bool) (stats.HistorySeries, error) {
	if !gjson.ValidBytes(body) {
		return stats.HistorySeries{}, errors.New("malformed payload: invalid JSON")
	}
	doc := gjson.ParseBytes(body)

	var series stats.HistorySeries
	timeline := doc
	if !worldwide {
		timeline = doc.Get("timeline")
		if !timeline.IsObject() {
			return series, errors.New("malformed payload: missing timeline")
		}
		series.Country = doc.Get("country").String()
		doc.Get("province").ForEach(func(_, v gjson.Result) bool {
			series.Provinces = append(series.Provinces, v.String())
			return true
		})
	}

	points := map[time.Time]*stats.HistoryPoint{}
	var parseErr error
	for _, field := range []string{"cases", "deaths", "recovered"} {
		field := field
		timeline.Get(field).ForEach(func(k, v gjson.Result) bool {
			day, err := time.Parse(timelineDateLayout, k.String())
			if err != nil {
				parseErr = fmt.Errorf("malformed payload: bad date %q", k.String())
				return false
			}
			p, ok := points[day]
			if !ok {
				p = &stats.HistoryPoint{Date: day}
				points[day] = p
			}
			switch field {
			case "cases":
				p.Cases = v.Int()
			case "deaths":
				p.Deaths = v.Int()
			case "recovered":
				p.Recovered = v.Int()
			}
			return true
		})
		if parseErr != nil {
			return stats.HistorySeries{}, parseErr
		}
	}

	series.Points = make([]stats.HistoryPoint, 0, len(points))
	for _, p := range points {
		series.Points = append(series.Points, *p)
	}
	sort.Slice(series.Points, func(i, j int) bool {
		return series.Points[i].Date.Before(series.Points[j].Date)
	})
	return series, nil
}

// DailyNew turns a cumulative series into per-day increments. The first point
// has no predecessor and is dropped. Negative corrections are kept as-is.
func DailyNew(series stats.HistorySeries) []stats.HistoryPoint {
	if len(series.Points) < 2 {
		return nil
	}
	out := make([]stats.HistoryPoint, 0, len(series.Points)-1)
	for i := 1; i < len(series.Points); i++ {
		prev, cur := series.Points[i-1], series.Points[i]
		out = append(out, stats.HistoryPoint{
			Date:      cur.Date,
			Cases:     cur.Cases - prev.Cases,
			Deaths:    cur.Deaths - prev.Deaths,
			Recovered: cur.Recovered - prev.Recovered,
		})
	}
	return out
}
