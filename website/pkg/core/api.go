package core

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/sw33tLie/covidboard/internal/utils"
	"github.com/sw33tLie/covidboard/pkg/screen"
	"github.com/sw33tLie/covidboard/pkg/stats"
)

// downloadCache holds the encoded country exports of the current data
// generation. Each export is built on first request.
type downloadCache struct {
	mu         sync.RWMutex
	generation uint64
	jsonBody   []byte
	csvBody    []byte
}

// observe drops the cached exports whenever a new generation is loaded.
func (c *downloadCache) observe(st screen.State) {
	if st.Status != screen.Ready {
		return
	}
	c.mu.Lock()
	if c.generation != st.Generation {
		c.generation = st.Generation
		c.jsonBody = nil
		c.csvBody = nil
	}
	c.mu.Unlock()
}

func (c *downloadCache) get(st screen.State, isCSV bool) ([]byte, error) {
	c.mu.RLock()
	body := c.jsonBody
	if isCSV {
		body = c.csvBody
	}
	fresh := c.generation == st.Generation
	c.mu.RUnlock()
	if body != nil && fresh {
		return body, nil
	}

	var err error
	if isCSV {
		body, err = encodeCSV(st.Data.Countries)
	} else {
		body, err = json.Marshal(st.Data.Countries)
	}
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.generation == st.Generation {
		if isCSV {
			c.csvBody = body
		} else {
			c.jsonBody = body
		}
	}
	c.mu.Unlock()
	return body, nil
}

var csvHeader = []string{
	"country", "continent", "iso2", "iso3",
	"cases", "todayCases", "deaths", "todayDeaths", "recovered", "todayRecovered",
	"active", "critical", "tests", "population", "updated",
}

func encodeCSV(countries []stats.CountryRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	i64 := func(n int64) string { return strconv.FormatInt(n, 10) }
	for _, c := range countries {
		err := w.Write([]string{
			c.Country, c.Continent, c.CountryInfo.Iso2, c.CountryInfo.Iso3,
			i64(c.Cases), i64(c.TodayCases), i64(c.Deaths), i64(c.TodayDeaths), i64(c.Recovered), i64(c.TodayRecovered),
			i64(c.Active), i64(c.Critical), i64(c.Tests), i64(c.Population),
			time.UnixMilli(c.Updated).UTC().Format(time.RFC3339),
		})
		if err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func (s *Site) serveDownload(w http.ResponseWriter, isCSV bool) {
	st := s.controller.State()
	if st.Data == nil {
		http.Error(w, unavailableMessage, http.StatusServiceUnavailable)
		return
	}
	body, err := s.downloads.get(st, isCSV)
	if err != nil {
		utils.Log.WithError(err).Error("Failed to encode download")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	setCORSHeaders(w)
	name := "countries.json"
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if isCSV {
		name = "countries.csv"
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.Write(body)
}

func (s *Site) downloadJSONHandler(w http.ResponseWriter, r *http.Request) {
	s.serveDownload(w, false)
}

func (s *Site) downloadCSVHandler(w http.ResponseWriter, r *http.Request) {
	s.serveDownload(w, true)
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}
