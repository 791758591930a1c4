package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sw33tLie/covidboard/pkg/screen"
	"github.com/sw33tLie/covidboard/pkg/stats"
	"github.com/tidwall/gjson"
)

type stubFetcher struct {
	data *stats.AggregateData
	err  error
}

func (f *stubFetcher) FetchAggregate(ctx context.Context) (*stats.AggregateData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.data, f.err
}

func testData() *stats.AggregateData {
	return &stats.AggregateData{
		Global: stats.GlobalSummary{Counts: stats.Counts{Cases: 1600}},
		Countries: []stats.CountryRecord{
			{Country: "A", Counts: stats.Counts{Cases: 1000, Active: 180, Recovered: 800, Deaths: 20}},
			{Country: "B", Counts: stats.Counts{Cases: 500, Active: 142, Recovered: 350, Deaths: 8}},
			{Country: "C", Counts: stats.Counts{Cases: 100, Active: 48, Recovered: 50, Deaths: 2}},
		},
	}
}

func newServer(t *testing.T, f *stubFetcher, user, pass string) (*Server, *httptest.Server) {
	t.Helper()
	c := screen.NewController()
	s := New(c, f, user, pass)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestEndpointsBeforeLoad(t *testing.T) {
	_, ts := newServer(t, &stubFetcher{data: testData()}, "", "")

	code, body := get(t, ts.URL+"/api/aggregate")
	if code != http.StatusServiceUnavailable {
		t.Errorf("aggregate before load = %d", code)
	}
	if gjson.Get(body, "status").String() != "idle" {
		t.Errorf("unexpected body %s", body)
	}

	code, body = get(t, ts.URL+"/health")
	if code != http.StatusOK || gjson.Get(body, "generation").Int() != 0 {
		t.Errorf("health = %d %s", code, body)
	}
}

func TestEndpointsAfterRefresh(t *testing.T) {
	_, ts := newServer(t, &stubFetcher{data: testData()}, "", "")

	resp, err := http.Post(ts.URL+"/api/refresh", "application/json", nil)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || gjson.GetBytes(body, "status").String() != "ready" {
		t.Fatalf("refresh = %d %s", resp.StatusCode, body)
	}

	_, agg := get(t, ts.URL+"/api/aggregate")
	if gjson.Get(agg, "global.cases").Int() != 1600 || gjson.Get(agg, "countries.#").Int() != 3 {
		t.Errorf("aggregate = %s", agg)
	}

	tests := []struct {
		query string
		want  string
	}{
		{"", `["A","B","C"]`},
		{"?search=b", `["B"]`},
		{"?sortBy=cases&sortOrder=asc", `["C","B","A"]`},
		{"?sortBy=country&sortOrder=desc", `["C","B","A"]`},
	}
	for _, tt := range tests {
		code, body := get(t, ts.URL+"/api/countries"+tt.query)
		if code != http.StatusOK {
			t.Errorf("countries%s = %d", tt.query, code)
			continue
		}
		if got := gjson.Get(body, "#.country").Raw; got != tt.want {
			t.Errorf("countries%s = %s, want %s", tt.query, got, tt.want)
		}
	}

	if code, _ := get(t, ts.URL+"/api/countries?sortBy=population"); code != http.StatusBadRequest {
		t.Errorf("bad sortBy = %d", code)
	}

	code, countryBody := get(t, ts.URL+"/api/countries/B")
	if code != http.StatusOK || gjson.Get(countryBody, "cases").Int() != 500 {
		t.Errorf("country B = %d %s", code, countryBody)
	}
	if code, _ := get(t, ts.URL+"/api/countries/Atlantis"); code != http.StatusNotFound {
		t.Errorf("missing country = %d", code)
	}
}

func TestChartsEndpoint(t *testing.T) {
	s, ts := newServer(t, &stubFetcher{data: testData()}, "", "")
	if err := s.Controller.Load(context.Background(), s.Fetcher); err != nil {
		t.Fatalf("Load: %v", err)
	}

	_, body := get(t, ts.URL+"/api/charts")
	if gjson.Get(body, "type").String() != "bar" || gjson.Get(body, "data.labels").Raw != `["A","B","C"]` {
		t.Errorf("default chart = %s", body)
	}

	_, body = get(t, ts.URL+"/api/charts?mode=doughnut&selected=C,Atlantis&selected=A")
	if gjson.Get(body, "type").String() != "doughnut" {
		t.Errorf("mode not applied: %s", body)
	}
	if got := gjson.Get(body, "data.datasets.0.data").Raw; got != "[228,850,22]" {
		t.Errorf("ring over A and C = %s", got)
	}

	_, body = get(t, ts.URL+"/api/charts?mode=line&selected=C,A")
	if got := gjson.Get(body, "data.labels").Raw; got != `["A","C"]` {
		t.Errorf("selected labels not in data order: %s", got)
	}
}

func TestRefreshFailure(t *testing.T) {
	_, ts := newServer(t, &stubFetcher{err: errors.New("upstream down")}, "", "")

	resp, err := http.Post(ts.URL+"/api/refresh", "application/json", nil)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("refresh = %d", resp.StatusCode)
	}
	if msg := gjson.GetBytes(body, "error").String(); msg != unavailableMessage {
		t.Errorf("error message = %q", msg)
	}
}

func TestRefreshOutlivesClient(t *testing.T) {
	s, _ := newServer(t, &stubFetcher{data: testData()}, "", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("refresh with a gone client = %d %s", rec.Code, rec.Body.String())
	}
	if st := s.Controller.State(); st.Status != screen.Ready {
		t.Errorf("status = %v, want ready", st.Status)
	}
}

func TestBasicAuth(t *testing.T) {
	_, ts := newServer(t, &stubFetcher{data: testData()}, "admin", "secret")

	if code, _ := get(t, ts.URL+"/api/aggregate"); code != http.StatusUnauthorized {
		t.Errorf("unauthenticated = %d", code)
	}
	if code, _ := get(t, ts.URL+"/health"); code != http.StatusOK {
		t.Errorf("health requires auth: %d", code)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/aggregate", nil)
	req.SetBasicAuth("admin", "secret")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("authenticated before load = %d, want 503", resp.StatusCode)
	}
}

func TestMiddlewareRequestID(t *testing.T) {
	_, ts := newServer(t, &stubFetcher{data: testData()}, "", "")

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if id := resp.Header.Get("X-Request-ID"); len(id) != 36 {
		t.Errorf("generated request id = %q", id)
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("security headers missing")
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if id := resp.Header.Get("X-Request-ID"); id != "abc-123" {
		t.Errorf("caller request id replaced: %q", id)
	}
}
