package core

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sw33tLie/covidboard/internal/utils"
	"github.com/sw33tLie/covidboard/pkg/charts"
	"github.com/sw33tLie/covidboard/pkg/format"
	"github.com/sw33tLie/covidboard/pkg/gateway"
	"github.com/sw33tLie/covidboard/pkg/stats"
	"golang.org/x/sync/errgroup"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

const maxHistoryDays = 365

// countryHandler handles requests for /country/{name}
func (s *Site) countryHandler(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		http.NotFound(w, r)
		return
	}

	days := gateway.DefaultHistoryDays
	if d, err := strconv.Atoi(r.URL.Query().Get("days")); err == nil && d > 0 && d <= maxHistoryDays {
		days = d
	}

	var (
		record  stats.CountryRecord
		history stats.HistorySeries
		histErr error
	)
	grp, ctx := errgroup.WithContext(r.Context())
	grp.Go(func() error {
		var err error
		record, err = s.gateway.FetchCountry(ctx, name)
		return err
	})
	grp.Go(func() error {
		// The page still renders without a timeline.
		history, histErr = s.gateway.FetchHistory(ctx, name, days)
		return nil
	})
	if err := grp.Wait(); err != nil {
		utils.Log.WithError(err).WithField("country", name).Warn("Country fetch failed")
		var fe *gateway.FetchError
		if errors.As(err, &fe) && fe.StatusCode == http.StatusNotFound {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
		PageLayout("COVID-19 Dashboard", "", Navbar(""),
			Main(Class("container mx-auto mt-10 mb-20 px-4"),
				Div(Class("bg-red-900/20 border border-red-800/50 text-red-400 px-4 py-3 rounded-lg"), g.Text(unavailableMessage)),
			),
			FooterEl(), "", true,
		).Render(w)
		return
	}
	if histErr != nil {
		utils.Log.WithError(histErr).WithField("country", name).Debug("History unavailable")
	}

	PageLayout(
		record.Country+" - COVID-19 Dashboard",
		"COVID-19 statistics and recent history for "+record.Country+".",
		Navbar(""),
		CountryDetailContent(record, history, histErr == nil, days),
		FooterEl(),
		"/country/"+url.PathEscape(name),
		false,
	).Render(w)
}

// historyPNGHandler renders the timeline of a country as an image.
func (s *Site) historyPNGHandler(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	days := gateway.DefaultHistoryDays
	if d, err := strconv.Atoi(r.URL.Query().Get("days")); err == nil && d > 0 && d <= maxHistoryDays {
		days = d
	}

	series, err := s.gateway.FetchHistory(r.Context(), name, days)
	if err != nil {
		var fe *gateway.FetchError
		if errors.As(err, &fe) && fe.StatusCode == http.StatusNotFound {
			http.NotFound(w, r)
			return
		}
		utils.Log.WithError(err).WithField("country", name).Warn("History fetch failed")
		http.Error(w, unavailableMessage, http.StatusBadGateway)
		return
	}
	writePNG(w, func(buf *bytes.Buffer) error {
		return charts.RenderTimelinePNG(buf, series)
	})
}

// CountryDetailContent renders a country's cards and its timeline.
func CountryDetailContent(c stats.CountryRecord, history stats.HistorySeries, hasHistory bool, days int) g.Node {
	chevronSep := Span(Class("mx-2 text-slate-600"), g.Raw(`<svg class="w-3.5 h-3.5" fill="none" stroke="currentColor" viewBox="0 0 24 24"><path stroke-linecap="round" stroke-linejoin="round" stroke-width="2" d="M9 5l7 7-7 7"/></svg>`))

	content := []g.Node{
		Nav(Class("flex items-center text-sm text-slate-500 mb-8"),
			A(Href("/"), Class("hover:text-cyan-400 transition-colors duration-200"), g.Text("Dashboard")),
			chevronSep,
			Span(Class("text-slate-200"), g.Text(c.Country)),
		),
		Div(Class("flex items-center gap-4 mb-8"),
			g.If(c.CountryInfo.Flag != "",
				Img(Src(c.CountryInfo.Flag), Alt(c.Country), Class("w-12 h-8 object-cover rounded")),
			),
			Div(
				H1(Class("text-2xl md:text-3xl font-bold text-white"), g.Text(c.Country)),
				g.If(c.Continent != "",
					P(Class("text-sm text-slate-400"), g.Text(c.Continent)),
				),
			),
		),
		Div(Class("grid grid-cols-2 md:grid-cols-4 gap-4 mb-10"),
			statsCard("Cases", format.FormatCount(c.Cases), todaySubtitle(c.TodayCases), "text-blue-400"),
			statsCard("Active", format.FormatCount(c.Active), format.FormatShare(c.Active, c.Cases)+" of cases", "text-orange-400"),
			statsCard("Recovered", format.FormatCount(c.Recovered), todaySubtitle(c.TodayRecovered), "text-emerald-400"),
			statsCard("Deaths", format.FormatCount(c.Deaths), todaySubtitle(c.TodayDeaths), "text-red-400"),
			statsCard("Critical", format.FormatCount(c.Critical), format.FormatShare(c.Critical, c.Cases)+" of cases", "text-amber-400"),
			statsCard("Tests", format.FormatCount(c.Tests), format.FormatPerMillion(c.TestsPerOneMillion)+" per million", "text-cyan-400"),
			statsCard("Population", format.FormatCount(c.Population), "", "text-slate-200"),
			statsCard("Cases per million", format.FormatPerMillion(c.CasesPerOneMillion), "", "text-slate-200"),
		),
	}

	section := []g.Node{
		H2(Class("text-lg font-semibold text-slate-200 mb-4"), g.Textf("Last %d days", days)),
	}
	cfg, err := charts.BuildTimeline(history)
	switch {
	case !hasHistory || len(history.Points) == 0:
		section = append(section, P(Class("text-slate-400 text-sm"), g.Text("No history available for this country.")))
	case err != nil:
		utils.Log.WithError(err).Error("Failed to build timeline")
		section = append(section, P(Class("text-slate-400 text-sm"), g.Text("Could not draw the timeline.")))
	default:
		section = append(section,
			Div(Class("relative h-96"), Canvas(ID("historyChart"))),
			chartScript("historyChart", cfg),
			A(Href(fmt.Sprintf("/country/%s/history.png?days=%d", url.PathEscape(c.Country), days)),
				Class("inline-block mt-4 text-sm text-slate-500 hover:text-cyan-400"), g.Text("Download as PNG")),
		)
	}
	content = append(content, Div(ID("history"), Class("p-6 bg-slate-800/20 border border-slate-700/50 rounded-xl"), g.Group(section)))

	return Main(Class("container mx-auto mt-10 mb-20 px-4"),
		Section(Class("bg-slate-900/30 border border-slate-800/50 rounded-2xl shadow-xl shadow-black/10 p-6 md:p-8"),
			g.Group(content),
		),
	)
}
