package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/sw33tLie/covidboard/internal/utils"
	"github.com/sw33tLie/covidboard/pkg/charts"
	"github.com/sw33tLie/covidboard/pkg/format"
	"github.com/sw33tLie/covidboard/pkg/screen"
	"github.com/sw33tLie/covidboard/pkg/stats"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// unavailableMessage is the one failure text the dashboard shows.
const unavailableMessage = "Failed to fetch COVID-19 data. Please try again later."

// statsCard renders a summary stat card.
func statsCard(label, value, subtitle, valueColor string) g.Node {
	return Div(Class("bg-slate-800/30 border border-slate-700/50 rounded-xl p-4 text-center"),
		Div(Class("text-xs uppercase tracking-wider text-slate-500 mb-1 font-medium"), g.Text(label)),
		Div(Class("text-2xl font-extrabold tabular-nums "+valueColor), g.Text(value)),
		g.If(subtitle != "",
			Div(Class("text-xs text-slate-400 mt-1"), g.Text(subtitle)),
		),
	)
}

func todaySubtitle(n int64) string {
	if d := format.FormatDelta(n); d != "" {
		return d + " today"
	}
	return ""
}

// GlobalStats renders the six summary cards.
func GlobalStats(gs stats.GlobalSummary) g.Node {
	return Div(ID("global-stats"), Class("grid grid-cols-2 md:grid-cols-3 xl:grid-cols-6 gap-4 mb-10"),
		statsCard("Total Cases", format.FormatCount(gs.Cases), todaySubtitle(gs.TodayCases), "text-blue-400"),
		statsCard("Active", format.FormatCount(gs.Active), format.FormatShare(gs.Active, gs.Cases)+" of cases", "text-orange-400"),
		statsCard("Recovered", format.FormatCount(gs.Recovered), todaySubtitle(gs.TodayRecovered), "text-emerald-400"),
		statsCard("Deaths", format.FormatCount(gs.Deaths), todaySubtitle(gs.TodayDeaths), "text-red-400"),
		statsCard("Critical", format.FormatCount(gs.Critical), format.FormatShare(gs.Critical, gs.Cases)+" of cases", "text-amber-400"),
		statsCard("Tests", format.FormatCount(gs.Tests), format.FormatPerMillion(gs.TestsPerOneMillion)+" per million", "text-cyan-400"),
	)
}

// chartScript draws cfg on the canvas with the given id, replacing any
// chart already drawn there.
func chartScript(canvasID string, cfg []byte) g.Node {
	js := strings.ReplaceAll(string(cfg), "</", `<\/`)
	return Script(g.Raw(`
		(function () {
			var el = document.getElementById('` + canvasID + `');
			if (!el || typeof Chart === 'undefined') { return; }
			var prev = Chart.getChart(el);
			if (prev) { prev.destroy(); }
			new Chart(el, ` + js + `);
		})();
	`))
}

// ChartPanel renders the mode toggle and the chart for the view.
func ChartPanel(st screen.State, v screen.View, top int) g.Node {
	countries := v.ChartCountries(st, top)

	var toggles []g.Node
	for _, m := range charts.Modes {
		classes := "px-4 py-2 text-sm font-medium rounded-lg transition-all duration-200 "
		if v.Mode == m {
			classes += "bg-cyan-500 text-white shadow-md shadow-cyan-500/20"
		} else {
			classes += "bg-slate-800/50 text-slate-400 hover:bg-slate-700 hover:text-slate-200 border border-slate-700/50"
		}
		toggles = append(toggles, A(
			append(htmxAttrs(intentURL("/", v, screen.Intent{Kind: screen.IntentMode, Value: string(m)})),
				Class(classes), g.Attr("data-mode", string(m)), g.Text(m.Title()))...,
		))
	}

	caption := fmt.Sprintf("Top %d countries by cases", top)
	if v.Selected.Len() > 0 {
		caption = "Selected countries"
	}

	content := []g.Node{
		Div(Class("flex flex-col sm:flex-row justify-between items-center gap-4 mb-6"),
			H2(Class("text-lg font-semibold text-slate-200"), g.Text("COVID-19 Trends")),
			Div(Class("flex flex-wrap gap-2"), g.Group(toggles)),
		),
		P(Class("text-sm text-slate-400 mb-4"), g.Text(caption)),
	}

	cfg, err := charts.Build(countries, v.Mode)
	if err != nil {
		utils.Log.WithError(err).Error("Failed to build chart")
		content = append(content, P(Class("text-slate-400"), g.Text("Could not draw the chart.")))
	} else {
		content = append(content,
			Div(Class("relative h-96"), Canvas(ID("covidChart"))),
			chartScript("covidChart", cfg),
			A(Href(viewURL("/chart.png", v)), Class("inline-block mt-4 text-sm text-slate-500 hover:text-cyan-400"), g.Text("Download cases as PNG")),
		)
	}

	return Div(ID("chart-panel"), Class("p-6 bg-slate-800/20 border border-slate-700/50 rounded-xl"), g.Group(content))
}

// DashboardBody is the part of the dashboard that follows the view: the
// chart and both tables. htmx swaps it as a whole.
func DashboardBody(st screen.State, v screen.View, top int) g.Node {
	if st.Data == nil {
		return statusNotice(st)
	}
	return Div(ID("dashboard-body"), Class("space-y-8"),
		GlobalStats(st.Data.Global),
		Div(Class("grid grid-cols-1 lg:grid-cols-3 gap-8"),
			Div(Class("lg:col-span-2"), ChartPanel(st, v, top)),
			TopCountriesTable(st, v, top),
		),
		AllCountriesTable(st, v),
	)
}

// statusNotice is shown instead of the dashboard while there is no data:
// a self-refreshing placeholder while loading, a static message after a failure.
func statusNotice(st screen.State) g.Node {
	if st.Status == screen.Failed {
		return Div(ID("dashboard-body"), Class("bg-red-900/20 border border-red-800/50 text-red-400 px-4 py-3 rounded-lg"),
			g.Text(unavailableMessage),
		)
	}
	return Div(ID("dashboard-body"), Class("text-center py-24 text-slate-400"),
		g.Attr("hx-get", "/"),
		g.Attr("hx-trigger", "every 2s"),
		g.Attr("hx-swap", "outerHTML"),
		g.Text("Loading COVID-19 data..."),
	)
}

// DashboardContent renders the full dashboard page content.
func DashboardContent(st screen.State, v screen.View, top int, loc *time.Location) g.Node {
	header := []g.Node{
		H1(Class("text-2xl md:text-3xl font-bold text-white text-center mb-2"), g.Text("Global COVID-19 Statistics")),
	}
	if st.Data != nil {
		header = append(header,
			P(Class("text-center text-slate-300 mb-8"),
				g.Text("Last updated: "+format.FormatTimestampIn(st.Data.Global.Updated, loc)),
			),
		)
	}

	return Main(Class("container mx-auto mt-10 mb-20 px-4"),
		Section(Class("hero-gradient rounded-2xl p-6 md:p-8 mb-8"), g.Group(header)),
		// A failed refresh keeps the previous data on screen but says so.
		g.If(st.Status == screen.Failed && st.Data != nil,
			Div(Class("bg-red-900/20 border border-red-800/50 text-red-400 px-4 py-3 rounded-lg mb-6"), g.Text(unavailableMessage)),
		),
		DashboardBody(st, v, top),
	)
}
