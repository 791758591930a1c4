package core

import (
	"net/http"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

const docsMarkdownContent = `
# Documentation

The dashboard shows global and per-country COVID-19 statistics from
[disease.sh](https://disease.sh). Data is fetched when the server starts and,
if enabled, on a fixed interval. A failed fetch stops the automatic refresh;
` + "`POST /api/refresh`" + ` tries again.

## Dashboard

*   **Stat cards**: total cases, active, recovered, deaths, critical and tests.
*   **Chart**: bar, line or doughnut view of the top 10 countries, or of the
    selected countries when the selection is not empty.
*   **Tables**: the most affected countries and a searchable, sortable list of
    every country. Tick rows to select them; the header checkbox selects every
    row currently shown, or clears the selection when as many countries are
    selected as are shown.

The selection is cleared every time new data is loaded.

## Fragments

| Path | Returns |
|------|---------|
| ` + "`/table`" + ` | the all-countries table |
| ` + "`/chart`" + ` | the chart panel |
| ` + "`/country/{name}?days=30`" + ` | a country page with its recent history |
| ` + "`/chart.png`" + ` | the charted countries' cases as a PNG image |
| ` + "`/country/{name}/history.png?days=30`" + ` | a country timeline as a PNG image |

Every fragment accepts the dashboard query: ` + "`q`" + ` (search), ` + "`sel`" + ` (selected
country, repeatable), ` + "`mode`" + ` (bar, line, doughnut), ` + "`sortBy`" + `, ` + "`sortOrder`" + ` and ` + "`gen`" + `
(the data generation the selection belongs to).

## API

| Method | Path | Description |
|--------|------|-------------|
| GET | ` + "`/api/aggregate`" + ` | global summary and every country |
| GET | ` + "`/api/countries?search=&sortBy=&sortOrder=`" + ` | filtered and sorted countries |
| GET | ` + "`/api/countries/{name}`" + ` | one country |
| GET | ` + "`/api/charts?mode=&selected=`" + ` | Chart.js configuration |
| POST | ` + "`/api/refresh`" + ` | fetch new data now |
| GET | ` + "`/health`" + ` | load status |

` + "`sortBy`" + ` is one of country, cases, todayCases, active, recovered, deaths.
When basic auth is configured it applies to every ` + "`/api`" + ` route.

Exports of the current data are available at
[/download/countries.csv](/download/countries.csv) and
[/download/countries.json](/download/countries.json).
`

// DocsContent component for the /docs page
func DocsContent() g.Node {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	p := parser.NewWithExtensions(extensions)

	htmlOutput := markdown.ToHTML([]byte(docsMarkdownContent), p, nil)

	return Main(Class("container mx-auto mt-8 mb-16 p-4"),
		Section(Class("bg-slate-900/50 border border-slate-800 rounded-lg shadow-xl p-6 md:p-8 lg:p-12 prose lg:prose-xl prose-invert max-w-4xl mx-auto"),
			g.Raw(string(htmlOutput)),
		),
	)
}

// HTTP handler for the /docs page
func docsHandler(w http.ResponseWriter, r *http.Request) {
	PageLayout(
		"Documentation - COVID-19 Dashboard",
		"How to use the COVID-19 dashboard and its API",
		Navbar("/docs"),
		DocsContent(),
		FooterEl(),
		"",
		false,
	).Render(w)
}
