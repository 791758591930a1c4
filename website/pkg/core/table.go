package core

import (
	"fmt"
	"net/url"
	"sort"

	"github.com/sw33tLie/covidboard/pkg/format"
	"github.com/sw33tLie/covidboard/pkg/screen"
	"github.com/sw33tLie/covidboard/pkg/selection"
	"github.com/sw33tLie/covidboard/pkg/stats"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// htmxAttrs makes a control fetch href and swap the dashboard body with it.
func htmxAttrs(href string) []g.Node {
	return []g.Node{
		Href(href),
		g.Attr("hx-get", href),
		g.Attr("hx-target", "#dashboard-body"),
		g.Attr("hx-swap", "outerHTML"),
	}
}

// checkbox is a checkbox whose change applies the intent behind href.
func checkbox(href string, state selection.CheckState, label string) g.Node {
	return Input(
		Type("checkbox"),
		Class("h-4 w-4 rounded border-slate-600 bg-slate-800 text-cyan-500 cursor-pointer"),
		g.Attr("aria-label", label),
		g.Attr("hx-get", href),
		g.Attr("hx-target", "#dashboard-body"),
		g.Attr("hx-swap", "outerHTML"),
		g.Attr("data-state", state.String()),
		g.If(state == selection.Checked, Checked()),
		g.If(state == selection.Indeterminate, g.Attr("data-indeterminate", "true")),
	)
}

func countCell(n, today int64, todayColor string) g.Node {
	return Td(Class("px-4 py-3 text-sm text-right tabular-nums"),
		Div(Class("text-slate-200"), g.Text(format.FormatCount(n))),
		g.If(today > 0,
			Div(Class("text-xs "+todayColor), g.Text(format.FormatDelta(today))),
		),
	)
}

func countryRow(c stats.CountryRecord, v screen.View, i int) g.Node {
	rowBg := ""
	if i%2 == 1 {
		rowBg = " bg-slate-800/20"
	}
	if v.Selected.Has(c.Country) {
		rowBg = " bg-cyan-900/20"
	}

	state := selection.Unchecked
	if v.Selected.Has(c.Country) {
		state = selection.Checked
	}

	return Tr(Class("border-b border-slate-800/50 hover:bg-slate-800/50 transition-colors duration-150"+rowBg),
		g.Attr("data-country", c.Country),
		Td(Class("px-4 py-3 w-10"),
			checkbox(intentURL("/", v, screen.Intent{Kind: screen.IntentToggle, Value: c.Country}), state, "Select "+c.Country),
		),
		Td(Class("px-4 py-3 text-sm"),
			Div(Class("flex items-center gap-2"),
				g.If(c.CountryInfo.Flag != "",
					Img(Src(c.CountryInfo.Flag), Alt(c.Country), Class("w-6 h-4 object-cover rounded-sm"), g.Attr("loading", "lazy")),
				),
				A(Href("/country/"+url.PathEscape(c.Country)), Class("font-medium text-slate-100 hover:text-cyan-400"), g.Text(c.Country)),
			),
		),
		countCell(c.Cases, c.TodayCases, "text-red-400"),
		countCell(c.Active, 0, ""),
		countCell(c.Recovered, c.TodayRecovered, "text-emerald-400"),
		countCell(c.Deaths, c.TodayDeaths, "text-red-400"),
	)
}

func headerCell(label string, right bool, link g.Node) g.Node {
	align := "text-left"
	if right {
		align = "text-right"
	}
	if link == nil {
		return Th(Class("px-4 py-3 "+align+" text-xs font-semibold text-slate-500 uppercase tracking-wider"), g.Text(label))
	}
	return Th(Class("px-4 py-3 "+align+" text-xs font-semibold text-slate-500 uppercase tracking-wider"), link)
}

func countryTable(rows []stats.CountryRecord, v screen.View, header g.Node, emptyMsg string) g.Node {
	var body []g.Node
	if len(rows) == 0 {
		body = append(body, Tr(Td(ColSpan("6"), Class("text-center py-16 text-slate-500"), g.Text(emptyMsg))))
	}
	for i, c := range rows {
		body = append(body, countryRow(c, v, i))
	}

	return Div(Class("overflow-auto max-h-[600px] rounded-xl border border-slate-700/50"),
		Table(Class("min-w-full divide-y divide-slate-700"),
			THead(Class("bg-slate-800/80 sticky top-0"), header),
			TBody(Class("bg-slate-900/50 divide-y divide-slate-800"), g.Group(body)),
		),
	)
}

// TopCountriesTable lists the most affected countries. Rows can be selected
// but the table has no search or sort of its own.
func TopCountriesTable(st screen.State, v screen.View, top int) g.Node {
	header := Tr(
		headerCell("", false, nil),
		headerCell("Country", false, nil),
		headerCell("Cases", true, nil),
		headerCell("Active", true, nil),
		headerCell("Recovered", true, nil),
		headerCell("Deaths", true, nil),
	)
	return Div(ID("top-countries"), Class("p-6 bg-slate-800/20 border border-slate-700/50 rounded-xl"),
		H2(Class("text-lg font-semibold text-slate-200 mb-4"), g.Text("Most Affected Countries")),
		countryTable(st.Data.Top(top), v, header, "No countries to display."),
	)
}

// AllCountriesTable is the searchable, sortable, selectable table of every country.
func AllCountriesTable(st screen.State, v screen.View) g.Node {
	rows := v.Rows(st)

	sortIndicator := func(col string) string {
		if v.SortKey != col {
			return ""
		}
		asc := v.SortOrder == "asc" || (v.SortOrder == "" && col == selection.KeyCountry)
		if asc {
			return " ▲"
		}
		return " ▼"
	}
	sortLink := func(label, col string) g.Node {
		href := intentURL("/", v, screen.Intent{Kind: screen.IntentSort, Value: col})
		return A(append(htmxAttrs(href), Class("hover:text-slate-200 transition-colors"), g.Attr("data-sort", col), g.Text(label+sortIndicator(col)))...)
	}

	cb := selection.Checkbox(v.Selected.Len(), len(rows))
	header := Tr(
		Th(Class("px-4 py-3 w-10"),
			checkbox(intentURL("/", v, screen.Intent{Kind: screen.IntentSelectAll}), cb, "Select all"),
		),
		headerCell("Country", false, sortLink("Country", selection.KeyCountry)),
		headerCell("Cases", true, sortLink("Cases", selection.KeyCases)),
		headerCell("Active", true, sortLink("Active", selection.KeyActive)),
		headerCell("Recovered", true, sortLink("Recovered", selection.KeyRecovered)),
		headerCell("Deaths", true, sortLink("Deaths", selection.KeyDeaths)),
	)

	emptyMsg := "No countries to display."
	if v.Search != "" {
		emptyMsg = fmt.Sprintf("No countries found for '%s'.", v.Search)
	}

	summary := fmt.Sprintf("%d countries", len(rows))
	if n := v.Selected.Len(); n > 0 {
		summary = fmt.Sprintf("%d countries, %d selected", len(rows), n)
	}

	return Div(ID("all-countries"), Class("p-6 bg-slate-800/20 border border-slate-700/50 rounded-xl"),
		Div(Class("flex flex-col sm:flex-row justify-between items-center gap-4 mb-4"),
			H2(Class("text-lg font-semibold text-slate-200"), g.Text("All Countries")),
			Div(Class("flex items-center gap-3 text-sm text-slate-400"),
				Span(g.Text(summary)),
				g.If(v.Selected.Len() > 0,
					A(append(htmxAttrs(intentURL("/", v, screen.Intent{Kind: screen.IntentClear})),
						Class("px-3 py-1.5 bg-slate-700 text-slate-300 rounded-lg hover:bg-slate-600 hover:text-white"), g.Text("Clear selection"))...),
				),
			),
		),
		searchBar(v),
		countryTable(rows, v, header, emptyMsg),
	)
}

// searchBar submits a search intent carrying the rest of the view as hidden fields.
func searchBar(v screen.View) g.Node {
	hidden := []g.Node{
		Input(Type("hidden"), Name(paramIntent), Value(string(screen.IntentSearch))),
	}
	q := viewQuery(v)
	keys := make([]string, 0, len(q))
	for key := range q {
		if key != paramSearch {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		for _, val := range q[key] {
			hidden = append(hidden, Input(Type("hidden"), Name(key), Value(val)))
		}
	}

	return Form(Method("GET"), Action("/"),
		Class("flex flex-col sm:flex-row gap-2 items-stretch sm:items-center mb-4"),
		g.Attr("hx-get", "/"),
		g.Attr("hx-target", "#dashboard-body"),
		g.Attr("hx-swap", "outerHTML"),
		Input(
			Type("search"),
			Name(paramArg),
			Value(v.Search),
			Placeholder("Search countries..."),
			g.Attr("autocomplete", "off"),
			Class("flex-1 px-4 py-2.5 border border-slate-700 rounded-lg focus:ring-2 focus:ring-cyan-500 bg-slate-800/50 text-slate-200 placeholder-slate-500"),
		),
		g.Group(hidden),
		Button(Type("submit"), Class("px-6 py-2.5 bg-cyan-600 text-white font-medium rounded-lg hover:bg-cyan-500"), g.Text("Search")),
	)
}
