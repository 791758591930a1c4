package core

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sw33tLie/covidboard/pkg/screen"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

func statusBadge(status screen.Status) g.Node {
	colors := "bg-zinc-700 text-zinc-400"
	switch status {
	case screen.Ready:
		colors = "bg-emerald-900/50 text-emerald-400 border border-emerald-800/50"
	case screen.Failed:
		colors = "bg-red-900/50 text-red-400 border border-red-800/50"
	case screen.Loading:
		colors = "bg-cyan-900/50 text-cyan-400 border border-cyan-800/50"
	}
	return Span(ID("load-status"), Class("inline-flex items-center px-2.5 py-0.5 rounded-full text-xs font-medium "+colors), g.Text(status.String()))
}

func statusContent(st screen.State, uptime time.Duration, refresh *refreshStatus) g.Node {
	var rows []g.Node
	for _, rec := range refresh.Records() {
		result := Span(Class("text-emerald-400"), g.Text("Success"))
		if !rec.Success {
			result = Span(Class("text-red-400"), g.Text("Error"))
		}
		rows = append(rows, Tr(Class("border-b border-zinc-800/50"),
			Td(Class("px-4 py-3 text-zinc-400 text-sm tabular-nums"), g.Text(rec.StartedAt.UTC().Format(time.RFC3339))),
			Td(Class("px-4 py-3 text-zinc-400 text-sm tabular-nums"), g.Text(rec.Duration.Round(time.Millisecond).String())),
			Td(Class("px-4 py-3 text-sm"), result),
		))
	}
	if len(rows) == 0 {
		rows = append(rows, Tr(Td(ColSpan("3"), Class("px-4 py-6 text-center text-zinc-500"), g.Text("No loads yet"))))
	}

	refreshText := "Disabled"
	if refresh.interval > 0 {
		refreshText = "Every " + refresh.interval.String()
		if refresh.Stopped() {
			refreshText += " (paused after a failure)"
		}
	}

	loadedAt := "-"
	if !st.LoadedAt.IsZero() {
		loadedAt = st.LoadedAt.UTC().Format(time.RFC3339)
	}

	return Main(Class("container mx-auto mt-10 mb-20 px-4 max-w-4xl"),
		H1(Class("text-2xl md:text-3xl font-bold text-white mb-6"), g.Text("Status")),

		Section(Class("bg-zinc-900/30 border border-zinc-800/50 rounded-2xl shadow-xl shadow-black/10 p-6 md:p-8 mb-6"),
			H2(Class("text-lg font-semibold text-white mb-4"), g.Text("Server")),
			Dl(Class("grid grid-cols-2 gap-2 text-sm text-zinc-400"),
				Dt(g.Text("Uptime")), Dd(g.Text(formatDuration(uptime))),
				Dt(g.Text("Load status")), Dd(statusBadge(st.Status)),
				Dt(g.Text("Data generation")), Dd(ID("generation"), g.Text(fmt.Sprintf("%d", st.Generation))),
				Dt(g.Text("Last successful load (UTC)")), Dd(g.Text(loadedAt)),
				Dt(g.Text("Background refresh")), Dd(g.Text(refreshText)),
			),
		),

		Section(Class("bg-zinc-900/30 border border-zinc-800/50 rounded-2xl shadow-xl shadow-black/10 p-6 md:p-8"),
			H2(Class("text-lg font-semibold text-white mb-4"), g.Text("Recent Loads")),
			Div(Class("overflow-x-auto"),
				Table(Class("w-full"),
					THead(
						Tr(Class("border-b border-zinc-700/50"),
							Th(Class("px-4 py-3 text-left text-xs font-semibold text-zinc-500 uppercase tracking-wider"), g.Text("Started (UTC)")),
							Th(Class("px-4 py-3 text-left text-xs font-semibold text-zinc-500 uppercase tracking-wider"), g.Text("Duration")),
							Th(Class("px-4 py-3 text-left text-xs font-semibold text-zinc-500 uppercase tracking-wider"), g.Text("Result")),
						),
					),
					TBody(rows...),
				),
			),
		),
	)
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

func (s *Site) statusHandler(w http.ResponseWriter, r *http.Request) {
	PageLayout(
		"Status - COVID-19 Dashboard",
		"Dashboard load status",
		Navbar("/status"),
		statusContent(s.controller.State(), s.controller.Uptime(), s.refresh),
		FooterEl(),
		"",
		true, // noindex
	).Render(w)
}
