package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sw33tLie/covidboard/internal/server"
	"github.com/sw33tLie/covidboard/internal/utils"
	"github.com/sw33tLie/covidboard/pkg/charts"
	"github.com/sw33tLie/covidboard/pkg/screen"
	"github.com/sw33tLie/covidboard/pkg/selection"
	"github.com/sw33tLie/covidboard/pkg/stats"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html" // Using . import for convenience with html tags
)

// ServerConfig holds configuration for the web server.
type ServerConfig struct {
	ListenAddr      string
	Domain          string
	RefreshInterval time.Duration // 0 disables background refresh
	Top             int
	Location        *time.Location
	Username        string
	Password        string
}

// Gateway is what the dashboard needs from the data source.
type Gateway interface {
	screen.Fetcher
	FetchCountry(ctx context.Context, name string) (stats.CountryRecord, error)
	FetchHistory(ctx context.Context, name string, days int) (stats.HistorySeries, error)
}

// Site renders the dashboard from a controller.
type Site struct {
	controller *screen.Controller
	gateway    Gateway
	api        *server.Server
	top        int
	loc        *time.Location
	domain     string
	refresh    *refreshStatus
	downloads  *downloadCache
}

func NewSite(c *screen.Controller, gw Gateway, cfg ServerConfig) *Site {
	top := cfg.Top
	if top <= 0 {
		top = server.DefaultTop
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	api := server.New(c, gw, cfg.Username, cfg.Password)
	api.Top = top

	s := &Site{
		controller: c,
		gateway:    gw,
		api:        api,
		top:        top,
		loc:        loc,
		domain:     cfg.Domain,
		refresh:    &refreshStatus{interval: cfg.RefreshInterval},
		downloads:  &downloadCache{},
	}
	c.Subscribe(s.downloads.observe)
	c.Subscribe(s.refresh.observe)
	return s
}

// Handler returns the site's routes, the JSON API included.
func (s *Site) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.homeHandler)
	mux.HandleFunc("GET /table", s.tableHandler)
	mux.HandleFunc("GET /chart", s.chartHandler)
	mux.HandleFunc("GET /chart.png", s.chartPNGHandler)
	mux.HandleFunc("GET /country/{name}", s.countryHandler)
	mux.HandleFunc("GET /country/{name}/history.png", s.historyPNGHandler)
	mux.HandleFunc("GET /status", s.statusHandler)
	mux.HandleFunc("GET /docs", docsHandler)
	mux.HandleFunc("GET /download/countries.json", s.downloadJSONHandler)
	mux.HandleFunc("GET /download/countries.csv", s.downloadCSVHandler)
	mux.HandleFunc("GET /robots.txt", s.robotsTxtHandler)
	mux.HandleFunc("GET /sitemap.xml", s.sitemapHandler)
	s.api.Routes(mux)
	return mux
}

// Run starts the initial load, the optional refresher and the HTTP server.
// It returns when ctx is cancelled or the server fails.
func Run(ctx context.Context, c *screen.Controller, gw Gateway, cfg ServerConfig) error {
	site := NewSite(c, gw, cfg)

	go func() {
		if err := c.Load(ctx, gw); err != nil {
			utils.Log.WithError(err).Warn("Initial load failed")
		}
		if cfg.RefreshInterval > 0 {
			site.startBackgroundRefresher(ctx, cfg.RefreshInterval)
		}
	}()

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: server.Middleware(site.Handler())}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx) // nolint: errcheck
	}()

	utils.Log.Infof("Starting dashboard on %s", cfg.ListenAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Page layout component
func PageLayout(title, description string, navbar g.Node, content g.Node, footer g.Node, canonicalURL string, shouldNoIndex bool) g.Node {
	return g.Group([]g.Node{
		g.Raw("<!DOCTYPE html>"),
		HTML(Lang("en"),
			Head(
				Meta(Charset("UTF-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1.0")),
				Meta(Name("description"), Content(description)),
				TitleEl(g.Text(title)),
				Link(Rel("preconnect"), Href("https://fonts.googleapis.com")),
				Link(Rel("stylesheet"), Href("https://fonts.googleapis.com/css2?family=Inter:wght@400;500;600;700;800&display=swap")),
				Script(Src("https://cdn.tailwindcss.com")),
				Script(Src("https://unpkg.com/htmx.org@2.0.4")),
				Script(Src("https://cdn.jsdelivr.net/npm/chart.js@4/dist/chart.umd.min.js")),
				Script(g.Raw(`tailwind.config={theme:{extend:{fontFamily:{sans:['Inter','ui-sans-serif','system-ui','sans-serif']}}}}`)),
				g.If(canonicalURL != "",
					Link(Rel("canonical"), Href(canonicalURL)),
				),
				g.If(shouldNoIndex,
					Meta(Name("robots"), Content("noindex, follow")),
				),
				StyleEl(g.Raw(`
					::selection { background: #0891b2; color: white; }
					::-webkit-scrollbar { width: 8px; height: 8px; }
					::-webkit-scrollbar-track { background: #1e293b; border-radius: 10px; }
					::-webkit-scrollbar-thumb { background: #475569; border-radius: 10px; }
					.hero-gradient { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); }
				`)),
			),
			Body(Class("bg-slate-950 font-sans antialiased leading-normal tracking-tight flex flex-col min-h-screen text-slate-300"),
				navbar,
				Div(Class("flex-grow"), content),
				footer,
				Script(g.Raw(`
					// Browsers have no indeterminate attribute, only the property.
					function syncIndeterminate(root) {
						root.querySelectorAll('input[data-indeterminate]').forEach(function (el) {
							el.indeterminate = el.dataset.indeterminate === 'true';
						});
					}
					syncIndeterminate(document);
					document.body.addEventListener('htmx:afterSwap', function (e) { syncIndeterminate(document); });

					const mobileMenuButton = document.getElementById('mobile-menu-button');
					const mobileMenu = document.getElementById('mobile-menu');
					if (mobileMenuButton && mobileMenu) {
						mobileMenuButton.addEventListener('click', () => {
							const isExpanded = mobileMenuButton.getAttribute('aria-expanded') === 'true';
							mobileMenuButton.setAttribute('aria-expanded', String(!isExpanded));
							mobileMenu.classList.toggle('hidden');
						});
					}
				`)),
			),
		),
	})
}

// Navbar component
func Navbar(currentPath string) g.Node {
	navLink := func(href, label string) g.Node {
		isActive := currentPath == href
		base := "block text-center md:inline-block transition-all duration-200 px-3 py-2 rounded-md text-sm font-medium "
		if isActive {
			base += "text-cyan-400 bg-cyan-400/10"
		} else {
			base += "text-slate-400 hover:text-white hover:bg-slate-800/50"
		}
		return A(Href(href), Class(base), g.Text(label))
	}

	return Nav(Class("bg-slate-900/80 backdrop-blur-xl text-white p-4 shadow-lg shadow-black/20 sticky top-0 z-50 border-b border-slate-700/50"),
		Div(Class("container mx-auto flex justify-between items-center"),
			A(Href("/"), Class("text-xl font-bold tracking-tight hover:text-cyan-400 transition-colors duration-200"), g.Text("COVID-19 Dashboard")),

			Div(Class("md:hidden"),
				Button(
					ID("mobile-menu-button"),
					Type("button"),
					Class("inline-flex items-center justify-center p-2 rounded-md text-slate-400 hover:text-white hover:bg-slate-700"),
					g.Attr("aria-controls", "mobile-menu"),
					g.Attr("aria-expanded", "false"),
					Span(Class("sr-only"), g.Text("Open main menu")),
					g.Raw(`<svg class="block h-6 w-6" xmlns="http://www.w3.org/2000/svg" fill="none" viewBox="0 0 24 24" stroke="currentColor" aria-hidden="true"><path stroke-linecap="round" stroke-linejoin="round" stroke-width="2" d="M4 6h16M4 12h16M4 18h16" /></svg>`),
				),
			),

			Div(
				ID("mobile-menu"),
				Class("hidden md:flex md:items-center md:space-x-1 w-full md:w-auto absolute md:relative top-16 left-0 md:top-auto md:left-auto bg-slate-900/95 md:bg-transparent py-3 md:py-0"),
				navLink("/", "Dashboard"),
				navLink("/status", "Status"),
				navLink("/docs", "Docs"),
				A(Href("https://disease.sh"), Target("_blank"), Rel("noopener noreferrer"),
					Class("block text-center md:inline-block text-slate-400 hover:text-white hover:bg-slate-800/50 transition-all duration-200 px-3 py-2 rounded-md text-sm font-medium"),
					g.Text("Data source"),
				),
			),
		),
	)
}

// FooterEl component (using El suffix to avoid conflict with html.Footer)
func FooterEl() g.Node {
	return Footer(Class("bg-slate-900/50 text-slate-500 mt-auto border-t border-slate-800/50"),
		Div(Class("container mx-auto px-4 py-8"),
			Div(Class("flex flex-col md:flex-row justify-between items-center gap-4"),
				P(Class("text-sm"), g.Textf("© %d covidboard. Data from disease.sh.", time.Now().Year())),
				Div(Class("flex items-center gap-6 text-sm"),
					A(Href("/download/countries.csv"), Class("text-slate-500 hover:text-slate-300 transition-colors duration-200"), g.Text("CSV")),
					A(Href("/download/countries.json"), Class("text-slate-500 hover:text-slate-300 transition-colors duration-200"), g.Text("JSON")),
				),
			),
		),
	)
}

// Query parameters carrying the view and the next intent.
const (
	paramSearch     = "q"
	paramSelected   = "sel"
	paramMode       = "mode"
	paramSortBy     = "sortBy"
	paramSortOrder  = "sortOrder"
	paramGeneration = "gen"
	paramIntent     = "do"
	paramArg        = "arg"
	paramOrder      = "order"
)

// viewFromQuery rebuilds the view encoded in q, applies the intent it carries
// if any and rebases it onto st.
func viewFromQuery(q url.Values, st screen.State) screen.View {
	gen, _ := strconv.ParseUint(q.Get(paramGeneration), 10, 64)
	v := screen.View{
		Search:     strings.TrimSpace(q.Get(paramSearch)),
		Selected:   selection.NewSet(q[paramSelected]...),
		Mode:       charts.ParseMode(q.Get(paramMode)),
		SortKey:    q.Get(paramSortBy),
		SortOrder:  strings.ToLower(q.Get(paramSortOrder)),
		Generation: gen,
	}
	if !selection.ValidSortKey(v.SortKey) {
		v.SortKey = ""
	}
	if v.SortOrder != "asc" && v.SortOrder != "desc" {
		v.SortOrder = ""
	}

	if kind := screen.IntentKind(q.Get(paramIntent)); kind != "" {
		return screen.Reduce(v, st, screen.Intent{
			Kind:  kind,
			Value: strings.TrimSpace(q.Get(paramArg)),
			Order: q.Get(paramOrder),
		})
	}
	return screen.Sync(v, st)
}

// viewQuery encodes v without any intent.
func viewQuery(v screen.View) url.Values {
	q := url.Values{}
	if v.Search != "" {
		q.Set(paramSearch, v.Search)
	}
	for _, n := range v.Selected.Names() {
		q.Add(paramSelected, n)
	}
	if v.Mode != "" && v.Mode != charts.Bar {
		q.Set(paramMode, string(v.Mode))
	}
	if v.SortKey != "" {
		q.Set(paramSortBy, v.SortKey)
	}
	if v.SortOrder != "" {
		q.Set(paramSortOrder, v.SortOrder)
	}
	q.Set(paramGeneration, strconv.FormatUint(v.Generation, 10))
	return q
}

func viewURL(path string, v screen.View) string {
	return path + "?" + viewQuery(v).Encode()
}

// intentURL is the link that applies in to v.
func intentURL(path string, v screen.View, in screen.Intent) string {
	q := viewQuery(v)
	q.Set(paramIntent, string(in.Kind))
	if in.Value != "" {
		q.Set(paramArg, in.Value)
	}
	if in.Order != "" {
		q.Set(paramOrder, in.Order)
	}
	return path + "?" + q.Encode()
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func render(w http.ResponseWriter, n g.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := n.Render(w); err != nil {
		utils.Log.WithError(err).Debug("Render failed")
	}
}

// HTTP handler for the dashboard
func (s *Site) homeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	st := s.controller.State()
	v := viewFromQuery(r.URL.Query(), st)

	if isHTMX(r) {
		if st.Data != nil {
			w.Header().Set("HX-Push-Url", viewURL("/", v))
		}
		render(w, DashboardBody(st, v, s.top))
		return
	}

	PageLayout(
		"COVID-19 Dashboard",
		"Global and per-country COVID-19 statistics: cases, active, recovered, deaths, critical and tests.",
		Navbar("/"),
		DashboardContent(st, v, s.top, s.loc),
		FooterEl(),
		"",
		false,
	).Render(w)
}

// tableHandler serves the all-countries table as a fragment.
func (s *Site) tableHandler(w http.ResponseWriter, r *http.Request) {
	st := s.controller.State()
	if st.Data == nil {
		render(w, statusNotice(st))
		return
	}
	v := viewFromQuery(r.URL.Query(), st)
	render(w, AllCountriesTable(st, v))
}

// chartHandler serves the chart panel as a fragment.
func (s *Site) chartHandler(w http.ResponseWriter, r *http.Request) {
	st := s.controller.State()
	if st.Data == nil {
		render(w, statusNotice(st))
		return
	}
	v := viewFromQuery(r.URL.Query(), st)
	render(w, ChartPanel(st, v, s.top))
}

// chartPNGHandler renders the cases of the charted countries as an image.
func (s *Site) chartPNGHandler(w http.ResponseWriter, r *http.Request) {
	st := s.controller.State()
	if st.Data == nil {
		http.Error(w, unavailableMessage, http.StatusServiceUnavailable)
		return
	}
	v := viewFromQuery(r.URL.Query(), st)
	writePNG(w, func(buf *bytes.Buffer) error {
		return charts.RenderCasesPNG(buf, v.ChartCountries(st, s.top))
	})
}

// writePNG buffers the image so a render error can still become a 500.
func writePNG(w http.ResponseWriter, draw func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := draw(&buf); err != nil {
		if errors.Is(err, charts.ErrNotEnoughData) {
			http.Error(w, "Not enough data to draw", http.StatusNotFound)
			return
		}
		utils.Log.WithError(err).Error("Failed to render PNG")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.Write(buf.Bytes())
}

// robotsTxtHandler handles /robots.txt
func (s *Site) robotsTxtHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "User-agent: *")
	fmt.Fprintln(w, "Allow: /")
	fmt.Fprintln(w, "Disallow: /api/")
	if s.domain != "" {
		fmt.Fprintf(w, "Sitemap: https://%s/sitemap.xml\n", s.domain)
	}
}
