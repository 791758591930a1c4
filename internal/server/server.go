// Package server exposes the dashboard data as a JSON API.
package server

import (
	"net/http"

	"github.com/sw33tLie/covidboard/internal/utils"
	"github.com/sw33tLie/covidboard/pkg/screen"
)

// DefaultTop is the number of countries charted when nothing is selected.
const DefaultTop = 10

type Server struct {
	Controller *screen.Controller
	Fetcher    screen.Fetcher
	Top        int
	Username   string
	Password   string
}

func New(c *screen.Controller, f screen.Fetcher, user, pass string) *Server {
	return &Server{
		Controller: c,
		Fetcher:    f,
		Top:        DefaultTop,
		Username:   user,
		Password:   pass,
	}
}

// Routes registers the API on mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/aggregate", s.basicAuth(s.handleAggregate))
	mux.HandleFunc("GET /api/countries", s.basicAuth(s.handleCountries))
	mux.HandleFunc("GET /api/countries/{name}", s.basicAuth(s.handleCountry))
	mux.HandleFunc("GET /api/charts", s.basicAuth(s.handleCharts))
	mux.HandleFunc("POST /api/refresh", s.basicAuth(s.handleRefresh))
	mux.HandleFunc("GET /health", s.handleHealth)
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Routes(mux)
	return Middleware(mux)
}

func (s *Server) Start(addr string) error {
	utils.Log.Infof("Starting API server on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Username == "" && s.Password == "" {
			next(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || pass != s.Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
