package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sw33tLie/covidboard/internal/utils"
	"github.com/sw33tLie/covidboard/pkg/charts"
	"github.com/sw33tLie/covidboard/pkg/screen"
	"github.com/sw33tLie/covidboard/pkg/selection"
)

// unavailableMessage is the only failure text clients see. Details are logged.
const unavailableMessage = "Failed to fetch COVID-19 data. Please try again later."

type statusResponse struct {
	Status     string    `json:"status"`
	Generation uint64    `json:"generation"`
	LoadedAt   time.Time `json:"loadedAt"`
	Error      string    `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		utils.Log.WithError(err).Debug("Failed to write response")
	}
}

func status(st screen.State) statusResponse {
	resp := statusResponse{Status: st.Status.String(), Generation: st.Generation, LoadedAt: st.LoadedAt}
	if st.Status == screen.Failed {
		resp.Error = unavailableMessage
	}
	return resp
}

// ready writes a 503 and returns false while there is no data to serve.
func (s *Server) ready(w http.ResponseWriter) (screen.State, bool) {
	st := s.Controller.State()
	if st.Data == nil {
		writeJSON(w, http.StatusServiceUnavailable, status(st))
		return st, false
	}
	return st, true
}

func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	st, ok := s.ready(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, st.Data)
}

func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	st, ok := s.ready(w)
	if !ok {
		return
	}
	q := r.URL.Query()
	sortBy := q.Get("sortBy")
	if !selection.ValidSortKey(sortBy) {
		http.Error(w, "unknown sortBy", http.StatusBadRequest)
		return
	}
	v := screen.View{Search: q.Get("search"), SortKey: sortBy, SortOrder: q.Get("sortOrder")}
	writeJSON(w, http.StatusOK, v.Rows(st))
}

func (s *Server) handleCountry(w http.ResponseWriter, r *http.Request) {
	st, ok := s.ready(w)
	if !ok {
		return
	}
	c, found := st.Data.Find(r.PathValue("name"))
	if !found {
		http.Error(w, "country not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	st, ok := s.ready(w)
	if !ok {
		return
	}
	q := r.URL.Query()

	var names []string
	for _, v := range q["selected"] {
		for _, n := range strings.Split(v, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
	}
	v := screen.View{Selected: selection.NewSet(names...).Prune(st.Data.Countries)}

	cfg, err := charts.Build(v.ChartCountries(st, s.Top), charts.ParseMode(q.Get("mode")))
	if err != nil {
		utils.Log.WithError(err).Error("Failed to build chart")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(cfg)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	// A client hanging up must not turn into a failed load.
	err := s.Controller.Reload(context.WithoutCancel(r.Context()), s.Fetcher)
	st := s.Controller.State()
	switch {
	case errors.Is(err, screen.ErrBusy):
		writeJSON(w, http.StatusConflict, status(st))
	case err != nil:
		writeJSON(w, http.StatusBadGateway, status(st))
	default:
		writeJSON(w, http.StatusOK, status(st))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, status(s.Controller.State()))
}
