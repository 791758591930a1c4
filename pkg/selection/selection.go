// Package selection implements the country table's search, selection and sort rules.
package selection

import (
	"sort"
	"strings"

	"github.com/sw33tLie/covidboard/internal/utils"
	"github.com/sw33tLie/covidboard/pkg/stats"
)

// Filter returns the countries whose name contains term, ignoring case.
// Order is preserved. An empty term returns every record.
func Filter(countries []stats.CountryRecord, term string) []stats.CountryRecord {
	if term == "" {
		return countries
	}
	out := make([]stats.CountryRecord, 0, len(countries))
	for _, c := range countries {
		if utils.ContainsFold(c.Country, term) {
			out = append(out, c)
		}
	}
	return out
}

// Set is a set of selected country names. The zero value is an empty set.
// Set is a value type: every mutation returns a new Set and never touches the receiver.
type Set struct {
	names map[string]struct{}
}

// NewSet builds a selection from names. Duplicates collapse.
func NewSet(names ...string) Set {
	s := Set{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		if n != "" {
			s.names[n] = struct{}{}
		}
	}
	return s
}

func (s Set) Len() int { return len(s.names) }

func (s Set) Has(name string) bool {
	_, ok := s.names[name]
	return ok
}

// Names returns the selected names sorted alphabetically.
func (s Set) Names() []string {
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (s Set) clone() Set {
	c := Set{names: make(map[string]struct{}, len(s.names)+1)}
	for n := range s.names {
		c.names[n] = struct{}{}
	}
	return c
}

// Toggle removes name if it is selected and adds it otherwise.
func (s Set) Toggle(name string) Set {
	c := s.clone()
	if _, ok := c.names[name]; ok {
		delete(c.names, name)
	} else {
		c.names[name] = struct{}{}
	}
	return c
}

// SelectAll clears the selection when its size equals len(filtered) and
// otherwise replaces it with exactly the filtered names. Only the counts are
// compared, not the members.
func (s Set) SelectAll(filtered []stats.CountryRecord) Set {
	if s.Len() == len(filtered) {
		return Set{}
	}
	return NewSet(stats.Names(filtered)...)
}

// Clear returns an empty selection.
func (s Set) Clear() Set { return Set{} }

// Prune drops every name that is not one of countries.
func (s Set) Prune(countries []stats.CountryRecord) Set {
	if s.Len() == 0 {
		return s
	}
	known := make(map[string]struct{}, len(countries))
	for _, c := range countries {
		known[c.Country] = struct{}{}
	}
	c := Set{names: make(map[string]struct{}, len(s.names))}
	for n := range s.names {
		if _, ok := known[n]; ok {
			c.names[n] = struct{}{}
		}
	}
	return c
}

// Pick returns the selected countries in data order.
func (s Set) Pick(countries []stats.CountryRecord) []stats.CountryRecord {
	var out []stats.CountryRecord
	for _, c := range countries {
		if s.Has(c.Country) {
			out = append(out, c)
		}
	}
	return out
}

// CheckState is the state of the table's select-all checkbox.
type CheckState int

const (
	Unchecked CheckState = iota
	Indeterminate
	Checked
)

func (c CheckState) String() string {
	switch c {
	case Indeterminate:
		return "indeterminate"
	case Checked:
		return "checked"
	default:
		return "unchecked"
	}
}

// Checkbox derives the select-all checkbox from the selection size and the
// number of rows currently shown.
func Checkbox(selected, filtered int) CheckState {
	switch {
	case selected > 0 && selected < filtered:
		return Indeterminate
	case filtered > 0 && selected == filtered:
		return Checked
	default:
		return Unchecked
	}
}

// Sort keys accepted by Sort.
const (
	KeyCountry    = "country"
	KeyCases      = "cases"
	KeyTodayCases = "todayCases"
	KeyActive     = "active"
	KeyRecovered  = "recovered"
	KeyDeaths     = "deaths"
)

var numericKeys = map[string]func(stats.CountryRecord) int64{
	KeyCases:      func(c stats.CountryRecord) int64 { return c.Cases },
	KeyTodayCases: func(c stats.CountryRecord) int64 { return c.TodayCases },
	KeyActive:     func(c stats.CountryRecord) int64 { return c.Active },
	KeyRecovered:  func(c stats.CountryRecord) int64 { return c.Recovered },
	KeyDeaths:     func(c stats.CountryRecord) int64 { return c.Deaths },
}

// ValidSortKey reports whether key is one Sort understands. The empty key is valid.
func ValidSortKey(key string) bool {
	if key == "" || key == KeyCountry {
		return true
	}
	_, ok := numericKeys[key]
	return ok
}

// Sort returns a sorted copy of countries. An empty or unknown key keeps the
// API order. order is "asc" or "desc"; anything else means desc for numbers
// and asc for names.
func Sort(countries []stats.CountryRecord, key, order string) []stats.CountryRecord {
	out := make([]stats.CountryRecord, len(countries))
	copy(out, countries)

	if key == KeyCountry {
		desc := order == "desc"
		sort.SliceStable(out, func(i, j int) bool {
			a, b := strings.ToLower(out[i].Country), strings.ToLower(out[j].Country)
			if desc {
				return a > b
			}
			return a < b
		})
		return out
	}

	get, ok := numericKeys[key]
	if !ok {
		return out
	}
	asc := order == "asc"
	sort.SliceStable(out, func(i, j int) bool {
		if asc {
			return get(out[i]) < get(out[j])
		}
		return get(out[i]) > get(out[j])
	})
	return out
}
