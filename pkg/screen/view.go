package screen

import (
	"github.com/sw33tLie/covidboard/pkg/charts"
	"github.com/sw33tLie/covidboard/pkg/selection"
	"github.com/sw33tLie/covidboard/pkg/stats"
)

// View is the state of one dashboard screen. It is a value: Reduce never
// modifies the view it is given.
type View struct {
	Search     string
	Selected   selection.Set
	Mode       charts.Mode
	SortKey    string
	SortOrder  string
	Generation uint64 // data generation the selection was made against
}

// IntentKind names a user action.
type IntentKind string

const (
	IntentToggle    IntentKind = "toggle"
	IntentSelectAll IntentKind = "selectAll"
	IntentClear     IntentKind = "clear"
	IntentSearch    IntentKind = "search"
	IntentMode      IntentKind = "mode"
	IntentSort      IntentKind = "sort"
)

// Intent is one user action. Value carries the country name, the search
// term, the mode or the sort key depending on Kind. Order is only used by sorts.
type Intent struct {
	Kind  IntentKind
	Value string
	Order string
}

// Sync rebases v onto state. A view made against another data generation
// loses its selection; otherwise names absent from the data are dropped.
func Sync(v View, state State) View {
	if v.Mode == "" {
		v.Mode = charts.Bar
	}
	if v.Generation != state.Generation {
		v.Selected = selection.Set{}
		v.Generation = state.Generation
		return v
	}
	if state.Data != nil {
		v.Selected = v.Selected.Prune(state.Data.Countries)
	}
	return v
}

// Reduce applies intent to v against the current state.
func Reduce(v View, state State, intent Intent) View {
	v = Sync(v, state)

	var countries []stats.CountryRecord
	if state.Data != nil {
		countries = state.Data.Countries
	}

	switch intent.Kind {
	case IntentToggle:
		if _, ok := state.Data.Find(intent.Value); ok {
			v.Selected = v.Selected.Toggle(intent.Value)
		}
	case IntentSelectAll:
		v.Selected = v.Selected.SelectAll(selection.Filter(countries, v.Search))
	case IntentClear:
		v.Selected = v.Selected.Clear()
	case IntentSearch:
		v.Search = intent.Value
	case IntentMode:
		v.Mode = charts.ParseMode(intent.Value)
	case IntentSort:
		if !selection.ValidSortKey(intent.Value) {
			break
		}
		if intent.Order == "" && v.SortKey == intent.Value && intent.Value != "" {
			// Repeating a sort flips its direction.
			v.SortOrder = flip(v.SortOrder, intent.Value)
		} else {
			v.SortOrder = intent.Order
		}
		v.SortKey = intent.Value
	}
	return v
}

func flip(order, key string) string {
	switch order {
	case "asc":
		return "desc"
	case "desc":
		return "asc"
	}
	if key == selection.KeyCountry {
		return "desc"
	}
	return "asc"
}

// Rows returns the table rows the view shows: filtered then sorted.
func (v View) Rows(state State) []stats.CountryRecord {
	if state.Data == nil {
		return nil
	}
	return selection.Sort(selection.Filter(state.Data.Countries, v.Search), v.SortKey, v.SortOrder)
}

// ChartCountries returns the countries the chart draws: the selection in data
// order when it is non-empty, the top n otherwise.
func (v View) ChartCountries(state State, n int) []stats.CountryRecord {
	if state.Data == nil {
		return nil
	}
	if v.Selected.Len() > 0 {
		return v.Selected.Pick(state.Data.Countries)
	}
	return state.Data.Top(n)
}
