package selection

import (
	"reflect"
	"strings"
	"testing"

	"github.com/sw33tLie/covidboard/pkg/stats"
)

func rec(name string, cases, today, deaths int64) stats.CountryRecord {
	return stats.CountryRecord{
		Country: name,
		Counts:  stats.Counts{Cases: cases, TodayCases: today, Deaths: deaths},
	}
}

func fixture() []stats.CountryRecord {
	return []stats.CountryRecord{
		rec("USA", 1000, 5, 40),
		rec("India", 900, 9, 30),
		rec("Brazil", 800, 0, 35),
		rec("Russia", 300, 2, 10),
		rec("Belarus", 100, 1, 1),
	}
}

func names(cs []stats.CountryRecord) string {
	return strings.Join(stats.Names(cs), ",")
}

func TestFilter(t *testing.T) {
	all := fixture()
	tests := []struct {
		term string
		want string
	}{
		{"", "USA,India,Brazil,Russia,Belarus"},
		{"us", "USA,Russia,Belarus"},
		{"US", "USA,Russia,Belarus"},
		{"bra", "Brazil"},
		{"zzz", ""},
	}
	for _, tt := range tests {
		got := Filter(all, tt.term)
		if names(got) != tt.want {
			t.Errorf("Filter(%q) = %s, want %s", tt.term, names(got), tt.want)
		}
		if again := Filter(got, tt.term); names(again) != names(got) {
			t.Errorf("Filter(%q) not idempotent: %s then %s", tt.term, names(got), names(again))
		}
	}
}

func TestToggleInvolution(t *testing.T) {
	s := NewSet("USA", "India")
	for _, n := range []string{"USA", "Brazil"} {
		twice := s.Toggle(n).Toggle(n)
		if !reflect.DeepEqual(twice.Names(), s.Names()) {
			t.Errorf("toggle(%s) twice = %v, want %v", n, twice.Names(), s.Names())
		}
	}

	once := s.Toggle("USA")
	if once.Has("USA") || !s.Has("USA") {
		t.Errorf("Toggle mutated the receiver or failed to remove")
	}
}

func TestSelectAll(t *testing.T) {
	all := fixture()

	var s Set
	s = s.SelectAll(all)
	if s.Len() != len(all) {
		t.Fatalf("SelectAll from empty selected %d, want %d", s.Len(), len(all))
	}
	if s = s.SelectAll(all); s.Len() != 0 {
		t.Errorf("second SelectAll should clear, got %v", s.Names())
	}

	partial := NewSet("USA")
	if got := partial.SelectAll(all); got.Len() != len(all) {
		t.Errorf("SelectAll from partial selected %d", got.Len())
	}

	// Same size but different members still clears.
	filtered := Filter(all, "bra")
	other := NewSet("USA")
	if got := other.SelectAll(filtered); got.Len() != 0 {
		t.Errorf("count-equal SelectAll should clear, got %v", got.Names())
	}
}

func TestCheckbox(t *testing.T) {
	tests := []struct {
		selected, filtered int
		want               CheckState
	}{
		{3, 5, Indeterminate},
		{5, 5, Checked},
		{0, 5, Unchecked},
		{0, 0, Unchecked},
		{2, 1, Unchecked},
	}
	for _, tt := range tests {
		if got := Checkbox(tt.selected, tt.filtered); got != tt.want {
			t.Errorf("Checkbox(%d, %d) = %s, want %s", tt.selected, tt.filtered, got, tt.want)
		}
	}
}

func TestPruneAndPick(t *testing.T) {
	all := fixture()
	s := NewSet("Brazil", "Atlantis", "USA")

	pruned := s.Prune(all)
	if !reflect.DeepEqual(pruned.Names(), []string{"Brazil", "USA"}) {
		t.Errorf("Prune = %v", pruned.Names())
	}
	if got := names(pruned.Pick(all)); got != "USA,Brazil" {
		t.Errorf("Pick = %s, want data order USA,Brazil", got)
	}
	if s.Clear().Len() != 0 {
		t.Errorf("Clear left names behind")
	}
}

func TestSort(t *testing.T) {
	all := fixture()
	tests := []struct {
		key, order string
		want       string
	}{
		{"", "", "USA,India,Brazil,Russia,Belarus"},
		{"bogus", "asc", "USA,India,Brazil,Russia,Belarus"},
		{KeyCases, "asc", "Belarus,Russia,Brazil,India,USA"},
		{KeyCases, "desc", "USA,India,Brazil,Russia,Belarus"},
		{KeyTodayCases, "", "India,USA,Russia,Belarus,Brazil"},
		{KeyDeaths, "desc", "USA,Brazil,India,Russia,Belarus"},
		{KeyCountry, "", "Belarus,Brazil,India,Russia,USA"},
		{KeyCountry, "desc", "USA,Russia,India,Brazil,Belarus"},
	}
	for _, tt := range tests {
		if got := names(Sort(all, tt.key, tt.order)); got != tt.want {
			t.Errorf("Sort(%q, %q) = %s, want %s", tt.key, tt.order, got, tt.want)
		}
	}
	if names(all) != "USA,India,Brazil,Russia,Belarus" {
		t.Errorf("Sort modified its input")
	}
}
