package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sw33tLie/covidboard/internal/utils"
	"github.com/sw33tLie/covidboard/pkg/stats"
)

func openTestDB(t *testing.T) (*DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.sqlite")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, path
}

func country(name string, cases, deaths, recovered int64) stats.CountryRecord {
	return stats.CountryRecord{
		Country:     name,
		Continent:   "Europe",
		CountryInfo: stats.CountryInfo{Iso2: name[:1], Flag: "https://disease.sh/assets/img/flags/" + name + ".png"},
		Counts:      stats.Counts{Cases: cases, Deaths: deaths, Recovered: recovered, TodayCases: 3},
	}
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	db, _ := openTestDB(t)
	ctx := context.Background()

	agg := &stats.AggregateData{
		Global:    stats.GlobalSummary{Counts: stats.Counts{Cases: 1600, Updated: 1641038400000}, AffectedCountries: 2},
		Countries: []stats.CountryRecord{country("Zed", 1000, 10, 900), country("Alpha", 600, 5, 500)},
		FetchedAt: time.Date(2022, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	id, err := db.SaveSnapshot(ctx, agg)
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	snap, err := db.LoadSnapshot(ctx, id)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if !snap.FetchedAt.Equal(agg.FetchedAt) || snap.Updated != 1641038400000 {
		t.Errorf("unexpected snapshot header %+v", snap.SnapshotInfo)
	}
	if snap.Data.Global.Cases != 1600 || snap.Data.Global.AffectedCountries != 2 {
		t.Errorf("global not restored: %+v", snap.Data.Global)
	}
	if len(snap.Data.Countries) != 2 || snap.Data.Countries[0].Country != "Zed" {
		t.Fatalf("country order not kept: %v", stats.Names(snap.Data.Countries))
	}
	if snap.Data.Countries[1].CountryInfo.Flag == "" || snap.Data.Countries[1].TodayCases != 3 {
		t.Errorf("record fields lost: %+v", snap.Data.Countries[1])
	}

	if _, err := db.LoadSnapshot(ctx, id+10); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadSnapshot(missing) = %v, want ErrNotFound", err)
	}
}

func TestListSnapshots(t *testing.T) {
	db, _ := openTestDB(t)
	ctx := context.Background()

	if _, err := db.LatestSnapshotID(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("LatestSnapshotID on empty db = %v", err)
	}

	for i := int64(1); i <= 3; i++ {
		agg := &stats.AggregateData{
			Global:    stats.GlobalSummary{Counts: stats.Counts{Cases: i * 100}},
			Countries: []stats.CountryRecord{country("A", i, 0, 0)},
		}
		if _, err := db.SaveSnapshot(ctx, agg); err != nil {
			t.Fatalf("SaveSnapshot: %v", err)
		}
	}

	list, err := db.ListSnapshots(ctx, 2)
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(list))
	}
	if list[0].ID <= list[1].ID || list[0].GlobalCases != 300 || list[0].CountryCount != 1 {
		t.Errorf("unexpected listing %+v", list)
	}

	latest, err := db.LatestSnapshotID(ctx)
	if err != nil || latest != list[0].ID {
		t.Errorf("LatestSnapshotID = %d, %v", latest, err)
	}
}

func TestDiffSnapshots(t *testing.T) {
	db, _ := openTestDB(t)
	ctx := context.Background()

	older, err := db.SaveSnapshot(ctx, &stats.AggregateData{Countries: []stats.CountryRecord{
		country("Italy", 100, 10, 50),
		country("Spain", 80, 8, 40),
		country("Gone", 5, 0, 0),
	}})
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	newer, err := db.SaveSnapshot(ctx, &stats.AggregateData{Countries: []stats.CountryRecord{
		country("Italy", 130, 12, 60),
		country("Spain", 80, 8, 40),
		country("Malta", 7, 0, 1),
	}})
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	deltas, err := db.DiffSnapshots(ctx, older, newer)
	if err != nil {
		t.Fatalf("DiffSnapshots: %v", err)
	}
	want := []CountryDelta{
		{Country: "Gone", Kind: DeltaRemoved, Cases: -5},
		{Country: "Italy", Kind: DeltaChanged, Cases: 30, Deaths: 2, Recovered: 10},
		{Country: "Malta", Kind: DeltaNew, Cases: 7, Recovered: 1},
		{Country: "Spain", Kind: DeltaUnchanged},
	}
	if len(deltas) != len(want) {
		t.Fatalf("got %d deltas, want %d: %+v", len(deltas), len(want), deltas)
	}
	for i := range want {
		if deltas[i] != want[i] {
			t.Errorf("delta %d = %+v, want %+v", i, deltas[i], want[i])
		}
	}

	if _, err := db.DiffSnapshots(ctx, older, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("diff against missing snapshot = %v", err)
	}
}

func TestRecorder(t *testing.T) {
	db, path := openTestDB(t)
	rec, err := NewRecorder(db, path)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	id, err := rec.Record(context.Background(), &stats.AggregateData{Countries: []stats.CountryRecord{country("A", 1, 0, 0)}})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if id == 0 {
		t.Errorf("Record returned id 0")
	}
	if _, err := db.SaveSnapshot(context.Background(), nil); err == nil {
		t.Errorf("SaveSnapshot(nil) should fail")
	}
}

func TestRecorderGivesUpWhenCancelled(t *testing.T) {
	db, path := openTestDB(t)
	rec, err := NewRecorder(db, path)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}

	other, err := utils.NewDBLock(path)
	if err != nil {
		t.Fatalf("NewDBLock: %v", err)
	}
	if err := other.Lock(context.Background()); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	defer other.Unlock() // nolint: errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	if _, err := rec.Record(ctx, &stats.AggregateData{}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Record while locked: err = %v", err)
	}
	if snaps, _ := db.ListSnapshots(context.Background(), 0); len(snaps) != 0 {
		t.Errorf("snapshot written without the lock")
	}
}

func TestTableCounts(t *testing.T) {
	db, _ := openTestDB(t)
	ctx := context.Background()

	snaps, rows, err := db.TableCounts(ctx)
	if err != nil || snaps != 0 || rows != 0 {
		t.Fatalf("empty db: %d %d %v", snaps, rows, err)
	}
	agg := &stats.AggregateData{Countries: []stats.CountryRecord{country("A", 1, 0, 0), country("B", 2, 0, 0)}}
	for i := 0; i < 2; i++ {
		if _, err := db.SaveSnapshot(ctx, agg); err != nil {
			t.Fatalf("SaveSnapshot: %v", err)
		}
	}
	snaps, rows, err = db.TableCounts(ctx)
	if err != nil || snaps != 2 || rows != 4 {
		t.Errorf("counts = %d snapshots, %d rows, err %v", snaps, rows, err)
	}
}
