package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sw33tLie/covidboard/pkg/stats"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a snapshot id does not exist.
var ErrNotFound = errors.New("snapshot not found")

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS snapshots (
  id                 INTEGER PRIMARY KEY,
  fetched_at         DATETIME NOT NULL,
  updated            INTEGER NOT NULL,
  affected_countries INTEGER NOT NULL,
  global_json        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_time ON snapshots(fetched_at);
CREATE TABLE IF NOT EXISTS snapshot_countries (
  snapshot_id INTEGER NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
  position    INTEGER NOT NULL,
  country     TEXT NOT NULL,
  cases       INTEGER NOT NULL,
  deaths      INTEGER NOT NULL,
  recovered   INTEGER NOT NULL,
  record_json TEXT NOT NULL,
  PRIMARY KEY(snapshot_id, country)
);
    `); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// SaveSnapshot stores agg and returns its id.
func (d *DB) SaveSnapshot(ctx context.Context, agg *stats.AggregateData) (id int64, err error) {
	if agg == nil {
		return 0, errors.New("nil aggregate")
	}
	globalJSON, err := json.Marshal(agg.Global)
	if err != nil {
		return 0, err
	}

	fetchedAt := agg.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `INSERT INTO snapshots(fetched_at, updated, affected_countries, global_json) VALUES(?,?,?,?)`,
		fetchedAt.UTC().Format(time.RFC3339Nano), agg.Global.Updated, agg.Global.AffectedCountries, string(globalJSON))
	if err != nil {
		return 0, err
	}
	if id, err = res.LastInsertId(); err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO snapshot_countries(snapshot_id, position, country, cases, deaths, recovered, record_json) VALUES(?,?,?,?,?,?,?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, c := range agg.Countries {
		var raw []byte
		if raw, err = json.Marshal(c); err != nil {
			return 0, err
		}
		if _, err = stmt.ExecContext(ctx, id, i, c.Country, c.Cases, c.Deaths, c.Recovered, string(raw)); err != nil {
			return 0, fmt.Errorf("insert %s: %w", c.Country, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListSnapshots returns the newest snapshots first. limit <= 0 means 50.
func (d *DB) ListSnapshots(ctx context.Context, limit int) ([]SnapshotInfo, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.sql.QueryContext(ctx, `
		SELECT s.id, s.fetched_at, s.updated, COUNT(c.country), COALESCE(json_extract(s.global_json, '$.cases'), 0)
		FROM snapshots s
		LEFT JOIN snapshot_countries c ON c.snapshot_id = s.id
		GROUP BY s.id
		ORDER BY s.id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var (
			info      SnapshotInfo
			fetchedAt string
		)
		if err := rows.Scan(&info.ID, &fetchedAt, &info.Updated, &info.CountryCount, &info.GlobalCases); err != nil {
			return nil, err
		}
		info.FetchedAt = parseTime(fetchedAt)
		out = append(out, info)
	}
	return out, rows.Err()
}

// TableCounts returns the number of stored snapshots and of country rows.
func (d *DB) TableCounts(ctx context.Context) (snapshots, countries int64, err error) {
	err = d.sql.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM snapshots), (SELECT COUNT(*) FROM snapshot_countries)`).
		Scan(&snapshots, &countries)
	return snapshots, countries, err
}

// LatestSnapshotID returns the id of the newest snapshot, or ErrNotFound.
func (d *DB) LatestSnapshotID(ctx context.Context) (int64, error) {
	var id int64
	err := d.sql.QueryRowContext(ctx, `SELECT id FROM snapshots ORDER BY id DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return id, err
}

// LoadSnapshot returns a stored snapshot with its countries in the original order.
func (d *DB) LoadSnapshot(ctx context.Context, id int64) (*Snapshot, error) {
	var (
		snap       Snapshot
		fetchedAt  string
		globalJSON string
	)
	err := d.sql.QueryRowContext(ctx, `SELECT id, fetched_at, updated, global_json FROM snapshots WHERE id = ?`, id).
		Scan(&snap.ID, &fetchedAt, &snap.Updated, &globalJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	snap.FetchedAt = parseTime(fetchedAt)

	agg := &stats.AggregateData{FetchedAt: snap.FetchedAt}
	if err := json.Unmarshal([]byte(globalJSON), &agg.Global); err != nil {
		return nil, fmt.Errorf("decode snapshot %d: %w", id, err)
	}
	snap.GlobalCases = agg.Global.Cases

	rows, err := d.sql.QueryContext(ctx, `SELECT record_json FROM snapshot_countries WHERE snapshot_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var c stats.CountryRecord
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, fmt.Errorf("decode snapshot %d: %w", id, err)
		}
		agg.Countries = append(agg.Countries, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	snap.CountryCount = len(agg.Countries)
	snap.Data = agg
	return &snap, nil
}

type totals struct {
	cases, deaths, recovered int64
}

func (d *DB) countryTotals(ctx context.Context, id int64) (map[string]totals, error) {
	var exists int
	if err := d.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots WHERE id = ?`, id).Scan(&exists); err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	rows, err := d.sql.QueryContext(ctx, `SELECT country, cases, deaths, recovered FROM snapshot_countries WHERE snapshot_id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]totals)
	for rows.Next() {
		var (
			name string
			t    totals
		)
		if err := rows.Scan(&name, &t.cases, &t.deaths, &t.recovered); err != nil {
			return nil, err
		}
		out[name] = t
	}
	return out, rows.Err()
}

// DiffSnapshots compares two snapshots country by country. Results are sorted
// by country name.
func (d *DB) DiffSnapshots(ctx context.Context, older, newer int64) ([]CountryDelta, error) {
	before, err := d.countryTotals(ctx, older)
	if err != nil {
		return nil, err
	}
	after, err := d.countryTotals(ctx, newer)
	if err != nil {
		return nil, err
	}

	deltas := make([]CountryDelta, 0, len(after))
	for name, a := range after {
		b, existed := before[name]
		delta := CountryDelta{
			Country:   name,
			Cases:     a.cases - b.cases,
			Deaths:    a.deaths - b.deaths,
			Recovered: a.recovered - b.recovered,
		}
		switch {
		case !existed:
			delta.Kind = DeltaNew
		case a != b:
			delta.Kind = DeltaChanged
		default:
			delta.Kind = DeltaUnchanged
		}
		deltas = append(deltas, delta)
	}
	for name, b := range before {
		if _, ok := after[name]; !ok {
			deltas = append(deltas, CountryDelta{
				Country:   name,
				Kind:      DeltaRemoved,
				Cases:     -b.cases,
				Deaths:    -b.deaths,
				Recovered: -b.recovered,
			})
		}
	}

	sort.Slice(deltas, func(i, j int) bool { return deltas[i].Country < deltas[j].Country })
	return deltas, nil
}

func parseTime(s string) time.Time {
	// Try RFC3339 then SQLite's CURRENT_TIMESTAMP format
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}
