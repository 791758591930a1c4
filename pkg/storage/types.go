package storage

import (
	"time"

	"github.com/sw33tLie/covidboard/pkg/stats"
)

// SnapshotInfo describes one stored fetch without its rows.
type SnapshotInfo struct {
	ID           int64
	FetchedAt    time.Time
	Updated      int64 // upstream timestamp, ms since epoch
	CountryCount int
	GlobalCases  int64
}

// Snapshot is a stored fetch with its full data.
type Snapshot struct {
	SnapshotInfo
	Data *stats.AggregateData
}

// Delta kinds.
const (
	DeltaNew       = "new"
	DeltaChanged   = "changed"
	DeltaUnchanged = "unchanged"
	DeltaRemoved   = "removed"
)

// CountryDelta is the difference of one country between two snapshots.
// Counts are newer minus older; for new countries the older values are zero.
type CountryDelta struct {
	Country   string
	Kind      string // new | changed | unchanged | removed
	Cases     int64
	Deaths    int64
	Recovered int64
}
