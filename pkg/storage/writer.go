package storage

import (
	"context"
	"fmt"

	"github.com/sw33tLie/covidboard/internal/utils"
	"github.com/sw33tLie/covidboard/pkg/stats"
)

// Recorder saves snapshots while holding the database file lock, so several
// processes can write to the same file in turn.
type Recorder struct {
	db   *DB
	lock *utils.DBLock
}

func NewRecorder(db *DB, dbPath string) (*Recorder, error) {
	lock, err := utils.NewDBLock(dbPath)
	if err != nil {
		return nil, err
	}
	return &Recorder{db: db, lock: lock}, nil
}

// Record stores agg under the file lock.
func (r *Recorder) Record(ctx context.Context, agg *stats.AggregateData) (int64, error) {
	if err := r.lock.Lock(ctx); err != nil {
		return 0, err
	}
	defer r.lock.Unlock() // nolint: errcheck

	id, err := r.db.SaveSnapshot(ctx, agg)
	if err != nil {
		return 0, fmt.Errorf("save snapshot: %w", err)
	}
	utils.Log.WithField("id", id).Debug("Snapshot saved")
	return id, nil
}
