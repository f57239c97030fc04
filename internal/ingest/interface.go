// Package ingest imports the monthly usage reports of one period into the store.
package ingest

import (
	"context"

	"github.com/sells-group/netusage/internal/antenna"
	"github.com/sells-group/netusage/internal/model"
)

// Importer names, in run order.
const (
	NameTotals   = "totals"
	NameRankings = "rankings"
	NameSignals  = "signals"
	NameCounts   = "counts"
)

// ImporterNames lists the importer names in run order.
func ImporterNames() []string {
	return []string{NameTotals, NameRankings, NameSignals, NameCounts}
}

// Result tallies the records of one importer execution. Bulk upserts count
// every written row as inserted.
type Result struct {
	Inserted int64 `json:"inserted"`
	Updated  int64 `json:"updated"`
	Skipped  int64 `json:"skipped"`
}

// Importer ingests one report kind for a period. On failure it returns the
// partial Result alongside the error; records committed before the failure
// stay committed.
type Importer interface {
	Name() string
	Import(ctx context.Context, p model.Period) (*Result, error)
}

// Store is the persistence used by the importers.
type Store interface {
	CarrierIDs(ctx context.Context) ([]int64, error)
	UpsertReport(ctx context.Context, r model.Report) (bool, error)
	UpsertRankings(ctx context.Context, rankings []model.Ranking) (int64, error)
	InsertGsmSignal(ctx context.Context, g model.GsmSignal) error
	UpdateGsmSignal(ctx context.Context, g model.GsmSignal) error
	InsertGsmCount(ctx context.Context, g model.GsmCount) error
	UpdateGsmCount(ctx context.Context, g model.GsmCount) error
}

// AntennaResolver makes sure a referenced antenna is stored.
type AntennaResolver interface {
	Resolve(ctx context.Context, id int64) (antenna.Outcome, error)
}
