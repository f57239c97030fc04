// Package carrier holds the per-run snapshot of tracked carriers.
package carrier

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/netusage/internal/model"
)

// Source lists the carrier ids known to the store.
type Source interface {
	CarrierIDs(ctx context.Context) ([]int64, error)
}

// Allowlist is an immutable set of carrier ids.
type Allowlist struct {
	ids map[int64]struct{}
}

// NewAllowlist builds an allowlist from ids.
func NewAllowlist(ids ...int64) *Allowlist {
	a := &Allowlist{ids: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		a.ids[id] = struct{}{}
	}
	return a
}

// LoadAllowlist reads the current carrier set from src.
func LoadAllowlist(ctx context.Context, src Source) (*Allowlist, error) {
	ids, err := src.CarrierIDs(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "carrier: load allowlist")
	}
	a := NewAllowlist(ids...)
	zap.L().Debug("carrier allowlist loaded", zap.Int("carriers", a.Len()))
	return a, nil
}

// Contains reports whether id is a tracked carrier.
func (a *Allowlist) Contains(id int64) bool {
	_, ok := a.ids[id]
	return ok
}

// Admits reports whether records for id may be stored: tracked carriers and
// the all-carriers sentinel.
func (a *Allowlist) Admits(id int64) bool {
	return id == model.AllCarriers || a.Contains(id)
}

// Len returns the number of tracked carriers.
func (a *Allowlist) Len() int {
	return len(a.ids)
}
