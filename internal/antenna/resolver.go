// Package antenna resolves antenna ids referenced by usage reports into
// locally stored antennas, fetching unknown ones from the remote source.
package antenna

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/netusage/internal/fetcher"
	"github.com/sells-group/netusage/internal/metrics"
	"github.com/sells-group/netusage/internal/model"
	"github.com/sells-group/netusage/internal/source"
	"github.com/sells-group/netusage/internal/store"
)

// Store is the antenna persistence used by the resolver.
type Store interface {
	AntennaExists(ctx context.Context, id int64) (bool, error)
	InsertAntenna(ctx context.Context, a model.Antenna) error
	UpdateAntennaCoordinates(ctx context.Context, id int64, lat, lon float64) error
	MaxAntennaID(ctx context.Context) (int64, error)
}

// Lookup fetches antenna descriptors from the remote source.
type Lookup interface {
	Antenna(ctx context.Context, id int64) (*source.AntennaDescriptor, error)
}

// Resolver turns antenna ids into stored antennas. Known ids are remembered
// for ttl so repeated references within a run skip the store. Unresolved ids
// are never cached.
type Resolver struct {
	store  Store
	lookup Lookup
	known  *ttlcache.Cache[int64, struct{}]
	log    *zap.Logger
}

// NewResolver creates a Resolver. A non-positive ttl defaults to one hour.
func NewResolver(st Store, lookup Lookup, ttl time.Duration) *Resolver {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Resolver{
		store:  st,
		lookup: lookup,
		known: ttlcache.New(
			ttlcache.WithTTL[int64, struct{}](ttl),
			ttlcache.WithDisableTouchOnHit[int64, struct{}](),
		),
		log: zap.L().With(zap.String("component", "antenna.resolver")),
	}
}

// Resolve makes sure antenna id is stored. Remote failures are reported as
// the Unavailable outcome with a nil error. A non-nil error comes with the
// Irreconcilable outcome (wrapping ErrIrreconcilable) or with Failed when
// the store itself is unusable.
func (r *Resolver) Resolve(ctx context.Context, id int64) (Outcome, error) {
	outcome, err := r.resolve(ctx, id)
	metrics.AntennaResolutions.WithLabelValues(outcome.String()).Inc()
	return outcome, err
}

func (r *Resolver) resolve(ctx context.Context, id int64) (Outcome, error) {
	if r.known.Has(id) {
		return AlreadyPresent, nil
	}

	exists, err := r.store.AntennaExists(ctx, id)
	if err != nil {
		return Failed, eris.Wrapf(err, "antenna: check %d", id)
	}
	if exists {
		r.known.Set(id, struct{}{}, ttlcache.DefaultTTL)
		return AlreadyPresent, nil
	}

	desc, err := r.lookup.Antenna(ctx, id)
	if err != nil {
		r.log.Debug("antenna lookup failed",
			zap.Int64("antenna_id", id),
			zap.String("url", fetcher.URLOf(err)),
			zap.Error(err),
		)
		return Unavailable, nil
	}

	if !desc.HasCoordinates() {
		return NoCoordinates, nil
	}
	return r.persist(ctx, id, desc)
}

// persist stores a descriptor that has both coordinates.
func (r *Resolver) persist(ctx context.Context, id int64, desc *source.AntennaDescriptor) (Outcome, error) {
	a := model.Antenna{
		ID:        id,
		CID:       desc.CID,
		LAC:       desc.LAC,
		Lat:       *desc.Lat,
		Lon:       *desc.Lon,
		CarrierID: desc.CarrierID,
	}

	err := r.store.InsertAntenna(ctx, a)
	switch {
	case err == nil:
		r.known.Set(id, struct{}{}, ttlcache.DefaultTTL)
		r.log.Info("antenna resolved", zap.Int64("antenna_id", id), zap.Int64("carrier_id", a.CarrierID))
		return ResolvedNew, nil
	case errors.Is(err, store.ErrConflict):
		// Stored concurrently since the existence check: keep the row, refresh its position.
		if uerr := r.store.UpdateAntennaCoordinates(ctx, id, a.Lat, a.Lon); uerr != nil {
			return Irreconcilable, fmt.Errorf("%w: antenna %d: %v", ErrIrreconcilable, id, uerr)
		}
		r.known.Set(id, struct{}{}, ttlcache.DefaultTTL)
		return AlreadyPresent, nil
	case errors.Is(err, store.ErrUnresolved):
		// Owning carrier is not stored.
		return Unavailable, nil
	default:
		return Failed, eris.Wrapf(err, "antenna: insert %d", id)
	}
}
