package antenna

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/netusage/internal/fetcher"
	"github.com/sells-group/netusage/internal/metrics"
)

// DiscoverOptions bounds a discovery scan.
type DiscoverOptions struct {
	// StartID overrides the first id scanned. Zero means max(stored id) + 1.
	StartID int64

	// Limit caps the number of ids scanned. Zero means no cap.
	Limit int
}

// DiscoverResult summarises a discovery scan.
type DiscoverResult struct {
	StartID   int64 `json:"start_id"`
	StopID    int64 `json:"stop_id"`
	Scanned   int   `json:"scanned"`
	Resolved  int   `json:"resolved"`
	NoCoords  int   `json:"no_coordinates"`
	Malformed int   `json:"malformed"`
}

// Discover scans antenna ids upwards from the highest stored id and stores
// every antenna with coordinates. The scan stops at the first id the remote
// source cannot serve, which assumes ids are allocated without gaps.
func (r *Resolver) Discover(ctx context.Context, opts DiscoverOptions) (*DiscoverResult, error) {
	start := opts.StartID
	if start <= 0 {
		maxID, err := r.store.MaxAntennaID(ctx)
		if err != nil {
			return nil, eris.Wrap(err, "antenna: discover")
		}
		start = maxID + 1
	}

	log := r.log.With(zap.Int64("start_id", start))
	log.Info("antenna discovery started")

	res := &DiscoverResult{StartID: start}
	for id := start; opts.Limit <= 0 || res.Scanned < opts.Limit; id++ {
		if err := ctx.Err(); err != nil {
			return res, eris.Wrap(err, "antenna: discover")
		}
		res.StopID = id
		res.Scanned++

		desc, err := r.lookup.Antenna(ctx, id)
		if err != nil {
			if errors.Is(err, fetcher.ErrMalformedPayload) {
				res.Malformed++
				continue
			}
			log.Info("antenna discovery reached end of source",
				zap.Int64("stop_id", id),
				zap.String("url", fetcher.URLOf(err)),
			)
			return res, nil
		}
		if !desc.HasCoordinates() {
			res.NoCoords++
			metrics.AntennaResolutions.WithLabelValues(NoCoordinates.String()).Inc()
			continue
		}

		outcome, err := r.persist(ctx, id, desc)
		metrics.AntennaResolutions.WithLabelValues(outcome.String()).Inc()
		if err != nil && !errors.Is(err, ErrIrreconcilable) {
			return res, err
		}
		if outcome.Resolved() {
			res.Resolved++
		}
	}

	log.Info("antenna discovery hit limit", zap.Int("limit", opts.Limit))
	return res, nil
}
