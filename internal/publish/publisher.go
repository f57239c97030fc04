// Package publish refreshes the aggregate views and writes the per-carrier
// antenna traffic snapshots after an import run.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/netusage/internal/metrics"
	"github.com/sells-group/netusage/internal/model"
)

// Store is the read side used by the publisher.
type Store interface {
	Carriers(ctx context.Context) ([]model.Carrier, error)
	RefreshMaterializedView(ctx context.Context, name string) error
	AntennaTraffic(ctx context.Context, carrierID int64) ([]model.AntennaTraffic, error)
}

// Options configures a Publisher.
type Options struct {
	Views       []string // materialized views to refresh, in order
	Concurrency int      // parallel snapshot builds; zero means 4
}

// Summary tallies one Publish call.
type Summary struct {
	ViewsRefreshed   int `json:"views_refreshed"`
	ViewsFailed      int `json:"views_failed"`
	SnapshotsWritten int `json:"snapshots_written"`
	SnapshotsFailed  int `json:"snapshots_failed"`
}

// Publisher runs the post-import side effects. Every failure is logged and
// counted; none is returned.
type Publisher struct {
	store Store
	sinks []Sink
	opts  Options
}

// NewPublisher creates a Publisher writing snapshots to every sink.
func NewPublisher(st Store, sinks []Sink, opts Options) *Publisher {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	return &Publisher{store: st, sinks: sinks, opts: opts}
}

// Publish refreshes the views, then regenerates every carrier snapshot.
func (p *Publisher) Publish(ctx context.Context) *Summary {
	sum := &Summary{}
	sum.ViewsRefreshed, sum.ViewsFailed = p.RefreshViews(ctx)
	sum.SnapshotsWritten, sum.SnapshotsFailed = p.WriteSnapshots(ctx)
	return sum
}

// RefreshViews recomputes each configured view, continuing past failures.
func (p *Publisher) RefreshViews(ctx context.Context) (refreshed, failed int) {
	log := zap.L().With(zap.String("component", "publish.views"))
	for _, view := range p.opts.Views {
		if err := p.store.RefreshMaterializedView(ctx, view); err != nil {
			log.Error("view refresh failed", zap.String("view", view), zap.Error(err))
			metrics.ViewRefreshes.WithLabelValues(view, "error").Inc()
			failed++
			continue
		}
		metrics.ViewRefreshes.WithLabelValues(view, "ok").Inc()
		refreshed++
	}
	log.Info("views refreshed", zap.Int("refreshed", refreshed), zap.Int("failed", failed))
	return refreshed, failed
}

// WriteSnapshots writes one snapshot per tracked carrier plus the
// all-carriers snapshot named 0.json.
func (p *Publisher) WriteSnapshots(ctx context.Context) (written, failed int) {
	log := zap.L().With(zap.String("component", "publish.snapshots"))

	carriers, err := p.store.Carriers(ctx)
	if err != nil {
		log.Error("list carriers failed", zap.Error(err))
		metrics.PublishSnapshots.WithLabelValues("error").Inc()
		return 0, 1
	}
	ids := []int64{model.AllCarriers}
	for _, c := range carriers {
		ids = append(ids, c.ID)
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(p.opts.Concurrency)
	for _, id := range ids {
		g.Go(func() error {
			err := p.writeSnapshot(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Error("snapshot failed", zap.Int64("carrier_id", id), zap.Error(err))
				metrics.PublishSnapshots.WithLabelValues("error").Inc()
				failed++
				return nil
			}
			metrics.PublishSnapshots.WithLabelValues("ok").Inc()
			written++
			return nil
		})
	}
	_ = g.Wait()

	log.Info("snapshots written", zap.Int("written", written), zap.Int("failed", failed))
	return written, failed
}

// Snapshot builds the snapshot of one carrier (0 for all carriers).
func (p *Publisher) Snapshot(ctx context.Context, carrierID int64) (*Snapshot, error) {
	rows, err := p.store.AntennaTraffic(ctx, carrierID)
	if err != nil {
		return nil, err
	}
	return BuildSnapshot(rows), nil
}

func (p *Publisher) writeSnapshot(ctx context.Context, carrierID int64) error {
	snap, err := p.Snapshot(ctx, carrierID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	// Every sink gets the document even when an earlier one fails.
	name := SnapshotName(carrierID)
	var errs []error
	for i, sink := range p.sinks {
		if err := sink.Put(ctx, name, data); err != nil {
			errs = append(errs, fmt.Errorf("publish: sink %d put %s: %w", i, name, err))
		}
	}
	return errors.Join(errs...)
}

// SnapshotName returns the document name of a carrier snapshot.
func SnapshotName(carrierID int64) string {
	return fmt.Sprintf("%d.json", carrierID)
}
