package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/netusage/internal/fetcher"
	"github.com/sells-group/netusage/internal/metrics"
	"github.com/sells-group/netusage/internal/model"
	"github.com/sells-group/netusage/internal/publish"
	"github.com/sells-group/netusage/internal/store"
)

// RunLogger records importer executions. Failures to record never affect
// ingestion.
type RunLogger interface {
	Start(ctx context.Context, runID, importer string, p model.Period) (int64, error)
	Complete(ctx context.Context, id int64, c store.RunCounts) error
	Fail(ctx context.Context, id int64, c store.RunCounts, errMsg string) error
}

// Publisher regenerates derived data after a run. It never fails the run.
type Publisher interface {
	Publish(ctx context.Context) *publish.Summary
}

// RunOpts configures which importers run and whether to publish.
type RunOpts struct {
	Only        []string // restrict to these importers, run order is kept
	SkipPublish bool
}

// ImporterSummary is the outcome of one importer within a run.
type ImporterSummary struct {
	Name    string        `json:"name"`
	Result  Result        `json:"result"`
	Error   string        `json:"error,omitempty"`
	URL     string        `json:"url,omitempty"`
	Elapsed time.Duration `json:"elapsed"`
}

// Failed reports whether the importer stopped early.
func (s ImporterSummary) Failed() bool {
	return s.Error != ""
}

// RunSummary is the outcome of ImportAll.
type RunSummary struct {
	RunID     string            `json:"run_id"`
	Period    model.Period      `json:"period"`
	Importers []ImporterSummary `json:"importers"`
	Publish   *publish.Summary  `json:"publish,omitempty"`
}

// Pipeline runs the importers of a period and then the publisher.
type Pipeline struct {
	reg       *Registry
	runLog    RunLogger
	publisher Publisher
}

// NewPipeline creates a Pipeline. runLog and publisher may be nil.
func NewPipeline(reg *Registry, runLog RunLogger, publisher Publisher) *Pipeline {
	return &Pipeline{reg: reg, runLog: runLog, publisher: publisher}
}

// ImportAll runs the selected importers for p sequentially, then publishes
// once. Each importer failure is logged and recorded at its own boundary and
// never stops the following importers. The error return is reserved for
// invalid input detected before any work starts.
func (pl *Pipeline) ImportAll(ctx context.Context, p model.Period, opts RunOpts) (*RunSummary, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	importers, err := pl.reg.Select(opts.Only)
	if err != nil {
		return nil, err
	}

	summary := &RunSummary{RunID: uuid.NewString(), Period: p}
	log := zap.L().With(
		zap.String("component", "ingest.pipeline"),
		zap.String("run_id", summary.RunID),
		zap.Int("year", p.Year),
		zap.Int("month", p.Month),
	)
	log.Info("import run started", zap.Int("importers", len(importers)))

	for _, imp := range importers {
		summary.Importers = append(summary.Importers, pl.runOne(ctx, log, summary.RunID, imp, p))
	}

	if opts.SkipPublish || pl.publisher == nil {
		log.Info("import run complete, publish skipped")
		return summary, nil
	}

	summary.Publish = pl.publisher.Publish(ctx)
	log.Info("import run complete")
	return summary, nil
}

func (pl *Pipeline) runOne(ctx context.Context, log *zap.Logger, runID string, imp Importer, p model.Period) ImporterSummary {
	name := imp.Name()
	impLog := log.With(zap.String("importer", name))
	out := ImporterSummary{Name: name}

	var logID int64
	if pl.runLog != nil {
		id, err := pl.runLog.Start(ctx, runID, name, p)
		if err != nil {
			impLog.Warn("failed to record import start", zap.Error(err))
		}
		logID = id
	}

	impLog.Info("importer started")
	start := time.Now()
	res, err := imp.Import(ctx, p)
	out.Elapsed = time.Since(start)
	if res != nil {
		out.Result = *res
	}
	counts := store.RunCounts{Inserted: out.Result.Inserted, Updated: out.Result.Updated, Skipped: out.Result.Skipped}

	metrics.ImportDuration.WithLabelValues(name).Observe(out.Elapsed.Seconds())
	metrics.ImportRecords.WithLabelValues(name, metrics.OutcomeInserted).Add(float64(counts.Inserted))
	metrics.ImportRecords.WithLabelValues(name, metrics.OutcomeUpdated).Add(float64(counts.Updated))
	metrics.ImportRecords.WithLabelValues(name, metrics.OutcomeSkipped).Add(float64(counts.Skipped))

	if err != nil {
		out.Error = err.Error()
		out.URL = fetcher.URLOf(err)
		metrics.ImportFailures.WithLabelValues(name).Inc()
		impLog.Error("importer failed",
			zap.String("url", out.URL),
			zap.Int64("inserted", counts.Inserted),
			zap.Int64("updated", counts.Updated),
			zap.Int64("skipped", counts.Skipped),
			zap.Duration("elapsed", out.Elapsed),
			zap.Error(err),
		)
		if pl.runLog != nil && logID != 0 {
			if logErr := pl.runLog.Fail(ctx, logID, counts, err.Error()); logErr != nil {
				impLog.Warn("failed to record import failure", zap.Error(logErr))
			}
		}
		return out
	}

	impLog.Info("importer complete",
		zap.Int64("inserted", counts.Inserted),
		zap.Int64("updated", counts.Updated),
		zap.Int64("skipped", counts.Skipped),
		zap.Duration("elapsed", out.Elapsed),
	)
	if pl.runLog != nil && logID != 0 {
		if logErr := pl.runLog.Complete(ctx, logID, counts); logErr != nil {
			impLog.Warn("failed to record import completion", zap.Error(logErr))
		}
	}
	return out
}
