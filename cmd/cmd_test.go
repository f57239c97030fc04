package main

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/sells-group/netusage/internal/ingest"
	"github.com/sells-group/netusage/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// fakeRunner records ImportAll calls.
type fakeRunner struct {
	mu      sync.Mutex
	periods []model.Period
	opts    []ingest.RunOpts
	block   chan struct{}
	done    chan struct{}
	err     error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{done: make(chan struct{}, 8)}
}

func (f *fakeRunner) ImportAll(_ context.Context, p model.Period, opts ingest.RunOpts) (*ingest.RunSummary, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	f.periods = append(f.periods, p)
	f.opts = append(f.opts, opts)
	f.mu.Unlock()
	f.done <- struct{}{}
	if f.err != nil {
		return nil, f.err
	}
	return &ingest.RunSummary{RunID: "run-1", Period: p}, nil
}

func (f *fakeRunner) calls() []model.Period {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Period(nil), f.periods...)
}
