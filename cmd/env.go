package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/netusage/internal/antenna"
	"github.com/sells-group/netusage/internal/fetcher"
	"github.com/sells-group/netusage/internal/ingest"
	"github.com/sells-group/netusage/internal/publish"
	"github.com/sells-group/netusage/internal/source"
	"github.com/sells-group/netusage/internal/store"
)

// appEnv holds the store, remote client and services shared by the
// import, antennas, publish, schedule and serve commands.
type appEnv struct {
	Store     *store.PostgresStore
	RunLog    *store.RunLog
	Client    *source.HTTPClient
	Resolver  *antenna.Resolver
	Publisher *publish.Publisher
	Pipeline  *ingest.Pipeline
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initStore(ctx context.Context) (*store.PostgresStore, error) {
	if cfg.Store.DatabaseURL == "" {
		return nil, eris.New("store database URL is required (NETUSAGE_STORE_DATABASE_URL)")
	}
	return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
		MaxConns: cfg.Store.MaxConns,
		MinConns: cfg.Store.MinConns,
	})
}

func initClient() (*source.HTTPClient, error) {
	if err := cfg.Source.Validate(); err != nil {
		return nil, err
	}
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		Token:      cfg.Source.Token,
		UserAgent:  "netusage/" + version,
		Timeout:    cfg.Source.Timeout(),
		MaxRetries: cfg.Source.MaxRetries,
		RateLimit:  cfg.Source.RateLimit,
	})
	return source.NewHTTPClient(f, source.Layout{
		BaseURL:     cfg.Source.BaseURL,
		ReportPath:  cfg.Source.ReportPath,
		RankingPath: cfg.Source.RankingPath,
		SignalPath:  cfg.Source.SignalPath,
		NetworkPath: cfg.Source.NetworkPath,
		AntennaPath: cfg.Source.AntennaPath,
	}), nil
}

// initSinks returns the configured snapshot sinks: a directory, an S3
// bucket, or both.
func initSinks(ctx context.Context) ([]publish.Sink, error) {
	var sinks []publish.Sink
	if cfg.Publish.Dir != "" {
		sinks = append(sinks, publish.NewFileSink(cfg.Publish.Dir))
	}
	if cfg.Publish.S3Bucket != "" {
		s3Sink, err := publish.NewS3SinkFromEnv(ctx, cfg.Publish.S3Region, cfg.Publish.S3Bucket, cfg.Publish.S3Prefix)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s3Sink)
	}
	if len(sinks) == 0 {
		return nil, eris.New("no snapshot sink configured (publish.dir or publish.s3_bucket)")
	}
	return sinks, nil
}

func initPublisher(ctx context.Context, st *store.PostgresStore) (*publish.Publisher, error) {
	sinks, err := initSinks(ctx)
	if err != nil {
		return nil, err
	}
	views := cfg.Publish.Views
	if len(views) == 0 {
		views = store.DefaultViews
	}
	return publish.NewPublisher(st, sinks, publish.Options{
		Views:       views,
		Concurrency: cfg.Publish.Concurrency,
	}), nil
}

// initEnv opens and migrates the store, then wires the client, resolver,
// publisher and import pipeline. Callers should defer env.Close().
func initEnv(ctx context.Context) (*appEnv, error) {
	client, err := initClient()
	if err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	pub, err := initPublisher(ctx, st)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	resolver := antenna.NewResolver(st, client, cfg.Resolver.CacheTTL())
	runLog := store.NewRunLog(st.Pool())
	reg := ingest.NewRegistry(client, st, resolver)

	return &appEnv{
		Store:     st,
		RunLog:    runLog,
		Client:    client,
		Resolver:  resolver,
		Publisher: pub,
		Pipeline:  ingest.NewPipeline(reg, runLog, pub),
	}, nil
}
