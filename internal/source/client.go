// Package source is the client for the remote monthly statistics service.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/sells-group/netusage/internal/fetcher"
	"github.com/sells-group/netusage/internal/model"
)

// Kind names one of the monthly report documents.
type Kind string

// Report kinds, named after the document file prefix.
const (
	KindTotals   Kind = "general_report"
	KindRankings Kind = "apps_report"
	KindSignals  Kind = "signal_report"
	KindCounts   Kind = "network_report"
)

// Client fetches and decodes remote report documents. Every error returned
// is a *fetcher.RequestError naming the failing URL.
type Client interface {
	Totals(ctx context.Context, p model.Period) (*TotalsReport, error)
	Rankings(ctx context.Context, p model.Period) (*RankingReport, error)
	Signals(ctx context.Context, p model.Period) (*SignalReport, error)
	Counts(ctx context.Context, p model.Period) (*CountReport, error)
	Antenna(ctx context.Context, id int64) (*AntennaDescriptor, error)
}

// Layout holds the base URL and per-kind path segments.
type Layout struct {
	BaseURL     string
	ReportPath  string
	RankingPath string
	SignalPath  string
	NetworkPath string
	AntennaPath string
}

// ReportURL builds {base}/{path}/{year}/{month}/{kind}_{month}_{year}.json.
// The month is not zero padded.
func (l Layout) ReportURL(kind Kind, p model.Period) string {
	var path string
	switch kind {
	case KindTotals:
		path = l.ReportPath
	case KindRankings:
		path = l.RankingPath
	case KindSignals:
		path = l.SignalPath
	case KindCounts:
		path = l.NetworkPath
	}
	return joinURL(l.BaseURL, path,
		strconv.Itoa(p.Year), strconv.Itoa(p.Month),
		fmt.Sprintf("%s_%d_%d.json", kind, p.Month, p.Year))
}

// AntennaURL builds {base}/{antenna_path}/{id}.
func (l Layout) AntennaURL(id int64) string {
	return joinURL(l.BaseURL, l.AntennaPath, strconv.FormatInt(id, 10))
}

// joinURL joins base and segments with single slashes. Empty segments,
// including paths configured as "" or "/", are left out.
func joinURL(base string, segments ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "/"))
	for _, seg := range segments {
		seg = strings.Trim(seg, "/")
		if seg == "" {
			continue
		}
		b.WriteByte('/')
		b.WriteString(seg)
	}
	return b.String()
}

// HTTPClient implements Client on top of a fetcher.Fetcher.
type HTTPClient struct {
	fetcher fetcher.Fetcher
	layout  Layout
}

// NewHTTPClient creates a Client that resolves URLs with layout.
func NewHTTPClient(f fetcher.Fetcher, layout Layout) *HTTPClient {
	return &HTTPClient{fetcher: f, layout: layout}
}

// Totals fetches the general report: report type -> carrier -> quantity, or
// report type -> quantity for all-carrier totals.
func (c *HTTPClient) Totals(ctx context.Context, p model.Period) (*TotalsReport, error) {
	url := c.layout.ReportURL(KindTotals, p)
	types, err := fetcher.GetJSON[map[string]json.RawMessage](ctx, c.fetcher, url)
	if err != nil {
		return nil, err
	}
	return &TotalsReport{URL: url, Types: types}, nil
}

// Rankings fetches the application ranking report. Only the key structure
// is checked here; entries are decoded one at a time by the importer.
func (c *HTTPClient) Rankings(ctx context.Context, p model.Period) (*RankingReport, error) {
	url := c.layout.ReportURL(KindRankings, p)
	carriers, err := fetcher.GetJSON[map[string]map[string]map[string]map[string]json.RawMessage](ctx, c.fetcher, url)
	if err != nil {
		return nil, err
	}
	return &RankingReport{URL: url, Carriers: carriers}, nil
}

// Signals fetches the signal report. Elements are decoded lazily so that a
// bad element only stops ingestion at that point.
func (c *HTTPClient) Signals(ctx context.Context, p model.Period) (*SignalReport, error) {
	url := c.layout.ReportURL(KindSignals, p)
	items, err := fetcher.GetJSON[[]json.RawMessage](ctx, c.fetcher, url)
	if err != nil {
		return nil, err
	}
	return &SignalReport{URL: url, Items: items}, nil
}

// Counts fetches the network report.
func (c *HTTPClient) Counts(ctx context.Context, p model.Period) (*CountReport, error) {
	url := c.layout.ReportURL(KindCounts, p)
	items, err := fetcher.GetJSON[[]json.RawMessage](ctx, c.fetcher, url)
	if err != nil {
		return nil, err
	}
	return &CountReport{URL: url, Items: items}, nil
}

// Antenna fetches a single antenna descriptor.
func (c *HTTPClient) Antenna(ctx context.Context, id int64) (*AntennaDescriptor, error) {
	url := c.layout.AntennaURL(id)
	raw, err := fetcher.GetJSON[json.RawMessage](ctx, c.fetcher, url)
	if err != nil {
		return nil, err
	}
	return decodeAntenna(url, raw)
}

// ParseCarrierKey converts a numeric carrier key. ok is false for keys that
// are not plain decimal digits.
func ParseCarrierKey(key string) (int64, bool) {
	if key == "" {
		return 0, false
	}
	for _, r := range key {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
