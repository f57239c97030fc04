package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/netusage/internal/carrier"
	"github.com/sells-group/netusage/internal/fetcher"
	"github.com/sells-group/netusage/internal/model"
	"github.com/sells-group/netusage/internal/source"
	"github.com/sells-group/netusage/internal/store"
)

// Rankings imports the application ranking report, one batch per carrier.
type Rankings struct {
	client source.Client
	store  Store
}

// NewRankings creates the rankings importer.
func NewRankings(client source.Client, st Store) *Rankings {
	return &Rankings{client: client, store: st}
}

// Name implements Importer.
func (r *Rankings) Name() string { return NameRankings }

// Import implements Importer.
func (r *Rankings) Import(ctx context.Context, p model.Period) (*Result, error) {
	res := &Result{}

	allow, err := carrier.LoadAllowlist(ctx, r.store)
	if err != nil {
		return res, err
	}

	doc, err := r.client.Rankings(ctx, p)
	if err != nil {
		return res, err
	}

	lower := cases.Lower(language.Und)

	for _, carrierKey := range sortedKeys(doc.Carriers) {
		traffic := doc.Carriers[carrierKey]

		carrierID, err := rankingCarrier(carrierKey)
		if err != nil {
			return res, fetcher.Malformed(doc.URL, err)
		}
		if !allow.Admits(carrierID) {
			res.Skipped += countEntries(traffic)
			continue
		}

		var batch []model.Ranking
		for _, trafficType := range sortedKeys(traffic) {
			transfers := traffic[trafficType]
			for _, transferType := range sortedKeys(transfers) {
				ranks := transfers[transferType]
				for _, rankKey := range sortedKeys(ranks) {
					rank, err := strconv.Atoi(rankKey)
					if err != nil {
						// Keep what was parsed before the bad key.
						if ferr := r.flush(ctx, res, batch); ferr != nil {
							return res, ferr
						}
						return res, fetcher.Malformed(doc.URL, eris.Wrapf(err, "carrier %s ranking number %q", carrierKey, rankKey))
					}
					entry, err := doc.Entry(carrierKey, trafficType, transferType, rankKey)
					if err != nil {
						if ferr := r.flush(ctx, res, batch); ferr != nil {
							return res, ferr
						}
						return res, err
					}
					batch = append(batch, model.Ranking{
						Year:          p.Year,
						Month:         p.Month,
						CarrierID:     carrierID,
						TrafficType:   lower.String(trafficType),
						TransferType:  lower.String(transferType),
						RankingNumber: rank,
						AppName:       entry.AppName,
						BytesPerUser:  entry.BytesPerUser,
						TotalBytes:    entry.TotalBytes,
						TotalDevices:  entry.TotalDevices,
					})
				}
			}
		}

		if err := r.flush(ctx, res, batch); err != nil {
			return res, err
		}
	}

	return res, nil
}

func (r *Rankings) flush(ctx context.Context, res *Result, batch []model.Ranking) error {
	if len(batch) == 0 {
		return nil
	}
	n, err := r.store.UpsertRankings(ctx, batch)
	switch {
	case err == nil:
		res.Inserted += n
	case errors.Is(err, store.ErrUnresolved):
		res.Skipped += int64(len(batch))
	default:
		return eris.Wrapf(err, "ingest: rankings carrier %d", batch[0].CarrierID)
	}
	return nil
}

// rankingCarrier maps a ranking carrier key to a carrier id.
func rankingCarrier(key string) (int64, error) {
	if key == source.AllCarriersKey {
		return model.AllCarriers, nil
	}
	id, ok := source.ParseCarrierKey(key)
	if !ok {
		return 0, eris.Errorf("ingest: invalid ranking carrier key %q", key)
	}
	return id, nil
}

func countEntries(traffic map[string]map[string]map[string]json.RawMessage) int64 {
	var n int64
	for _, transfers := range traffic {
		for _, ranks := range transfers {
			n += int64(len(ranks))
		}
	}
	return n
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
