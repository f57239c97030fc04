package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/netusage/internal/carrier"
	"github.com/sells-group/netusage/internal/fetcher"
	"github.com/sells-group/netusage/internal/model"
	"github.com/sells-group/netusage/internal/source"
	"github.com/sells-group/netusage/internal/store"
)

// Totals imports the general report: per report type either a carrier ->
// quantity object or a bare all-carrier quantity.
type Totals struct {
	client source.Client
	store  Store
}

// NewTotals creates the totals importer.
func NewTotals(client source.Client, st Store) *Totals {
	return &Totals{client: client, store: st}
}

// Name implements Importer.
func (t *Totals) Name() string { return NameTotals }

// Import implements Importer.
func (t *Totals) Import(ctx context.Context, p model.Period) (*Result, error) {
	res := &Result{}

	allow, err := carrier.LoadAllowlist(ctx, t.store)
	if err != nil {
		return res, err
	}

	doc, err := t.client.Totals(ctx, p)
	if err != nil {
		return res, err
	}

	for _, reportType := range sortedKeys(doc.Types) {
		raw := doc.Types[reportType]

		if !isObject(raw) {
			qty, err := source.ParseQuantity(raw)
			if err != nil {
				return res, fetcher.Malformed(doc.URL, eris.Wrapf(err, "report type %s", reportType))
			}
			if err := t.write(ctx, res, model.Report{
				Year: p.Year, Month: p.Month, Type: reportType, CarrierID: model.AllCarriers, Quantity: qty,
			}); err != nil {
				return res, err
			}
			continue
		}

		var perCarrier map[string]json.RawMessage
		if err := json.Unmarshal(raw, &perCarrier); err != nil {
			return res, fetcher.Malformed(doc.URL, eris.Wrapf(err, "report type %s", reportType))
		}
		for _, key := range sortedKeys(perCarrier) {
			carrierID, ok := source.ParseCarrierKey(key)
			if !ok || !allow.Admits(carrierID) {
				res.Skipped++
				continue
			}
			qty, err := source.ParseQuantity(perCarrier[key])
			if err != nil {
				return res, fetcher.Malformed(doc.URL, eris.Wrapf(err, "report type %s carrier %s", reportType, key))
			}
			if err := t.write(ctx, res, model.Report{
				Year: p.Year, Month: p.Month, Type: reportType, CarrierID: carrierID, Quantity: qty,
			}); err != nil {
				return res, err
			}
		}
	}

	return res, nil
}

func (t *Totals) write(ctx context.Context, res *Result, r model.Report) error {
	inserted, err := t.store.UpsertReport(ctx, r)
	switch {
	case err == nil && inserted:
		res.Inserted++
	case err == nil:
		res.Updated++
	case errors.Is(err, store.ErrUnresolved):
		zap.L().Debug("report references unknown carrier", zap.Int64("carrier_id", r.CarrierID))
		res.Skipped++
	default:
		return eris.Wrapf(err, "ingest: totals %s", r.Type)
	}
	return nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}
