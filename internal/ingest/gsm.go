package ingest

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/netusage/internal/antenna"
	"github.com/sells-group/netusage/internal/carrier"
	"github.com/sells-group/netusage/internal/model"
	"github.com/sells-group/netusage/internal/source"
	"github.com/sells-group/netusage/internal/store"
)

// Signals imports the signal report. Each record needs an allow-listed
// carrier and a resolvable antenna; otherwise it is skipped.
type Signals struct {
	client   source.Client
	store    Store
	antennas AntennaResolver
}

// NewSignals creates the signals importer.
func NewSignals(client source.Client, st Store, antennas AntennaResolver) *Signals {
	return &Signals{client: client, store: st, antennas: antennas}
}

// Name implements Importer.
func (s *Signals) Name() string { return NameSignals }

// Import implements Importer.
func (s *Signals) Import(ctx context.Context, p model.Period) (*Result, error) {
	res := &Result{}

	allow, err := carrier.LoadAllowlist(ctx, s.store)
	if err != nil {
		return res, err
	}

	doc, err := s.client.Signals(ctx, p)
	if err != nil {
		return res, err
	}

	for i := range doc.Items {
		rec, err := doc.Decode(i)
		if err != nil {
			return res, err
		}

		ok, err := admit(ctx, allow, s.antennas, rec.CarrierID, rec.AntennaID)
		if err != nil {
			return res, err
		}
		if !ok {
			res.Skipped++
			continue
		}

		g := model.GsmSignal{
			Year:      p.Year,
			Month:     p.Month,
			AntennaID: rec.AntennaID,
			CarrierID: rec.CarrierID,
			Signal:    rec.SignalMean,
			Quantity:  rec.Observations,
		}
		err = upsert(res, s.store.InsertGsmSignal(ctx, g), func() error {
			return s.store.UpdateGsmSignal(ctx, g)
		})
		if err != nil {
			return res, eris.Wrapf(err, "ingest: signals antenna %d carrier %d", g.AntennaID, g.CarrierID)
		}
	}

	return res, nil
}

// Counts imports the network report with the same gating as Signals.
type Counts struct {
	client   source.Client
	store    Store
	antennas AntennaResolver
}

// NewCounts creates the counts importer.
func NewCounts(client source.Client, st Store, antennas AntennaResolver) *Counts {
	return &Counts{client: client, store: st, antennas: antennas}
}

// Name implements Importer.
func (c *Counts) Name() string { return NameCounts }

// Import implements Importer.
func (c *Counts) Import(ctx context.Context, p model.Period) (*Result, error) {
	res := &Result{}

	allow, err := carrier.LoadAllowlist(ctx, c.store)
	if err != nil {
		return res, err
	}

	doc, err := c.client.Counts(ctx, p)
	if err != nil {
		return res, err
	}

	for i := range doc.Items {
		rec, err := doc.Decode(i)
		if err != nil {
			return res, err
		}

		ok, err := admit(ctx, allow, c.antennas, rec.CarrierID, rec.AntennaID)
		if err != nil {
			return res, err
		}
		if !ok {
			res.Skipped++
			continue
		}

		g := model.GsmCount{
			Year:        p.Year,
			Month:       p.Month,
			AntennaID:   rec.AntennaID,
			CarrierID:   rec.CarrierID,
			NetworkType: rec.NetworkType,
			Quantity:    rec.Size,
		}
		err = upsert(res, c.store.InsertGsmCount(ctx, g), func() error {
			return c.store.UpdateGsmCount(ctx, g)
		})
		if err != nil {
			return res, eris.Wrapf(err, "ingest: counts antenna %d carrier %d", g.AntennaID, g.CarrierID)
		}
	}

	return res, nil
}

// admit reports whether a record may be stored: its carrier must be tracked
// and its antenna stored or resolvable. Only storage failures are returned
// as errors.
func admit(ctx context.Context, allow *carrier.Allowlist, antennas AntennaResolver, carrierID, antennaID int64) (bool, error) {
	if !allow.Contains(carrierID) {
		return false, nil
	}
	outcome, err := antennas.Resolve(ctx, antennaID)
	if err != nil {
		if errors.Is(err, antenna.ErrIrreconcilable) {
			zap.L().Warn("skipping record with irreconcilable antenna",
				zap.Int64("antenna_id", antennaID), zap.Error(err))
			return false, nil
		}
		return false, err
	}
	if !outcome.Resolved() {
		zap.L().Debug("skipping record with unresolved antenna",
			zap.Int64("antenna_id", antennaID), zap.Stringer("outcome", outcome))
		return false, nil
	}
	return true, nil
}

// upsert settles an insert result, falling back to update on a key conflict.
func upsert(res *Result, insertErr error, update func() error) error {
	switch {
	case insertErr == nil:
		res.Inserted++
	case errors.Is(insertErr, store.ErrConflict):
		if err := update(); err != nil {
			return err
		}
		res.Updated++
	case errors.Is(insertErr, store.ErrUnresolved):
		res.Skipped++
	default:
		return insertErr
	}
	return nil
}
