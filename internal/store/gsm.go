package store

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/sells-group/netusage/internal/model"
)

// InsertGsmSignal stores a signal sample. An existing natural key returns
// ErrConflict; a missing antenna or carrier returns ErrUnresolved.
func (s *PostgresStore) InsertGsmSignal(ctx context.Context, g model.GsmSignal) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO gsm_signal (year, month, antenna_id, carrier_id, signal, quantity)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		g.Year, g.Month, g.AntennaID, g.CarrierID, g.Signal, g.Quantity,
	)
	if err != nil {
		return classify(err, fmt.Sprintf("insert gsm_signal antenna %d carrier %d", g.AntennaID, g.CarrierID))
	}
	return nil
}

// UpdateGsmSignal overwrites signal and quantity of an existing sample.
func (s *PostgresStore) UpdateGsmSignal(ctx context.Context, g model.GsmSignal) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE gsm_signal SET signal = $1, quantity = $2
		 WHERE year = $3 AND month = $4 AND antenna_id = $5 AND carrier_id = $6`,
		g.Signal, g.Quantity, g.Year, g.Month, g.AntennaID, g.CarrierID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update gsm_signal antenna %d carrier %d", g.AntennaID, g.CarrierID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: gsm_signal antenna %d carrier %d", ErrNotFound, g.AntennaID, g.CarrierID)
	}
	return nil
}

// InsertGsmCount stores a traffic count. An existing natural key returns
// ErrConflict; a missing antenna, carrier or network type returns ErrUnresolved.
func (s *PostgresStore) InsertGsmCount(ctx context.Context, g model.GsmCount) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO gsm_count (year, month, antenna_id, carrier_id, network_type, quantity)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		g.Year, g.Month, g.AntennaID, g.CarrierID, g.NetworkType, g.Quantity,
	)
	if err != nil {
		return classify(err, fmt.Sprintf("insert gsm_count antenna %d carrier %d", g.AntennaID, g.CarrierID))
	}
	return nil
}

// UpdateGsmCount overwrites the quantity of an existing count.
func (s *PostgresStore) UpdateGsmCount(ctx context.Context, g model.GsmCount) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE gsm_count SET quantity = $1
		 WHERE year = $2 AND month = $3 AND antenna_id = $4 AND carrier_id = $5 AND network_type = $6`,
		g.Quantity, g.Year, g.Month, g.AntennaID, g.CarrierID, g.NetworkType,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update gsm_count antenna %d carrier %d", g.AntennaID, g.CarrierID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: gsm_count antenna %d carrier %d", ErrNotFound, g.AntennaID, g.CarrierID)
	}
	return nil
}
