package store

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"

	"github.com/sells-group/netusage/internal/model"
)

// AntennaExists reports whether an antenna with id is stored.
func (s *PostgresStore) AntennaExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM antennas WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return false, eris.Wrapf(err, "postgres: antenna exists %d", id)
	}
	return exists, nil
}

// InsertAntenna stores a new antenna. A duplicate id returns ErrConflict.
func (s *PostgresStore) InsertAntenna(ctx context.Context, a model.Antenna) error {
	point, err := encodePoint(a.Lon, a.Lat)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO antennas (id, cid, lac, lat, lon, carrier_id, geom)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.CID, a.LAC, a.Lat, a.Lon, a.CarrierID, point,
	)
	if err != nil {
		return classify(err, fmt.Sprintf("insert antenna %d", a.ID))
	}
	return nil
}

// UpdateAntennaCoordinates replaces the position of an existing antenna.
// Id and carrier are never changed.
func (s *PostgresStore) UpdateAntennaCoordinates(ctx context.Context, id int64, lat, lon float64) error {
	point, err := encodePoint(lon, lat)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE antennas SET lat = $1, lon = $2, geom = $3 WHERE id = $4`,
		lat, lon, point, id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update antenna %d coordinates", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: antenna %d", ErrNotFound, id)
	}
	return nil
}

// MaxAntennaID returns the highest stored antenna id, or 0 when there are none.
func (s *PostgresStore) MaxAntennaID(ctx context.Context) (int64, error) {
	var id int64
	if err := s.pool.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) FROM antennas`).Scan(&id); err != nil {
		return 0, eris.Wrap(err, "postgres: max antenna id")
	}
	return id, nil
}

// encodePoint returns an SRID 4326 EWKB point.
func encodePoint(lon, lat float64) ([]byte, error) {
	g := geom.NewPointFlat(geom.XY, []float64{lon, lat}).SetSRID(4326)
	data, err := ewkb.Marshal(g, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: encode antenna point")
	}
	return data, nil
}
