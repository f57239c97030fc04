package store

import (
	"context"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/netusage/internal/model"
)

// DefaultViews are the aggregate views refreshed after each import run.
var DefaultViews = []string{"gsm_count_by_carrier", "gsm_signal_statistic_by_carrier"}

var viewName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// RefreshMaterializedView recomputes the named view.
func (s *PostgresStore) RefreshMaterializedView(ctx context.Context, name string) error {
	if !viewName.MatchString(name) {
		return eris.Errorf("postgres: invalid view name %q", name)
	}
	if _, err := s.pool.Exec(ctx, "REFRESH MATERIALIZED VIEW "+pgx.Identifier{name}.Sanitize()); err != nil {
		return eris.Wrapf(err, "postgres: refresh view %s", name)
	}
	return nil
}

// AntennaTraffic sums gsm_count quantities per antenna and network type over
// all periods, joined with antenna position and owning carrier name.
// carrierID 0 aggregates every carrier.
func (s *PostgresStore) AntennaTraffic(ctx context.Context, carrierID int64) ([]model.AntennaTraffic, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT c.antenna_id, nt.type, car.name, a.lat, a.lon, SUM(c.quantity)::bigint
		 FROM gsm_count c
		 JOIN network_type nt ON nt.id = c.network_type
		 JOIN antennas a ON a.id = c.antenna_id
		 JOIN carriers car ON car.id = a.carrier_id
		 WHERE $1::bigint = 0 OR c.carrier_id = $1
		 GROUP BY c.antenna_id, nt.type, car.name, a.lat, a.lon
		 ORDER BY c.antenna_id, nt.type`,
		carrierID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: antenna traffic for carrier %d", carrierID)
	}
	defer rows.Close()

	var out []model.AntennaTraffic
	for rows.Next() {
		var t model.AntennaTraffic
		if err := rows.Scan(&t.AntennaID, &t.NetworkType, &t.CarrierName, &t.Lat, &t.Lon, &t.Quantity); err != nil {
			return nil, eris.Wrap(err, "postgres: scan antenna traffic")
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
