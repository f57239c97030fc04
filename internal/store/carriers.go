package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/netusage/internal/model"
)

// CarrierIDs returns the ids of all tracked carriers. The all-carriers row is
// excluded.
func (s *PostgresStore) CarrierIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM carriers WHERE id <> 0 ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list carrier ids")
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "postgres: scan carrier id")
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Carriers returns all tracked carriers ordered by id.
func (s *PostgresStore) Carriers(ctx context.Context) ([]model.Carrier, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM carriers WHERE id <> 0 ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list carriers")
	}
	defer rows.Close()

	var out []model.Carrier
	for rows.Next() {
		var c model.Carrier
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, eris.Wrap(err, "postgres: scan carrier")
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
