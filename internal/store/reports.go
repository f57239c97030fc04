package store

import (
	"context"
	"fmt"

	"github.com/sells-group/netusage/internal/db"
	"github.com/sells-group/netusage/internal/model"
)

// UpsertReport stores a monthly total, overwriting the quantity of an
// existing row with the same natural key. inserted is false on overwrite.
func (s *PostgresStore) UpsertReport(ctx context.Context, r model.Report) (inserted bool, err error) {
	err = s.pool.QueryRow(ctx,
		`INSERT INTO report (year, month, type, carrier_id, quantity)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (year, month, type, carrier_id) DO UPDATE SET quantity = EXCLUDED.quantity
		 RETURNING (xmax = 0)`,
		r.Year, r.Month, r.Type, r.CarrierID, r.Quantity,
	).Scan(&inserted)
	if err != nil {
		return false, classify(err, fmt.Sprintf("upsert report %s/%d", r.Type, r.CarrierID))
	}
	return inserted, nil
}

var rankingUpsert = db.UpsertConfig{
	Table: "ranking",
	Columns: []string{
		"year", "month", "carrier_id", "traffic_type", "transfer_type", "ranking_number",
		"app_name", "bytes_per_user", "total_bytes", "total_devices",
	},
	ConflictKeys: []string{"year", "month", "carrier_id", "traffic_type", "transfer_type", "ranking_number"},
}

// UpsertRankings writes one carrier's rankings in a single transaction.
// Rows with an existing natural key are overwritten.
func (s *PostgresStore) UpsertRankings(ctx context.Context, rankings []model.Ranking) (int64, error) {
	rows := make([][]any, 0, len(rankings))
	for _, r := range rankings {
		rows = append(rows, []any{
			r.Year, r.Month, r.CarrierID, r.TrafficType, r.TransferType, r.RankingNumber,
			r.AppName, r.BytesPerUser, r.TotalBytes, r.TotalDevices,
		})
	}
	n, err := db.BulkUpsert(ctx, s.pool, rankingUpsert, rows)
	if err != nil {
		return 0, classify(err, "upsert rankings")
	}
	return n, nil
}
