package publish

import (
	"strconv"

	"github.com/sells-group/netusage/internal/model"
)

// AntennaSummary is the traffic of one antenna in a carrier snapshot.
type AntennaSummary struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Carrier string  `json:"carrier"`
	G2      int64   `json:"2G"`
	G3      int64   `json:"3G"`
	G4      int64   `json:"4G"`
	Other   int64   `json:"Other"`
	Total   int64   `json:"Total"`
}

// Snapshot is the static document published per carrier, keyed by antenna id.
type Snapshot struct {
	AntennasData  map[string]*AntennaSummary `json:"antennasData"`
	TotalAntennas int                        `json:"totalAntennas"`
}

// BuildSnapshot folds per-antenna, per-network-type sums into a Snapshot.
// Network types other than 2G, 3G and 4G are counted as Other.
func BuildSnapshot(rows []model.AntennaTraffic) *Snapshot {
	snap := &Snapshot{AntennasData: make(map[string]*AntennaSummary)}
	for _, row := range rows {
		key := strconv.FormatInt(row.AntennaID, 10)
		sum, ok := snap.AntennasData[key]
		if !ok {
			sum = &AntennaSummary{Lat: row.Lat, Lon: row.Lon, Carrier: row.CarrierName}
			snap.AntennasData[key] = sum
			snap.TotalAntennas++
		}
		switch row.NetworkType {
		case "2G":
			sum.G2 += row.Quantity
		case "3G":
			sum.G3 += row.Quantity
		case "4G":
			sum.G4 += row.Quantity
		default:
			sum.Other += row.Quantity
		}
		sum.Total += row.Quantity
	}
	return snap
}
