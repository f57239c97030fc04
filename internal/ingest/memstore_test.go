package ingest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/sells-group/netusage/internal/model"
	"github.com/sells-group/netusage/internal/store"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type reportKey struct {
	year, month int
	typ         string
	carrier     int64
}

type rankingKey struct {
	year, month       int
	carrier           int64
	traffic, transfer string
	number            int
}

type gsmKey struct {
	year, month      int
	antenna, carrier int64
	networkType      int
}

// memStore is an in-memory store enforcing the natural keys and foreign keys
// of the Postgres schema.
type memStore struct {
	mu       sync.Mutex
	carriers map[int64]bool
	antennas map[int64]model.Antenna
	reports  map[reportKey]model.Report
	rankings map[rankingKey]model.Ranking
	signals  map[gsmKey]model.GsmSignal
	counts   map[gsmKey]model.GsmCount

	failInserts error

	// racing antennas look absent, conflict on insert and fail the
	// coordinate update with the mapped error.
	racing map[int64]error
}

func newMemStore(carrierIDs ...int64) *memStore {
	m := &memStore{
		carriers: map[int64]bool{model.AllCarriers: true},
		antennas: make(map[int64]model.Antenna),
		reports:  make(map[reportKey]model.Report),
		rankings: make(map[rankingKey]model.Ranking),
		signals:  make(map[gsmKey]model.GsmSignal),
		counts:   make(map[gsmKey]model.GsmCount),
	}
	for _, id := range carrierIDs {
		m.carriers[id] = true
	}
	return m
}

func (m *memStore) CarrierIDs(context.Context) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []int64
	for id := range m.carriers {
		if id != model.AllCarriers {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *memStore) UpsertReport(_ context.Context, r model.Report) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.carriers[r.CarrierID] {
		return false, fmt.Errorf("%w: carrier %d", store.ErrUnresolved, r.CarrierID)
	}
	k := reportKey{r.Year, r.Month, r.Type, r.CarrierID}
	_, exists := m.reports[k]
	m.reports[k] = r
	return !exists, nil
}

func (m *memStore) UpsertRankings(_ context.Context, rankings []model.Ranking) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rankings {
		if !m.carriers[r.CarrierID] {
			return 0, fmt.Errorf("%w: carrier %d", store.ErrUnresolved, r.CarrierID)
		}
	}
	for _, r := range rankings {
		m.rankings[rankingKey{r.Year, r.Month, r.CarrierID, r.TrafficType, r.TransferType, r.RankingNumber}] = r
	}
	return int64(len(rankings)), nil
}

func (m *memStore) checkGsm(antennaID, carrierID int64) error {
	if m.failInserts != nil {
		return m.failInserts
	}
	if _, ok := m.antennas[antennaID]; !ok {
		return fmt.Errorf("%w: antenna %d", store.ErrUnresolved, antennaID)
	}
	if !m.carriers[carrierID] {
		return fmt.Errorf("%w: carrier %d", store.ErrUnresolved, carrierID)
	}
	return nil
}

func (m *memStore) InsertGsmSignal(_ context.Context, g model.GsmSignal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkGsm(g.AntennaID, g.CarrierID); err != nil {
		return err
	}
	k := gsmKey{g.Year, g.Month, g.AntennaID, g.CarrierID, 0}
	if _, ok := m.signals[k]; ok {
		return store.ErrConflict
	}
	m.signals[k] = g
	return nil
}

func (m *memStore) UpdateGsmSignal(_ context.Context, g model.GsmSignal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := gsmKey{g.Year, g.Month, g.AntennaID, g.CarrierID, 0}
	if _, ok := m.signals[k]; !ok {
		return store.ErrNotFound
	}
	m.signals[k] = g
	return nil
}

func (m *memStore) InsertGsmCount(_ context.Context, g model.GsmCount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkGsm(g.AntennaID, g.CarrierID); err != nil {
		return err
	}
	k := gsmKey{g.Year, g.Month, g.AntennaID, g.CarrierID, g.NetworkType}
	if _, ok := m.counts[k]; ok {
		return store.ErrConflict
	}
	m.counts[k] = g
	return nil
}

func (m *memStore) UpdateGsmCount(_ context.Context, g model.GsmCount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := gsmKey{g.Year, g.Month, g.AntennaID, g.CarrierID, g.NetworkType}
	if _, ok := m.counts[k]; !ok {
		return store.ErrNotFound
	}
	m.counts[k] = g
	return nil
}

func (m *memStore) AntennaExists(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.racing[id]; ok {
		return false, nil
	}
	_, ok := m.antennas[id]
	return ok, nil
}

func (m *memStore) InsertAntenna(_ context.Context, a model.Antenna) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.racing[a.ID]; ok {
		return store.ErrConflict
	}
	if _, ok := m.antennas[a.ID]; ok {
		return store.ErrConflict
	}
	m.antennas[a.ID] = a
	return nil
}

func (m *memStore) UpdateAntennaCoordinates(_ context.Context, id int64, lat, lon float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.racing[id]; ok {
		return err
	}
	a, ok := m.antennas[id]
	if !ok {
		return store.ErrNotFound
	}
	a.Lat, a.Lon = lat, lon
	m.antennas[id] = a
	return nil
}

func (m *memStore) MaxAntennaID(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var maxID int64
	for id := range m.antennas {
		if id > maxID {
			maxID = id
		}
	}
	return maxID, nil
}

func (m *memStore) addAntenna(id int64) {
	m.antennas[id] = model.Antenna{ID: id, Lat: -34.9, Lon: -56.2}
}

func (m *memStore) reportCarriers() []int64 {
	var ids []int64
	for k := range m.reports {
		ids = append(ids, k.carrier)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
