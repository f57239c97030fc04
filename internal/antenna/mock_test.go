package antenna

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sells-group/netusage/internal/fetcher"
	"github.com/sells-group/netusage/internal/model"
	"github.com/sells-group/netusage/internal/source"
	"github.com/sells-group/netusage/internal/store"
)

// memStore implements Store with a uniqueness check on antenna id.
type memStore struct {
	mu          sync.Mutex
	antennas    map[int64]model.Antenna
	existsCalls int
	hideOnCheck map[int64]bool // report absent on the existence check, simulating a race
	updateErr   error
	insertErr   error
	existsErr   error
}

func newMemStore(existing ...model.Antenna) *memStore {
	s := &memStore{antennas: make(map[int64]model.Antenna), hideOnCheck: make(map[int64]bool)}
	for _, a := range existing {
		s.antennas[a.ID] = a
	}
	return s
}

func (s *memStore) AntennaExists(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.existsCalls++
	if s.existsErr != nil {
		return false, s.existsErr
	}
	if s.hideOnCheck[id] {
		return false, nil
	}
	_, ok := s.antennas[id]
	return ok, nil
}

func (s *memStore) InsertAntenna(_ context.Context, a model.Antenna) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	if _, ok := s.antennas[a.ID]; ok {
		return fmt.Errorf("%w: antenna %d", store.ErrConflict, a.ID)
	}
	s.antennas[a.ID] = a
	return nil
}

func (s *memStore) UpdateAntennaCoordinates(_ context.Context, id int64, lat, lon float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	a, ok := s.antennas[id]
	if !ok {
		return store.ErrNotFound
	}
	a.Lat, a.Lon = lat, lon
	s.antennas[id] = a
	return nil
}

func (s *memStore) MaxAntennaID(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var maxID int64
	for id := range s.antennas {
		if id > maxID {
			maxID = id
		}
	}
	return maxID, nil
}

// stubLookup serves descriptors from a map; ids missing from the map are
// unreachable, ids in malformed return a malformed payload.
type stubLookup struct {
	mu          sync.Mutex
	descriptors map[int64]*source.AntennaDescriptor
	malformed   map[int64]bool
	calls       map[int64]int
}

func newStubLookup() *stubLookup {
	return &stubLookup{
		descriptors: make(map[int64]*source.AntennaDescriptor),
		malformed:   make(map[int64]bool),
		calls:       make(map[int64]int),
	}
}

func (l *stubLookup) Antenna(_ context.Context, id int64) (*source.AntennaDescriptor, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls[id]++
	url := fmt.Sprintf("http://src/antennas/%d", id)
	if l.malformed[id] {
		return nil, fetcher.Malformed(url, errors.New("bad json"))
	}
	d, ok := l.descriptors[id]
	if !ok {
		return nil, fetcher.Unreachable(url, errors.New("unexpected status 404"))
	}
	return d, nil
}

func (l *stubLookup) callCount(id int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[id]
}

func ptr(v float64) *float64 { return &v }

func located(carrier int64, lat, lon float64) *source.AntennaDescriptor {
	return &source.AntennaDescriptor{CarrierID: carrier, CID: 100, LAC: 200, Lat: ptr(lat), Lon: ptr(lon)}
}
