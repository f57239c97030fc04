package ingest

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/netusage/internal/source"
)

// Registry maps importer names to their implementations.
type Registry struct {
	importers map[string]Importer
	order     []string // insertion order for deterministic iteration
}

// NewRegistry creates a registry with the four report importers in run
// order: totals and rankings first, then the antenna-dependent signals and
// counts.
func NewRegistry(client source.Client, st Store, antennas AntennaResolver) *Registry {
	r := &Registry{importers: make(map[string]Importer)}
	r.Register(NewTotals(client, st))
	r.Register(NewRankings(client, st))
	r.Register(NewSignals(client, st, antennas))
	r.Register(NewCounts(client, st, antennas))
	return r
}

// Register adds an importer to the registry.
func (r *Registry) Register(imp Importer) {
	if r.importers == nil {
		r.importers = make(map[string]Importer)
	}
	name := imp.Name()
	if _, dup := r.importers[name]; !dup {
		r.order = append(r.order, name)
	}
	r.importers[name] = imp
}

// Get returns an importer by name.
func (r *Registry) Get(name string) (Importer, error) {
	imp, ok := r.importers[name]
	if !ok {
		return nil, eris.Errorf("ingest: unknown importer %q (known: %s)", name, strings.Join(r.Names(), ", "))
	}
	return imp, nil
}

// Select returns the named importers in registration order. An empty names
// list selects all of them; any unknown name fails the whole selection.
func (r *Registry) Select(names []string) ([]Importer, error) {
	if len(names) == 0 {
		return r.All(), nil
	}
	want := make(map[string]bool, len(names))
	for _, name := range names {
		if _, err := r.Get(name); err != nil {
			return nil, err
		}
		want[name] = true
	}
	var out []Importer
	for _, name := range r.order {
		if want[name] {
			out = append(out, r.importers[name])
		}
	}
	return out, nil
}

// All returns every importer in registration order.
func (r *Registry) All() []Importer {
	out := make([]Importer, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.importers[name])
	}
	return out
}

// Names returns the registered importer names in order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}
