package adapter

import (
	"fmt"

	"github.com/tidwall/btree"
)

// Registry maps a bridge name to its adapter, in deterministic name order.
// The router selects from it at the edge; adapters never reference each
// other.
type Registry struct {
	adapters *btree.Map[string, Adapter]
}

func NewRegistry() *Registry {
	return &Registry{adapters: btree.NewMap[string, Adapter](0)}
}

// Register panics on a duplicate name, as registration is wiring done
// once at startup.
func (r *Registry) Register(a Adapter) {
	if _, ok := r.adapters.Get(a.Name()); ok {
		panic(fmt.Sprintf("adapter %T duplicates bridge name %s", a, a.Name()))
	}
	r.adapters.Set(a.Name(), a)
}

func (r *Registry) Get(name string) (Adapter, bool) {
	return r.adapters.Get(name)
}

func (r *Registry) Names() []string {
	names := make([]string, 0, r.adapters.Len())
	r.adapters.Scan(func(name string, _ Adapter) bool {
		names = append(names, name)
		return true
	})
	return names
}
