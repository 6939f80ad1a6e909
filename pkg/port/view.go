package port

import (
	"slices"

	"github.com/Nativu5/sai-adapter/pkg/types"
)

// Info is a snapshot of one port for the debug walkers.
type Info struct {
	ID            types.ObjectID
	Name          string
	IngressMirror []types.ObjectID
	EgressMirror  []types.ObjectID
	IngressSample types.ObjectID
	EgressSample  types.ObjectID
	EgressBlock   []types.ObjectID
	// Attrs is the attribute cache in id order.
	Attrs []types.Attribute
}

// info builds the snapshot of port. m.mu must be held.
func (m *Module) info(port types.ObjectID) Info {
	out := Info{ID: port}
	if obj, ok := m.inv.Get(port); ok {
		out.Name = obj.Name
	}
	if a := m.app(port, false); a != nil {
		out.IngressMirror = a.mirrors[types.Ingress].Keys()
		out.EgressMirror = a.mirrors[types.Egress].Keys()
		out.IngressSample = a.sample[types.Ingress]
		out.EgressSample = a.sample[types.Egress]
		out.EgressBlock = slices.Clone(a.egressBlock)
	}
	for id, v := range m.cache[port] {
		out.Attrs = append(out.Attrs, types.Attribute{ID: id, Value: v})
	}
	slices.SortFunc(out.Attrs, func(a, b types.Attribute) int { return int(a.ID - b.ID) })
	return out
}

// Info returns the snapshot of one port.
func (m *Module) Info(port types.ObjectID) (Info, error) {
	if port.Type() != types.ObjectTypePort {
		return Info{}, types.StatusInvalidObjectType
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(port); err != nil {
		return Info{}, err
	}
	return m.info(port), nil
}

// Ports returns the snapshot of every port in id order.
func (m *Module) Ports() []Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Info
	for _, id := range m.inv.List(types.ObjectTypePort) {
		out = append(out, m.info(id))
	}
	return out
}

// Bound reports whether any feature is attached to port.
func (m *Module) Bound(port types.ObjectID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.apps.Has(port)
}
