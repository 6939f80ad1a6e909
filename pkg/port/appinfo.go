package port

import (
	"slices"

	log "github.com/sirupsen/logrus"

	"github.com/Nativu5/sai-adapter/pkg/store"
	"github.com/Nativu5/sai-adapter/pkg/types"
)

// appInfo is the cross-feature state of one port. It exists only while at
// least one feature is attached.
type appInfo struct {
	mirrors     [2]*store.Store[types.ObjectID, struct{}]
	sample      [2]types.ObjectID
	egressBlock []types.ObjectID
}

func newAppInfo() *appInfo {
	a := &appInfo{}
	for i := range a.mirrors {
		a.mirrors[i] = store.NewOrdered[types.ObjectID, struct{}]()
	}
	return a
}

func (a *appInfo) empty() bool {
	for i := range a.mirrors {
		if !a.mirrors[i].Empty() || !a.sample[i].IsNull() {
			return false
		}
	}
	return len(a.egressBlock) == 0
}

// app returns the side-table entry of port, creating it when create is
// set. m.mu must be held.
func (m *Module) app(port types.ObjectID, create bool) *appInfo {
	a, ok := m.apps.Get(port)
	if ok || !create {
		return a
	}
	a = newAppInfo()
	_ = m.apps.Insert(port, a)
	return a
}

// release drops the side-table entry of port once nothing is attached.
// m.mu must be held.
func (m *Module) release(port types.ObjectID) {
	if a, ok := m.apps.Get(port); ok && a.empty() {
		m.apps.Remove(port)
		log.WithField("port", port).Trace("port: app info released")
	}
}

// setMirrorList reconciles the mirror sessions bound to port in dir with
// want. Sessions in both lists are left alone. The first failing attach
// or detach aborts; earlier steps stay applied.
func (m *Module) setMirrorList(port types.ObjectID, dir types.Direction, want []types.ObjectID) error {
	for _, id := range want {
		if id.Type() != types.ObjectTypeMirrorSession || !m.mirrors.Exists(id) {
			return types.InvalidAttributeValue(0)
		}
	}

	a := m.app(port, true)
	defer m.release(port)
	tracked := a.mirrors[dir]

	for _, id := range want {
		if tracked.Has(id) {
			continue
		}
		if err := m.mirrors.SessionPortAdd(id, port, dir); err != nil {
			return err
		}
		_ = tracked.Insert(id, struct{}{})
	}

	for _, id := range tracked.Keys() {
		if slices.Contains(want, id) {
			continue
		}
		if err := m.mirrors.SessionPortRemove(id, port, dir); err != nil {
			return err
		}
		tracked.Remove(id)
	}
	return nil
}

// setSamplepacket binds session id to port in dir, or unbinds the current
// session when id is null. A port carries at most one port-based session
// per direction.
func (m *Module) setSamplepacket(port types.ObjectID, dir types.Direction, id types.ObjectID) error {
	var cur types.ObjectID
	if a := m.app(port, false); a != nil {
		cur = a.sample[dir]
	}
	if id == cur {
		return nil
	}

	if id.IsNull() {
		if err := m.samplers.SessionPortRemove(cur, port, dir, types.SamplePortBased); err != nil {
			return err
		}
		m.app(port, false).sample[dir] = types.NullObjectID
		m.release(port)
		return nil
	}

	if id.Type() != types.ObjectTypeSamplepacket || !m.samplers.Exists(id) {
		return types.InvalidAttributeValue(0)
	}
	if !cur.IsNull() {
		return types.StatusObjectInUse
	}
	if err := m.samplers.SessionPortAdd(id, port, dir, types.SamplePortBased); err != nil {
		return err
	}
	m.app(port, true).sample[dir] = id
	return nil
}

// setEgressBlock programs the egress block list and records it.
func (m *Module) setEgressBlock(port types.ObjectID, attr types.Attribute) error {
	for _, member := range attr.Value.OIDList {
		if member == port || !m.inv.ExistsAs(member, types.ObjectTypePort) {
			return types.InvalidAttributeValue(0)
		}
	}
	if err := m.backend.PortSetAttribute(port, attr); err != nil {
		return err
	}
	if len(attr.Value.OIDList) == 0 {
		if a := m.app(port, false); a != nil {
			a.egressBlock = nil
			m.release(port)
		}
		return nil
	}
	m.app(port, true).egressBlock = slices.Clone(attr.Value.OIDList)
	return nil
}
