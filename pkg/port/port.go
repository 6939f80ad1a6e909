// Package port dispatches port attribute changes. Most attributes go
// straight to the NPU; mirror and samplepacket bindings, QoS references and
// the egress block list are routed through the modules that own them.
//
// SetAttribute holds the port lock while it calls the self-locking entry
// points of mirror, samplepacket and qos, so cross-module locks do nest
// here. Lock order is port, then mirror / samplepacket / qos, then
// inventory. None of those modules calls back into this one.
package port

import (
	"slices"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/Nativu5/sai-adapter/pkg/inventory"
	"github.com/Nativu5/sai-adapter/pkg/npu"
	"github.com/Nativu5/sai-adapter/pkg/store"
	"github.com/Nativu5/sai-adapter/pkg/types"
)

const (
	maxVlanID  = 4094
	maxVlanPri = 7
)

// Mirrors is the part of the mirror module the dispatcher drives.
type Mirrors interface {
	Exists(id types.ObjectID) bool
	SessionPortAdd(id, port types.ObjectID, dir types.Direction) error
	SessionPortRemove(id, port types.ObjectID, dir types.Direction) error
}

// Samplers is the part of the samplepacket module the dispatcher drives.
type Samplers interface {
	Exists(id types.ObjectID) bool
	SessionPortAdd(id, port types.ObjectID, dir types.Direction, mode types.SampleAttachMode) error
	SessionPortRemove(id, port types.ObjectID, dir types.Direction, mode types.SampleAttachMode) error
}

// QoS applies QoS profile references to ports.
type QoS interface {
	SetPortAttribute(port types.ObjectID, attr types.Attribute) error
	PortAttribute(port types.ObjectID, id types.AttrID) (types.AttrValue, bool)
}

// Module is the port attribute dispatcher.
type Module struct {
	mu          sync.Mutex
	initialized bool
	backend     npu.PortAPI
	inv         *inventory.DB
	mirrors     Mirrors
	samplers    Samplers
	qos         QoS
	isQosAttr   func(types.AttrID) bool

	// cache holds the last value applied per port and attribute.
	cache map[types.ObjectID]map[types.AttrID]types.AttrValue
	// apps is the per-port side-table of cross-feature state.
	apps *store.Store[types.ObjectID, *appInfo]
}

// Options carries the collaborators of a port module.
type Options struct {
	Backend  npu.PortAPI
	Inv      *inventory.DB
	Mirrors  Mirrors
	Samplers Samplers
	QoS      QoS
	// IsQosAttr selects the attributes routed to QoS.
	IsQosAttr func(types.AttrID) bool
}

// New returns a port module. Init must be called before use.
func New(opts Options) *Module {
	isQos := opts.IsQosAttr
	if isQos == nil {
		isQos = func(types.AttrID) bool { return false }
	}
	return &Module{
		backend:   opts.Backend,
		inv:       opts.Inv,
		mirrors:   opts.Mirrors,
		samplers:  opts.Samplers,
		qos:       opts.QoS,
		isQosAttr: isQos,
		cache:     make(map[types.ObjectID]map[types.AttrID]types.AttrValue),
		apps:      store.NewOrdered[types.ObjectID, *appInfo](),
	}
}

// Init marks the module ready.
func (m *Module) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initialized = true
	log.Infof("port: module initialised with %d port(s)", len(m.inv.List(types.ObjectTypePort)))
	return nil
}

// check validates port and the module state. m.mu must be held.
func (m *Module) check(port types.ObjectID) error {
	if !m.initialized {
		return types.StatusFailure
	}
	if !m.inv.ExistsAs(port, types.ObjectTypePort) {
		return types.StatusInvalidObjectID
	}
	return nil
}

// SetAttribute applies attr to port. On success the attribute cache is
// refreshed with the new value.
func (m *Module) SetAttribute(port types.ObjectID, attr types.Attribute) error {
	if port.Type() != types.ObjectTypePort {
		return types.StatusInvalidObjectType
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(port); err != nil {
		return err
	}
	if !types.IsPortAttr(attr.ID) {
		return types.UnknownAttribute(0)
	}
	if types.IsPortReadOnlyAttr(attr.ID) {
		return types.InvalidAttribute(0)
	}

	var err error
	switch attr.ID {
	case types.PortAttrDropUntagged, types.PortAttrDropTagged:
		if cur, ok := m.cached(port, attr.ID); ok && cur.Bool == attr.Value.Bool {
			log.WithFields(log.Fields{"port": port, "attr": attr.ID}).Trace("port: value unchanged, skipping")
			return nil
		}
		err = m.backend.PortSetAttribute(port, attr)
	case types.PortAttrIngressMirrorSession:
		err = m.setMirrorList(port, types.Ingress, attr.Value.OIDList)
	case types.PortAttrEgressMirrorSession:
		err = m.setMirrorList(port, types.Egress, attr.Value.OIDList)
	case types.PortAttrIngressSamplepacketEnable:
		err = m.setSamplepacket(port, types.Ingress, attr.Value.OID)
	case types.PortAttrEgressSamplepacketEnable:
		err = m.setSamplepacket(port, types.Egress, attr.Value.OID)
	case types.PortAttrIngressACL, types.PortAttrEgressACL:
		// ACL binding is programmed by the ACL module
	case types.PortAttrEgressBlockPortList:
		err = m.setEgressBlock(port, attr)
	case types.PortAttrPortVlanID:
		if attr.Value.U16 == 0 || attr.Value.U16 > maxVlanID {
			return types.InvalidAttributeValue(0)
		}
		err = m.backend.PortSetAttribute(port, attr)
	case types.PortAttrDefaultVlanPriority:
		if attr.Value.U8 > maxVlanPri {
			return types.InvalidAttributeValue(0)
		}
		err = m.backend.PortSetAttribute(port, attr)
	default:
		if m.isQosAttr(attr.ID) && m.qos != nil {
			err = m.qos.SetPortAttribute(port, attr)
		} else {
			err = m.backend.PortSetAttribute(port, attr)
		}
	}
	if err != nil {
		log.WithFields(log.Fields{"port": port, "attr": attr.ID}).Debugf("port: set failed: %v", err)
		return err
	}

	m.store(port, attr)
	return nil
}

// cached returns the cached value of id on port. m.mu must be held.
func (m *Module) cached(port types.ObjectID, id types.AttrID) (types.AttrValue, bool) {
	v, ok := m.cache[port][id]
	return v, ok
}

// store refreshes the cache entry for attr. m.mu must be held.
func (m *Module) store(port types.ObjectID, attr types.Attribute) {
	attrs := m.cache[port]
	if attrs == nil {
		attrs = make(map[types.AttrID]types.AttrValue)
		m.cache[port] = attrs
	}
	v := attr.Value
	v.OIDList = slices.Clone(v.OIDList)
	v.U32List = slices.Clone(v.U32List)
	attrs[attr.ID] = v
}
