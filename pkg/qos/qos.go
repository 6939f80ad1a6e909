// Package qos applies QoS profile references (maps, scheduler, storm
// control policers, WRED) to ports. The profiles themselves live in the
// NPU; this package only checks that a reference names an object of the
// right kind and remembers what each port has applied.
package qos

import (
	"slices"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/Nativu5/sai-adapter/pkg/inventory"
	"github.com/Nativu5/sai-adapter/pkg/npu"
	"github.com/Nativu5/sai-adapter/pkg/types"
)

// maxTC is the highest traffic class the adapter accepts as a port default.
const maxTC = 15

// profileType maps each profile-reference attribute to the object type it
// must name.
var profileType = map[types.AttrID]types.ObjectType{
	types.PortAttrQosDot1pToTCMap:                types.ObjectTypeQosMap,
	types.PortAttrQosDscpToTCMap:                 types.ObjectTypeQosMap,
	types.PortAttrQosTCToQueueMap:                types.ObjectTypeQosMap,
	types.PortAttrQosSchedulerProfileID:          types.ObjectTypeScheduler,
	types.PortAttrFloodStormControlPolicerID:     types.ObjectTypePolicer,
	types.PortAttrBroadcastStormControlPolicerID: types.ObjectTypePolicer,
	types.PortAttrMulticastStormControlPolicerID: types.ObjectTypePolicer,
	types.PortAttrQosWredProfileID:               types.ObjectTypeWred,
}

// IsPortAttr reports whether id is a port attribute handled by this package.
func IsPortAttr(id types.AttrID) bool {
	if id == types.PortAttrQosDefaultTC {
		return true
	}
	_, ok := profileType[id]
	return ok
}

// Module tracks the QoS attributes applied to each port.
type Module struct {
	mu      sync.Mutex
	backend npu.QosAPI
	inv     *inventory.DB
	applied map[types.ObjectID]map[types.AttrID]types.AttrValue
}

// New returns a QoS module programming through backend.
func New(backend npu.QosAPI, inv *inventory.DB) *Module {
	return &Module{
		backend: backend,
		inv:     inv,
		applied: make(map[types.ObjectID]map[types.AttrID]types.AttrValue),
	}
}

func (m *Module) validate(attr types.Attribute) error {
	if attr.ID == types.PortAttrQosDefaultTC {
		if attr.Value.U8 > maxTC {
			return types.InvalidAttributeValue(0)
		}
		return nil
	}
	want, ok := profileType[attr.ID]
	if !ok {
		return types.UnknownAttribute(0)
	}
	// the null id detaches the profile
	if attr.Value.OID.IsNull() {
		return nil
	}
	if !m.inv.ExistsAs(attr.Value.OID, want) {
		return types.InvalidAttributeValue(0)
	}
	return nil
}

// SetPortAttribute applies one QoS attribute to port.
func (m *Module) SetPortAttribute(port types.ObjectID, attr types.Attribute) error {
	if err := m.validate(attr); err != nil {
		log.Debugf("qos: rejected attribute %d on %s: %v", attr.ID, port, err)
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.backend.PortQosSet(port, attr); err != nil {
		log.Errorf("qos: backend set of attribute %d on %s failed: %v", attr.ID, port, err)
		return err
	}

	applied := m.applied[port]
	if attr.ID != types.PortAttrQosDefaultTC && attr.Value.OID.IsNull() {
		delete(applied, attr.ID)
		if len(applied) == 0 {
			delete(m.applied, port)
		}
		return nil
	}
	if applied == nil {
		applied = make(map[types.AttrID]types.AttrValue)
		m.applied[port] = applied
	}
	applied[attr.ID] = attr.Value
	return nil
}

// PortAttribute returns the value applied for id on port. Profile
// references that were never applied read as the null id.
func (m *Module) PortAttribute(port types.ObjectID, id types.AttrID) (types.AttrValue, bool) {
	if !IsPortAttr(id) {
		return types.AttrValue{}, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.applied[port][id], true
}

// Applied returns the attributes applied on port in id order.
func (m *Module) Applied(port types.ObjectID) []types.Attribute {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.Attribute
	for id, v := range m.applied[port] {
		out = append(out, types.Attribute{ID: id, Value: v})
	}
	slices.SortFunc(out, func(a, b types.Attribute) int { return int(a.ID - b.ID) })
	return out
}
