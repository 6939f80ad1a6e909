package port

import (
	"errors"

	"github.com/Nativu5/sai-adapter/pkg/types"
)

// GetAttribute fills attrs for port. Side-table and QoS attributes are
// answered locally, previously applied values from the cache, and the
// rest by the NPU.
func (m *Module) GetAttribute(port types.ObjectID, attrs []types.Attribute) error {
	if port.Type() != types.ObjectTypePort {
		return types.StatusInvalidObjectType
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(port); err != nil {
		return err
	}
	if len(attrs) == 0 {
		return types.StatusInvalidParameter
	}

	a := m.app(port, false)
	for i := range attrs {
		attr := &attrs[i]
		if !types.IsPortAttr(attr.ID) {
			return types.UnknownAttribute(i)
		}
		switch attr.ID {
		case types.PortAttrIngressMirrorSession:
			attr.Value.OIDList = nil
			if a != nil {
				attr.Value.OIDList = a.mirrors[types.Ingress].Keys()
			}
			continue
		case types.PortAttrEgressMirrorSession:
			attr.Value.OIDList = nil
			if a != nil {
				attr.Value.OIDList = a.mirrors[types.Egress].Keys()
			}
			continue
		case types.PortAttrIngressSamplepacketEnable:
			attr.Value.OID = types.NullObjectID
			if a != nil {
				attr.Value.OID = a.sample[types.Ingress]
			}
			continue
		case types.PortAttrEgressSamplepacketEnable:
			attr.Value.OID = types.NullObjectID
			if a != nil {
				attr.Value.OID = a.sample[types.Egress]
			}
			continue
		case types.PortAttrEgressBlockPortList:
			attr.Value.OIDList = nil
			if a != nil {
				attr.Value.OIDList = append([]types.ObjectID(nil), a.egressBlock...)
			}
			continue
		}

		if m.isQosAttr(attr.ID) && m.qos != nil {
			if v, ok := m.qos.PortAttribute(port, attr.ID); ok {
				attr.Value = v
				continue
			}
		}
		if !types.IsPortReadOnlyAttr(attr.ID) {
			if v, ok := m.cached(port, attr.ID); ok {
				attr.Value = v
				continue
			}
		}
		if err := m.backend.PortGetAttribute(port, attrs[i:i+1]); err != nil {
			return reindex(err, i)
		}
	}
	return nil
}

// reindex moves the attribute index of an indexed status from the single
// element the backend saw to its position in the caller's list.
func reindex(err error, i int) error {
	var st types.Status
	if errors.As(err, &st) {
		return st.WithIndex(i)
	}
	return err
}

// GetStats reads the given counters of port.
func (m *Module) GetStats(port types.ObjectID, ids []types.PortStat) ([]uint64, error) {
	if port.Type() != types.ObjectTypePort {
		return nil, types.StatusInvalidObjectType
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(port); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, types.StatusInvalidParameter
	}
	return m.backend.PortGetStats(port, ids)
}

// ClearStats zeroes the given counters of port.
func (m *Module) ClearStats(port types.ObjectID, ids []types.PortStat) error {
	if port.Type() != types.ObjectTypePort {
		return types.StatusInvalidObjectType
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(port); err != nil {
		return err
	}
	if len(ids) == 0 {
		return types.StatusInvalidParameter
	}
	return m.backend.PortClearStats(port, ids)
}
