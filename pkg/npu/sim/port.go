package sim

import (
	"slices"

	"github.com/Nativu5/sai-adapter/pkg/types"
)

type portAPI struct{ b *Backend }

func (p portAPI) PortSetAttribute(port types.ObjectID, attr types.Attribute) error {
	b := p.b
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpPortSet); err != nil {
		return err
	}
	attrs, ok := b.portAttrs[port]
	if !ok {
		return types.StatusInvalidObjectID
	}
	v := attr.Value
	v.OIDList = slices.Clone(v.OIDList)
	v.U32List = slices.Clone(v.U32List)
	attrs[attr.ID] = v
	return nil
}

func (p portAPI) PortGetAttribute(port types.ObjectID, attrs []types.Attribute) error {
	b := p.b
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpPortGet); err != nil {
		return err
	}
	pc, ok := b.portConfig(port)
	if !ok {
		return types.StatusInvalidObjectID
	}
	for i := range attrs {
		a := &attrs[i]
		if !types.IsPortAttr(a.ID) {
			return types.UnknownAttribute(i)
		}
		switch a.ID {
		case types.PortAttrType:
			a.Value.S32 = 0
		case types.PortAttrHwLaneList:
			a.Value.U32List = slices.Clone(pc.Lanes)
		case types.PortAttrSupportedSpeed:
			a.Value.U32List = []uint32{pc.Speed}
		default:
			if v, ok := b.portQos[port][a.ID]; ok {
				a.Value = v
			} else {
				v := b.portAttrs[port][a.ID]
				v.OIDList = slices.Clone(v.OIDList)
				a.Value = v
			}
		}
	}
	return nil
}

func (p portAPI) PortGetStats(port types.ObjectID, ids []types.PortStat) ([]uint64, error) {
	b := p.b
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpPortGetStats); err != nil {
		return nil, err
	}
	if _, ok := b.portConfig(port); !ok {
		return nil, types.StatusInvalidObjectID
	}
	counters := b.countersLocked(port)
	out := make([]uint64, len(ids))
	for i, id := range ids {
		if !types.IsPortStat(id) {
			return nil, types.StatusNotSupported
		}
		out[i] = counters[id]
	}
	return out, nil
}

func (p portAPI) PortClearStats(port types.ObjectID, ids []types.PortStat) error {
	b := p.b
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpPortClearStats); err != nil {
		return err
	}
	if _, ok := b.portConfig(port); !ok {
		return types.StatusInvalidObjectID
	}
	counters := b.countersLocked(port)
	for _, id := range ids {
		if !types.IsPortStat(id) {
			return types.StatusNotSupported
		}
	}
	for _, id := range ids {
		counters[id] = 0
	}
	return nil
}

type qosAPI struct{ b *Backend }

func (q qosAPI) PortQosSet(port types.ObjectID, attr types.Attribute) error {
	b := q.b
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpQosPortSet); err != nil {
		return err
	}
	if _, ok := b.portConfig(port); !ok {
		return types.StatusInvalidObjectID
	}
	if b.portQos[port] == nil {
		b.portQos[port] = make(map[types.AttrID]types.AttrValue)
	}
	b.portQos[port][attr.ID] = attr.Value
	return nil
}
