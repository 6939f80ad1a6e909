package sim

import (
	"github.com/Nativu5/sai-adapter/pkg/npu"
	"github.com/Nativu5/sai-adapter/pkg/types"
)

type mirrorAPI struct{ b *Backend }

func (m mirrorAPI) Init() error {
	m.b.mu.Lock()
	defer m.b.mu.Unlock()
	return m.b.enter(OpMirrorInit)
}

func (m mirrorAPI) SessionCreate(s *npu.MirrorSession) (uint64, error) {
	b := m.b
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpMirrorCreate); err != nil {
		return 0, err
	}
	handle := b.allocHandle()
	rec := *s
	rec.ID = types.NewObjectID(types.ObjectTypeMirrorSession, handle)
	b.mirrorSessions[rec.ID] = rec
	return handle, nil
}

func (m mirrorAPI) SessionDestroy(id types.ObjectID) error {
	b := m.b
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpMirrorDestroy); err != nil {
		return err
	}
	if _, ok := b.mirrorSessions[id]; !ok {
		return types.StatusItemNotFound
	}
	delete(b.mirrorSessions, id)
	return nil
}

func (m mirrorAPI) SessionSet(s *npu.MirrorSession, _ types.Attribute) error {
	b := m.b
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpMirrorSet); err != nil {
		return err
	}
	if _, ok := b.mirrorSessions[s.ID]; !ok {
		return types.StatusItemNotFound
	}
	b.mirrorSessions[s.ID] = *s
	return nil
}

// mirrorReadable lists the attributes readable for each session type.
var mirrorReadable = map[types.MirrorSessionType]types.AttrSet{
	types.MirrorLocal: types.NewAttrSet(
		types.MirrorAttrType, types.MirrorAttrMonitorPort,
		types.MirrorAttrTruncateSize, types.MirrorAttrTC,
	),
	types.MirrorRemote: types.NewAttrSet(
		types.MirrorAttrType, types.MirrorAttrMonitorPort,
		types.MirrorAttrTruncateSize, types.MirrorAttrTC,
		types.MirrorAttrVlanTPID, types.MirrorAttrVlanID,
		types.MirrorAttrVlanPri, types.MirrorAttrVlanCFI,
	),
	types.MirrorEnhancedRemote: types.NewAttrSet(
		types.MirrorAttrType, types.MirrorAttrMonitorPort,
		types.MirrorAttrTruncateSize, types.MirrorAttrTC,
		types.MirrorAttrVlanTPID, types.MirrorAttrVlanID,
		types.MirrorAttrVlanPri, types.MirrorAttrVlanCFI,
		types.MirrorAttrVlanHeaderValid, types.MirrorAttrErspanEncapType,
		types.MirrorAttrIPHdrVersion, types.MirrorAttrTOS, types.MirrorAttrTTL,
		types.MirrorAttrSrcIP, types.MirrorAttrDstIP,
		types.MirrorAttrSrcMAC, types.MirrorAttrDstMAC,
		types.MirrorAttrGREProtocolType,
	),
}

func (m mirrorAPI) SessionGet(s *npu.MirrorSession, attrs []types.Attribute) error {
	b := m.b
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpMirrorGet); err != nil {
		return err
	}
	for i := range attrs {
		a := &attrs[i]
		if !types.IsMirrorAttr(a.ID) {
			return types.UnknownAttribute(i)
		}
		if !mirrorReadable[s.Type].Has(a.ID) {
			return types.InvalidAttribute(i)
		}
		v := &a.Value
		switch a.ID {
		case types.MirrorAttrType:
			v.S32 = int32(s.Type)
		case types.MirrorAttrMonitorPort:
			v.OID = s.MonitorPort
		case types.MirrorAttrTruncateSize:
			v.U16 = s.TruncateSize
		case types.MirrorAttrTC:
			v.U8 = s.TC
		case types.MirrorAttrVlanTPID:
			v.U16 = s.VlanTPID
		case types.MirrorAttrVlanID:
			v.U16 = s.VlanID
		case types.MirrorAttrVlanPri:
			v.U8 = s.VlanPri
		case types.MirrorAttrVlanCFI:
			v.U8 = s.VlanCFI
		case types.MirrorAttrVlanHeaderValid:
			v.Bool = s.VlanHeaderValid
		case types.MirrorAttrErspanEncapType:
			v.S32 = int32(s.EncapType)
		case types.MirrorAttrIPHdrVersion:
			v.U8 = s.IPHdrVersion
		case types.MirrorAttrTOS:
			v.U8 = s.TOS
		case types.MirrorAttrTTL:
			v.U8 = s.TTL
		case types.MirrorAttrSrcIP:
			v.IP = s.SrcIP
		case types.MirrorAttrDstIP:
			v.IP = s.DstIP
		case types.MirrorAttrSrcMAC:
			v.MAC = s.SrcMAC
		case types.MirrorAttrDstMAC:
			v.MAC = s.DstMAC
		case types.MirrorAttrGREProtocolType:
			v.U16 = s.GREProtocolType
		}
	}
	return nil
}

func (m mirrorAPI) SessionPortAdd(id, port types.ObjectID, dir types.Direction) error {
	b := m.b
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpMirrorPortAdd); err != nil {
		return err
	}
	key := Attachment{Session: id, Port: port, Dir: dir}
	if _, ok := b.attachments[key]; ok {
		return types.StatusItemAlreadyExists
	}
	b.attachments[key] = struct{}{}
	return nil
}

func (m mirrorAPI) SessionPortRemove(id, port types.ObjectID, dir types.Direction) error {
	b := m.b
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpMirrorPortRemove); err != nil {
		return err
	}
	key := Attachment{Session: id, Port: port, Dir: dir}
	if _, ok := b.attachments[key]; !ok {
		return types.StatusItemNotFound
	}
	delete(b.attachments, key)
	return nil
}

// SessionAttrValidate accepts every attribute; failures are injected with
// FailOn(OpMirrorAttrsValidate, ...).
func (m mirrorAPI) SessionAttrValidate(_ types.MirrorSessionType, _ types.Attribute) error {
	m.b.mu.Lock()
	defer m.b.mu.Unlock()
	return m.b.enter(OpMirrorAttrsValidate)
}
