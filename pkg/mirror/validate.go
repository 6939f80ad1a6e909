package mirror

import (
	log "github.com/sirupsen/logrus"

	"github.com/Nativu5/sai-adapter/pkg/npu"
	"github.com/Nativu5/sai-adapter/pkg/types"
)

const (
	maxVlanID  = 4094
	maxVlanPri = 7
	maxVlanCFI = 1
)

var (
	localMandatory = types.NewAttrSet(
		types.MirrorAttrMonitorPort,
		types.MirrorAttrType,
	)
	remoteMandatory = localMandatory.Union(types.NewAttrSet(
		types.MirrorAttrVlanTPID,
		types.MirrorAttrVlanID,
		types.MirrorAttrVlanPri,
	))
	enhancedRemoteMandatory = localMandatory.Union(types.NewAttrSet(
		types.MirrorAttrErspanEncapType,
		types.MirrorAttrIPHdrVersion,
		types.MirrorAttrTOS,
		types.MirrorAttrSrcIP,
		types.MirrorAttrDstIP,
		types.MirrorAttrSrcMAC,
		types.MirrorAttrDstMAC,
		types.MirrorAttrGREProtocolType,
	))
	// An ERSPAN session that carries a VLAN header needs the tag fields too.
	taggedEnhancedRemoteMandatory = enhancedRemoteMandatory.Union(types.NewAttrSet(
		types.MirrorAttrVlanTPID,
		types.MirrorAttrVlanID,
		types.MirrorAttrVlanPri,
	))
)

// mandatoryAttrs returns the attributes a create call must carry for a
// session shaped like s.
func mandatoryAttrs(s *npu.MirrorSession) types.AttrSet {
	switch s.Type {
	case types.MirrorRemote:
		return remoteMandatory
	case types.MirrorEnhancedRemote:
		if s.VlanHeaderValid {
			return taggedEnhancedRemoteMandatory
		}
		return enhancedRemoteMandatory
	default:
		return localMandatory
	}
}

// typeHint returns the session type named in attrs, so the backend
// capability check sees the right type however the list is ordered.
// Validation of the value itself happens during the walk.
func typeHint(attrs []types.Attribute) types.MirrorSessionType {
	for _, a := range attrs {
		if a.ID == types.MirrorAttrType {
			return types.MirrorSessionType(a.Value.S32)
		}
	}
	return types.MirrorLocal
}

// fill validates one attribute and stores it into s. index is the position
// of attr in the caller's list and is carried by indexed status codes.
// m.mu must be held.
func (m *Module) fill(s *npu.MirrorSession, attr types.Attribute, index int) error {
	v := attr.Value
	bad := types.InvalidAttributeValue(index)

	switch attr.ID {
	case types.MirrorAttrType:
		t := types.MirrorSessionType(v.S32)
		if t != types.MirrorLocal && t != types.MirrorRemote && t != types.MirrorEnhancedRemote {
			return bad
		}
		s.Type = t
	case types.MirrorAttrMonitorPort:
		if !m.inv.ExistsAs(v.OID, types.ObjectTypePort, types.ObjectTypeLag) {
			return bad
		}
		s.MonitorPort = v.OID
	case types.MirrorAttrTruncateSize:
		s.TruncateSize = v.U16
	case types.MirrorAttrTC:
		s.TC = v.U8
	case types.MirrorAttrVlanTPID:
		if v.U16 == 0 {
			return bad
		}
		s.VlanTPID = v.U16
	case types.MirrorAttrVlanID:
		if v.U16 == 0 || v.U16 > maxVlanID {
			return bad
		}
		s.VlanID = v.U16
	case types.MirrorAttrVlanPri:
		if v.U8 > maxVlanPri {
			return bad
		}
		s.VlanPri = v.U8
	case types.MirrorAttrVlanCFI:
		if v.U8 > maxVlanCFI {
			return bad
		}
		s.VlanCFI = v.U8
	case types.MirrorAttrVlanHeaderValid:
		s.VlanHeaderValid = v.Bool
	case types.MirrorAttrErspanEncapType:
		if types.ErspanEncapType(v.S32) != types.ErspanEncapL3GRETunnel {
			return bad
		}
		s.EncapType = types.ErspanEncapType(v.S32)
	case types.MirrorAttrIPHdrVersion:
		if v.U8 != 4 && v.U8 != 6 {
			return bad
		}
		s.IPHdrVersion = v.U8
	case types.MirrorAttrTOS:
		s.TOS = v.U8
	case types.MirrorAttrTTL:
		s.TTL = v.U8
	case types.MirrorAttrSrcIP:
		if !v.IP.IsValid() || v.IP.IsUnspecified() {
			return bad
		}
		s.SrcIP = v.IP
	case types.MirrorAttrDstIP:
		if !v.IP.IsValid() || v.IP.IsUnspecified() {
			return bad
		}
		s.DstIP = v.IP
	case types.MirrorAttrSrcMAC:
		if v.MAC.IsZero() {
			return bad
		}
		s.SrcMAC = v.MAC
	case types.MirrorAttrDstMAC:
		if v.MAC.IsZero() {
			return bad
		}
		s.DstMAC = v.MAC
	case types.MirrorAttrGREProtocolType:
		s.GREProtocolType = v.U16
	default:
		return types.UnknownAttribute(index)
	}

	if err := m.backend.SessionAttrValidate(s.Type, attr); err != nil {
		log.WithFields(log.Fields{
			"attr":  attr.ID,
			"type":  s.Type,
			"index": index,
		}).Errorf("mirror: backend rejected attribute: %v", err)
		return bad
	}
	return nil
}
