package types

import "fmt"

// Mirror session attribute ids.
const (
	MirrorAttrType AttrID = iota
	MirrorAttrMonitorPort
	MirrorAttrTruncateSize
	MirrorAttrTC
	MirrorAttrVlanTPID
	MirrorAttrVlanID
	MirrorAttrVlanPri
	MirrorAttrVlanCFI
	MirrorAttrVlanHeaderValid
	MirrorAttrErspanEncapType
	MirrorAttrIPHdrVersion
	MirrorAttrTOS
	MirrorAttrTTL
	MirrorAttrSrcIP
	MirrorAttrDstIP
	MirrorAttrSrcMAC
	MirrorAttrDstMAC
	MirrorAttrGREProtocolType
	mirrorAttrEnd
)

// IsMirrorAttr reports whether id belongs to the mirror session attribute space.
func IsMirrorAttr(id AttrID) bool {
	return id >= MirrorAttrType && id < mirrorAttrEnd
}

// MirrorSessionType selects SPAN, RSPAN or ERSPAN behaviour.
type MirrorSessionType int32

const (
	MirrorLocal MirrorSessionType = iota
	MirrorRemote
	MirrorEnhancedRemote
)

func (t MirrorSessionType) String() string {
	switch t {
	case MirrorLocal:
		return "local"
	case MirrorRemote:
		return "remote"
	case MirrorEnhancedRemote:
		return "enhanced_remote"
	default:
		return fmt.Sprintf("mirror_type(%d)", int32(t))
	}
}

// ParseMirrorSessionType accepts local/span, remote/rspan and
// enhanced_remote/erspan.
func ParseMirrorSessionType(s string) (MirrorSessionType, error) {
	switch s {
	case "local", "span":
		return MirrorLocal, nil
	case "remote", "rspan":
		return MirrorRemote, nil
	case "enhanced_remote", "erspan":
		return MirrorEnhancedRemote, nil
	default:
		return MirrorLocal, fmt.Errorf("unknown mirror session type %q", s)
	}
}

// ErspanEncapType is the ERSPAN encapsulation. Only L3 GRE is defined.
type ErspanEncapType int32

const (
	ErspanEncapL3GRETunnel ErspanEncapType = iota
)
