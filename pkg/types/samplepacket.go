package types

import "fmt"

// Samplepacket session attribute ids.
const (
	SamplepacketAttrSampleRate AttrID = iota
	SamplepacketAttrType
	SamplepacketAttrMode
	samplepacketAttrEnd
)

// IsSamplepacketAttr reports whether id belongs to the samplepacket attribute space.
func IsSamplepacketAttr(id AttrID) bool {
	return id >= SamplepacketAttrSampleRate && id < samplepacketAttrEnd
}

// SamplepacketType is where sampled packets are delivered.
type SamplepacketType int32

const (
	SamplepacketSlowPath SamplepacketType = iota
)

func (t SamplepacketType) String() string {
	if t == SamplepacketSlowPath {
		return "slow_path"
	}
	return fmt.Sprintf("samplepacket_type(%d)", int32(t))
}

// SamplepacketMode controls whether a session may be shared by several ports.
type SamplepacketMode int32

const (
	SamplepacketExclusive SamplepacketMode = iota
	SamplepacketShared
)

func (m SamplepacketMode) String() string {
	switch m {
	case SamplepacketExclusive:
		return "exclusive"
	case SamplepacketShared:
		return "shared"
	default:
		return fmt.Sprintf("samplepacket_mode(%d)", int32(m))
	}
}

// ParseSamplepacketMode accepts "exclusive" or "shared"; empty means exclusive.
func ParseSamplepacketMode(s string) (SamplepacketMode, error) {
	switch s {
	case "", "exclusive":
		return SamplepacketExclusive, nil
	case "shared":
		return SamplepacketShared, nil
	default:
		return SamplepacketExclusive, fmt.Errorf("unknown samplepacket mode %q", s)
	}
}

// SampleAttachMode records which hardware path attached a session to a
// port. The values are bits; one attachment may carry both.
type SampleAttachMode uint8

const (
	SamplePortBased SampleAttachMode = 1 << iota
	SampleFlowBased
)

func (m SampleAttachMode) String() string {
	switch m {
	case 0:
		return "none"
	case SamplePortBased:
		return "port"
	case SampleFlowBased:
		return "flow"
	case SamplePortBased | SampleFlowBased:
		return "port|flow"
	default:
		return fmt.Sprintf("sample_mode(%#x)", uint8(m))
	}
}
